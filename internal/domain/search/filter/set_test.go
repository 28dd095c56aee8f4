package filter

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/stranalyzer/internal/domain"
)

func TestBuilder_SetAndBuild(t *testing.T) {
	b := NewBuilder()
	steps := []struct {
		key Key
		val Value
	}{
		{KeyContainsCharacter, Char('a')},
		{KeyWordCount, Int(1)},
		{KeyMinLength, Int(3)},
		{KeyIsPalindrome, Bool(true)},
	}
	for _, s := range steps {
		if err := b.Set(s.key, s.val); err != nil {
			t.Fatalf("Set(%s, %s): %v", s.key, s.val, err)
		}
	}

	set, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if set.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", set.Len())
	}

	wantOrder := []Key{KeyIsPalindrome, KeyWordCount, KeyMinLength, KeyContainsCharacter}
	got := set.Keys()
	for i := range wantOrder {
		if got[i] != wantOrder[i] {
			t.Fatalf("Keys() = %v, want %v", got, wantOrder)
		}
	}

	if v, ok := set.IsPalindrome(); !ok || !v {
		t.Errorf("IsPalindrome() = %v, %v", v, ok)
	}
	if c, ok := set.ContainsCharacter(); !ok || c != 'a' {
		t.Errorf("ContainsCharacter() = %q, %v", c, ok)
	}
	if _, ok := set.MaxLength(); ok {
		t.Error("MaxLength() must be absent")
	}
}

func TestBuilder_SameValueTwice(t *testing.T) {
	b := NewBuilder()
	if err := b.Set(KeyIsPalindrome, Bool(true)); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(KeyIsPalindrome, Bool(true)); err != nil {
		t.Fatalf("same value must not conflict: %v", err)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestBuilder_Conflict(t *testing.T) {
	b := NewBuilder()
	if err := b.Set(KeyMinLength, Int(6)); err != nil {
		t.Fatal(err)
	}

	err := b.Set(KeyMinLength, Int(10))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	if ce.Key != KeyMinLength || ce.Existing != Int(6) || ce.Incoming != Int(10) {
		t.Errorf("conflict = %+v", ce)
	}

	set, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n, _ := set.MinLength(); n != 6 {
		t.Errorf("conflicting Set must not overwrite, min_length = %d", n)
	}
}

func TestBuilder_InvertedBounds(t *testing.T) {
	b := NewBuilder()
	_ = b.Set(KeyMinLength, Int(10))
	_ = b.Set(KeyMaxLength, Int(5))

	_, err := b.Build()
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if ce.Bound != KeyMaxLength {
		t.Errorf("Bound = %q, want max_length", ce.Bound)
	}
	want := "conflicting filters: min_length 10 exceeds max_length 5"
	if ce.Error() != want {
		t.Errorf("Error() = %q, want %q", ce.Error(), want)
	}
}

func TestBuilder_EqualBoundsAllowed(t *testing.T) {
	b := NewBuilder()
	_ = b.Set(KeyMinLength, Int(5))
	_ = b.Set(KeyMaxLength, Int(5))
	if _, err := b.Build(); err != nil {
		t.Fatalf("min == max must be valid: %v", err)
	}
}

func TestBuilder_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		val  Value
	}{
		{"wrong kind", KeyWordCount, Bool(true)},
		{"negative", KeyMaxLength, Int(-1)},
		{"unknown key", Key("color"), Int(1)},
		{"zero value", KeyContainsCharacter, Value{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBuilder().Set(tt.key, tt.val)
			if !errors.Is(err, domain.ErrInvalidValue) {
				t.Errorf("expected ErrInvalidValue, got %v", err)
			}
		})
	}
}

func TestSet_MarshalJSON(t *testing.T) {
	b := NewBuilder()
	_ = b.Set(KeyContainsCharacter, Char('"'))
	_ = b.Set(KeyIsPalindrome, Bool(false))
	_ = b.Set(KeyMaxLength, Int(4))
	set, _ := b.Build()

	got, err := set.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"is_palindrome":false,"max_length":4,"contains_character":"\""}`
	if string(got) != want {
		t.Errorf("MarshalJSON = %s, want %s", got, want)
	}

	empty, _ := Set{}.MarshalJSON()
	if string(empty) != "{}" {
		t.Errorf("empty set = %s, want {}", empty)
	}
}

func TestSet_Equal(t *testing.T) {
	a := NewBuilder()
	_ = a.Set(KeyWordCount, Int(1))
	b := NewBuilder()
	_ = b.Set(KeyWordCount, Int(1))
	c := NewBuilder()
	_ = c.Set(KeyWordCount, Int(2))

	sa, _ := a.Build()
	sb, _ := b.Build()
	sc, _ := c.Build()

	if !sa.Equal(sb) {
		t.Error("expected equal sets")
	}
	if sa.Equal(sc) {
		t.Error("expected different sets")
	}
	if sa.Equal(Set{}) {
		t.Error("expected non-empty set to differ from empty set")
	}
}

func TestVocabulary(t *testing.T) {
	want := map[Key]string{
		KeyIsPalindrome:      "boolean",
		KeyWordCount:         "integer",
		KeyMinLength:         "integer",
		KeyMaxLength:         "integer",
		KeyContainsCharacter: "character",
	}
	keys := Vocabulary()
	if len(keys) != len(want) {
		t.Fatalf("Vocabulary() has %d keys, want %d", len(keys), len(want))
	}
	for _, k := range keys {
		if got := k.ValueKind().String(); got != want[k] {
			t.Errorf("%s kind = %q, want %q", k, got, want[k])
		}
	}
	keys[0] = "mutated"
	if Vocabulary()[0] != KeyIsPalindrome {
		t.Error("Vocabulary must return a copy")
	}
}
