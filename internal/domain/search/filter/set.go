package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/stranalyzer/internal/domain"
)

// ErrConflict signals two incompatible values for the same filter set.
var ErrConflict = errors.New("conflicting filters")

// Key names a filter in the canonical vocabulary.
type Key string

// Canonical filter keys, in evaluation and output order.
const (
	KeyIsPalindrome      Key = "is_palindrome"
	KeyWordCount         Key = "word_count"
	KeyMinLength         Key = "min_length"
	KeyMaxLength         Key = "max_length"
	KeyContainsCharacter Key = "contains_character"
)

var vocabulary = []Key{KeyIsPalindrome, KeyWordCount, KeyMinLength, KeyMaxLength, KeyContainsCharacter}

// Vocabulary returns all filter keys in canonical order.
func Vocabulary() []Key {
	out := make([]Key, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// ValueKind returns the kind of value the key accepts.
func (k Key) ValueKind() ValueKind {
	switch k {
	case KeyIsPalindrome:
		return BoolValue
	case KeyWordCount, KeyMinLength, KeyMaxLength:
		return IntValue
	case KeyContainsCharacter:
		return CharValue
	default:
		return 0
	}
}

// ValueKind enumerates filter value kinds.
type ValueKind int

const (
	// BoolValue holds a boolean.
	BoolValue ValueKind = iota + 1
	// IntValue holds a non-negative integer.
	IntValue
	// CharValue holds exactly one character.
	CharValue
)

func (k ValueKind) String() string {
	switch k {
	case BoolValue:
		return "boolean"
	case IntValue:
		return "integer"
	case CharValue:
		return "character"
	default:
		return "unknown"
	}
}

// Value is a single filter value. Values are comparable with ==.
type Value struct {
	kind ValueKind
	b    bool
	n    int
	c    rune
}

// Bool creates a boolean value.
func Bool(v bool) Value { return Value{kind: BoolValue, b: v} }

// Int creates an integer value.
func Int(n int) Value { return Value{kind: IntValue, n: n} }

// Char creates a single-character value.
func Char(r rune) Value { return Value{kind: CharValue, c: r} }

// Kind returns the value kind.
func (v Value) Kind() ValueKind { return v.kind }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer payload.
func (v Value) AsInt() int { return v.n }

// AsChar returns the character payload.
func (v Value) AsChar() rune { return v.c }

func (v Value) String() string {
	switch v.kind {
	case BoolValue:
		return strconv.FormatBool(v.b)
	case IntValue:
		return strconv.Itoa(v.n)
	case CharValue:
		return strconv.Quote(string(v.c))
	default:
		return "<nil>"
	}
}

func (v Value) jsonValue() any {
	switch v.kind {
	case BoolValue:
		return v.b
	case IntValue:
		return v.n
	case CharValue:
		return string(v.c)
	default:
		return nil
	}
}

// ConflictError reports a contradiction inside a filter set: either one key set to
// two different values, or a min_length above max_length.
type ConflictError struct {
	Key      Key
	Existing Value
	Incoming Value
	// Bound is set when the conflict is between two keys (min_length > max_length).
	Bound Key
}

func (e *ConflictError) Error() string {
	if e.Bound != "" {
		return fmt.Sprintf("%s: %s %s exceeds %s %s",
			ErrConflict.Error(), e.Key, e.Incoming, e.Bound, e.Existing)
	}
	return fmt.Sprintf("%s: %s already set to %s, got %s",
		ErrConflict.Error(), e.Key, e.Existing, e.Incoming)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Set is an immutable filter set: at most one value per key.
type Set struct {
	values map[Key]Value
}

// Len returns the number of keys present.
func (s Set) Len() int { return len(s.values) }

// IsEmpty reports whether the set has no keys.
func (s Set) IsEmpty() bool { return len(s.values) == 0 }

// Get returns the value for a key.
func (s Set) Get(k Key) (Value, bool) {
	v, ok := s.values[k]
	return v, ok
}

// Has reports whether the key is present.
func (s Set) Has(k Key) bool {
	_, ok := s.values[k]
	return ok
}

// Keys returns present keys in canonical order.
func (s Set) Keys() []Key {
	keys := make([]Key, 0, len(s.values))
	for _, k := range vocabulary {
		if _, ok := s.values[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// IsPalindrome returns the is_palindrome filter.
func (s Set) IsPalindrome() (bool, bool) {
	v, ok := s.values[KeyIsPalindrome]
	return v.b, ok
}

// WordCount returns the word_count filter.
func (s Set) WordCount() (int, bool) {
	v, ok := s.values[KeyWordCount]
	return v.n, ok
}

// MinLength returns the min_length filter.
func (s Set) MinLength() (int, bool) {
	v, ok := s.values[KeyMinLength]
	return v.n, ok
}

// MaxLength returns the max_length filter.
func (s Set) MaxLength() (int, bool) {
	v, ok := s.values[KeyMaxLength]
	return v.n, ok
}

// ContainsCharacter returns the contains_character filter.
func (s Set) ContainsCharacter() (rune, bool) {
	v, ok := s.values[KeyContainsCharacter]
	return v.c, ok
}

// Equal reports whether both sets hold the same keys and values.
func (s Set) Equal(other Set) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for k, v := range s.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a flat object in canonical key order.
func (s Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.values[k].jsonValue())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s Set) String() string {
	b, _ := s.MarshalJSON()
	return string(b)
}

// Builder accumulates filter values through a conflict-checked setter.
// A Builder is not safe for concurrent use; build one per query.
type Builder struct {
	values map[Key]Value
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{values: make(map[Key]Value, len(vocabulary))}
}

// Set assigns a value to a key. Assigning the value a key already holds is a no-op;
// assigning a different one returns a *ConflictError and leaves the builder unchanged.
func (b *Builder) Set(k Key, v Value) error {
	want := k.ValueKind()
	if want == 0 {
		return fmt.Errorf("unknown filter %q: %w", k, domain.ErrInvalidValue)
	}
	if v.kind != want {
		return fmt.Errorf("filter %s: unexpected value %s: %w", k, v, domain.ErrInvalidValue)
	}
	if v.kind == IntValue && v.n < 0 {
		return fmt.Errorf("filter %s must be non-negative, got %d: %w", k, v.n, domain.ErrInvalidValue)
	}
	if existing, ok := b.values[k]; ok {
		if existing != v {
			return &ConflictError{Key: k, Existing: existing, Incoming: v}
		}
		return nil
	}
	b.values[k] = v
	return nil
}

// Len returns the number of keys set so far.
func (b *Builder) Len() int { return len(b.values) }

// Build checks cross-key invariants and returns an immutable Set.
func (b *Builder) Build() (Set, error) {
	minV, hasMin := b.values[KeyMinLength]
	maxV, hasMax := b.values[KeyMaxLength]
	if hasMin && hasMax && minV.n > maxV.n {
		return Set{}, &ConflictError{Key: KeyMinLength, Incoming: minV, Bound: KeyMaxLength, Existing: maxV}
	}

	values := make(map[Key]Value, len(b.values))
	for k, v := range b.values {
		values[k] = v
	}
	return Set{values: values}, nil
}
