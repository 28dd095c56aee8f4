package entry

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/stranalyzer/internal/domain/analysis"
	domentry "github.com/kailas-cloud/stranalyzer/internal/domain/entry"
)

// Hash field names.
const (
	fieldValue            = "value"
	fieldLength           = "length"
	fieldIsPalindrome     = "is_palindrome"
	fieldUniqueCharacters = "unique_characters"
	fieldWordCount        = "word_count"
	fieldSHA256           = "sha256_hash"
	fieldFrequencyMap     = "character_frequency_map"
	fieldCharacters       = "characters"
	fieldCreatedAt        = "created_at"
)

// charactersSeparator joins character tokens in the characters TAG field.
const charactersSeparator = ","

// returnFields are fetched on listing; characters is derived from the frequency map.
var returnFields = []string{
	fieldValue, fieldLength, fieldIsPalindrome, fieldUniqueCharacters,
	fieldWordCount, fieldSHA256, fieldFrequencyMap, fieldCreatedAt,
}

// CharToken encodes a character as a TAG-safe token, e.g. 'a' -> "u61".
func CharToken(r rune) string {
	return "u" + strconv.FormatInt(int64(r), 16)
}

// buildHashFields converts a domain Entry into a flat map[string]string for HSET.
func buildHashFields(e *domentry.Entry) map[string]string {
	p := e.Properties()
	freq, _ := json.Marshal(p.CharacterFrequencyMap) // map[string]int always marshals

	return map[string]string{
		fieldValue:            e.Value(),
		fieldLength:           strconv.Itoa(p.Length),
		fieldIsPalindrome:     strconv.FormatBool(p.IsPalindrome),
		fieldUniqueCharacters: strconv.Itoa(p.UniqueCharacters),
		fieldWordCount:        strconv.Itoa(p.WordCount),
		fieldSHA256:           p.SHA256Hash,
		fieldFrequencyMap:     string(freq),
		fieldCharacters:       characterTokens(p.CharacterFrequencyMap),
		fieldCreatedAt:        strconv.FormatInt(e.CreatedAt().UnixMilli(), 10),
	}
}

// characterTokens lists distinct characters as tokens ordered by code point.
func characterTokens(freq map[string]int) string {
	runes := make([]rune, 0, len(freq))
	for ch := range freq {
		for _, r := range ch {
			runes = append(runes, r)
		}
	}
	slices.Sort(runes)
	runes = slices.Compact(runes)

	tokens := make([]string, len(runes))
	for i, r := range runes {
		tokens[i] = CharToken(r)
	}
	return strings.Join(tokens, charactersSeparator)
}

// parseHashFields converts a flat hash map back into a domain Entry.
func parseHashFields(id string, m map[string]string) (domentry.Entry, error) {
	value, ok := m[fieldValue]
	if !ok {
		return domentry.Entry{}, fmt.Errorf("missing field %q", fieldValue)
	}

	var (
		p   analysis.Properties
		err error
	)
	if p.Length, err = intField(m, fieldLength); err != nil {
		return domentry.Entry{}, err
	}
	if p.UniqueCharacters, err = intField(m, fieldUniqueCharacters); err != nil {
		return domentry.Entry{}, err
	}
	if p.WordCount, err = intField(m, fieldWordCount); err != nil {
		return domentry.Entry{}, err
	}
	if p.IsPalindrome, err = strconv.ParseBool(m[fieldIsPalindrome]); err != nil {
		return domentry.Entry{}, fmt.Errorf("field %q: %w", fieldIsPalindrome, err)
	}
	if err := json.Unmarshal([]byte(m[fieldFrequencyMap]), &p.CharacterFrequencyMap); err != nil {
		return domentry.Entry{}, fmt.Errorf("field %q: %w", fieldFrequencyMap, err)
	}
	p.SHA256Hash = m[fieldSHA256]
	if p.SHA256Hash == "" {
		p.SHA256Hash = id
	}

	millis, err := strconv.ParseInt(m[fieldCreatedAt], 10, 64)
	if err != nil {
		return domentry.Entry{}, fmt.Errorf("field %q: %w", fieldCreatedAt, err)
	}

	return domentry.Reconstruct(id, value, p, time.UnixMilli(millis).UTC()), nil
}

func intField(m map[string]string, name string) (int, error) {
	n, err := strconv.Atoi(m[name])
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", name, err)
	}
	return n, nil
}
