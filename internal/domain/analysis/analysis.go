package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Properties are the computed characteristics of a string.
type Properties struct {
	Length                int            `json:"length"`
	IsPalindrome          bool           `json:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters"`
	WordCount             int            `json:"word_count"`
	SHA256Hash            string         `json:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map"`
}

// Clean trims surrounding whitespace. All properties are computed on the cleaned value.
func Clean(value string) string {
	return strings.TrimSpace(value)
}

// Hash returns the hex SHA-256 of the cleaned value, which identifies a stored string.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(Clean(value)))
	return hex.EncodeToString(sum[:])
}

// Analyze computes the properties of value. Lengths count characters, not bytes.
func Analyze(value string) Properties {
	cleaned := Clean(value)

	freq := make(map[string]int)
	for _, r := range cleaned {
		freq[string(r)]++
	}

	return Properties{
		Length:                utf8.RuneCountInString(cleaned),
		IsPalindrome:          isPalindrome(cleaned),
		UniqueCharacters:      len(freq),
		WordCount:             len(strings.Fields(cleaned)),
		SHA256Hash:            Hash(cleaned),
		CharacterFrequencyMap: freq,
	}
}

// isPalindrome compares case-insensitively, character by character.
func isPalindrome(s string) bool {
	runes := []rune(strings.ToLower(s))
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		if runes[i] != runes[j] {
			return false
		}
	}
	return true
}
