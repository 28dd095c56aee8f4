package nlquery

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
)

// errNumberRange is returned by extractors when a numeric phrase does not fit an int32.
var errNumberRange = errors.New("number out of range")

// rule is one recognized phrase class: if match finds it in the normalized text,
// extract derives the value assigned to key.
type rule struct {
	name    string
	key     filter.Key
	match   func(text string) []string
	extract func(groups []string) (filter.Value, error)
}

var (
	negatedPalindromeRe = regexp.MustCompile(`(?:non-|not )palindromic`)
	palindromeRe        = regexp.MustCompile(`palindrom(?:e|ic)`)
	singleWordRe        = regexp.MustCompile(`(?:single|one) word`)
	longerThanRe        = regexp.MustCompile(`(?:longer|greater) than (\d+)`)
	atLeastRe           = regexp.MustCompile(`(?:at least|minimum of) (\d+)`)
	shorterThanRe       = regexp.MustCompile(`(?:shorter|less) than (\d+)`)
	atMostRe            = regexp.MustCompile(`(?:at most|max(?:imum)? of) (\d+)`)
	firstVowelRe        = regexp.MustCompile(`first vowel`)
	containsLetterRe    = regexp.MustCompile(`contain(?:s|ing)?(?: the letter)? ([a-z])\b`)
)

// rules is evaluated top to bottom. The order decides which conflict surfaces first.
var rules = []rule{
	{
		name:    "palindrome",
		key:     filter.KeyIsPalindrome,
		match:   matchAffirmedPalindrome,
		extract: constant(filter.Bool(true)),
	},
	{
		name:    "non_palindrome",
		key:     filter.KeyIsPalindrome,
		match:   negatedPalindromeRe.FindStringSubmatch,
		extract: constant(filter.Bool(false)),
	},
	{
		name:    "single_word",
		key:     filter.KeyWordCount,
		match:   singleWordRe.FindStringSubmatch,
		extract: constant(filter.Int(1)),
	},
	{
		name:    "longer_than",
		key:     filter.KeyMinLength,
		match:   longerThanRe.FindStringSubmatch,
		extract: number(func(n int) int { return n + 1 }),
	},
	{
		name:    "at_least",
		key:     filter.KeyMinLength,
		match:   atLeastRe.FindStringSubmatch,
		extract: number(identity),
	},
	{
		name:    "shorter_than",
		key:     filter.KeyMaxLength,
		match:   shorterThanRe.FindStringSubmatch,
		extract: number(func(n int) int { return max(n-1, 0) }),
	},
	{
		name:    "at_most",
		key:     filter.KeyMaxLength,
		match:   atMostRe.FindStringSubmatch,
		extract: number(identity),
	},
	{
		name:    "first_vowel",
		key:     filter.KeyContainsCharacter,
		match:   firstVowelRe.FindStringSubmatch,
		extract: constant(filter.Char('a')),
	},
	{
		name:    "contains_letter",
		key:     filter.KeyContainsCharacter,
		match:   containsLetterRe.FindStringSubmatch,
		extract: letter,
	},
}

// matchAffirmedPalindrome matches "palindrome"/"palindromic" only outside the two
// negated phrases "non-palindromic" and "not palindromic". Any other mention is affirmative.
func matchAffirmedPalindrome(text string) []string {
	stripped := negatedPalindromeRe.ReplaceAllString(text, " ")
	return palindromeRe.FindStringSubmatch(stripped)
}

func constant(v filter.Value) func([]string) (filter.Value, error) {
	return func([]string) (filter.Value, error) { return v, nil }
}

func identity(n int) int { return n }

// number parses the first capture group and applies adjust to it.
func number(adjust func(int) int) func([]string) (filter.Value, error) {
	return func(groups []string) (filter.Value, error) {
		n, err := strconv.ParseInt(groups[1], 10, 32)
		if err != nil {
			return filter.Value{}, fmt.Errorf("%w: %q", errNumberRange, groups[1])
		}
		return filter.Int(adjust(int(n))), nil
	}
}

func letter(groups []string) (filter.Value, error) {
	return filter.Char(rune(groups[1][0])), nil
}
