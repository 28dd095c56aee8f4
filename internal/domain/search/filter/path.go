package filter

import (
	"errors"
	"strings"
)

// FrequencyMapField is the stored field holding the character frequency map.
const FrequencyMapField = "character_frequency_map"

// FieldPath addresses a value nested inside a stored document, one segment per level.
// Segments are kept verbatim so backends can encode them safely instead of
// splicing them into a query string.
type FieldPath struct {
	segments []string
}

// NewFieldPath creates a path from its segments.
func NewFieldPath(segments ...string) FieldPath {
	s := make([]string, len(segments))
	copy(s, segments)
	return FieldPath{segments: s}
}

// CharacterPath addresses the frequency map entry of a single character.
func CharacterPath(r rune) FieldPath {
	return NewFieldPath(FrequencyMapField, string(r))
}

// Segments returns a copy of the path segments.
func (p FieldPath) Segments() []string {
	s := make([]string, len(p.segments))
	copy(s, p.segments)
	return s
}

// Root returns the first segment.
func (p FieldPath) Root() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[0]
}

// Leaf returns the last segment.
func (p FieldPath) Leaf() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Len returns the number of segments.
func (p FieldPath) Len() int { return len(p.segments) }

// Validate checks that the path has at least one segment and no empty segments.
func (p FieldPath) Validate() error {
	if len(p.segments) == 0 {
		return errors.New("field path is empty")
	}
	for _, s := range p.segments {
		if s == "" {
			return errors.New("field path contains an empty segment")
		}
	}
	return nil
}

// String renders the path for diagnostics only.
func (p FieldPath) String() string {
	quoted := make([]string, len(p.segments))
	for i, s := range p.segments {
		quoted[i] = "[" + strings.ReplaceAll(s, "]", `\]`) + "]"
	}
	return strings.Join(quoted, "")
}
