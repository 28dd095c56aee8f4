package filter

// Stored field names referenced by BuildQuery.
const (
	FieldIsPalindrome = "is_palindrome"
	FieldWordCount    = "word_count"
	FieldLength       = "length"
)

// BuildQuery translates a filter set into a storage predicate.
// Absent keys emit no condition; an empty set yields an always-match expression.
// The result depends only on the set, never on where the set came from.
func BuildQuery(s Set) Expression {
	var must []Condition

	if v, ok := s.IsPalindrome(); ok {
		must = append(must, Condition{kind: KindMatch, key: FieldIsPalindrome, match: boolTag(v)})
	}

	if n, ok := s.WordCount(); ok {
		must = append(must, Condition{kind: KindEqual, key: FieldWordCount, equal: float64(n)})
	}

	minLen, hasMin := s.MinLength()
	maxLen, hasMax := s.MaxLength()
	if hasMin || hasMax {
		var r Range
		if hasMin {
			lo := float64(minLen)
			r.gte = &lo
		}
		if hasMax {
			hi := float64(maxLen)
			r.lte = &hi
		}
		must = append(must, Condition{kind: KindRange, key: FieldLength, rangeExpr: &r})
	}

	if c, ok := s.ContainsCharacter(); ok {
		path := CharacterPath(c)
		must = append(must, Condition{kind: KindExists, key: path.Root(), path: path})
	}

	return Expression{conds: must}
}

func boolTag(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
