package entry

import (
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/stranalyzer/internal/db"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
)

// StoreExpression rewrites expr into conditions the hash index can evaluate.
// A character membership check (exists at character_frequency_map[c]) becomes
// a tag match on the characters field.
func StoreExpression(expr filter.Expression) (filter.Expression, error) {
	if expr.IsEmpty() {
		return expr, nil
	}

	conds := expr.Conditions()
	out := make([]filter.Condition, len(conds))
	for i, c := range conds {
		rc, err := rewrite(c)
		if err != nil {
			return filter.Expression{}, err
		}
		out[i] = rc
	}
	return filter.NewExpression(out...), nil
}

func rewrite(c filter.Condition) (filter.Condition, error) {
	if !c.IsExists() {
		return c, nil
	}

	path := c.Path()
	if path.Len() != 2 || path.Root() != filter.FrequencyMapField {
		return filter.Condition{}, fmt.Errorf("%w: %s", db.ErrUnsupportedFilter, c)
	}
	leaf := path.Leaf()
	r, size := utf8.DecodeRuneInString(leaf)
	if r == utf8.RuneError || size != len(leaf) {
		return filter.Condition{}, fmt.Errorf("%w: %s", db.ErrUnsupportedFilter, c)
	}
	return filter.NewMatch(fieldCharacters, CharToken(r))
}
