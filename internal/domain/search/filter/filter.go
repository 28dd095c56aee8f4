package filter

import (
	"fmt"
	"strings"
)

// Expression is a storage-neutral conjunction: every condition must hold.
// The zero value matches every stored string.
type Expression struct {
	conds []Condition
}

// NewExpression creates an Expression that requires all of conds.
func NewExpression(conds ...Condition) Expression {
	return Expression{conds: conds}
}

// Conditions returns the conditions, all of which must hold.
func (e Expression) Conditions() []Condition { return e.conds }

// IsEmpty reports whether the expression has no conditions (always-match).
func (e Expression) IsEmpty() bool { return len(e.conds) == 0 }

// String returns a debug representation, e.g. "length in [3,7] AND word_count=1".
func (e Expression) String() string {
	if e.IsEmpty() {
		return "*"
	}
	parts := make([]string, len(e.conds))
	for i, c := range e.conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// Kind enumerates condition kinds.
type Kind int

const (
	// KindMatch is an exact tag match.
	KindMatch Kind = iota + 1
	// KindEqual is an exact numeric match.
	KindEqual
	// KindRange is a numeric range.
	KindRange
	// KindExists checks that an entry exists at a field path.
	KindExists
)

// Condition is a single filter clause.
type Condition struct {
	kind      Kind
	key       string
	match     string
	equal     float64
	rangeExpr *Range
	path      FieldPath
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{kind: KindMatch, key: key, match: match}, nil
}

// NewEqual creates an exact numeric match condition.
func NewEqual(key string, value float64) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{kind: KindEqual, key: key, equal: value}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{kind: KindRange, key: key, rangeExpr: &r}, nil
}

// NewExists creates an existence condition on a structured field path.
func NewExists(path FieldPath) (Condition, error) {
	if err := path.Validate(); err != nil {
		return Condition{}, err
	}
	return Condition{kind: KindExists, key: path.Root(), path: path}, nil
}

// Kind returns the condition kind.
func (c Condition) Kind() Kind { return c.kind }

// Key returns the field name (the path root for existence conditions).
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Equal returns the exact numeric value.
func (c Condition) Equal() float64 { return c.equal }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// Path returns the field path of an existence condition.
func (c Condition) Path() FieldPath { return c.path }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.kind == KindMatch }

// IsEqual reports whether this is a numeric equality condition.
func (c Condition) IsEqual() bool { return c.kind == KindEqual }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.kind == KindRange }

// IsExists reports whether this is an existence condition.
func (c Condition) IsExists() bool { return c.kind == KindExists }

func (c Condition) String() string {
	switch c.kind {
	case KindMatch:
		return fmt.Sprintf("%s=%q", c.key, c.match)
	case KindEqual:
		return fmt.Sprintf("%s=%g", c.key, c.equal)
	case KindRange:
		return c.key + " in " + c.rangeExpr.String()
	case KindExists:
		return "exists(" + c.path.String() + ")"
	default:
		return "?"
	}
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

func (r Range) String() string {
	lower, upper := "(-inf", "+inf)"
	if r.gt != nil {
		lower = fmt.Sprintf("(%g", *r.gt)
	} else if r.gte != nil {
		lower = fmt.Sprintf("[%g", *r.gte)
	}
	if r.lt != nil {
		upper = fmt.Sprintf("%g)", *r.lt)
	} else if r.lte != nil {
		upper = fmt.Sprintf("%g]", *r.lte)
	}
	return lower + "," + upper
}
