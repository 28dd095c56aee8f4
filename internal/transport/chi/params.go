package chi

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
	entryuc "github.com/kailas-cloud/stranalyzer/internal/usecase/entry"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report failures under the query parameter name instead of the Go field name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("param")
	})
}

// createRequest is the body of POST /strings after type checking.
type createRequest struct {
	Value string `param:"value" validate:"required"`
}

// listParams are the explicit filters and paging of GET /strings.
type listParams struct {
	IsPalindrome      *bool   `param:"is_palindrome"`
	MinLength         *int    `param:"min_length" validate:"omitempty,min=0"`
	MaxLength         *int    `param:"max_length" validate:"omitempty,min=0"`
	WordCount         *int    `param:"word_count" validate:"omitempty,min=0"`
	ContainsCharacter *string `param:"contains_character" validate:"omitempty,len=1"`
	Limit             int     `param:"limit" validate:"min=0"`
	Cursor            string  `param:"cursor" validate:"omitempty,numeric"`
}

// searchParams are the query and paging of GET /strings/filter-by-natural-language.
type searchParams struct {
	Query  string `param:"query"`
	Limit  int    `param:"limit" validate:"min=0"`
	Cursor string `param:"cursor" validate:"omitempty,numeric"`
}

// errInvalidParam marks a malformed query parameter.
var errInvalidParam = errors.New("invalid query parameter")

func parseListParams(q url.Values) (listParams, error) {
	var p listParams
	var err error

	if v, ok := lookup(q, "is_palindrome"); ok {
		b, perr := parseBool(v)
		if perr != nil {
			return p, paramError("is_palindrome", perr)
		}
		p.IsPalindrome = &b
	}
	if p.MinLength, err = optionalInt(q, "min_length"); err != nil {
		return p, err
	}
	if p.MaxLength, err = optionalInt(q, "max_length"); err != nil {
		return p, err
	}
	if p.WordCount, err = optionalInt(q, "word_count"); err != nil {
		return p, err
	}
	if v, ok := lookup(q, "contains_character"); ok {
		p.ContainsCharacter = &v
	}
	if p.Limit, err = limitParam(q); err != nil {
		return p, err
	}
	p.Cursor = q.Get("cursor")

	if err := validate.Struct(p); err != nil {
		return p, validationError(err)
	}
	return p, nil
}

func parseSearchParams(q url.Values) (searchParams, error) {
	p := searchParams{Query: q.Get("query"), Cursor: q.Get("cursor")}
	var err error
	if p.Limit, err = limitParam(q); err != nil {
		return p, err
	}
	if err := validate.Struct(p); err != nil {
		return p, validationError(err)
	}
	return p, nil
}

// filterSet assembles the validated parameters into a filter set.
// min_length above max_length surfaces as a *filter.ConflictError.
func (p listParams) filterSet() (filter.Set, error) {
	b := filter.NewBuilder()
	if p.IsPalindrome != nil {
		if err := b.Set(filter.KeyIsPalindrome, filter.Bool(*p.IsPalindrome)); err != nil {
			return filter.Set{}, err
		}
	}
	if p.MinLength != nil {
		if err := b.Set(filter.KeyMinLength, filter.Int(*p.MinLength)); err != nil {
			return filter.Set{}, err
		}
	}
	if p.MaxLength != nil {
		if err := b.Set(filter.KeyMaxLength, filter.Int(*p.MaxLength)); err != nil {
			return filter.Set{}, err
		}
	}
	if p.WordCount != nil {
		if err := b.Set(filter.KeyWordCount, filter.Int(*p.WordCount)); err != nil {
			return filter.Set{}, err
		}
	}
	if p.ContainsCharacter != nil {
		r, _ := utf8.DecodeRuneInString(*p.ContainsCharacter)
		if err := b.Set(filter.KeyContainsCharacter, filter.Char(r)); err != nil {
			return filter.Set{}, err
		}
	}
	return b.Build()
}

func (p listParams) page() entryuc.Page {
	return entryuc.Page{Cursor: p.Cursor, Limit: p.Limit}
}

func (p searchParams) page() entryuc.Page {
	return entryuc.Page{Cursor: p.Cursor, Limit: p.Limit}
}

func lookup(q url.Values, name string) (string, bool) {
	if _, ok := q[name]; !ok {
		return "", false
	}
	return q.Get(name), true
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("expected true or false, got %q", v)
}

func optionalInt(q url.Values, name string) (*int, error) {
	v, ok := lookup(q, name)
	if !ok {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return nil, paramError(name, fmt.Errorf("expected an integer, got %q", v))
	}
	i := int(n)
	return &i, nil
}

func limitParam(q url.Values) (int, error) {
	n, err := optionalInt(q, "limit")
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

func paramError(name string, err error) error {
	return fmt.Errorf("%w %s: %w", errInvalidParam, name, err)
}

// validationError renders the first failed constraint using the query parameter name.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", errInvalidParam, err)
	}
	fe := verrs[0]
	name := fe.Field()
	switch fe.Tag() {
	case "min":
		return paramError(name, fmt.Errorf("must be at least %s", fe.Param()))
	case "len":
		return paramError(name, errors.New("must be exactly one character"))
	case "numeric":
		return paramError(name, errors.New("must be a cursor returned by a previous page"))
	case "required":
		return paramError(name, errors.New("is required"))
	}
	return paramError(name, fmt.Errorf("failed %q constraint", fe.Tag()))
}
