package db

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind is the FT schema type of an indexed hash field.
type FieldKind string

// Supported schema types. Both RediSearch and valkey-search accept them.
const (
	FieldNumeric FieldKind = "NUMERIC"
	FieldTag     FieldKind = "TAG"
)

// IndexField is one SCHEMA entry of an FT index.
type IndexField struct {
	Name string
	Kind FieldKind

	// TAG only.
	Separator     string
	CaseSensitive bool
}

// schema renders the field's SCHEMA arguments.
func (f *IndexField) schema() []string {
	args := []string{f.Name, string(f.Kind)}
	if f.Kind != FieldTag {
		return args
	}
	if f.Separator != "" {
		args = append(args, "SEPARATOR", f.Separator)
	}
	if f.CaseSensitive {
		args = append(args, "CASESENSITIVE")
	}
	return args
}

// IndexDefinition is an FT index over hashes whose keys start with one of Prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate reports the first problem as an ErrInvalidIndex.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return fmt.Errorf("%w: index name is required", ErrInvalidIndex)
	}
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("%w: index name %q contains invalid characters", ErrInvalidIndex, idx.Name)
	}
	if len(idx.Fields) == 0 {
		return fmt.Errorf("%w: at least one field is required", ErrInvalidIndex)
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		switch {
		case f.Name == "":
			return fmt.Errorf("%w: field %d has no name", ErrInvalidIndex, i)
		case f.Kind != FieldNumeric && f.Kind != FieldTag:
			return fmt.Errorf("%w: field %s has unknown type %q", ErrInvalidIndex, f.Name, f.Kind)
		case len(f.Separator) > 1:
			return fmt.Errorf("%w: field %s separator must be a single character", ErrInvalidIndex, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field name %s", ErrInvalidIndex, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Args renders the FT.CREATE arguments, without the command name.
func (idx *IndexDefinition) Args() []string {
	args := []string{idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		args = append(args, idx.Fields[i].schema()...)
	}
	return args
}

// String returns the FT.CREATE command line.
func (idx *IndexDefinition) String() string {
	return "FT.CREATE " + strings.Join(idx.Args(), " ")
}

// IsValidIdentifier reports whether s is non-empty and matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '_' || r == ':' || r == '-':
			return false
		}
		return true
	}) < 0
}
