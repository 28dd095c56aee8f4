package db

// FieldOption adjusts an index field added through IndexBuilder.
type FieldOption func(*IndexField)

// Separator sets the TAG separator character.
func Separator(sep string) FieldOption {
	return func(f *IndexField) { f.Separator = sep }
}

// CaseSensitive keeps TAG values as written instead of lower-casing them.
func CaseSensitive() FieldOption {
	return func(f *IndexField) { f.CaseSensitive = true }
}

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix restricts the index to keys with the given prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(name string, opts ...FieldOption) *IndexBuilder {
	return b.field(name, FieldNumeric, opts)
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(name string, opts ...FieldOption) *IndexBuilder {
	return b.field(name, FieldTag, opts)
}

func (b *IndexBuilder) field(name string, kind FieldKind, opts []FieldOption) *IndexBuilder {
	f := IndexField{Name: name, Kind: kind}
	for _, o := range opts {
		o(&f)
	}
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns a copy of the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

// MustBuild is Build for static definitions; it panics on an invalid one.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
