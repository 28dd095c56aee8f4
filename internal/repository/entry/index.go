package entry

import "github.com/kailas-cloud/stranalyzer/internal/db"

// buildIndex creates the FT index definition over stored string hashes.
func buildIndex(name, prefix string) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		Prefix(prefix).
		Tag(fieldIsPalindrome).
		Numeric(fieldLength).
		Numeric(fieldWordCount).
		Tag(fieldCharacters, db.Separator(charactersSeparator), db.CaseSensitive()).
		Numeric(fieldCreatedAt).
		Build()
}
