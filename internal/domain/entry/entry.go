package entry

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/stranalyzer/internal/domain"
	"github.com/kailas-cloud/stranalyzer/internal/domain/analysis"
)

// Entry is a stored string with its computed properties (immutable value object).
type Entry struct {
	id         string
	value      string
	properties analysis.Properties
	createdAt  time.Time
}

// New validates value, analyzes it and creates an Entry.
// The value must be non-blank and at most maxBytes long (0 disables the limit).
func New(value string, maxBytes int, now time.Time) (Entry, error) {
	if analysis.Clean(value) == "" {
		return Entry{}, fmt.Errorf("value must not be blank: %w", domain.ErrInvalidValue)
	}
	if maxBytes > 0 && len(value) > maxBytes {
		return Entry{}, fmt.Errorf("value too large (max %d bytes): %w", maxBytes, domain.ErrInvalidValue)
	}

	props := analysis.Analyze(value)
	return Entry{
		id:         props.SHA256Hash,
		value:      value,
		properties: props,
		createdAt:  now.UTC(),
	}, nil
}

// Reconstruct creates an Entry without validation (storage hydration).
func Reconstruct(id, value string, props analysis.Properties, createdAt time.Time) Entry {
	return Entry{id: id, value: value, properties: props, createdAt: createdAt}
}

// ID returns the SHA-256 identifier.
func (e *Entry) ID() string { return e.id }

// Value returns the string as submitted.
func (e *Entry) Value() string { return e.value }

// Properties returns the computed properties.
func (e *Entry) Properties() analysis.Properties { return e.properties }

// CreatedAt returns the creation time in UTC.
func (e *Entry) CreatedAt() time.Time { return e.createdAt }
