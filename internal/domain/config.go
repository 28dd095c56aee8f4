package domain

// DefaultKeyPrefix namespaces every key the service writes.
const DefaultKeyPrefix = "stranalyzer:"

// Limits holds request size limits, not exposed to clients.
type Limits struct {
	MaxValueBytes  int
	MaxQueryLength int
}

// DefaultLimits returns the limits used when configuration leaves them unset.
func DefaultLimits() Limits {
	return Limits{
		MaxValueBytes:  64 * 1024,
		MaxQueryLength: 512,
	}
}
