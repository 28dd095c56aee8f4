package domain

import "errors"

var (
	// ErrNotFound signals a missing stored string.
	ErrNotFound = errors.New("string not found")
	// ErrAlreadyExists signals a duplicate stored string.
	ErrAlreadyExists = errors.New("string already exists")
	// ErrInvalidValue signals a malformed input value or filter.
	ErrInvalidValue = errors.New("invalid value")
)
