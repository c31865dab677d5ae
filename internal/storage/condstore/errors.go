package condstore

import "errors"

var (
	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrNotFound is returned when a record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrCorruptRecord is returned when a stored record fails to decode or
	// its URI no longer parses.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrInvalidRecord is returned when a record offered to Put is not
	// internally consistent.
	ErrInvalidRecord = errors.New("invalid record")
)
