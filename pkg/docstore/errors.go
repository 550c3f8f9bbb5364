package docstore

import "errors"

var (
	// ErrItemNotFound is returned when the target item does not exist under
	// the given owner. Non-fatal; callers report it and continue.
	ErrItemNotFound = errors.New("item not found")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("database error")
)
