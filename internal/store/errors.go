package store

import "errors"

// Sentinel errors returned by store operations. Callers match them with
// errors.Is; every occurrence is wrapped with the operation and name.
var (
	// ErrNotFound is returned when no scalar entry exists for a name.
	ErrNotFound = errors.New("not found")

	// ErrIndexOutOfRange is returned for negative list indices and for
	// reads or removals at or past the end of a list. SetItem is the
	// exception above the current length: it extends the list instead.
	ErrIndexOutOfRange = errors.New("list index out of range")
)
