package satchel

import (
	"errors"

	"github.com/carvelab/satchel/internal/codec"
	"github.com/carvelab/satchel/internal/store"
)

// Error kinds surfaced by DB operations. Callers match them with errors.Is;
// returned errors carry operation context around these sentinels.
var (
	// ErrUnsupportedType: a value outside the JSON-compatible domain
	// {string, number, boolean, null, sequence, string-keyed mapping}.
	// Raised at encode time; nothing is partially written.
	ErrUnsupportedType = codec.ErrUnsupportedType

	// ErrCorruptData: stored text failed to decode. Surfaced to the caller
	// as-is; no silent recovery or repair is attempted.
	ErrCorruptData = codec.ErrCorruptData

	// ErrNotFound: read or delete of an absent name.
	ErrNotFound = store.ErrNotFound

	// ErrIndexOutOfRange: list index outside [0, length).
	ErrIndexOutOfRange = store.ErrIndexOutOfRange

	// ErrNotAList: length or index access on a name that holds a scalar.
	ErrNotAList = errors.New("not a list")

	// ErrEmptyName: the empty string is not a valid name.
	ErrEmptyName = errors.New("empty name")

	// ErrNameCollision: a foreign table carries a managed table identifier.
	// Cannot occur through SQLite itself; the snapshot guards contractually.
	ErrNameCollision = errors.New("name collides with managed table")
)
