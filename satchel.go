// Package satchel is a schema-light key/value and ordered-list persistence
// layer over a single SQLite file.
//
// Values are arbitrary JSON-serializable data: strings, numbers (integers
// and floats survive round-trips as distinct types), booleans, null, nested
// sequences and string-keyed mappings. A logical name holds either one
// scalar value or one ordered list, never both - assigning a sequence makes
// the name a list, anything else makes it a scalar, and the previous entry
// of the other kind is purged.
//
// The database file may carry tables created by other tools. Satchel reads
// those into its consolidated snapshot (AllData) and HTML report, but never
// writes them.
package satchel

import (
	"github.com/carvelab/satchel/internal/report"
	"github.com/carvelab/satchel/internal/store"
)

// DB is one open database file. Operations are synchronous and uncached:
// every read re-queries the file, so writes by external processes are
// visible immediately. DB is not safe for concurrent use by multiple
// goroutines; SQLite's own locking coordinates between processes.
type DB struct {
	path     string
	store    *store.Store
	renderer *report.Renderer
}

// Open opens the database file at path, creating it (with the managed
// tables) if absent. A pre-existing file is opened as-is, foreign tables
// included.
func Open(path string) (*DB, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return &DB{
		path:     path,
		store:    s,
		renderer: report.NewRenderer(),
	}, nil
}

// Close releases the underlying database handle.
func (db *DB) Close() error {
	return db.store.Close()
}

// Path returns the database file path given to Open.
func (db *DB) Path() string {
	return db.path
}
