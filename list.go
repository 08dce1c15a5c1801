package satchel

import (
	"context"
	"fmt"

	"github.com/carvelab/satchel/internal/codec"
)

// List is a lightweight handle on the list stored under a name. It holds no
// data itself; every method reads or writes the database, so two handles on
// the same name always agree.
type List struct {
	db   *DB
	name string
}

// List returns a handle on the list stored under name. The list does not
// have to exist yet; the first Append or SetAt creates it.
func (db *DB) List(name string) *List {
	return &List{db: db, name: name}
}

// Name returns the name the handle is bound to.
func (l *List) Name() string {
	return l.name
}

// Len returns the list length. Names that hold no list, including absent
// ones, have length 0.
func (l *List) Len() (int, error) {
	return l.db.store.Length(context.Background(), l.name)
}

// At returns element i.
func (l *List) At(i int) (any, error) {
	return l.db.GetIndex(l.name, i)
}

// SetAt writes element i, growing the list as needed.
func (l *List) SetAt(i int, value any) error {
	return l.db.SetIndex(l.name, i, value)
}

// Append adds value at the end of the list.
func (l *List) Append(value any) error {
	return l.db.Append(l.name, value)
}

// RemoveAt deletes element i and shifts later elements down.
func (l *List) RemoveAt(i int) error {
	return l.db.RemoveAt(l.name, i)
}

// Values returns every element in order. Names that hold no list yield an
// empty slice.
func (l *List) Values() ([]any, error) {
	return l.db.store.Materialize(context.Background(), l.name)
}

// String renders the list as compact JSON for debugging.
func (l *List) String() string {
	values, err := l.Values()
	if err != nil {
		return fmt.Sprintf("%s<error: %v>", l.name, err)
	}
	text, err := codec.Encode(values)
	if err != nil {
		return fmt.Sprint(values)
	}
	return text
}
