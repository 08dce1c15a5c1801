package satchel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Handle(t *testing.T) {
	db := openTestDB(t)
	l := db.List("queue")

	assert.Equal(t, "queue", l.Name())

	n, err := l.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n, "handle on an absent list has length 0")

	require.NoError(t, l.Append("a"))
	require.NoError(t, l.Append("b"))
	require.NoError(t, l.SetAt(0, "A"))

	got, err := l.At(0)
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	values, err := l.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "b"}, values)

	require.NoError(t, l.RemoveAt(0))
	values, err = l.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, values)
}

func TestList_HandlesShareState(t *testing.T) {
	db := openTestDB(t)

	// Handles hold no data; both views read the same rows.
	l1 := db.List("shared")
	l2 := db.List("shared")

	require.NoError(t, l1.Append("x"))

	n, err := l2.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestList_GrowsViaSetAt(t *testing.T) {
	db := openTestDB(t)
	l := db.List("sparse")

	require.NoError(t, l.SetAt(2, "z"))

	values, err := l.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil, "z"}, values)
}

func TestList_Errors(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Set("s", "scalar"))
	l := db.List("s")

	_, err := l.At(0)
	assert.ErrorIs(t, err, ErrNotAList)
	assert.ErrorIs(t, l.RemoveAt(0), ErrNotAList)

	_, err = db.List("ghost").At(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestList_String(t *testing.T) {
	db := openTestDB(t)
	l := db.List("L")

	assert.Equal(t, "[]", l.String(), "absent list renders empty")

	require.NoError(t, l.Append(1))
	require.NoError(t, l.Append("two"))
	require.NoError(t, l.Append(nil))

	assert.Equal(t, `[1,"two",null]`, l.String())
}
