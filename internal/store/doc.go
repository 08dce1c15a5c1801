// Package store provides SQLite-backed storage for named scalars and
// ordered lists, plus schema introspection over the rest of the file.
//
// Two managed tables carry all satchel data:
//   - kv_store: one row per scalar name, value as JSON TEXT
//   - list_store: one row per (list_name, item_index), value as JSON TEXT
//
// # Write-Path Invariants
//
// The list table carries NO uniqueness constraint on (list_name, item_index);
// logical uniqueness is the write path's job:
//   - SetItem updates in place and only inserts when no row exists
//   - ReplaceAll clears a list and rewrites it inside one transaction
//   - list length is MAX(item_index)+1, never a row count, so gaps and
//     duplicates left by foreign writers cannot skew it
//
// Reads tolerate whatever foreign writers left behind: duplicate rows
// resolve newest-id-wins, missing in-range rows surface as null
// placeholders, negative indices are ignored.
//
// # Foreign Tables
//
// Any table other than the managed two (and SQLite's own sqlite_* tables)
// is foreign: visible through the introspector as raw column/row data,
// never written, never JSON-decoded.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
