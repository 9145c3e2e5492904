// Package progress persists the unlike counter.
//
// A Store is a tiny string key-value interface with four backends:
//   - FileStore: JSON document in the user data directory, atomic replace
//   - PageStore: the page's own localStorage
//   - PostgresStore: one table, shared between machines
//   - MemoryStore: tests and dry runs
//
// Tracker binds a Store to the counter key and handles parsing.
package progress
