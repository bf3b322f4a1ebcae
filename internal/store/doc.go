// Package store persists tasks and their file records in SQLite and
// supports crash recovery by listing non-terminal tasks at startup.
package store
