// Package store provides persistent storage for contact messages using SQLite.
//
// # Architecture
//
// MessageStore is the persistence contract. Two implementations exist:
//
//   - SQLiteStore: the production store, backed by database/sql
//   - MockStore: an in-memory store for handler tests
//
// There is no package-level database handle. Callers construct a store with
// NewSQLiteStore and own it until Close.
//
// # Data Model
//
// A Message is one contact-form submission. ids come from SQLite
// AUTOINCREMENT and are never reused, even after a delete. created_at is
// stamped by the store and is the list ordering key (newest first, ties by
// id descending). read starts false and only ever becomes true.
//
// # SQLite Configuration
//
// The store enables WAL mode and a busy timeout. Two drivers are supported:
//
//	store.NewSQLiteStore(path)                                   // modernc.org/sqlite, pure Go
//	store.NewSQLiteStore(path, store.WithDriver(store.DriverSQLite3)) // mattn/go-sqlite3, cgo
//
// Writes are serialized by the store, so concurrent creates never collide.
//
// # Error Handling
//
//   - *ValidationError (matches ErrValidation): a required field is empty
//   - ErrNotFound: GetMessage on an unknown id
//   - *StorageError (matches ErrStorage): the database failed; the wrapped
//     detail is for logs only
//
// MarkMessageRead and DeleteMessage on an unknown id succeed without effect.
//
// # Observability
//
// The store never logs. Install an Observer with WithObserver to receive
// init, create, mark_read, and delete events:
//
//	s, err := store.NewSQLiteStore(path, store.WithObserver(store.LogObserver(logger)))
//
// # Testing
//
// Use NewSQLiteStore(":memory:") for integration tests with real SQLite and
// NewMockStore() where a database is unnecessary.
package store
