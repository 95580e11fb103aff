// ABOUTME: SQLite implementation of MessageStore using database/sql
// ABOUTME: Idempotent schema creation, serialized writes, and observer events

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	// DriverSQLite is the pure-Go modernc.org/sqlite driver (default).
	DriverSQLite = "sqlite"

	// DriverSQLite3 is the cgo mattn/go-sqlite3 driver.
	DriverSQLite3 = "sqlite3"
)

// timeLayout is fixed-width so that lexical order of created_at matches
// chronological order, including legacy second-precision values written by
// CURRENT_TIMESTAMP.
const timeLayout = "2006-01-02 15:04:05.000000000"

// legacyTimeLayouts are accepted when reading rows not written by this store.
var legacyTimeLayouts = []string{
	timeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// busyTimeoutMS bounds how long a reader waits on a locked database.
const busyTimeoutMS = 5000

// SQLiteStore implements MessageStore using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	observer Observer
	now      func() time.Time

	// writeMu serializes writes so concurrent inserts never race on the
	// database lock.
	writeMu sync.Mutex
}

// Option configures a SQLiteStore.
type Option func(*options)

type options struct {
	driver   string
	observer Observer
	now      func() time.Time
}

// WithDriver selects the database/sql driver (DriverSQLite or DriverSQLite3).
func WithDriver(name string) Option {
	return func(o *options) {
		if name != "" {
			o.driver = name
		}
	}
}

// WithObserver installs the lifecycle observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithClock overrides the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path.
// The schema is created if it doesn't exist, so opening an existing database
// is safe. Parent directories are created if needed. ":memory:" gives a
// private in-memory database.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	o := options{
		driver:   DriverSQLite,
		observer: Observers(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &SQLiteStore{
		path:     path,
		observer: o.observer,
		now:      o.now,
	}

	db, err := s.open(o.driver)
	s.observer.Observe(context.Background(), Event{Op: OpInit, Path: path, Err: err})
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

func (s *SQLiteStore) open(driver string) (*sql.DB, error) {
	dsn, err := dataSourceName(driver, s.path)
	if err != nil {
		return nil, err
	}

	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to ":memory:" is a different database.
	if s.path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// dataSourceName builds a driver-specific DSN carrying the busy timeout.
func dataSourceName(driver, path string) (string, error) {
	switch driver {
	case DriverSQLite:
		return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busyTimeoutMS), nil
	case DriverSQLite3:
		return fmt.Sprintf("%s?_busy_timeout=%d", path, busyTimeoutMS), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// createSchema creates the messages table if it doesn't exist. The column
// layout is the durable contract shared with existing deployments.
func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			read INTEGER DEFAULT 0
		)
	`)
	return err
}

// runMigrations applies additive changes for existing databases.
func runMigrations(db *sql.DB) error {
	// Migration: index matching the list order
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at DESC, id DESC)`); err != nil {
		return fmt.Errorf("creating created_at index: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers queries.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

// CreateMessage validates and inserts a new unread message.
// created_at is stamped inside the write lock so it never decreases as ids grow.
func (s *SQLiteStore) CreateMessage(ctx context.Context, name, email, message string) (int64, error) {
	if err := validateMessage(name, email, message); err != nil {
		return 0, err
	}

	start := time.Now()

	s.writeMu.Lock()
	createdAt := s.now().UTC()
	id, err := s.insertMessage(ctx, name, email, message, createdAt)
	s.writeMu.Unlock()

	ev := Event{Op: OpCreate, MessageID: id, Duration: time.Since(start), Found: err == nil}
	if err != nil {
		ev.Err = err
	} else {
		ev.Message = &Message{
			ID:        id,
			Name:      name,
			Email:     email,
			Message:   message,
			CreatedAt: createdAt,
		}
	}
	s.observer.Observe(ctx, ev)

	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteStore) insertMessage(ctx context.Context, name, email, message string, createdAt time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (name, email, message, created_at, read) VALUES (?, ?, ?, ?, 0)`,
		name, email, message, createdAt.Format(timeLayout),
	)
	if err != nil {
		return 0, &StorageError{Op: "create", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "create", Err: fmt.Errorf("getting last insert id: %w", err)}
	}
	return id, nil
}

// ListMessages returns all messages ordered by created_at then id, newest first.
func (s *SQLiteStore) ListMessages(ctx context.Context) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, message, created_at, read
		FROM messages
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer func() { _ = rows.Close() }()

	messages := []*Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: fmt.Errorf("iterating messages: %w", err)}
	}

	return messages, nil
}

// GetMessage retrieves a single message by id.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, message, created_at, read
		FROM messages
		WHERE id = ?
	`, id)

	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}
	return msg, nil
}

// MarkMessageRead sets read=1. Unknown ids are a no-op.
func (s *SQLiteStore) MarkMessageRead(ctx context.Context, id int64) error {
	return s.update(ctx, OpMarkRead, id, `UPDATE messages SET read = 1 WHERE id = ?`)
}

// DeleteMessage removes a message permanently. Unknown ids are a no-op.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id int64) error {
	return s.update(ctx, OpDelete, id, `DELETE FROM messages WHERE id = ?`)
}

// update runs a single-row write keyed by id and reports it to the observer.
func (s *SQLiteStore) update(ctx context.Context, op Op, id int64, query string) error {
	start := time.Now()

	s.writeMu.Lock()
	found, err := s.execByID(ctx, op, id, query)
	s.writeMu.Unlock()

	s.observer.Observe(ctx, Event{
		Op:        op,
		MessageID: id,
		Found:     found,
		Err:       err,
		Duration:  time.Since(start),
	})
	return err
}

func (s *SQLiteStore) execByID(ctx context.Context, op Op, id int64, query string) (bool, error) {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, &StorageError{Op: string(op), Err: err}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: string(op), Err: fmt.Errorf("getting rows affected: %w", err)}
	}
	return rowsAffected > 0, nil
}

// CountUnreadMessages returns the number of messages with read=0.
func (s *SQLiteStore) CountUnreadMessages(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE read = 0`).Scan(&count); err != nil {
		return 0, &StorageError{Op: "count_unread", Err: err}
	}
	return count, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*Message, error) {
	var msg Message
	var createdAt any
	var read sql.NullInt64

	if err := row.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &createdAt, &read); err != nil {
		return nil, err
	}

	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at for message %d: %w", msg.ID, err)
	}
	msg.CreatedAt = ts
	msg.Read = read.Valid && read.Int64 != 0

	return &msg, nil
}

// parseTimestamp accepts the forms a DATETIME column may come back as:
// drivers may hand back time.Time for declared DATETIME columns, or the raw
// text as string or []byte.
func parseTimestamp(v any) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}, fmt.Errorf("unexpected created_at type %T", v)
	}

	for _, layout := range legacyTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
