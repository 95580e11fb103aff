// ABOUTME: MessageStore interface, Message record, and the store error taxonomy
// ABOUTME: Shared by the SQLite implementation, the in-memory mock, and HTTP handlers

package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested message does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ErrStorage matches every *StorageError.
var ErrStorage = errors.New("storage failure")

// ValidationError reports a submission that is missing a required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Field + " is required"
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failure of the underlying database.
// Op names the store operation that failed. The wrapped error carries
// driver detail and must not be shown to end users.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorage) true for any StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Message is a single contact-form submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// MessageStore is the persistence contract for contact messages.
//
// MarkMessageRead and DeleteMessage treat an unknown id as a successful
// no-op. Only GetMessage reports ErrNotFound.
type MessageStore interface {
	// CreateMessage validates and stores a new unread message and returns its id.
	CreateMessage(ctx context.Context, name, email, message string) (int64, error)

	// ListMessages returns every message, newest first (ties by id, descending).
	ListMessages(ctx context.Context) ([]*Message, error)

	GetMessage(ctx context.Context, id int64) (*Message, error)
	MarkMessageRead(ctx context.Context, id int64) error
	DeleteMessage(ctx context.Context, id int64) error
	CountUnreadMessages(ctx context.Context) (int, error)

	// Ping reports whether the underlying medium is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

// validateMessage rejects empty or whitespace-only fields, reporting the
// first one in name, email, message order.
func validateMessage(name, email, message string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &ValidationError{Field: "name"}
	case strings.TrimSpace(email) == "":
		return &ValidationError{Field: "email"}
	case strings.TrimSpace(message) == "":
		return &ValidationError{Field: "message"}
	}
	return nil
}

// sortNewestFirst reports whether a sorts before b in list order.
func sortNewestFirst(a, b *Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
