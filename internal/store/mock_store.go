// ABOUTME: Mock MessageStore implementation for testing
// ABOUTME: Allows handler tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory MessageStore for testing. It follows the same
// validation, ordering, and no-op rules as SQLiteStore.
type MockStore struct {
	mu       sync.RWMutex
	messages map[int64]*Message
	lastID   int64
	now      func() time.Time

	// err, when set, is returned from every operation as a StorageError.
	err error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		messages: make(map[int64]*Message),
		now:      time.Now,
	}
}

// SetError makes every subsequent operation fail with a StorageError
// wrapping err. Pass nil to clear.
func (m *MockStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockStore) failure(op string) error {
	if m.err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: m.err}
}

// CreateMessage stores a new unread message.
func (m *MockStore) CreateMessage(ctx context.Context, name, email, message string) (int64, error) {
	if err := validateMessage(name, email, message); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("create"); err != nil {
		return 0, err
	}

	m.lastID++
	m.messages[m.lastID] = &Message{
		ID:        m.lastID,
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: m.now().UTC(),
	}
	return m.lastID, nil
}

// ListMessages returns copies of all messages, newest first.
func (m *MockStore) ListMessages(ctx context.Context) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("list"); err != nil {
		return nil, err
	}

	result := make([]*Message, 0, len(m.messages))
	for _, msg := range m.messages {
		cp := *msg
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return sortNewestFirst(result[i], result[j])
	})
	return result, nil
}

// GetMessage retrieves a copy of a message by id.
func (m *MockStore) GetMessage(ctx context.Context, id int64) (*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("get"); err != nil {
		return nil, err
	}

	msg, ok := m.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

// MarkMessageRead sets Read on a message. Unknown ids are a no-op.
func (m *MockStore) MarkMessageRead(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure(string(OpMarkRead)); err != nil {
		return err
	}

	if msg, ok := m.messages[id]; ok {
		msg.Read = true
	}
	return nil
}

// DeleteMessage removes a message. Unknown ids are a no-op; ids are never reused.
func (m *MockStore) DeleteMessage(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure(string(OpDelete)); err != nil {
		return err
	}

	delete(m.messages, id)
	return nil
}

// CountUnreadMessages counts messages with Read unset.
func (m *MockStore) CountUnreadMessages(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("count_unread"); err != nil {
		return 0, err
	}

	count := 0
	for _, msg := range m.messages {
		if !msg.Read {
			count++
		}
	}
	return count, nil
}

// Ping returns the injected error, if any.
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failure("ping")
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}

// Ensure both implementations satisfy MessageStore.
var (
	_ MessageStore = (*SQLiteStore)(nil)
	_ MessageStore = (*MockStore)(nil)
)
