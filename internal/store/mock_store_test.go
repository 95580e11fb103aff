// ABOUTME: Unit tests for MockStore to ensure behavior matches SQLiteStore
// ABOUTME: Focuses on validation, ordering, no-op semantics, and injected failures

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_Scenario(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	id, err := store.CreateMessage(ctx, "Alice", "a@x.com", "Hi")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.NoError(t, store.MarkMessageRead(ctx, id))
	require.NoError(t, store.MarkMessageRead(ctx, id))

	messages, err := store.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].Read)

	require.NoError(t, store.DeleteMessage(ctx, id))
	require.NoError(t, store.DeleteMessage(ctx, id))

	messages, err = store.ListMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// ids keep climbing after a delete
	next, err := store.CreateMessage(ctx, "Bob", "b@x.com", "Yo")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestMockStore_Validation(t *testing.T) {
	store := NewMockStore()

	_, err := store.CreateMessage(context.Background(), "Alice", "", "Hi")
	assert.ErrorIs(t, err, ErrValidation)

	count, err := store.CountUnreadMessages(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMockStore_OrderingMatchesSQLite(t *testing.T) {
	store := NewMockStore()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.CreateMessage(ctx, "N", "n@x.com", "body")
		require.NoError(t, err)
	}

	messages, err := store.ListMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, messageIDs(messages))
}

func TestMockStore_ReturnsCopies(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	id, err := store.CreateMessage(ctx, "Alice", "a@x.com", "Hi")
	require.NoError(t, err)

	got, err := store.GetMessage(ctx, id)
	require.NoError(t, err)
	got.Read = true

	again, err := store.GetMessage(ctx, id)
	require.NoError(t, err)
	assert.False(t, again.Read, "mutating a returned message must not change the store")
}

func TestMockStore_SetError(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	boom := errors.New("disk on fire")

	store.SetError(boom)

	_, err := store.ListMessages(ctx)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Ping(ctx), ErrStorage)

	store.SetError(nil)
	_, err = store.ListMessages(ctx)
	assert.NoError(t, err)
}
