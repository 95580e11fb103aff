// ABOUTME: Tests for store observers
// ABOUTME: Verifies fan-out order and the structured log output of LogObserver

package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObservers_FanOutSkipsNil(t *testing.T) {
	var order []string
	first := ObserverFunc(func(ctx context.Context, ev Event) { order = append(order, "first") })
	second := ObserverFunc(func(ctx context.Context, ev Event) { order = append(order, "second") })

	Observers(first, nil, second).Observe(context.Background(), Event{Op: OpCreate})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := LogObserver(logger)
	ctx := context.Background()

	obs.Observe(ctx, Event{Op: OpInit, Path: "/tmp/messages.db"})
	obs.Observe(ctx, Event{Op: OpCreate, MessageID: 7})
	obs.Observe(ctx, Event{Op: OpDelete, MessageID: 8, Found: false})
	obs.Observe(ctx, Event{Op: OpMarkRead, MessageID: 9, Err: &StorageError{Op: "mark_read", Err: errors.New("disk I/O error")}})

	out := buf.String()
	assert.Contains(t, out, `msg="message store initialized" path=/tmp/messages.db`)
	assert.Contains(t, out, `msg="saved message" id=7`)
	assert.Contains(t, out, `msg="no message matched" op=delete id=8`)
	assert.Contains(t, out, `level=ERROR msg="message store write failed" op=mark_read id=9`)
	assert.Contains(t, out, "disk I/O error")
}
