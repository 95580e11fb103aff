// ABOUTME: Lifecycle hook for the message store (init, write success, write failure)
// ABOUTME: Keeps logging and notifications out of the store's control flow

package store

import (
	"context"
	"log/slog"
	"time"
)

// Op identifies the store lifecycle point an Event describes.
type Op string

const (
	OpInit     Op = "init"
	OpCreate   Op = "create"
	OpMarkRead Op = "mark_read"
	OpDelete   Op = "delete"
)

// Event is delivered to an Observer after each lifecycle point.
type Event struct {
	Op Op

	// Path is the database location; set only for OpInit.
	Path string

	MessageID int64

	// Message is the stored record; set only for a successful OpCreate.
	Message *Message

	// Found is false when mark-read or delete matched no row.
	Found bool

	Err      error
	Duration time.Duration
}

// Observer receives store lifecycle events. Observe is called synchronously
// after the operation completes, outside of any store lock; implementations
// that do slow work must hand it off.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) {
	f(ctx, ev)
}

type multiObserver []Observer

func (m multiObserver) Observe(ctx context.Context, ev Event) {
	for _, o := range m {
		o.Observe(ctx, ev)
	}
}

// Observers fans an event out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	var m multiObserver
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

// LogObserver returns an Observer that writes structured logs for store events.
func LogObserver(logger *slog.Logger) Observer {
	return &logObserver{logger: logger}
}

type logObserver struct {
	logger *slog.Logger
}

func (l *logObserver) Observe(ctx context.Context, ev Event) {
	if ev.Err != nil {
		if ev.Op == OpInit {
			l.logger.ErrorContext(ctx, "message store initialization failed", "path", ev.Path, "error", ev.Err)
			return
		}
		l.logger.ErrorContext(ctx, "message store write failed",
			"op", string(ev.Op),
			"id", ev.MessageID,
			"duration", ev.Duration,
			"error", ev.Err,
		)
		return
	}

	switch ev.Op {
	case OpInit:
		l.logger.InfoContext(ctx, "message store initialized", "path", ev.Path)
	case OpCreate:
		l.logger.InfoContext(ctx, "saved message", "id", ev.MessageID, "duration", ev.Duration)
	default:
		if !ev.Found {
			l.logger.DebugContext(ctx, "no message matched", "op", string(ev.Op), "id", ev.MessageID)
			return
		}
		l.logger.InfoContext(ctx, "updated message", "op", string(ev.Op), "id", ev.MessageID)
	}
}
