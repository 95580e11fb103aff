// ABOUTME: Offline admin commands that work on the database directly
// ABOUTME: Lists, shows, marks read, and deletes messages without a running server

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/contact-inbox/internal/config"
	"github.com/2389/contact-inbox/internal/store"
)

func runMessagesCommand(ctx context.Context, args []string) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(config.LoggingConfig{Level: "warn"}, os.Stderr)
	s, err := store.NewSQLiteStore(cfg.Database.Path,
		store.WithDriver(cfg.Database.Driver),
		store.WithObserver(store.LogObserver(logger)),
	)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	return runMessages(ctx, s, args, os.Stdout)
}

// runMessages executes a messages subcommand against s, writing to w.
func runMessages(ctx context.Context, s store.MessageStore, args []string, w io.Writer) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		unreadOnly := false
		for _, arg := range args {
			switch arg {
			case "--unread", "-u":
				unreadOnly = true
			default:
				return fmt.Errorf("unknown flag: %s", arg)
			}
		}
		return listMessages(ctx, s, unreadOnly, w)
	}

	if len(args) != 2 {
		return fmt.Errorf("usage: messages %s ID", args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid message ID: %s", args[1])
	}

	switch args[0] {
	case "show":
		msg, err := s.GetMessage(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("message %d not found", id)
		}
		if err != nil {
			return err
		}
		printMessage(w, msg, true)
		return nil
	case "read":
		if err := s.MarkMessageRead(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(w, "marked %d read\n", id)
		return nil
	case "delete":
		if err := s.DeleteMessage(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(w, "deleted %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown messages command: %s", args[0])
	}
}

func listMessages(ctx context.Context, s store.MessageStore, unreadOnly bool, w io.Writer) error {
	messages, err := s.ListMessages(ctx)
	if err != nil {
		return err
	}

	unread := 0
	shown := 0
	for _, msg := range messages {
		if !msg.Read {
			unread++
		}
		if unreadOnly && msg.Read {
			continue
		}
		printMessage(w, msg, false)
		shown++
	}

	if shown == 0 {
		fmt.Fprintln(w, "no messages")
	}
	fmt.Fprintf(w, "\n%d messages, %d unread\n", len(messages), unread)
	return nil
}

func printMessage(w io.Writer, msg *store.Message, full bool) {
	marker := color.HiBlackString("  ")
	if !msg.Read {
		marker = color.New(color.FgYellow, color.Bold).Sprint("● ")
	}

	fmt.Fprintf(w, "%s%s %s %s %s\n",
		marker,
		color.CyanString("#%d", msg.ID),
		msg.CreatedAt.Local().Format("2006-01-02 15:04"),
		msg.Name,
		color.HiBlackString("<%s>", msg.Email),
	)

	body := msg.Message
	if !full {
		body = preview(body, 72)
	}
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// preview returns the first line of s, cut to at most n runes.
func preview(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " …"
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
