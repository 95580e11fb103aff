// ABOUTME: Tests for the contact-inbox CLI helpers
// ABOUTME: Covers generated config, offline message commands, and the color log handler

package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/contact-inbox/internal/config"
	"github.com/2389/contact-inbox/internal/store"
)

func TestRenderConfig_RoundTrips(t *testing.T) {
	t.Setenv("ADMIN", "from-env")

	a := initAnswers{
		HTTPAddr:         "localhost:3000",
		DBPath:           "/var/lib/contact-inbox/messages.db",
		AdminSecret:      "${ADMIN}",
		TailscaleEnabled: true,
		TSHostname:       "inbox",
		TSHTTPS:          true,
		MatrixEnabled:    true,
		MatrixHomeserver: "https://matrix.example.org",
		MatrixUserID:     "@inbox:example.org",
		MatrixToken:      "syt_abc",
		MatrixRoomID:     "!room:example.org",
		LogLevel:         "info",
		LogFormat:        "text",
	}

	cfg, err := config.Parse("config.yaml", []byte(renderConfig(a)))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:3000", cfg.Server.HTTPAddr)
	assert.Equal(t, a.DBPath, cfg.Database.Path)
	assert.Equal(t, "from-env", cfg.Admin.Secret)
	assert.Equal(t, config.DefaultSessionTTL, cfg.Admin.SessionTTL)
	assert.True(t, cfg.Tailscale.HTTPS)
	assert.Equal(t, "!room:example.org", cfg.Notify.Matrix.RoomID)
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer

	reader := bufio.NewReader(strings.NewReader("custom\n\n"))
	assert.Equal(t, "custom", promptTo(&out, reader, "Q", "default"))
	assert.Equal(t, "default", promptTo(&out, reader, "Q", "default"))
	// EOF falls back to the default
	assert.Equal(t, "default", promptTo(&out, reader, "Q", "default"))
	assert.Contains(t, out.String(), "Q [default]: ")
}

func seededStore(t *testing.T) *store.MockStore {
	t.Helper()
	s := store.NewMockStore()
	ctx := context.Background()
	for _, m := range [][3]string{
		{"Alice", "a@x.com", "Hi"},
		{"Bob", "b@x.com", "first line\nsecond line"},
	} {
		_, err := s.CreateMessage(ctx, m[0], m[1], m[2])
		require.NoError(t, err)
	}
	require.NoError(t, s.MarkMessageRead(ctx, 1))
	return s
}

func TestRunMessages(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runMessages(ctx, seededStore(t), nil, &out))
		assert.Contains(t, out.String(), "Alice")
		assert.Contains(t, out.String(), "first line …")
		assert.NotContains(t, out.String(), "second line")
		assert.Contains(t, out.String(), "2 messages, 1 unread")
	})

	t.Run("unread only", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runMessages(ctx, seededStore(t), []string{"--unread"}, &out))
		assert.NotContains(t, out.String(), "Alice")
		assert.Contains(t, out.String(), "● #2")
	})

	t.Run("show", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runMessages(ctx, seededStore(t), []string{"show", "2"}, &out))
		assert.Contains(t, out.String(), "second line")
	})

	t.Run("show missing", func(t *testing.T) {
		err := runMessages(ctx, seededStore(t), []string{"show", "99"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("read and delete", func(t *testing.T) {
		s := seededStore(t)
		var out bytes.Buffer
		require.NoError(t, runMessages(ctx, s, []string{"read", "2"}, &out))
		require.NoError(t, runMessages(ctx, s, []string{"delete", "1"}, &out))

		count, err := s.CountUnreadMessages(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		messages, err := s.ListMessages(ctx)
		require.NoError(t, err)
		assert.Len(t, messages, 1)
	})

	t.Run("bad usage", func(t *testing.T) {
		for _, args := range [][]string{{"--all"}, {"read"}, {"read", "x"}, {"purge", "1"}} {
			assert.Error(t, runMessages(ctx, seededStore(t), args, &bytes.Buffer{}), "%v", args)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		s := seededStore(t)
		s.SetError(errors.New("locked"))
		err := runMessages(ctx, s, nil, &bytes.Buffer{})
		assert.ErrorIs(t, err, store.ErrStorage)
	})
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
	assert.Equal(t, "one …", preview("one\ntwo", 10))
}

func TestColorHandler(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "info", Format: "text"}, &out)

	logger.Debug("hidden")
	logger.With("component", "store").WithGroup("req").Info("saved message", "id", 7)
	logger.Error("boom")

	got := out.String()
	assert.NotContains(t, got, "hidden")
	assert.Contains(t, got, "INF saved message component=store req.id=7")
	assert.Contains(t, got, "ERR boom")
}

func TestNewLogger_JSON(t *testing.T) {
	var out bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &out)
	logger.Debug("hello", "k", "v")
	assert.Contains(t, out.String(), `"msg":"hello"`)
	assert.Contains(t, out.String(), `"k":"v"`)
}
