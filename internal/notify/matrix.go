// ABOUTME: Matrix notifications for newly saved contact messages
// ABOUTME: Store observer that renders submissions with goldmark and posts them via mautrix

package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/2389/contact-inbox/internal/config"
	"github.com/2389/contact-inbox/internal/store"
)

// DefaultSendTimeout bounds a single notification delivery.
const DefaultSendTimeout = 10 * time.Second

// Sender posts a room event. *mautrix.Client satisfies it.
type Sender interface {
	SendMessageEvent(ctx context.Context, roomID id.RoomID, eventType event.Type, contentJSON interface{}, extra ...mautrix.ReqSendEvent) (*mautrix.RespSendEvent, error)
}

// MatrixNotifier posts a formatted message to a Matrix room whenever a
// contact message is saved. Delivery is asynchronous and never affects the
// write that triggered it.
type MatrixNotifier struct {
	sender  Sender
	roomID  id.RoomID
	md      goldmark.Markdown
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewMatrixNotifier creates a notifier backed by a mautrix client.
func NewMatrixNotifier(cfg config.MatrixConfig, logger *slog.Logger) (*MatrixNotifier, error) {
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}
	return newMatrixNotifier(client, id.RoomID(cfg.RoomID), logger), nil
}

func newMatrixNotifier(sender Sender, roomID id.RoomID, logger *slog.Logger) *MatrixNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatrixNotifier{
		sender:  sender,
		roomID:  roomID,
		md:      goldmark.New(),
		logger:  logger.With("component", "matrix-notify"),
		timeout: DefaultSendTimeout,
	}
}

// Observe implements store.Observer. Only successful creates are sent.
func (n *MatrixNotifier) Observe(ctx context.Context, ev store.Event) {
	if ev.Op != store.OpCreate || ev.Err != nil || ev.Message == nil {
		return
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	msg := *ev.Message
	// The request that saved the message may finish before delivery does.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	go func() {
		defer n.wg.Done()
		defer cancel()
		if err := n.Send(sendCtx, &msg); err != nil {
			n.logger.Warn("failed to send matrix notification", "id", msg.ID, "error", err)
			return
		}
		n.logger.Debug("sent matrix notification", "id", msg.ID, "room", n.roomID)
	}()
}

// Send delivers one notification synchronously.
func (n *MatrixNotifier) Send(ctx context.Context, msg *store.Message) error {
	plain, html, err := n.render(msg)
	if err != nil {
		return err
	}

	content := &event.MessageEventContent{
		MsgType:       event.MsgText,
		Body:          plain,
		Format:        event.FormatHTML,
		FormattedBody: html,
	}
	if _, err := n.sender.SendMessageEvent(ctx, n.roomID, event.EventMessage, content); err != nil {
		return fmt.Errorf("sending to %s: %w", n.roomID, err)
	}
	return nil
}

// Close stops accepting notifications and waits for in-flight sends.
func (n *MatrixNotifier) Close() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	n.wg.Wait()
}

// render returns the plain-text and HTML bodies for msg.
func (n *MatrixNotifier) render(msg *store.Message) (string, string, error) {
	md := Markdown(msg)

	var htmlBuf bytes.Buffer
	if err := n.md.Convert([]byte(md), &htmlBuf); err != nil {
		return "", "", fmt.Errorf("rendering markdown: %w", err)
	}

	plain := fmt.Sprintf("New message from %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message)
	return plain, strings.TrimSpace(htmlBuf.String()), nil
}

// Markdown formats msg as a markdown notification. The sender's name and
// email are escaped; the body is quoted so it cannot restyle the header.
func Markdown(msg *store.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**New message from %s** (%s)\n\n", escapeMarkdown(msg.Name), escapeMarkdown(msg.Email))
	for _, line := range strings.Split(strings.TrimRight(msg.Message, "\n"), "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n*#%d, received %s*\n", msg.ID, msg.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "~", `\~`, "|", `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
