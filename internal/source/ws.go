package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/internal/textutil"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
	"github.com/gorilla/websocket"
)

// Frame types.
const (
	FrameMessage = "message"
	FrameReset   = "reset"
)

const defaultWriteTimeout = 5 * time.Second

// Frame is one websocket payload. A message frame with Text replaces the
// message text; one with Delta extends it. Done marks the message complete.
type Frame struct {
	Type   string `json:"type,omitempty"`
	ID     string `json:"id,omitempty"`
	Author string `json:"author,omitempty"`
	Name   string `json:"name,omitempty"`
	Delta  string `json:"delta,omitempty"`
	Text   string `json:"text,omitempty"`
	Done   bool   `json:"done,omitempty"`
}

// WSConversation is a conversation streamed over a websocket.
type WSConversation struct {
	*Conversation
	url    string
	dialer websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewWSConversation creates a conversation fed from url. Call Run to connect.
func NewWSConversation(url string) *WSConversation {
	return &WSConversation{
		Conversation: NewConversation(),
		url:          url,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 5 * time.Second,
		},
	}
}

// URL returns the feed address.
func (w *WSConversation) URL() string {
	return w.url
}

// Run connects and applies frames until the connection closes or ctx is
// done.
func (w *WSConversation) Run(ctx context.Context) error {
	conn, resp, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s failed (%s): %w", w.url, resp.Status, err)
		}
		return fmt.Errorf("dial %s failed: %w", w.url, err)
	}
	log.Info("connected", "url", w.url)

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.conn = nil
		w.mu.Unlock()
		_ = conn.Close()
	}()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("reading %s: %w", w.url, err)
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Debug("bad frame", "error", err)
			continue
		}
		if err := w.Apply(frame); err != nil {
			log.Debug("frame ignored", "error", err)
		}
	}
}

// Apply updates the conversation from one frame and emits the events it
// causes.
func (w *WSConversation) Apply(f Frame) error {
	switch f.Type {
	case "", FrameMessage:
	case FrameReset:
		w.Clear()
		w.Emit(stream.EventConversationChanged)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
	}
	if f.ID == "" {
		return ErrMissingID
	}

	user := textutil.FrontMatter{Author: f.Author}.IsUser()
	meta := rsvp.Meta{Title: f.Name}
	if meta.Title == "" {
		meta.Title = f.Author
	}
	msg, created := w.Add(f.ID, user, meta)

	changed := false
	switch {
	case f.Text != "":
		changed = msg.SetText(f.Text)
	case f.Delta != "":
		changed = msg.Append(f.Delta)
	}
	if f.Done {
		msg.Finish()
	}

	switch {
	case created && user:
		w.Emit(stream.EventMessageRendered)
		return nil
	case created:
		w.Emit(stream.EventMessageReceived)
	case changed && !user:
		w.Emit(stream.EventStreamToken)
	}
	if f.Done && !user {
		w.Emit(stream.EventMessageRendered)
	}
	return nil
}

// Send writes f to the feed.
func (w *WSConversation) Send(ctx context.Context, f Frame) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteTimeout)
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	_ = conn.SetWriteDeadline(deadline)
	defer conn.SetWriteDeadline(time.Time{}) //nolint:errcheck
	if err := conn.WriteJSON(f); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return ErrNotConnected
		}
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
