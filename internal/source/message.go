// Package source provides text sources for the reader: growing files, piped
// input, conversation directories and websocket feeds.
package source

import (
	"sync"

	"github.com/dgnsrekt/wordrunner/rsvp"
)

// Message is a TextSource whose text is written by its owner. It is safe for
// concurrent use; subscribers are called on the writer's goroutine.
type Message struct {
	id   string
	user bool

	mu   sync.RWMutex
	raw  string
	text string
	meta rsvp.Meta
	done bool
	subs map[uint64]func()
	next uint64
}

var (
	_ rsvp.TextSource = (*Message)(nil)
	_ rsvp.Finisher   = (*Message)(nil)
)

// NewMessage creates an empty message.
func NewMessage(id string, user bool, meta rsvp.Meta) *Message {
	return &Message{
		id:   id,
		user: user,
		meta: meta,
		subs: make(map[uint64]func()),
	}
}

// ID returns the message identifier.
func (m *Message) ID() string { return m.id }

// AuthorIsLocalUser reports whether the reader wrote the message.
func (m *Message) AuthorIsLocalUser() bool { return m.user }

// CurrentText returns the normalized text.
func (m *Message) CurrentText() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text
}

// Meta returns the display metadata.
func (m *Message) Meta() rsvp.Meta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

// SetMeta replaces the display metadata.
func (m *Message) SetMeta(meta rsvp.Meta) {
	m.mu.Lock()
	m.meta = meta
	m.mu.Unlock()
}

// Subscribe registers fn for text changes.
func (m *Message) Subscribe(fn func()) rsvp.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := m.next
	m.subs[id] = fn
	return rsvp.SubscriptionFunc(func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	})
}

// SetText replaces the text and notifies subscribers when it changed.
func (m *Message) SetText(raw string) bool {
	m.mu.Lock()
	if raw == m.raw {
		m.mu.Unlock()
		return false
	}
	m.raw = raw
	m.text = rsvp.Normalize(raw)
	m.mu.Unlock()

	m.notify()
	return true
}

// Append extends the text by delta.
func (m *Message) Append(delta string) bool {
	if delta == "" {
		return false
	}
	m.mu.RLock()
	raw := m.raw + delta
	m.mu.RUnlock()
	return m.SetText(raw)
}

// Finish marks the text complete so its last word is no longer withheld.
func (m *Message) Finish() {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true
	m.mu.Unlock()

	m.notify()
}

// Finished reports whether the text is complete.
func (m *Message) Finished() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.done
}

func (m *Message) notify() {
	m.mu.RLock()
	subs := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}
