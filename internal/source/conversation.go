package source

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
)

// Conversation is an ordered set of messages, oldest first, that reports
// host events to a listener.
type Conversation struct {
	mu       sync.RWMutex
	messages []*Message
	byID     map[string]*Message
	listener func(stream.Event)
}

var _ rsvp.SourceSet = (*Conversation)(nil)

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{byID: make(map[string]*Message)}
}

// OnEvent sets the function receiving conversation events. It is called on
// the goroutine that changed the conversation.
func (c *Conversation) OnEvent(fn func(stream.Event)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// Sources returns the messages as text sources.
func (c *Conversation) Sources() []rsvp.TextSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]rsvp.TextSource, len(c.messages))
	for i, m := range c.messages {
		list[i] = m
	}
	return list
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Get returns the message with id, or nil.
func (c *Conversation) Get(id string) *Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// Add appends a message. It returns the existing message when id is taken.
func (c *Conversation) Add(id string, user bool, meta rsvp.Meta) (*Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.byID[id]; ok {
		return m, false
	}
	m := NewMessage(id, user, meta)
	c.messages = append(c.messages, m)
	c.byID[id] = m
	return m, true
}

// Clear drops every message.
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.byID = make(map[string]*Message)
	c.mu.Unlock()
}

// Emit sends ev to the listener.
func (c *Conversation) Emit(ev stream.Event) {
	c.mu.RLock()
	fn := c.listener
	c.mu.RUnlock()

	log.Debug("conversation event", "event", ev)
	if fn != nil {
		fn(ev)
	}
}
