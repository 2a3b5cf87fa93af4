package stream

import (
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/rsvp"
)

// Event is a notification from the conversation host.
type Event int

const (
	// EventMessageReceived means a new message was created, possibly still
	// empty.
	EventMessageReceived Event = iota
	// EventMessageRendered means a message finished rendering.
	EventMessageRendered
	// EventStreamToken means a streaming message grew.
	EventStreamToken
	// EventConversationChanged means the whole source set was replaced.
	EventConversationChanged
)

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case EventMessageReceived:
		return "message-received"
	case EventMessageRendered:
		return "message-rendered"
	case EventStreamToken:
		return "stream-token"
	case EventConversationChanged:
		return "conversation-changed"
	default:
		return "unknown"
	}
}

// Selector decides which source the adapter follows: the newest one not
// written by the reader. All methods must be called on the loop.
type Selector struct {
	loop     rsvp.Loop
	sources  rsvp.SourceSet
	player   *rsvp.Player
	adapter  *Adapter
	settings rsvp.SettingsStore
	throttle *Throttle

	// ComposeOnFinish opens compose mode when a followed source runs out of
	// words and no session was open before it.
	ComposeOnFinish bool

	pinned bool
}

// NewSelector creates a selector over sources.
func NewSelector(loop rsvp.Loop, sources rsvp.SourceSet, player *rsvp.Player, adapter *Adapter, settings rsvp.SettingsStore) *Selector {
	s := &Selector{
		loop:     loop,
		sources:  sources,
		player:   player,
		adapter:  adapter,
		settings: settings,
	}
	s.throttle = NewThrottle(loop, settings.Get().StreamThrottle, s.check)
	player.OnClose(func() { s.pinned = false })
	return s
}

// Notify reacts to a host event.
func (s *Selector) Notify(ev Event) {
	log.Debug("selector event", "event", ev)
	switch ev {
	case EventMessageReceived:
		s.leaveCompose()
		s.Check(true)
	case EventMessageRendered:
		s.Check(true)
	case EventStreamToken:
		s.leaveCompose()
		s.Check(false)
	case EventConversationChanged:
		s.Reset()
	}
}

// Check looks for a newer source. Unforced checks run at most once per
// throttle window.
func (s *Selector) Check(force bool) {
	if force {
		s.throttle.Stop()
		s.check()
		return
	}
	s.throttle.SetWindow(s.settings.Get().StreamThrottle)
	s.throttle.Trigger()
}

// Pin marks the current choice as made by the reader. A pin lets the
// opening greeting be read.
func (s *Selector) Pin() {
	s.pinned = true
}

// Unpin clears the manual pin.
func (s *Selector) Unpin() {
	s.pinned = false
}

// Pinned reports whether the reader pinned a source.
func (s *Selector) Pinned() bool {
	return s.pinned
}

// ReadOne plays src from the start at the reader's request. Compose mode
// follows it only when src is the last message of the conversation.
func (s *Selector) ReadOne(src rsvp.TextSource) {
	if src == nil {
		return
	}
	s.pinned = true

	tokens := rsvp.Tokenize(src.CurrentText())
	composeOnFinish := s.isLast(src)
	log.Debug("reading one source", "source", src.ID(), "tokens", len(tokens), "compose", composeOnFinish)

	if !s.player.IsOpen() {
		s.player.Open(tokens, src.Meta(), composeOnFinish)
		return
	}
	s.player.PlayOne(tokens, src.Meta(), composeOnFinish)
}

// Reset forgets the conversation: the session is closed, the adapter unbound
// and the pin cleared.
func (s *Selector) Reset() {
	s.throttle.Stop()
	if s.player.IsOpen() {
		s.player.Close()
	}
	s.adapter.Unbind()
	s.pinned = false
}

// Newest returns the newest source not written by the reader, or nil.
func (s *Selector) Newest() rsvp.TextSource {
	return NewestEligible(s.sources.Sources())
}

func (s *Selector) check() {
	cfg := s.settings.Get()
	if !cfg.Enabled {
		return
	}

	list := s.sources.Sources()
	newest := NewestEligible(list)
	if newest == nil {
		return
	}
	if !s.pinned && cfg.SuppressGreeting && IsGreeting(list) {
		log.Debug("ignoring opening greeting", "source", newest.ID())
		return
	}

	if b := s.adapter.Binding(); b == nil || b.SourceID != newest.ID() {
		s.adapter.Bind(newest, s.ComposeOnFinish)
		s.leaveCompose()
	}
}

func (s *Selector) leaveCompose() {
	if s.player.Mode() == rsvp.ModeComposing {
		s.player.LeaveCompose()
	}
}

func (s *Selector) isLast(src rsvp.TextSource) bool {
	list := s.sources.Sources()
	return len(list) > 0 && list[len(list)-1].ID() == src.ID()
}

// NewestEligible returns the last source in list not authored by the local
// user.
func NewestEligible(list []rsvp.TextSource) rsvp.TextSource {
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].AuthorIsLocalUser() {
			return list[i]
		}
	}
	return nil
}

// IsGreeting reports whether list looks like an opening greeting: exactly one
// source from someone else and none from the reader.
func IsGreeting(list []rsvp.TextSource) bool {
	others, users := 0, 0
	for _, src := range list {
		if src.AuthorIsLocalUser() {
			users++
		} else {
			others++
		}
	}
	return others == 1 && users == 0
}
