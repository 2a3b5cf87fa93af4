package stream

import (
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/rsvp"
)

// Binding records which source feeds the session and how many of its tokens
// have been appended so far.
type Binding struct {
	SourceID            string
	LastKnownTokenCount int
}

// Observer receives adapter events.
type Observer interface {
	Rebound(sourceID string, tokens int)
	Grew(sourceID string, tokens int)
}

// Adapter keeps the player fed from one growing source. Every growth
// notification re-tokenizes the whole text and appends only the words beyond
// the binding baseline, so words already shown are never replaced.
type Adapter struct {
	loop     rsvp.Loop
	player   *rsvp.Player
	settings rsvp.SettingsStore
	logger   *log.Logger

	source   rsvp.TextSource
	binding  *Binding
	sub      rsvp.Subscription
	gen      uint64
	throttle *Throttle

	observers []Observer
}

// NewAdapter creates an unbound adapter.
func NewAdapter(loop rsvp.Loop, player *rsvp.Player, settings rsvp.SettingsStore) *Adapter {
	a := &Adapter{
		loop:     loop,
		player:   player,
		settings: settings,
		logger:   log.WithPrefix("stream"),
	}
	a.throttle = NewThrottle(loop, settings.Get().StreamThrottle, a.reconcile)
	return a
}

// SetLogger replaces the adapter logger.
func (a *Adapter) SetLogger(l *log.Logger) {
	a.logger = l
}

// AddObserver registers o for adapter events.
func (a *Adapter) AddObserver(o Observer) {
	a.observers = append(a.observers, o)
}

// Binding returns a copy of the active binding, or nil.
func (a *Adapter) Binding() *Binding {
	if a.binding == nil {
		return nil
	}
	b := *a.binding
	return &b
}

// Source returns the bound source, or nil.
func (a *Adapter) Source() rsvp.TextSource {
	return a.source
}

// Bind switches the adapter to src. Its current words are sent to the player,
// opening a session when none exists, and later growth is followed.
func (a *Adapter) Bind(src rsvp.TextSource, composeOnFinish bool) {
	a.Unbind()

	// Subscribe before reading the text: growth in between must trigger a
	// reconcile.
	gen := a.gen
	a.sub = src.Subscribe(func() {
		a.loop.Post(func() {
			if gen != a.gen {
				return
			}
			a.throttle.SetWindow(a.settings.Get().StreamThrottle)
			a.throttle.Trigger()
		})
	})

	tokens := a.tokenize(src)
	meta := src.Meta()

	if a.player.IsOpen() {
		a.player.SetMeta(meta)
		a.player.Append(tokens)
	} else {
		a.player.Open(tokens, meta, composeOnFinish)
	}

	a.source = src
	a.binding = &Binding{SourceID: src.ID(), LastKnownTokenCount: len(tokens)}
	a.logger.Debug("bound source", "source", src.ID(), "tokens", len(tokens))
	for _, o := range a.observers {
		o.Rebound(src.ID(), len(tokens))
	}
}

// Unbind stops following the current source. Words already appended stay in
// the session.
func (a *Adapter) Unbind() {
	a.gen++
	a.throttle.Stop()
	if a.sub != nil {
		a.sub.Cancel()
		a.sub = nil
	}
	if a.binding != nil {
		a.logger.Debug("unbound source", "source", a.binding.SourceID)
	}
	a.source = nil
	a.binding = nil
}

// Flush reconciles the bound source immediately instead of waiting for the
// throttle window.
func (a *Adapter) Flush() {
	a.throttle.Stop()
	a.reconcile()
}

func (a *Adapter) reconcile() {
	if a.binding == nil || a.source == nil {
		return
	}

	tokens := a.tokenize(a.source)
	if len(tokens) <= a.binding.LastKnownTokenCount {
		return
	}

	delta := tokens[a.binding.LastKnownTokenCount:]
	a.binding.LastKnownTokenCount = len(tokens)
	a.player.Append(delta)
	a.logger.Debug("source grew", "source", a.binding.SourceID, "appended", len(delta))
	for _, o := range a.observers {
		o.Grew(a.binding.SourceID, len(delta))
	}
}

func (a *Adapter) tokenize(src rsvp.TextSource) []rsvp.Token {
	stable := a.settings.Get().StableTokenize
	if f, ok := src.(rsvp.Finisher); ok && f.Finished() {
		stable = false
	}
	return rsvp.TokenizeWith(src.CurrentText(), stable)
}
