package rsvp

import (
	"context"
	"time"
)

// Display is the surface that renders the current word. Calls are made from
// the event loop and must not block.
type Display interface {
	// Show renders tok as the current word.
	Show(tok Token)

	// SetPosition updates the "current / total" indicator.
	SetPosition(current, total int)

	// SetSubtitle sets the line shown under the word.
	SetSubtitle(text string)
}

// Subscription is a cancellable handle returned by TextSource.Subscribe.
type Subscription interface {
	// Cancel stops further notifications. It is safe to call more than once.
	Cancel()
}

// SubscriptionFunc adapts a plain function to the Subscription interface.
type SubscriptionFunc func()

// Cancel calls f.
func (f SubscriptionFunc) Cancel() {
	if f != nil {
		f()
	}
}

// TextSource is one external, possibly growing, body of text such as a chat
// message that is still being generated.
type TextSource interface {
	// ID identifies the source within its SourceSet.
	ID() string

	// CurrentText returns the full text as of now, already normalized.
	CurrentText() string

	// AuthorIsLocalUser reports whether the reader wrote this text.
	AuthorIsLocalUser() bool

	// Meta returns display metadata for the source.
	Meta() Meta

	// Subscribe registers fn to be called whenever the text changes. fn may
	// be invoked from any goroutine; callers marshal onto their Loop.
	Subscribe(fn func()) Subscription
}

// Finisher is implemented by sources that know when their text is complete.
// A finished source has no partial trailing word to withhold.
type Finisher interface {
	Finished() bool
}

// SourceSet is an ordered collection of sources, oldest first.
type SourceSet interface {
	Sources() []TextSource
}

// SettingsStore provides the live reader configuration.
type SettingsStore interface {
	// Get returns the current configuration.
	Get() Config

	// Set applies patch, clamps and stores the result.
	Set(patch func(*Config)) Config
}

// SubmitSink receives text composed by the reader.
type SubmitSink interface {
	// Submit delivers text. An error leaves the composed text with the
	// reader for another attempt.
	Submit(ctx context.Context, text string) error
}

// Loop serializes all work that touches playback state onto one goroutine.
type Loop interface {
	// After runs fn on the loop once d has elapsed. The returned function
	// cancels the task if it has not started yet.
	After(d time.Duration, fn func()) (cancel func())

	// Post runs fn on the loop as soon as possible. It is safe to call from
	// any goroutine.
	Post(fn func())

	// Now returns the loop's notion of the current time.
	Now() time.Time
}
