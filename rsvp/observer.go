package rsvp

import "time"

// Observer receives playback events. Implementations must not block; they
// are called on the event loop.
type Observer interface {
	SessionOpened(id string, tokens int)
	WordShown(tok Token, delay time.Duration)
	TokensAppended(n int)
	ModeChanged(from, to Mode)
	Submitted(err error)
}

// NopObserver ignores every event. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) SessionOpened(string, int) {}
func (NopObserver) WordShown(Token, time.Duration) {}
func (NopObserver) TokensAppended(int) {}
func (NopObserver) ModeChanged(Mode, Mode) {}
func (NopObserver) Submitted(error) {}
