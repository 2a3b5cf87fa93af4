package rsvp

import "errors"

// Common errors for the reader.
var (
	// Session errors
	ErrNoSession    = errors.New("no reading session is open")
	ErrNotComposing = errors.New("reader is not composing")

	// Compose errors
	ErrEmptySubmit    = errors.New("nothing to submit")
	ErrSubmitInFlight = errors.New("a submit is already in flight")

	// Collaborator errors
	ErrSinkUnavailable = errors.New("submit sink is unavailable")
	ErrSourceClosed    = errors.New("text source is closed")
)

// IsRecoverableError checks if an error leaves the reader usable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrSourceClosed)
}
