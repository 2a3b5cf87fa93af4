package rsvp

import "strings"

// Composer holds the reply the reader is typing while in compose mode.
type Composer struct {
	draft   string
	sending bool
}

// Draft returns the text waiting to be sent. After a failed submit it holds
// the text that could not be delivered.
func (c *Composer) Draft() string {
	return c.draft
}

// SetDraft replaces the draft.
func (c *Composer) SetDraft(text string) {
	c.draft = text
}

// Sending reports whether a submit is in flight.
func (c *Composer) Sending() bool {
	return c.sending
}

func (c *Composer) reset() {
	c.draft = ""
	c.sending = false
}

// cleanSubmission strips zero-width spaces and surrounding whitespace.
func cleanSubmission(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\u200b", ""))
}
