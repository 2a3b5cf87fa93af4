// Package rsvp implements the word-at-a-time reading engine: tokenizing
// growing text, pacing each word, and the playback state machine that shows
// them.
package rsvp

// Boundary classifies the punctuation that ends a token.
type Boundary int

const (
	// BoundaryNone is an ordinary word.
	BoundaryNone Boundary = iota
	// BoundaryComma is a short phrase break (, ; :).
	BoundaryComma
	// BoundarySentenceEnd ends a sentence (. ! ?).
	BoundarySentenceEnd
)

// String returns the string representation of the boundary.
func (b Boundary) String() string {
	switch b {
	case BoundaryNone:
		return "none"
	case BoundaryComma:
		return "comma"
	case BoundarySentenceEnd:
		return "sentence"
	default:
		return "unknown"
	}
}

// Token is one displayable word and the boundary that follows it.
type Token struct {
	Text     string
	Boundary Boundary
}

// Meta describes where the tokens of a session came from.
type Meta struct {
	Title string // shown as the subtitle under the word
}

// merge returns m with the non-empty fields of other applied.
func (m Meta) merge(other Meta) Meta {
	if other.Title != "" {
		m.Title = other.Title
	}
	return m
}
