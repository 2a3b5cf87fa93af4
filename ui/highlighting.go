package ui

import (
	"strings"

	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/utils"
)

// sentenceBounds returns the half-open token range of the sentence that
// contains cursor. Sentences end at tokens with a sentence-end boundary.
func sentenceBounds(tokens []rsvp.Token, cursor int) (start, end int) {
	if cursor < 0 || cursor >= len(tokens) {
		return 0, 0
	}
	start = cursor
	for start > 0 && tokens[start-1].Boundary != rsvp.BoundarySentenceEnd {
		start--
	}
	end = cursor
	for end < len(tokens)-1 && tokens[end].Boundary != rsvp.BoundarySentenceEnd {
		end++
	}
	return start, end + 1
}

// contextMarkdown joins tokens back into escaped markdown. The sentence being
// read is set in italics and the word at cursor in bold.
func contextMarkdown(tokens []rsvp.Token, cursor int) string {
	start, end := sentenceBounds(tokens, cursor)

	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		w := utils.EscapeMarkdown(tok.Text)
		switch {
		case i == cursor:
			w = "**" + w + "**"
		case i >= start && i < end:
			w = "_" + w + "_"
		}
		b.WriteString(w)
	}
	return b.String()
}
