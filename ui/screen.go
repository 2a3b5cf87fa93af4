package ui

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// Screen is the rsvp.Display of the terminal UI. The player writes to it
// from the event loop and the model reads it when rendering.
type Screen struct {
	mu       sync.Mutex
	word     rsvp.Token
	shown    bool
	current  int
	total    int
	subtitle string
}

var _ rsvp.Display = (*Screen)(nil)

// NewScreen returns an empty screen.
func NewScreen() *Screen {
	return &Screen{}
}

// Show implements rsvp.Display.
func (s *Screen) Show(tok rsvp.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.word = tok
	s.shown = true
}

// SetPosition implements rsvp.Display.
func (s *Screen) SetPosition(current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current, s.total = current, total
}

// SetSubtitle implements rsvp.Display.
func (s *Screen) SetSubtitle(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subtitle = text
}

// Word returns the word on screen and whether one has been shown.
func (s *Screen) Word() (rsvp.Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.word, s.shown
}

// Position returns the last position indicator.
func (s *Screen) Position() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.total
}

// Subtitle returns the line shown under the word.
func (s *Screen) Subtitle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtitle
}

// Clear forgets the shown word, e.g. after the session closed.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.word = rsvp.Token{}
	s.shown = false
	s.current, s.total = 0, 0
	s.subtitle = ""
}

// positionText formats the "current / total" indicator.
func positionText(current, total int) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("%s / %s", humanize.Comma(int64(current)), humanize.Comma(int64(total)))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// pivotIndex returns the rune index of the letter the eye should fixate on,
// or -1 when word has no letters. One leading opening and one trailing
// closing quote or bracket are ignored when measuring the word.
func pivotIndex(word string) int {
	runes := []rune(word)
	core := runes
	if len(core) > 0 && strings.ContainsRune(`("'[`, core[0]) {
		core = core[1:]
	}
	if len(core) > 0 && strings.ContainsRune(`)"']`, core[len(core)-1]) {
		core = core[:len(core)-1]
	}

	var idx int
	switch n := len(core); {
	case n <= 1:
		idx = 0
	case n <= 5:
		idx = 1
	case n <= 9:
		idx = 2
	default:
		idx = 3
	}

	count := 0
	for i, r := range runes {
		if !isWordRune(r) {
			continue
		}
		if count == idx {
			return i
		}
		count++
	}
	return -1
}

// splitPivot splits word around its pivot letter.
func splitPivot(word string) (pre, pivot, post string) {
	i := pivotIndex(word)
	if i < 0 {
		return word, "", ""
	}
	runes := []rune(word)
	return string(runes[:i]), string(runes[i]), string(runes[i+1:])
}

// renderWord lays out word on a line of the given width so that its pivot
// letter sits on the centre column.
func renderWord(st styles, word string, width int) string {
	if width <= 0 {
		return ""
	}
	pre, pivot, post := splitPivot(word)
	if pivot == "" || runewidth.StringWidth(word) >= width {
		w := truncate.StringWithTail(word, uint(width), ellipsis) //nolint:gosec
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, st.Word.Render(w),
			lipgloss.WithWhitespaceBackground(st.palette.Background))
	}

	center := width / 2
	left := max(0, center-runewidth.StringWidth(pre))
	right := max(0, width-left-runewidth.StringWidth(word))
	return st.Canvas.Render(strings.Repeat(" ", left)) +
		st.Word.Render(pre) +
		st.Pivot.Render(pivot) +
		st.Word.Render(post) +
		st.Canvas.Render(strings.Repeat(" ", right))
}

// renderGuide draws the fixation mark above or below the word.
func renderGuide(st styles, width int) string {
	if width <= 0 {
		return ""
	}
	center := width / 2
	return st.Canvas.Render(strings.Repeat(" ", center)) +
		st.Subtle.Render("│") +
		st.Canvas.Render(strings.Repeat(" ", max(0, width-center-1)))
}
