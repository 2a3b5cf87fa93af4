package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/mattn/go-runewidth"
)

// TestPivotIndex tests choosing the fixation letter.
func TestPivotIndex(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"a", 0},
		{"I", 0},
		{"word", 1},
		{"hello", 1},
		{"reading", 2},
		{"comprehension", 3},
		{`"Hello"`, 2},
		{"(a)", 1},
		{"héllo", 1},
		{"it's", 1},
		{"1,200", 2},
		{"...", -1},
		{"—", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := pivotIndex(tt.word); got != tt.want {
				t.Errorf("pivotIndex(%q) = %d, want %d", tt.word, got, tt.want)
			}
		})
	}
}

// TestSplitPivot tests splitting a word around its pivot.
func TestSplitPivot(t *testing.T) {
	pre, pivot, post := splitPivot("reading")
	if pre != "re" || pivot != "a" || post != "ding" {
		t.Errorf("splitPivot(reading) = %q %q %q", pre, pivot, post)
	}

	pre, pivot, post = splitPivot("—")
	if pre != "—" || pivot != "" || post != "" {
		t.Errorf("splitPivot(—) = %q %q %q", pre, pivot, post)
	}
}

// TestRenderWord tests that the pivot letter lands on the centre column.
func TestRenderWord(t *testing.T) {
	st := newStyles("default")

	tests := []struct {
		word  string
		width int
		pivot rune
	}{
		{"reading", 21, 'a'},
		{"a", 20, 'a'},
		{"comprehension", 40, 'p'},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			line := ansi.Strip(renderWord(st, tt.word, tt.width))
			if w := runewidth.StringWidth(line); w != tt.width {
				t.Errorf("line width = %d, want %d", w, tt.width)
			}
			runes := []rune(line)
			if got := runes[tt.width/2]; got != tt.pivot {
				t.Errorf("centre column = %q, want %q (line %q)", got, tt.pivot, line)
			}
		})
	}

	t.Run("too wide", func(t *testing.T) {
		line := ansi.Strip(renderWord(st, "incomprehensibilities", 8))
		if !strings.HasSuffix(strings.TrimSpace(line), ellipsis) {
			t.Errorf("expected a truncated word, got %q", line)
		}
	})

	if got := renderWord(st, "word", 0); got != "" {
		t.Errorf("zero width should render nothing, got %q", got)
	}
}

// TestPositionText tests the position indicator.
func TestPositionText(t *testing.T) {
	tests := []struct {
		current, total int
		want           string
	}{
		{0, 0, ""},
		{1, 3, "1 / 3"},
		{1200, 15000, "1,200 / 15,000"},
	}

	for _, tt := range tests {
		if got := positionText(tt.current, tt.total); got != tt.want {
			t.Errorf("positionText(%d, %d) = %q, want %q", tt.current, tt.total, got, tt.want)
		}
	}
}

// TestScreen tests the display surface.
func TestScreen(t *testing.T) {
	s := NewScreen()
	if _, ok := s.Word(); ok {
		t.Fatal("new screen should be empty")
	}

	s.Show(rsvp.Token{Text: "Hi"})
	s.SetPosition(1, 4)
	s.SetSubtitle("Bot")

	tok, ok := s.Word()
	if !ok || tok.Text != "Hi" {
		t.Errorf("Word() = %v, %v", tok, ok)
	}
	if cur, total := s.Position(); cur != 1 || total != 4 {
		t.Errorf("Position() = %d, %d", cur, total)
	}
	if s.Subtitle() != "Bot" {
		t.Errorf("Subtitle() = %q", s.Subtitle())
	}

	s.Clear()
	if _, ok := s.Word(); ok || s.Subtitle() != "" {
		t.Error("Clear should reset the screen")
	}
}

// TestSentenceBounds tests finding the sentence around the cursor.
func TestSentenceBounds(t *testing.T) {
	tokens := rsvp.Tokenize("Stop. Go now. Then rest")

	tests := []struct {
		cursor     int
		start, end int
	}{
		{0, 0, 1},
		{1, 1, 3},
		{2, 1, 3},
		{4, 3, 5},
		{9, 0, 0},
	}

	for _, tt := range tests {
		start, end := sentenceBounds(tokens, tt.cursor)
		if start != tt.start || end != tt.end {
			t.Errorf("sentenceBounds(%d) = %d, %d, want %d, %d", tt.cursor, start, end, tt.start, tt.end)
		}
	}

	md := contextMarkdown(tokens, 1)
	if !strings.Contains(md, "**Go**") || !strings.Contains(md, "_now\\._") {
		t.Errorf("contextMarkdown() = %q", md)
	}
}
