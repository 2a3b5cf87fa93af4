package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/mock"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
)

type fixture struct {
	m        *model
	loop     *mock.Loop
	player   *rsvp.Player
	screen   *Screen
	settings *rsvp.Settings
	sink     *mock.Sink
	copied   []string
}

func newFixture(t *testing.T, conv *mock.Conversation) *fixture {
	t.Helper()
	f := &fixture{
		loop:     mock.NewLoop(),
		screen:   NewScreen(),
		settings: rsvp.NewSettings(rsvp.DefaultConfig()),
		sink:     &mock.Sink{},
	}
	f.player = rsvp.NewPlayer(f.loop, f.screen, f.settings, rsvp.WithSubmitSink(f.sink))
	adapter := stream.NewAdapter(f.loop, f.player, f.settings)

	r := Reader{
		Loop:     rsvp.NewEventLoop(),
		Player:   f.player,
		Settings: f.settings,
		Screen:   f.screen,
		Adapter:  adapter,
		Copy: func(s string) error {
			f.copied = append(f.copied, s)
			return nil
		},
	}
	if conv != nil {
		r.Selector = stream.NewSelector(f.loop, conv, f.player, adapter, f.settings)
		r.Sources = conv
	}

	f.m = newModel(Config{Title: "test", HideHelp: true}, r)
	f.m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return f
}

func (f *fixture) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = f.m.Update(keyMsg(k))
	}
	return cmd
}

func (f *fixture) word() string {
	tok, _ := f.screen.Word()
	return tok.Text
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range msg {
			if isQuit(c) {
				return true
			}
		}
	}
	return false
}

// TestReaderKeys tests the playback keys.
func TestReaderKeys(t *testing.T) {
	f := newFixture(t, nil)
	f.player.Open(rsvp.Tokenize("one two three four five six"), rsvp.Meta{Title: "doc"}, false)

	if f.word() != "one" {
		t.Fatalf("first word = %q", f.word())
	}

	f.press(" ")
	if f.player.Mode() != rsvp.ModePaused {
		t.Fatalf("mode after space = %v, want paused", f.player.Mode())
	}

	f.press("right")
	if f.word() != "six" {
		t.Errorf("word after forward = %q, want six", f.word())
	}
	f.press("left")
	if f.word() != "one" {
		t.Errorf("word after back = %q, want one", f.word())
	}

	f.press("+")
	if got := f.settings.Get().WordsPerMinute; got != 360 {
		t.Errorf("wpm after + = %d, want 360", got)
	}
	if !strings.Contains(f.m.statusMessage, "360 wpm") {
		t.Errorf("status message = %q", f.m.statusMessage)
	}
	f.press("-", "-")
	if got := f.settings.Get().WordsPerMinute; got != 340 {
		t.Errorf("wpm after - - = %d, want 340", got)
	}

	f.press(" ")
	if f.player.Mode() != rsvp.ModePlaying {
		t.Errorf("mode after second space = %v, want playing", f.player.Mode())
	}

	f.press("y")
	if len(f.copied) != 1 || f.copied[0] != "one two three four five six" {
		t.Errorf("copied = %q", f.copied)
	}

	if !isQuit(f.press("q")) {
		t.Error("q should quit")
	}
}

// TestComposeKeys tests replying from the reader.
func TestComposeKeys(t *testing.T) {
	f := newFixture(t, nil)
	f.player.Open(rsvp.Tokenize("Question?"), rsvp.Meta{}, false)

	f.press("c")
	if f.player.Mode() != rsvp.ModeComposing {
		t.Fatalf("mode = %v, want composing", f.player.Mode())
	}
	if !f.m.compose.Focused() {
		t.Fatal("compose box should have focus")
	}

	// Playback keys are typed, not interpreted, while composing.
	f.press("q", " ", "ok")
	if f.player.Mode() != rsvp.ModeComposing {
		t.Fatalf("typing should not leave compose, mode = %v", f.player.Mode())
	}
	if got := f.player.Composer().Draft(); got != "q ok" {
		t.Errorf("draft = %q, want %q", got, "q ok")
	}

	f.press("enter")
	if len(f.sink.Texts) != 1 || f.sink.Texts[0] != "q ok" {
		t.Errorf("submitted = %q", f.sink.Texts)
	}
	if f.m.compose.Value() != "" {
		t.Errorf("compose box should be cleared, got %q", f.m.compose.Value())
	}

	f.sink.Err = errors.New("offline")
	f.press("again", "enter")
	if f.m.compose.Value() != "again" {
		t.Errorf("failed text should stay in the box, got %q", f.m.compose.Value())
	}
	if !f.m.statusIsError {
		t.Error("failed submit should show an error")
	}

	f.press("esc")
	if f.player.Mode() == rsvp.ModeComposing {
		t.Error("esc should leave compose")
	}
	if f.m.compose.Focused() {
		t.Error("compose box should lose focus")
	}
}

// TestPicker tests choosing a message by fuzzy search.
func TestPicker(t *testing.T) {
	conv := &mock.Conversation{}
	conv.Add(
		mock.NewSource("m1", "Hello there."),
		mock.NewUserSource("m2", "What about pears?"),
		mock.NewSource("m3", "Apples are red."),
	)
	f := newFixture(t, conv)

	f.press("/")
	if f.m.view != viewPicker {
		t.Fatalf("view = %v, want picker", f.m.view)
	}
	if len(f.m.picker.matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(f.m.picker.matches))
	}
	if src := f.m.picker.selected(); src == nil || src.ID() != "m3" {
		t.Errorf("newest message should be selected first")
	}

	f.press("there")
	if len(f.m.picker.matches) != 1 {
		t.Fatalf("matches for %q = %d, want 1", "there", len(f.m.picker.matches))
	}

	f.press("enter")
	if f.m.view != viewReader {
		t.Errorf("view = %v, want reader", f.m.view)
	}
	if f.word() != "Hello" {
		t.Errorf("word = %q, want Hello", f.word())
	}
	if !f.m.reader.Selector.Pinned() {
		t.Error("picking a message should pin it")
	}
}

// TestPickerDisabledForSingleSource tests that conversation keys are inert
// when reading a single text.
func TestPickerDisabledForSingleSource(t *testing.T) {
	f := newFixture(t, nil)
	f.player.Open(rsvp.Tokenize("just text"), rsvp.Meta{}, false)
	f.press("/", "p")
	if f.m.view != viewReader {
		t.Errorf("view = %v, want reader", f.m.view)
	}
}

// TestContextView tests opening and leaving the context view.
func TestContextView(t *testing.T) {
	f := newFixture(t, nil)
	f.player.Open(rsvp.Tokenize("Stop. Go now."), rsvp.Meta{}, false)

	f.press("v")
	if f.m.view != viewContext {
		t.Fatalf("view = %v, want context", f.m.view)
	}
	if f.player.Mode() != rsvp.ModePaused {
		t.Errorf("context view should pause playback, mode = %v", f.player.Mode())
	}

	f.press("esc")
	if f.m.view != viewReader {
		t.Errorf("view = %v, want reader", f.m.view)
	}
}

// TestView tests the rendered reader.
func TestView(t *testing.T) {
	f := newFixture(t, nil)

	if out := ansi.Strip(f.m.View()); !strings.Contains(out, "waiting for test") {
		t.Errorf("view before the session should show the spinner:\n%s", out)
	}

	f.player.Open(rsvp.Tokenize("Reading quickly"), rsvp.Meta{Title: "Notes"}, false)
	f.m.Update(loopReadyMsg{})
	out := ansi.Strip(f.m.View())
	for _, want := range []string{"Reading", "Notes", "1 / 2", "350 wpm", "playing"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

// TestFatalError tests the error view.
func TestFatalError(t *testing.T) {
	f := newFixture(t, nil)
	f.m.Update(FatalError(errors.New("connection lost")))

	if out := ansi.Strip(f.m.View()); !strings.Contains(out, "connection lost") {
		t.Errorf("error view missing message:\n%s", out)
	}
	if !isQuit(f.press("x")) {
		t.Error("any key should quit after a fatal error")
	}
}
