package rsvp_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/mock"
)

type harness struct {
	loop     *mock.Loop
	display  *mock.Display
	settings *rsvp.Settings
	sink     *mock.Sink
	player   *rsvp.Player
	modes    [][2]rsvp.Mode
}

func newHarness(t *testing.T, cfg rsvp.Config) *harness {
	t.Helper()
	h := &harness{
		loop:     mock.NewLoop(),
		display:  &mock.Display{},
		settings: rsvp.NewSettings(cfg),
		sink:     &mock.Sink{},
	}
	h.player = rsvp.NewPlayer(h.loop, h.display, h.settings, rsvp.WithSubmitSink(h.sink))
	h.player.OnModeChange(func(from, to rsvp.Mode) {
		h.modes = append(h.modes, [2]rsvp.Mode{from, to})
	})
	return h
}

func fastConfig() rsvp.Config {
	cfg := rsvp.DefaultConfig()
	cfg.WordsPerMinute = 600
	cfg.RampWords = 1
	cfg.RampStartFactor = 0.99
	return cfg
}

func numbered(prefix string, n int) []rsvp.Token {
	tokens := make([]rsvp.Token, n)
	for i := range tokens {
		tokens[i] = rsvp.Token{Text: fmt.Sprintf("%s%d", prefix, i)}
	}
	return tokens
}

// step advances the clock by exactly the delay of the word on screen.
func (h *harness) step(t *testing.T) {
	t.Helper()
	snap := h.player.Snapshot()
	tok, ok := h.display.Last()
	if !ok {
		t.Fatal("nothing on screen")
	}
	h.loop.Advance(rsvp.Delay(tok, snap.Seen-1, h.settings.Get()))
}

// TestPlayerEndToEnd plays "Stop. Go now." and enters compose after the
// dwell.
func TestPlayerEndToEnd(t *testing.T) {
	cfg := fastConfig()
	h := newHarness(t, cfg)

	tokens := rsvp.TokenizeWith("Stop. Go now.", false)
	wantBoundaries := []rsvp.Boundary{
		rsvp.BoundarySentenceEnd, rsvp.BoundaryNone, rsvp.BoundarySentenceEnd,
	}
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	for i, tok := range tokens {
		if tok.Boundary != wantBoundaries[i] {
			t.Errorf("token %q boundary = %v, want %v", tok.Text, tok.Boundary, wantBoundaries[i])
		}
	}

	h.player.Open(tokens, rsvp.Meta{Title: "assistant"}, true)
	if got := h.display.Words(); !reflect.DeepEqual(got, []string{"Stop."}) {
		t.Fatalf("after open shown %v, want first word immediately", got)
	}
	if h.display.Subtitle() != "assistant" {
		t.Errorf("subtitle = %q, want assistant", h.display.Subtitle())
	}

	h.step(t)
	h.step(t)
	if got := h.display.Words(); !reflect.DeepEqual(got, []string{"Stop.", "Go", "now."}) {
		t.Fatalf("shown %v", got)
	}
	if h.player.Mode() != rsvp.ModePlaying {
		t.Fatalf("mode = %v before the last word elapsed", h.player.Mode())
	}
	if h.display.Current != 3 || h.display.Total != 3 {
		t.Errorf("position = %d/%d, want 3/3", h.display.Current, h.display.Total)
	}

	h.step(t)
	if h.player.Mode() != rsvp.ModePaused {
		t.Fatalf("mode = %v after the last word, want paused", h.player.Mode())
	}
	if h.loop.Pending() != 1 {
		t.Errorf("pending timers = %d, want the dwell timer", h.loop.Pending())
	}

	dwell := rsvp.DwellDelay(cfg)
	h.loop.Advance(dwell - time.Millisecond)
	if h.player.Mode() != rsvp.ModePaused {
		t.Fatalf("mode = %v before the dwell elapsed", h.player.Mode())
	}
	h.loop.Advance(time.Millisecond)
	if h.player.Mode() != rsvp.ModeComposing {
		t.Fatalf("mode = %v after the dwell, want composing", h.player.Mode())
	}

	if len(h.display.Shown) != 3 {
		t.Errorf("displayed %d words, want 3", len(h.display.Shown))
	}
	want := [][2]rsvp.Mode{
		{rsvp.ModeIdle, rsvp.ModePlaying},
		{rsvp.ModePlaying, rsvp.ModePaused},
		{rsvp.ModePaused, rsvp.ModeComposing},
	}
	if !reflect.DeepEqual(h.modes, want) {
		t.Errorf("mode changes = %v, want %v", h.modes, want)
	}
}

// leakyLoop ignores cancellation so stale timers still fire.
type leakyLoop struct {
	*mock.Loop
}

func (l leakyLoop) After(d time.Duration, fn func()) func() {
	l.Loop.After(d, fn)
	return func() {}
}

// TestPlayerPlayOneCancelsStaleTimer tests that a replaced session never
// shows its words again.
func TestPlayerPlayOneCancelsStaleTimer(t *testing.T) {
	loop := leakyLoop{mock.NewLoop()}
	display := &mock.Display{}
	settings := rsvp.NewSettings(fastConfig())
	player := rsvp.NewPlayer(loop, display, settings)

	old := numbered("old", 10)
	player.Open(old, rsvp.Meta{}, false)
	for i := 0; i < 3; i++ {
		loop.Advance(rsvp.Delay(old[i], i, settings.Get()))
	}
	if snap := player.Snapshot(); snap.Cursor != 4 {
		t.Fatalf("cursor = %d, want 4", snap.Cursor)
	}
	oldID := player.Snapshot().SessionID

	fresh := numbered("new", 3)
	player.PlayOne(fresh, rsvp.Meta{Title: "again"}, false)

	snap := player.Snapshot()
	if snap.Total != 3 || snap.Cursor != 1 {
		t.Errorf("after PlayOne cursor/total = %d/%d, want 1/3", snap.Cursor, snap.Total)
	}
	if snap.Seen != 1 {
		t.Errorf("ramp counter = %d, want reset", snap.Seen)
	}
	if snap.SessionID == oldID {
		t.Error("PlayOne kept the old session id")
	}

	loop.Run(time.Minute)

	shown := display.Words()
	want := []string{"old0", "old1", "old2", "old3", "new0", "new1", "new2"}
	if !reflect.DeepEqual(shown, want) {
		t.Errorf("shown %v, want %v", shown, want)
	}
	if player.Mode() != rsvp.ModePaused {
		t.Errorf("mode = %v, want paused", player.Mode())
	}
}

// TestPlayerOpenEmptyThenAppend tests a session that starts before any text
// arrives.
func TestPlayerOpenEmptyThenAppend(t *testing.T) {
	h := newHarness(t, fastConfig())

	h.player.Open(nil, rsvp.Meta{}, true)
	if !h.player.IsOpen() {
		t.Fatal("empty open should still create a session")
	}
	if len(h.display.Shown) != 0 {
		t.Fatalf("shown %v for an empty session", h.display.Words())
	}
	if h.player.Mode() != rsvp.ModePaused {
		t.Fatalf("mode = %v, want waiting in paused", h.player.Mode())
	}
	if h.loop.Pending() != 0 {
		t.Error("empty session must not schedule compose")
	}

	h.player.Append(nil)
	if len(h.display.Shown) != 0 {
		t.Error("empty append must be a no-op")
	}

	h.player.Append(rsvp.Tokenize("hello there"))
	if got := h.display.Words(); !reflect.DeepEqual(got, []string{"hello"}) {
		t.Fatalf("after append shown %v, want first word immediately", got)
	}
	if h.player.Mode() != rsvp.ModePlaying {
		t.Errorf("mode = %v, want playing", h.player.Mode())
	}
}

// TestPlayerAppend tests growth of a running session.
func TestPlayerAppend(t *testing.T) {
	t.Run("while playing", func(t *testing.T) {
		h := newHarness(t, rsvp.DefaultConfig())
		h.player.Open(numbered("a", 2), rsvp.Meta{}, false)
		h.step(t)

		h.player.Append(numbered("b", 2))
		if snap := h.player.Snapshot(); snap.Total != 4 || snap.Seen != 2 {
			t.Errorf("total/seen = %d/%d, want 4/2", snap.Total, snap.Seen)
		}

		h.loop.Run(time.Minute)
		want := []string{"a0", "a1", "b0", "b1"}
		if got := h.display.Words(); !reflect.DeepEqual(got, want) {
			t.Errorf("shown %v, want %v", got, want)
		}
		if h.player.Snapshot().Seen != 4 {
			t.Errorf("ramp counter = %d, appends must not reset it", h.player.Snapshot().Seen)
		}
	})

	t.Run("starved session resumes", func(t *testing.T) {
		h := newHarness(t, fastConfig())
		h.player.Open(numbered("a", 1), rsvp.Meta{}, true)
		h.step(t)
		if !h.player.Snapshot().Starved {
			t.Fatal("session should be starved")
		}

		h.player.Append(numbered("b", 1))
		if h.player.Mode() != rsvp.ModePlaying {
			t.Fatalf("mode = %v, want playing", h.player.Mode())
		}
		if got, _ := h.display.Last(); got.Text != "b0" {
			t.Errorf("last shown %q, want b0", got.Text)
		}
		if h.loop.Pending() != 1 {
			t.Errorf("pending timers = %d, want only the next tick", h.loop.Pending())
		}
	})

	t.Run("reader pause holds", func(t *testing.T) {
		h := newHarness(t, fastConfig())
		h.player.Open(numbered("a", 3), rsvp.Meta{}, false)
		h.player.Pause()

		h.player.Append(numbered("b", 2))
		h.loop.Run(time.Minute)
		if h.player.Mode() != rsvp.ModePaused {
			t.Errorf("mode = %v, want paused", h.player.Mode())
		}
		if got := h.display.Words(); len(got) != 1 {
			t.Errorf("shown %v while paused", got)
		}
		if h.display.Total != 5 {
			t.Errorf("position total = %d, want 5", h.display.Total)
		}
	})

	t.Run("without session", func(t *testing.T) {
		h := newHarness(t, fastConfig())
		h.player.Append(numbered("a", 2))
		if h.player.IsOpen() || len(h.display.Shown) != 0 {
			t.Error("append without a session must be a no-op")
		}
	})
}

// TestPlayerPauseResume tests that pausing keeps the cursor and the ramp.
func TestPlayerPauseResume(t *testing.T) {
	h := newHarness(t, rsvp.DefaultConfig())
	h.player.Open(numbered("w", 6), rsvp.Meta{}, false)
	h.step(t)
	h.step(t)

	h.player.Toggle()
	if h.player.Mode() != rsvp.ModePaused {
		t.Fatalf("mode = %v, want paused", h.player.Mode())
	}
	if h.player.Snapshot().Starved {
		t.Error("a reader pause is not starvation")
	}
	h.loop.Advance(time.Minute)
	if n := len(h.display.Shown); n != 3 {
		t.Fatalf("shown %d words while paused, want 3", n)
	}

	h.player.Toggle()
	snap := h.player.Snapshot()
	if snap.Mode != rsvp.ModePlaying {
		t.Fatalf("mode = %v, want playing", snap.Mode)
	}
	if snap.Seen != 4 {
		t.Errorf("ramp counter = %d, resume must not reset it", snap.Seen)
	}
	if got, _ := h.display.Last(); got.Text != "w3" {
		t.Errorf("resumed at %q, want w3", got.Text)
	}

	h.player.Restart()
	snap = h.player.Snapshot()
	if snap.Seen != 1 || snap.Cursor != 1 {
		t.Errorf("after restart seen/cursor = %d/%d, want 1/1", snap.Seen, snap.Cursor)
	}
	if got, _ := h.display.Last(); got.Text != "w0" {
		t.Errorf("restart shows %q, want w0", got.Text)
	}
}

// TestPlayerNavigation tests back and forward clamping.
func TestPlayerNavigation(t *testing.T) {
	cfg := fastConfig()
	cfg.StepWords = 3
	h := newHarness(t, cfg)
	h.player.Open(numbered("w", 10), rsvp.Meta{}, false)
	for i := 0; i < 4; i++ {
		h.step(t)
	}
	h.player.Pause()

	tests := []struct {
		name   string
		move   func()
		want   string
		cursor int
	}{
		{"back two", func() { h.player.Back(2) }, "w3", 3},
		{"forward default step", func() { h.player.Forward(0) }, "w6", 6},
		{"forward past end clamps", func() { h.player.Forward(100) }, "w9", 9},
		{"back past start clamps", func() { h.player.Back(100) }, "w0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.move()
			if got, _ := h.display.Last(); got.Text != tt.want {
				t.Errorf("shown %q, want %q", got.Text, tt.want)
			}
			if got := h.player.Snapshot().Cursor; got != tt.cursor {
				t.Errorf("cursor = %d, want %d", got, tt.cursor)
			}
			if h.display.Current != tt.cursor+1 {
				t.Errorf("position = %d, want %d", h.display.Current, tt.cursor+1)
			}
		})
	}

	if h.loop.Pending() != 0 {
		t.Error("navigation while paused must not schedule ticks")
	}
}

// TestPlayerNavigationWhilePlaying tests that moving the cursor while playing
// leaves the display to the timer.
func TestPlayerNavigationWhilePlaying(t *testing.T) {
	h := newHarness(t, fastConfig())
	h.player.Open(numbered("w", 10), rsvp.Meta{}, false)
	h.step(t)

	h.player.Forward(5)
	if n := len(h.display.Shown); n != 2 {
		t.Fatalf("forward while playing displayed immediately: %v", h.display.Words())
	}
	h.step(t)
	if got, _ := h.display.Last(); got.Text != "w7" {
		t.Errorf("next tick shows %q, want w7", got.Text)
	}
}

// TestPlayerCompose tests compose mode and submitting.
func TestPlayerCompose(t *testing.T) {
	ctx := context.Background()

	t.Run("not composing", func(t *testing.T) {
		h := newHarness(t, fastConfig())
		h.player.Open(numbered("w", 2), rsvp.Meta{}, false)
		if err := h.player.Submit(ctx, "hi"); !errors.Is(err, rsvp.ErrNotComposing) {
			t.Errorf("Submit() error = %v, want ErrNotComposing", err)
		}
	})

	t.Run("compose suspends the timer", func(t *testing.T) {
		h := newHarness(t, fastConfig())
		h.player.Open(numbered("w", 5), rsvp.Meta{}, false)
		h.player.EnterCompose()
		h.loop.Run(time.Minute)
		if n := len(h.display.Shown); n != 1 {
			t.Errorf("shown %d words while composing, want 1", n)
		}

		h.player.Back(1)
		h.player.Forward(1)
		if h.player.Snapshot().Cursor != 1 {
			t.Error("navigation must be ignored while composing")
		}

		h.player.Composer().SetDraft("draft")
		h.player.LeaveCompose()
		if h.player.Mode() != rsvp.ModePlaying {
			t.Errorf("mode = %v after leaving compose, want playing", h.player.Mode())
		}
		if h.player.Composer().Draft() != "" {
			t.Error("leaving compose should discard the draft")
		}
		if h.player.Snapshot().Seen != 2 {
			t.Errorf("ramp counter = %d, leaving compose must not reset it", h.player.Snapshot().Seen)
		}
	})

	t.Run("empty submit", func(t *testing.T) {
		h := newHarness(t, fastConfig())
		h.player.Open(numbered("w", 1), rsvp.Meta{}, false)
		h.player.EnterCompose()
		if err := h.player.Submit(ctx, " \u200b\n "); !errors.Is(err, rsvp.ErrEmptySubmit) {
			t.Errorf("Submit() error = %v, want ErrEmptySubmit", err)
		}
		if len(h.sink.Texts) != 0 {
			t.Error("empty text reached the sink")
		}
	})

	t.Run("success", func(t *testing.T) {
		h := newHarness(t, fastConfig())
		h.player.Open(numbered("w", 1), rsvp.Meta{}, false)
		h.player.EnterCompose()
		if err := h.player.Submit(ctx, "  thanks!\n"); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if !reflect.DeepEqual(h.sink.Texts, []string{"thanks!"}) {
			t.Errorf("sink got %v", h.sink.Texts)
		}
		if h.player.Composer().Draft() != "" {
			t.Error("draft should be cleared after a successful submit")
		}
	})

	t.Run("failure restores the draft", func(t *testing.T) {
		h := newHarness(t, fastConfig())
		sinkErr := errors.New("offline")
		h.sink.Err = sinkErr
		h.player.Open(numbered("w", 1), rsvp.Meta{}, false)
		h.player.EnterCompose()

		err := h.player.Submit(ctx, "keep me")
		if !errors.Is(err, sinkErr) {
			t.Fatalf("Submit() error = %v, want wrapped sink error", err)
		}
		if got := h.player.Composer().Draft(); got != "keep me" {
			t.Errorf("draft = %q, want the failed text", got)
		}
		if h.player.Mode() != rsvp.ModeComposing {
			t.Errorf("mode = %v, want still composing", h.player.Mode())
		}
	})

	t.Run("no sink", func(t *testing.T) {
		loop := mock.NewLoop()
		player := rsvp.NewPlayer(loop, &mock.Display{}, rsvp.NewSettings(fastConfig()))
		player.Open(numbered("w", 1), rsvp.Meta{}, false)
		player.EnterCompose()
		if err := player.Submit(ctx, "hello"); !errors.Is(err, rsvp.ErrSinkUnavailable) {
			t.Errorf("Submit() error = %v, want ErrSinkUnavailable", err)
		}
		if player.Composer().Draft() != "hello" {
			t.Error("draft should be kept when there is no sink")
		}
	})
}

// TestPlayerPlayOneLeavesCompose tests that playing another text cancels
// compose mode.
func TestPlayerPlayOneLeavesCompose(t *testing.T) {
	h := newHarness(t, fastConfig())
	h.player.Open(numbered("a", 2), rsvp.Meta{Title: "first"}, true)
	h.loop.Run(time.Minute)
	if h.player.Mode() != rsvp.ModeComposing {
		t.Fatalf("mode = %v, want composing", h.player.Mode())
	}

	h.player.PlayOne(nil, rsvp.Meta{}, false)
	if h.player.Mode() != rsvp.ModeComposing {
		t.Error("PlayOne with no tokens must leave the session untouched")
	}

	h.player.PlayOne(numbered("b", 2), rsvp.Meta{Title: "second"}, false)
	if h.player.Mode() != rsvp.ModePlaying {
		t.Errorf("mode = %v, want playing", h.player.Mode())
	}
	if h.display.Subtitle() != "second" {
		t.Errorf("subtitle = %q, want second", h.display.Subtitle())
	}
	if snap := h.player.Snapshot(); snap.ComposeOnFinish {
		t.Error("compose flag should follow PlayOne")
	}
}

// TestPlayerSpeed tests speed changes through the settings store.
func TestPlayerSpeed(t *testing.T) {
	cfg := rsvp.DefaultConfig()
	cfg.WordsPerMinute = rsvp.MaxWordsPerMinute - 5
	h := newHarness(t, cfg)

	if got := h.player.SpeedUp(); got != rsvp.MaxWordsPerMinute {
		t.Errorf("SpeedUp() = %d, want clamped %d", got, rsvp.MaxWordsPerMinute)
	}
	if got := h.player.SlowDown(); got != rsvp.MaxWordsPerMinute-cfg.SpeedStep {
		t.Errorf("SlowDown() = %d, want %d", got, rsvp.MaxWordsPerMinute-cfg.SpeedStep)
	}
	if got := h.settings.Get().WordsPerMinute; got != rsvp.MaxWordsPerMinute-cfg.SpeedStep {
		t.Errorf("stored wpm = %d", got)
	}
}

// TestPlayerSpeedAppliesToNextWord tests that a speed change is not
// retroactive.
func TestPlayerSpeedAppliesToNextWord(t *testing.T) {
	cfg := fastConfig()
	h := newHarness(t, cfg)
	h.player.Open(numbered("w", 3), rsvp.Meta{}, false)

	h.settings.Set(func(c *rsvp.Config) { c.WordsPerMinute = 300 })

	// w0 was scheduled at 600 wpm.
	h.loop.Advance(rsvp.Delay(rsvp.Token{Text: "w0"}, 0, cfg))
	if n := len(h.display.Shown); n != 2 {
		t.Fatalf("shown %d words, want 2", n)
	}

	// w1 is scheduled at 300 wpm.
	slow := rsvp.Delay(rsvp.Token{Text: "w1"}, 1, h.settings.Get())
	h.loop.Advance(slow - time.Millisecond)
	if n := len(h.display.Shown); n != 2 {
		t.Fatalf("w2 shown early")
	}
	h.loop.Advance(time.Millisecond)
	if n := len(h.display.Shown); n != 3 {
		t.Fatalf("shown %d words, want 3", n)
	}
}

// TestPlayerClose tests releasing the session.
func TestPlayerClose(t *testing.T) {
	h := newHarness(t, fastConfig())
	closed := 0
	h.player.OnClose(func() { closed++ })

	h.player.Open(numbered("w", 5), rsvp.Meta{}, true)
	h.player.Close()

	if h.player.IsOpen() || h.player.Mode() != rsvp.ModeIdle {
		t.Errorf("after close open=%v mode=%v", h.player.IsOpen(), h.player.Mode())
	}
	if h.loop.Pending() != 0 {
		t.Errorf("pending timers = %d after close", h.loop.Pending())
	}
	if closed != 1 {
		t.Errorf("close hooks fired %d times, want 1", closed)
	}

	h.loop.Run(time.Minute)
	if n := len(h.display.Shown); n != 1 {
		t.Errorf("shown %d words after close, want 1", n)
	}

	h.player.Close()
	if closed != 1 {
		t.Error("closing an idle player must not fire hooks")
	}

	h.player.Resume()
	h.player.Back(1)
	h.player.Append(numbered("x", 1))
	if h.player.IsOpen() {
		t.Error("operations without a session must not open one")
	}
}

// TestPlayerObserver tests that observers see playback events.
func TestPlayerObserver(t *testing.T) {
	obs := &recordingObserver{}
	loop := mock.NewLoop()
	player := rsvp.NewPlayer(loop, &mock.Display{}, rsvp.NewSettings(fastConfig()), rsvp.WithObserver(obs))

	player.Open(rsvp.Tokenize("one two"), rsvp.Meta{}, false)
	player.Append(rsvp.Tokenize("three"))
	loop.Run(time.Minute)

	if obs.sessions != 1 {
		t.Errorf("sessions = %d, want 1", obs.sessions)
	}
	if got := strings.Join(obs.words, " "); got != "one two three" {
		t.Errorf("words = %q", got)
	}
	if obs.appended != 1 {
		t.Errorf("appended = %d, want 1", obs.appended)
	}
	if len(obs.modes) != 2 {
		t.Errorf("mode changes = %v", obs.modes)
	}
}

type recordingObserver struct {
	rsvp.NopObserver
	sessions int
	words    []string
	appended int
	modes    []rsvp.Mode
}

func (o *recordingObserver) SessionOpened(string, int) { o.sessions++ }

func (o *recordingObserver) WordShown(tok rsvp.Token, _ time.Duration) {
	o.words = append(o.words, tok.Text)
}

func (o *recordingObserver) TokensAppended(n int) { o.appended += n }

func (o *recordingObserver) ModeChanged(_, to rsvp.Mode) { o.modes = append(o.modes, to) }
