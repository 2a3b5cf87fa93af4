package stream_test

import (
	"testing"
	"time"

	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/mock"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
)

func sources(authors ...string) []rsvp.TextSource {
	list := make([]rsvp.TextSource, len(authors))
	for i, author := range authors {
		id := author + string(rune('0'+i))
		if author == "user" {
			list[i] = mock.NewUserSource(id, "hi")
		} else {
			list[i] = mock.NewSource(id, "hello")
		}
	}
	return list
}

// TestIsGreeting tests the opening greeting truth table.
func TestIsGreeting(t *testing.T) {
	tests := []struct {
		name string
		list []rsvp.TextSource
		want bool
	}{
		{"empty", sources(), false},
		{"one other", sources("ai"), true},
		{"two others", sources("ai", "ai"), false},
		{"one user", sources("user"), false},
		{"other then user", sources("ai", "user"), false},
		{"user then other", sources("user", "ai"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stream.IsGreeting(tt.list); got != tt.want {
				t.Errorf("IsGreeting() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestNewestEligible tests that the reader's own messages are skipped.
func TestNewestEligible(t *testing.T) {
	list := sources("ai", "ai", "user")
	if got := stream.NewestEligible(list); got == nil || got.ID() != "ai1" {
		t.Errorf("NewestEligible() = %v, want ai1", got)
	}
	if got := stream.NewestEligible(sources("user")); got != nil {
		t.Errorf("NewestEligible() = %v, want nil", got.ID())
	}
}

type selectorFixture struct {
	*fixture
	conv     *mock.Conversation
	selector *stream.Selector
}

func newSelectorFixture(t *testing.T, patch func(*rsvp.Config)) *selectorFixture {
	t.Helper()
	f := newFixture(t, patch)
	conv := &mock.Conversation{}
	return &selectorFixture{
		fixture:  f,
		conv:     conv,
		selector: stream.NewSelector(f.loop, conv, f.player, f.adapter, f.settings),
	}
}

// TestSelectorGreeting tests greeting suppression and the manual pin.
func TestSelectorGreeting(t *testing.T) {
	tests := []struct {
		name     string
		suppress bool
		pin      bool
		bound    bool
	}{
		{"suppressed", true, false, false},
		{"suppression off", false, false, true},
		{"pin overrides suppression", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSelectorFixture(t, func(c *rsvp.Config) { c.SuppressGreeting = tt.suppress })
			f.conv.Add(mock.NewSource("greeting", "Welcome, traveller."))
			if tt.pin {
				f.selector.Pin()
			}

			f.selector.Check(true)
			if got := f.adapter.Binding() != nil; got != tt.bound {
				t.Errorf("bound = %v, want %v", got, tt.bound)
			}
			if f.player.IsOpen() != tt.bound {
				t.Errorf("session open = %v, want %v", f.player.IsOpen(), tt.bound)
			}
		})
	}
}

// TestSelectorFollowsNewest tests rebinding as the conversation grows.
func TestSelectorFollowsNewest(t *testing.T) {
	f := newSelectorFixture(t, func(c *rsvp.Config) { c.StableTokenize = false })
	f.conv.Add(mock.NewSource("a1", "Hello there."))
	f.conv.Add(mock.NewUserSource("u1", "Hi!"))
	f.selector.Check(true)

	if b := f.adapter.Binding(); b == nil || b.SourceID != "a1" {
		t.Fatalf("binding = %+v, want a1", b)
	}

	reply := mock.NewSource("a2", "Glad")
	f.conv.Add(reply)
	f.selector.Notify(stream.EventMessageReceived)
	if b := f.adapter.Binding(); b == nil || b.SourceID != "a2" {
		t.Fatalf("binding = %+v, want a2", b)
	}
	if got := texts(f.player.Tokens()); len(got) != 3 || got[2] != "Glad" {
		t.Errorf("session tokens = %v", got)
	}

	reply.SetText("Glad to help.")
	if n := len(f.player.Tokens()); n != 5 {
		t.Errorf("session has %d tokens, want 5", n)
	}

	f.selector.Notify(stream.EventMessageRendered)
	if b := f.adapter.Binding(); b.SourceID != "a2" {
		t.Error("checking again must keep the binding")
	}
}

// TestSelectorLeavesCompose tests that streaming pulls the reader out of
// compose mode.
func TestSelectorLeavesCompose(t *testing.T) {
	f := newSelectorFixture(t, func(c *rsvp.Config) { c.SuppressGreeting = false })
	f.selector.ComposeOnFinish = true
	src := mock.NewSource("a1", "Short. ")
	f.conv.Add(src)
	f.selector.Check(true)

	f.loop.Run(time.Minute)
	if f.player.Mode() != rsvp.ModeComposing {
		t.Fatalf("mode = %v, want composing", f.player.Mode())
	}

	src.SetText("Short. More words. ")
	if f.player.Mode() != rsvp.ModeComposing {
		t.Fatal("growth alone must not leave compose mode")
	}

	f.selector.Notify(stream.EventStreamToken)
	if f.player.Mode() != rsvp.ModePlaying {
		t.Errorf("mode = %v after a stream token, want playing", f.player.Mode())
	}
	if tok, _ := f.display.Last(); tok.Text != "More" {
		t.Errorf("shown %q, want More", tok.Text)
	}
}

// TestSelectorThrottledCheck tests that unforced checks are throttled.
func TestSelectorThrottledCheck(t *testing.T) {
	f := newSelectorFixture(t, func(c *rsvp.Config) {
		c.SuppressGreeting = false
		c.StreamThrottle = 100 * time.Millisecond
	})
	f.conv.Add(mock.NewSource("a1", "one "))
	f.selector.Check(false)
	if b := f.adapter.Binding(); b == nil || b.SourceID != "a1" {
		t.Fatalf("binding = %+v, want a1", b)
	}

	f.conv.Add(mock.NewSource("a2", "two "))
	f.selector.Check(false)
	if b := f.adapter.Binding(); b.SourceID != "a1" {
		t.Fatal("second check inside the window ran immediately")
	}

	f.loop.Advance(150 * time.Millisecond)
	if b := f.adapter.Binding(); b.SourceID != "a2" {
		t.Errorf("binding = %s after the window, want a2", b.SourceID)
	}
}

// TestSelectorReadOne tests reading a chosen message.
func TestSelectorReadOne(t *testing.T) {
	f := newSelectorFixture(t, nil)
	older := mock.NewSource("a1", "Older message here.")
	last := mock.NewSource("a2", "Latest reply.")
	f.conv.Add(older, last)

	f.selector.ReadOne(older)
	if !f.selector.Pinned() {
		t.Error("ReadOne should pin")
	}
	snap := f.player.Snapshot()
	if snap.Total != 3 || snap.ComposeOnFinish {
		t.Errorf("snapshot = %+v, want 3 tokens without compose", snap)
	}

	f.selector.ReadOne(last)
	snap = f.player.Snapshot()
	if snap.Total != 2 || !snap.ComposeOnFinish {
		t.Errorf("snapshot = %+v, want 2 tokens with compose", snap)
	}
	if tok, _ := f.display.Last(); tok.Text != "Latest" {
		t.Errorf("shown %q, want Latest", tok.Text)
	}

	f.player.Close()
	if f.selector.Pinned() {
		t.Error("closing the reader should clear the pin")
	}
}

// TestSelectorReset tests a conversation change.
func TestSelectorReset(t *testing.T) {
	f := newSelectorFixture(t, func(c *rsvp.Config) { c.SuppressGreeting = false })
	src := mock.NewSource("a1", "Hello world. ")
	f.conv.Add(src)
	f.selector.Check(true)
	f.selector.Pin()

	f.selector.Notify(stream.EventConversationChanged)
	if f.player.IsOpen() {
		t.Error("reset should close the session")
	}
	if f.adapter.Binding() != nil || src.Subscribers() != 0 {
		t.Error("reset should unbind the source")
	}
	if f.selector.Pinned() {
		t.Error("reset should clear the pin")
	}
}

// TestSelectorDisabled tests that a disabled reader ignores sources.
func TestSelectorDisabled(t *testing.T) {
	f := newSelectorFixture(t, func(c *rsvp.Config) {
		c.Enabled = false
		c.SuppressGreeting = false
	})
	f.conv.Add(mock.NewSource("a1", "Hello"))
	f.selector.Check(true)
	if f.adapter.Binding() != nil {
		t.Error("disabled reader must not bind")
	}
}

// TestEventString tests the String() method for Event.
func TestEventString(t *testing.T) {
	tests := []struct {
		event    stream.Event
		expected string
	}{
		{stream.EventMessageReceived, "message-received"},
		{stream.EventMessageRendered, "message-rendered"},
		{stream.EventStreamToken, "stream-token"},
		{stream.EventConversationChanged, "conversation-changed"},
		{stream.Event(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.event.String(); got != tt.expected {
			t.Errorf("Event.String() = %v, want %v", got, tt.expected)
		}
	}
}
