// Package mock provides in-memory collaborators of the reader for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dgnsrekt/wordrunner/rsvp"
)

// Loop implements rsvp.Loop on a virtual clock. Posted tasks run inline and
// timers only fire when the clock is advanced.
type Loop struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*timer
}

type timer struct {
	at       time.Time
	seq      int
	fn       func()
	canceled bool
}

// NewLoop creates a loop whose clock starts at an arbitrary fixed time.
func NewLoop() *Loop {
	return &Loop{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Post runs fn immediately.
func (l *Loop) Post(fn func()) {
	if fn != nil {
		fn()
	}
}

// After schedules fn to run once the clock has advanced by d.
func (l *Loop) After(d time.Duration, fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	t := &timer{at: l.now.Add(d), seq: l.seq, fn: fn}
	l.timers = append(l.timers, t)
	return func() {
		l.mu.Lock()
		t.canceled = true
		l.mu.Unlock()
	}
}

// Now returns the virtual time.
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// Pending returns the number of timers that have neither fired nor been
// cancelled.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in order. Timers
// scheduled by a firing timer also run if they fall inside the window.
func (l *Loop) Advance(d time.Duration) {
	l.mu.Lock()
	end := l.now.Add(d)
	l.mu.Unlock()

	for {
		t := l.next(end)
		if t == nil {
			break
		}
		t.fn()
	}

	l.mu.Lock()
	l.now = end
	l.mu.Unlock()
}

// Run advances the clock until no timers remain or limit has elapsed. It
// returns the virtual time spent.
func (l *Loop) Run(limit time.Duration) time.Duration {
	start := l.Now()
	end := start.Add(limit)
	for {
		t := l.next(end)
		if t == nil {
			break
		}
		t.fn()
	}
	return l.Now().Sub(start)
}

// next pops the earliest live timer due at or before end and moves the clock
// to it.
func (l *Loop) next(end time.Time) *timer {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.timers[:0]
	for _, t := range l.timers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	l.timers = live
	if len(l.timers) == 0 {
		return nil
	}

	sort.Slice(l.timers, func(i, j int) bool {
		if l.timers[i].at.Equal(l.timers[j].at) {
			return l.timers[i].seq < l.timers[j].seq
		}
		return l.timers[i].at.Before(l.timers[j].at)
	})
	t := l.timers[0]
	if t.at.After(end) {
		return nil
	}
	l.timers = l.timers[1:]
	l.now = t.at
	return t
}

// Display records everything the player renders.
type Display struct {
	mu        sync.Mutex
	Shown     []rsvp.Token
	Current   int
	Total     int
	Subtitles []string
}

// Show records tok.
func (d *Display) Show(tok rsvp.Token) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Shown = append(d.Shown, tok)
}

// SetPosition records the position indicator.
func (d *Display) SetPosition(current, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Current, d.Total = current, total
}

// SetSubtitle records text.
func (d *Display) SetSubtitle(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Subtitles = append(d.Subtitles, text)
}

// Words returns the text of every token shown, in order.
func (d *Display) Words() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	words := make([]string, len(d.Shown))
	for i, tok := range d.Shown {
		words[i] = tok.Text
	}
	return words
}

// Last returns the most recently shown token.
func (d *Display) Last() (rsvp.Token, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Shown) == 0 {
		return rsvp.Token{}, false
	}
	return d.Shown[len(d.Shown)-1], true
}

// Subtitle returns the last subtitle set.
func (d *Display) Subtitle() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Subtitles) == 0 {
		return ""
	}
	return d.Subtitles[len(d.Subtitles)-1]
}

// Source is a scripted rsvp.TextSource. Changing its text notifies
// subscribers synchronously.
type Source struct {
	mu    sync.Mutex
	id    string
	text  string
	user  bool
	done  bool
	meta  rsvp.Meta
	subs  map[int]func()
	next  int
	Calls int // CurrentText calls
}

// NewSource creates a source authored by someone other than the reader.
func NewSource(id, text string) *Source {
	return &Source{id: id, text: text, meta: rsvp.Meta{Title: id}, subs: map[int]func(){}}
}

// NewUserSource creates a source authored by the reader.
func NewUserSource(id, text string) *Source {
	s := NewSource(id, text)
	s.user = true
	return s
}

// ID returns the source id.
func (s *Source) ID() string { return s.id }

// CurrentText returns the text.
func (s *Source) CurrentText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	return s.text
}

// AuthorIsLocalUser reports whether the source was written by the reader.
func (s *Source) AuthorIsLocalUser() bool { return s.user }

// Meta returns the source metadata.
func (s *Source) Meta() rsvp.Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// SetMeta replaces the source metadata.
func (s *Source) SetMeta(meta rsvp.Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = meta
}

// Subscribe registers fn for text changes.
func (s *Source) Subscribe(fn func()) rsvp.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return rsvp.SubscriptionFunc(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	})
}

// Subscribers returns the number of live subscriptions.
func (s *Source) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// SetText replaces the text and notifies subscribers.
func (s *Source) SetText(text string) {
	s.mu.Lock()
	s.text = text
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// AppendText adds text to the end and notifies subscribers.
func (s *Source) AppendText(text string) {
	s.mu.Lock()
	cur := s.text
	s.mu.Unlock()
	s.SetText(cur + text)
}

// Finish marks the text complete and notifies subscribers.
func (s *Source) Finish() {
	s.mu.Lock()
	s.done = true
	text := s.text
	s.mu.Unlock()
	s.SetText(text)
}

// Finished reports whether Finish was called.
func (s *Source) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Conversation is a scripted rsvp.SourceSet.
type Conversation struct {
	mu      sync.Mutex
	sources []rsvp.TextSource
}

// Add appends sources to the conversation.
func (c *Conversation) Add(sources ...rsvp.TextSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, sources...)
}

// Clear removes every source.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = nil
}

// Sources returns the sources, oldest first.
func (c *Conversation) Sources() []rsvp.TextSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]rsvp.TextSource(nil), c.sources...)
}

// Sink is a scripted rsvp.SubmitSink.
type Sink struct {
	mu    sync.Mutex
	Err   error // returned by every Submit when set
	Texts []string
}

// Submit records text and returns Err.
func (s *Sink) Submit(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Texts = append(s.Texts, text)
	return nil
}
