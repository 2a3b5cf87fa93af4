package rsvp

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Session is the single active presentation.
type Session struct {
	ID              string
	Tokens          []Token // append-only until replaced by PlayOne
	Cursor          int     // index of the next token to show
	Shown           int     // index of the token on screen, -1 before the first
	Seen            int     // words shown since the last (re)start, drives the ramp
	Meta            Meta
	ComposeOnFinish bool
}

// Snapshot is a read-only view of the player state.
type Snapshot struct {
	Mode            Mode
	SessionID       string
	Cursor          int
	Total           int
	Seen            int
	Meta            Meta
	ComposeOnFinish bool
	Starved         bool
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger used by the player.
func WithLogger(l *log.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// WithSubmitSink sets where composed text is delivered.
func WithSubmitSink(sink SubmitSink) Option {
	return func(p *Player) { p.sink = sink }
}

// WithObserver adds an observer of playback events.
func WithObserver(o Observer) Option {
	return func(p *Player) { p.observers = append(p.observers, o) }
}

// Player is the playback state machine. It owns the session, the cursor and
// the timer that advances it. All methods must be called on the loop.
type Player struct {
	loop     Loop
	display  Display
	settings SettingsStore
	sink     SubmitSink
	logger   *log.Logger

	sm       *StateMachine
	session  *Session
	composer Composer

	// gen invalidates scheduled callbacks. Every cancellation bumps it and
	// callbacks compare the value they captured before doing anything.
	gen    uint64
	cancel func()

	// starved is set when playback paused because it ran out of words
	// rather than because the reader asked for it.
	starved bool

	observers []Observer
	onClose   []func()
}

// NewPlayer creates an idle player.
func NewPlayer(loop Loop, display Display, settings SettingsStore, opts ...Option) *Player {
	p := &Player{
		loop:     loop,
		display:  display,
		settings: settings,
		logger:   log.WithPrefix("player"),
		sm:       NewStateMachine(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sm.OnChange(func(from, to Mode) {
		p.logger.Debug("mode changed", "from", from, "to", to)
		for _, o := range p.observers {
			o.ModeChanged(from, to)
		}
	})
	return p
}

// OnModeChange registers fn to be called after every mode change.
func (p *Player) OnModeChange(fn func(from, to Mode)) {
	p.sm.OnChange(fn)
}

// OnClose registers fn to be called when the session is closed.
func (p *Player) OnClose(fn func()) {
	p.onClose = append(p.onClose, fn)
}

// Mode returns the current mode.
func (p *Player) Mode() Mode {
	return p.sm.Current()
}

// IsOpen reports whether a session exists.
func (p *Player) IsOpen() bool {
	return p.session != nil
}

// Snapshot returns the current state.
func (p *Player) Snapshot() Snapshot {
	snap := Snapshot{Mode: p.sm.Current(), Starved: p.starved}
	if s := p.session; s != nil {
		snap.SessionID = s.ID
		snap.Cursor = s.Cursor
		snap.Total = len(s.Tokens)
		snap.Seen = s.Seen
		snap.Meta = s.Meta
		snap.ComposeOnFinish = s.ComposeOnFinish
	}
	return snap
}

// Tokens returns a copy of the session's tokens.
func (p *Player) Tokens() []Token {
	if p.session == nil {
		return nil
	}
	return append([]Token(nil), p.session.Tokens...)
}

// Composer returns the compose buffer.
func (p *Player) Composer() *Composer {
	return &p.composer
}

// Open starts a new session with tokens and begins playing immediately. Any
// previous session and its pending timer are discarded. An empty token list
// opens a session that waits for Append.
func (p *Player) Open(tokens []Token, meta Meta, composeOnFinish bool) {
	p.invalidate()
	p.composer.reset()
	p.session = &Session{
		ID:              uuid.NewString(),
		Tokens:          append([]Token(nil), tokens...),
		Shown:           -1,
		Meta:            meta,
		ComposeOnFinish: composeOnFinish,
	}
	p.starved = false
	p.logger.Debug("session opened", "id", p.session.ID, "tokens", len(tokens), "title", meta.Title)
	for _, o := range p.observers {
		o.SessionOpened(p.session.ID, len(tokens))
	}

	p.display.SetSubtitle(meta.Title)
	p.display.SetPosition(0, len(tokens))
	p.play()
}

// SetMeta merges meta into the session metadata.
func (p *Player) SetMeta(meta Meta) {
	if p.session == nil {
		return
	}
	p.session.Meta = p.session.Meta.merge(meta)
	if p.sm.Current() != ModeComposing {
		p.display.SetSubtitle(p.session.Meta.Title)
	}
}

// Append adds tokens to the end of the session. A session that is waiting
// because it ran out of words continues from where it stopped; one paused by
// the reader only grows.
func (p *Player) Append(tokens []Token) {
	if len(tokens) == 0 {
		return
	}
	s := p.session
	if s == nil {
		p.logger.Debug("append without session", "tokens", len(tokens))
		return
	}

	wasEmpty := len(s.Tokens) == 0
	s.Tokens = append(s.Tokens, tokens...)
	for _, o := range p.observers {
		o.TokensAppended(len(tokens))
	}

	switch mode := p.sm.Current(); {
	case mode == ModePaused && p.starved:
		p.play()
	case wasEmpty && s.Cursor == 0 && mode != ModePlaying && mode != ModeComposing:
		p.show(0)
	default:
		p.updatePosition()
	}
}

// PlayOne replaces the session's tokens with a different text and plays it
// from the start. An empty token list leaves the current session untouched.
func (p *Player) PlayOne(tokens []Token, meta Meta, composeOnFinish bool) {
	if len(tokens) == 0 {
		return
	}
	if p.session == nil {
		p.Open(tokens, meta, composeOnFinish)
		return
	}

	p.invalidate()
	p.composer.reset()
	s := p.session
	s.ID = uuid.NewString()
	s.Tokens = append([]Token(nil), tokens...)
	s.Cursor = 0
	s.Shown = -1
	s.Seen = 0
	s.Meta = s.Meta.merge(meta)
	s.ComposeOnFinish = composeOnFinish
	p.logger.Debug("playing one", "id", s.ID, "tokens", len(tokens))
	for _, o := range p.observers {
		o.SessionOpened(s.ID, len(tokens))
	}

	p.display.SetSubtitle(s.Meta.Title)
	p.play()
}

// Pause holds the cursor. It does nothing unless playing.
func (p *Player) Pause() {
	if p.sm.Current() != ModePlaying {
		return
	}
	p.invalidate()
	p.starved = false
	p.sm.Transition(ModePaused)
}

// Resume continues from the cursor without resetting the ramp.
func (p *Player) Resume() {
	if p.session == nil {
		return
	}
	if p.sm.Current() == ModeComposing {
		p.LeaveCompose()
		return
	}
	p.play()
}

// Toggle switches between playing and paused.
func (p *Player) Toggle() {
	switch p.sm.Current() {
	case ModePlaying:
		p.Pause()
	case ModePaused:
		p.Resume()
	}
}

// Restart plays the session again from the first word, resetting the ramp.
func (p *Player) Restart() {
	s := p.session
	if s == nil {
		return
	}
	if p.sm.Current() == ModeComposing {
		p.composer.reset()
	}
	s.Cursor = 0
	s.Seen = 0
	p.play()
}

// EnterCompose suspends playback so the reader can type a reply.
func (p *Player) EnterCompose() {
	if p.session == nil || p.sm.Current() == ModeComposing {
		return
	}
	p.invalidate()
	p.starved = false
	p.sm.Transition(ModeComposing)
}

// LeaveCompose discards compose mode and resumes playback. The ramp is not
// reset because reading continues the same session.
func (p *Player) LeaveCompose() {
	if p.sm.Current() != ModeComposing {
		return
	}
	p.composer.reset()
	if p.session != nil {
		p.display.SetSubtitle(p.session.Meta.Title)
	}
	p.play()
}

// Back moves the cursor n words back. When not playing, the word at the new
// cursor is shown right away.
func (p *Player) Back(n int) {
	p.move(-p.step(n))
}

// Forward moves the cursor n words forward.
func (p *Player) Forward(n int) {
	p.move(p.step(n))
}

// SpeedUp raises the configured speed by one step and returns the new value.
// The change applies from the next scheduled word.
func (p *Player) SpeedUp() int {
	cfg := p.settings.Set(func(c *Config) { c.WordsPerMinute += c.SpeedStep })
	return cfg.WordsPerMinute
}

// SlowDown lowers the configured speed by one step and returns the new value.
func (p *Player) SlowDown() int {
	cfg := p.settings.Set(func(c *Config) { c.WordsPerMinute -= c.SpeedStep })
	return cfg.WordsPerMinute
}

// Close cancels any pending timer and releases the session.
func (p *Player) Close() {
	if p.session == nil && p.sm.Current() == ModeIdle {
		return
	}
	p.invalidate()
	p.composer.reset()
	p.starved = false
	p.session = nil
	p.sm.Transition(ModeIdle)
	p.logger.Debug("session closed")
	for _, fn := range p.onClose {
		fn()
	}
}

// Submit sends text composed by the reader. On failure the text is kept as
// the draft so it is not lost.
func (p *Player) Submit(ctx context.Context, text string) error {
	if p.sm.Current() != ModeComposing {
		return ErrNotComposing
	}
	text = cleanSubmission(text)
	if text == "" {
		return ErrEmptySubmit
	}
	if p.composer.sending {
		return ErrSubmitInFlight
	}
	if p.sink == nil {
		p.composer.draft = text
		return ErrSinkUnavailable
	}

	p.composer.sending = true
	p.composer.draft = ""
	err := p.sink.Submit(ctx, text)
	p.composer.sending = false
	for _, o := range p.observers {
		o.Submitted(err)
	}
	if err != nil {
		p.composer.draft = text
		p.logger.Warn("submit failed", "error", err)
		return fmt.Errorf("submit: %w", err)
	}
	p.logger.Debug("submitted", "length", len(text))
	return nil
}

// play (re)starts the timer from the cursor.
func (p *Player) play() {
	if p.session == nil {
		return
	}
	p.invalidate()
	p.starved = false
	p.sm.Transition(ModePlaying)
	p.tick(p.gen)
}

// tick shows the word at the cursor and schedules the next one.
func (p *Player) tick(gen uint64) {
	if gen != p.gen || p.session == nil || p.sm.Current() != ModePlaying {
		return
	}
	s := p.session
	if s.Cursor >= len(s.Tokens) {
		p.finish()
		return
	}

	tok := s.Tokens[s.Cursor]
	d := Delay(tok, s.Seen, p.settings.Get())
	p.show(s.Cursor)
	for _, o := range p.observers {
		o.WordShown(tok, d)
	}
	s.Cursor++
	s.Seen++
	p.schedule(d, p.tick)
}

// finish handles running out of words while playing.
func (p *Player) finish() {
	p.invalidate()
	p.starved = true
	p.sm.Transition(ModePaused)

	if !p.session.ComposeOnFinish || len(p.session.Tokens) == 0 {
		return
	}
	p.schedule(DwellDelay(p.settings.Get()), func(gen uint64) {
		if gen != p.gen {
			return
		}
		p.EnterCompose()
	})
}

func (p *Player) schedule(d time.Duration, fn func(gen uint64)) {
	gen := p.gen
	p.cancel = p.loop.After(d, func() { fn(gen) })
}

// invalidate cancels the pending timer and makes any callback already in
// flight a no-op.
func (p *Player) invalidate() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
}

func (p *Player) show(i int) {
	s := p.session
	if i < 0 || i >= len(s.Tokens) {
		return
	}
	s.Shown = i
	p.display.Show(s.Tokens[i])
	p.updatePosition()
}

func (p *Player) updatePosition() {
	s := p.session
	p.display.SetPosition(min(s.Shown+1, len(s.Tokens)), len(s.Tokens))
}

func (p *Player) step(n int) int {
	if n > 0 {
		return n
	}
	return p.settings.Get().StepWords
}

func (p *Player) move(delta int) {
	s := p.session
	if s == nil || len(s.Tokens) == 0 || p.sm.Current() == ModeComposing {
		return
	}
	s.Cursor = max(0, min(len(s.Tokens)-1, s.Cursor+delta))
	if p.sm.Current() != ModePlaying {
		p.show(s.Cursor)
	}
}
