package rsvp

// Mode is the current state of the player.
type Mode int

const (
	// ModeIdle indicates there is no session.
	ModeIdle Mode = iota
	// ModePlaying indicates words are being advanced by the timer.
	ModePlaying
	// ModePaused indicates the cursor is held, either by the reader or
	// because the session ran out of words.
	ModePaused
	// ModeComposing indicates the reader is typing a reply.
	ModeComposing
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePlaying:
		return "playing"
	case ModePaused:
		return "paused"
	case ModeComposing:
		return "composing"
	default:
		return "unknown"
	}
}

// StateMachine guards transitions between modes.
type StateMachine struct {
	current     Mode
	transitions map[Mode][]Mode
	onChange    []func(from, to Mode)
}

// NewStateMachine creates a state machine in ModeIdle with the valid
// transitions of the player.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: ModeIdle,
		transitions: map[Mode][]Mode{
			ModeIdle:      {ModePlaying},
			ModePlaying:   {ModePaused, ModeComposing, ModeIdle},
			ModePaused:    {ModePlaying, ModeComposing, ModeIdle},
			ModeComposing: {ModePlaying, ModeIdle},
		},
	}
}

// Transition moves to the given mode. Staying in the current mode is always
// allowed and does not notify listeners. It returns false when the transition
// is not valid.
func (sm *StateMachine) Transition(to Mode) bool {
	if to == sm.current {
		return true
	}

	valid := false
	for _, m := range sm.transitions[sm.current] {
		if m == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	from := sm.current
	sm.current = to
	for _, fn := range sm.onChange {
		fn(from, to)
	}
	return true
}

// Current returns the current mode.
func (sm *StateMachine) Current() Mode {
	return sm.current
}

// CanTransition reports whether moving to the given mode is valid.
func (sm *StateMachine) CanTransition(to Mode) bool {
	if to == sm.current {
		return true
	}
	for _, m := range sm.transitions[sm.current] {
		if m == to {
			return true
		}
	}
	return false
}

// OnChange registers a callback for mode changes.
func (sm *StateMachine) OnChange(fn func(from, to Mode)) {
	sm.onChange = append(sm.onChange, fn)
}
