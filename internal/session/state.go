package session

// State is a state of the session machine.
type State int

const (
	StateIdle State = iota
	StateAskInput
	StateSelectMenu
	StateSubmitting
	StateCancelled
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAskInput:
		return "ask"
	case StateSelectMenu:
		return "select"
	case StateSubmitting:
		return "submitting"
	case StateCancelled:
		return "cancelled"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateDone
}

var transitions = map[State][]State{
	StateIdle:       {StateAskInput, StateSelectMenu, StateCancelled},
	StateAskInput:   {StateSubmitting, StateCancelled},
	StateSelectMenu: {StateSubmitting, StateCancelled},
	StateSubmitting: {StateDone, StateAskInput, StateSelectMenu},
}

// CanTransition reports whether the machine may move from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Mode selects the input state entered from Idle.
type Mode int

const (
	ModeAsk Mode = iota
	ModeSelect
)

func (m Mode) String() string {
	if m == ModeSelect {
		return "select"
	}
	return "ask"
}

func (m Mode) state() State {
	if m == ModeSelect {
		return StateSelectMenu
	}
	return StateAskInput
}
