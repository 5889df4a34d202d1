package validation

// State is a step of the validation state machine:
//
//	Start -> ArgsLoaded -> WitnessLoaded -> PriceComputed -> Accept
//	  any state before Accept -> Reject
type State int

const (
	StateStart State = iota
	StateArgsLoaded
	StateWitnessLoaded
	StatePriceComputed
	StateAccept
	StateReject
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateArgsLoaded:
		return "args_loaded"
	case StateWitnessLoaded:
		return "witness_loaded"
	case StatePriceComputed:
		return "price_computed"
	case StateAccept:
		return "accept"
	case StateReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateAccept || s == StateReject
}

// next is the only non-rejecting successor of each non-terminal state.
var next = map[State]State{
	StateStart:         StateArgsLoaded,
	StateArgsLoaded:    StateWitnessLoaded,
	StateWitnessLoaded: StatePriceComputed,
	StatePriceComputed: StateAccept,
}

// machine records the path taken through the states of a single run.
type machine struct {
	current State
	path    []State
}

func newMachine() *machine {
	return &machine{current: StateStart, path: []State{StateStart}}
}

// advance moves to the successor of the current state.
func (m *machine) advance() State {
	if m.current.Terminal() {
		return m.current
	}
	m.current = next[m.current]
	m.path = append(m.path, m.current)
	return m.current
}

// fail moves to Reject from any non-terminal state.
func (m *machine) fail() {
	if m.current.Terminal() {
		return
	}
	m.current = StateReject
	m.path = append(m.path, StateReject)
}
