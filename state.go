package slidecrawler

// State is the lifecycle state of a Session's application.
type State int

const (
	// Unstarted: no application has been launched yet.
	Unstarted State = iota
	// Running: exactly one application is live and reachable.
	Running
	// Closed: the application quit or died. Start may launch a new one.
	Closed
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "invalid"
	}
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case Unstarted, Closed:
		return to == Running
	case Running:
		return to == Closed
	default:
		return false
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// require checks that the session is in one of the allowed states.
func (s *Session) require(op string, allowed ...State) error {
	for _, a := range allowed {
		if s.state == a {
			return nil
		}
	}
	return &StateError{Op: op, State: s.state, Allowed: allowed}
}

// transition moves the session to another state. An invalid transition is
// a harness bug, not a test failure.
func (s *Session) transition(to State) {
	if !isAllowedTransition(s.state, to) {
		panic("slidecrawler: invalid state transition " + s.state.String() + " -> " + to.String())
	}
	s.state = to
}
