package invite

import "fmt"

// State is a step of a single dispatch attempt.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSending
	StateSent
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSending:
		return "sending"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transitions lists the legal next states. Sending loops on itself once per
// delivered recipient.
var transitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateIdle, StateSending, StateFailed},
	StateSending:    {StateSending, StateSent, StateFailed},
	StateSent:       {StateIdle},
	StateFailed:     {StateIdle},
}

// CanTransition reports whether to may follow s.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends a dispatch attempt.
func (s State) Terminal() bool {
	return s == StateSent || s == StateFailed
}
