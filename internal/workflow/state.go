package workflow

// State is a node of the run state machine:
// Planning -> Writing(0..n-1) -> Finalizing -> Done, with Failed and
// Cancelled reachable from any non-terminal state.
type State int

const (
	StatePlanning State = iota
	StateWriting
	StateFinalizing
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePlanning:
		return "planning"
	case StateWriting:
		return "writing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}

// Status is the outcome attached to a returned Result.
type Status string

const (
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)
