package service

// State is the lifecycle state of a task service.
type State int

const (
	// Uninitialized means Load has never been called.
	Uninitialized State = iota
	// Loading means a Load is in progress.
	Loading
	// Ready means the cached view holds the last loaded task set.
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}
