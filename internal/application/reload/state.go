package reload

// State is the Driver's position in a reload cycle.
type State int

const (
	// StateBuilding means the build tool is running.
	StateBuilding State = iota
	// StateLoadedRunReported means the artifact was built and is being
	// loaded, run and reported.
	StateLoadedRunReported
	// StateWaiting means the Driver is blocked on a change to the watched file.
	StateWaiting
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateLoadedRunReported:
		return "loaded"
	case StateWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// StateObserver is notified of every state transition.
type StateObserver func(State)
