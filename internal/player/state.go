package player

// State is the lifecycle of a StreamEngine.
//
//	┌──────┐ Load ┌────────┐ PrepareAsync ┌───────────┐ ready ┌──────────┐
//	│ Idle │─────▶│ Loaded │─────────────▶│ Preparing │──────▶│ Prepared │
//	└──────┘      └────────┘              └───────────┘       └──────────┘
//	    ▲                                       │ fault             │ Start
//	    │ Reset                                 ▼                   ▼
//	    │                                  ┌─────────┐  fault  ┌─────────┐
//	    └──────────────────────────────────│ Errored │◀────────│ Started │◀─┐
//	                                       └─────────┘         └─────────┘  │
//	                                                        Pause │  ▲      │
//	                                                              ▼  │Start │
//	                                                           ┌────────┐   │
//	                                                           │ Paused │   │
//	                                                           └────────┘   │
//
// Stop moves Started, Paused or Prepared to Stopped; a stopped engine must
// be Reset before it can load again. Release is terminal from any state.
type State int

const (
	Idle State = iota
	Loaded
	Preparing
	Prepared
	Started
	Paused
	Stopped
	Errored
	Released
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loaded:
		return "Loaded"
	case Preparing:
		return "Preparing"
	case Prepared:
		return "Prepared"
	case Started:
		return "Started"
	case Paused:
		return "Paused"
	case Stopped:
		return "Stopped"
	case Errored:
		return "Errored"
	case Released:
		return "Released"
	default:
		return "Unknown"
	}
}

// CanStart returns true if Start has an effect in this state.
func (s State) CanStart() bool {
	return s == Prepared || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Started
}

// HasOutput returns true if the engine holds a decoder attached, or ready
// to attach, to the speaker.
func (s State) HasOutput() bool {
	return s == Prepared || s == Started || s == Paused
}
