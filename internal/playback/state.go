// internal/playback/state.go
package playback

// State represents the playback state. Exactly one value holds at a time.
type State int

const (
	StateIdle State = iota
	StateBuffering
	StatePlaying
	StatePaused
	StateSkippingToNext
	StateSkippingToPrevious
	StateStopped
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBuffering:
		return "Buffering"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateSkippingToNext:
		return "SkippingToNext"
	case StateSkippingToPrevious:
		return "SkippingToPrevious"
	case StateStopped:
		return "Stopped"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// IsTransient returns true for the skipping states, which never outlive the
// operation that entered them.
func (s State) IsTransient() bool {
	return s == StateSkippingToNext || s == StateSkippingToPrevious
}
