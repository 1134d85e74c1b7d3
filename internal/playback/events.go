package playback

// EventKind identifies a session change.
type EventKind int

const (
	// EventStatusChanged is emitted on every state transition.
	EventStatusChanged EventKind = iota
	// EventBuffering is emitted when the buffered amount changes.
	EventBuffering
	// EventCoverReloaded is emitted when the cover image is replaced.
	// Presentation sinks refresh metadata along with it.
	EventCoverReloaded
	// EventPlaying is emitted periodically while playing.
	EventPlaying
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventStatusChanged:
		return "StatusChanged"
	case EventBuffering:
		return "Buffering"
	case EventCoverReloaded:
		return "CoverReloaded"
	case EventPlaying:
		return "Playing"
	default:
		return "Unknown"
	}
}

// Event is a session change delivered to subscribers in the order the
// controller applied it.
type Event struct {
	Kind EventKind
	// Previous is the state before the transition for EventStatusChanged,
	// and the current state otherwise.
	Previous State
	Snapshot Snapshot
}
