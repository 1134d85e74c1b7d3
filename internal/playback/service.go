package playback

// Service defines the playback session contract.
type Service interface {
	// Transport control
	Play() error
	Pause() error
	Stop() error
	PlayPause() error
	Next() error
	Previous() error
	Seek(positionMillis int64) error

	// State queries
	State() State
	Snapshot() Snapshot

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
