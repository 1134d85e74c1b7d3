// Package player defines the playback engine contract and a beep-backed
// engine that streams a single audio source over HTTP or from disk.
package player

import "context"

// Listener receives asynchronous engine notifications.
// Implementations must not block: callbacks may run on decoder or
// network goroutines.
type Listener interface {
	// Prepared fires once PrepareAsync has buffered enough to start.
	Prepared()
	// BufferingProgress reports how much of the source has been
	// downloaded, as a percentage in [0, 100].
	BufferingProgress(percent int)
	// Completed fires when playback reaches the end of the source.
	Completed()
	// Failed reports a decode or network fault. The engine is unusable
	// afterwards and must be reset or released.
	Failed(err error)
}

// Engine is one loaded audio source and its output.
type Engine interface {
	// Load opens the source. It blocks on network I/O and is expected to
	// be called off the caller's critical path.
	Load(ctx context.Context, url string) error
	// PrepareAsync starts buffering and returns immediately. The outcome
	// is reported through Listener.Prepared or Listener.Failed.
	PrepareAsync() error
	Start()
	Pause()
	Stop()
	// Reset returns the engine to its unloaded state.
	Reset()
	// Release frees every resource. Further calls are no-ops.
	Release()
	SeekTo(positionMillis int64)
	// SetVolume sets the output level in [0, 1].
	SetVolume(level float64)
	IsPlaying() bool
	Position() int64
	Duration() int64
	// BufferedPercent returns the latest download progress in [0, 100],
	// the value last passed to Listener.BufferingProgress.
	BufferedPercent() int
}

// Factory builds a new engine bound to a listener.
type Factory func(l Listener) (Engine, error)

// Verify implementations satisfy Engine at compile time.
var (
	_ Engine = (*StreamEngine)(nil)
	_ Engine = (*Mock)(nil)
)
