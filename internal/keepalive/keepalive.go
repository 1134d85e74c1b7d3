// Package keepalive holds a system lock for as long as a stream is live,
// keeping the machine from idling into suspend mid-playback.
package keepalive

import "sync"

// Lock is a reentrant-safe, idempotent system lock.
type Lock interface {
	// Acquire takes the lock. Acquiring a held lock is a no-op.
	Acquire() error
	// Release gives the lock back. Releasing a free lock is a no-op.
	Release() error
	Held() bool
}

// Verify implementations satisfy Lock at compile time.
var _ Lock = (*Noop)(nil)

// Noop tracks the held flag without touching the system. It is used when
// no inhibitor service is reachable.
type Noop struct {
	mu   sync.Mutex
	held bool
}

func (n *Noop) Acquire() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.held = true
	return nil
}

func (n *Noop) Release() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.held = false
	return nil
}

func (n *Noop) Held() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.held
}
