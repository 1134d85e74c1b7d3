package playback

import "sync"

// mailbox is an unbounded FIFO of closures run by the controller goroutine.
// Posting never blocks, so engine and focus callbacks can post from any
// goroutine, including the controller's own.
type mailbox struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

// post enqueues fn. It reports false once the mailbox is closed.
func (m *mailbox) post(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
	m.signal()
	return true
}

// next blocks until a closure is available. It returns false once the
// mailbox is closed and drained.
func (m *mailbox) next() (func(), bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			fn := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return fn, true
		}
		if m.closed {
			m.mu.Unlock()
			return nil, false
		}
		m.mu.Unlock()
		<-m.wake
	}
}

// close rejects further posts. Queued closures still run.
func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.signal()
}

func (m *mailbox) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
