package playback

import "sync"

const eventBufferSize = 64

// Subscription provides the event channel for a subscriber.
type Subscription struct {
	Events <-chan Event
	Done   <-chan struct{}

	// Internal write channels
	mu      sync.Mutex // serializes writers
	eventCh chan Event
	doneCh  chan struct{}
}

// newSubscription creates a new subscription with a buffered channel.
func newSubscription() *Subscription {
	s := &Subscription{
		eventCh: make(chan Event, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// send sends an event (non-blocking). When the buffer is full the event
// is dropped, except status changes: those evict the oldest queued event
// of another kind, or the oldest status change if nothing else is queued.
func (s *Subscription) send(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case s.eventCh <- e:
		return
	default:
	}
	if e.Kind != EventStatusChanged {
		return
	}

	pending := make([]Event, 0, eventBufferSize)
drain:
	for {
		select {
		case q := <-s.eventCh:
			pending = append(pending, q)
		default:
			break drain
		}
	}
	evict := 0
	for i, q := range pending {
		if q.Kind != EventStatusChanged {
			evict = i
			break
		}
	}
	if len(pending) == eventBufferSize {
		pending = append(pending[:evict], pending[evict+1:]...)
	}
	for _, q := range append(pending, e) {
		select {
		case s.eventCh <- q:
		default:
		}
	}
}
