// Package focus arbitrates exclusive use of the audio output between
// in-process clients, in the manner of a mobile audio-focus stack: the most
// recent requester holds focus and earlier holders are told whether they
// lost it for good, for a while, or only need to lower their volume.
package focus

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Kind is the type of focus a client asks for.
type Kind int

const (
	// Gain takes focus until abandoned. The previous holder loses it for good.
	Gain Kind = iota
	// GainTransient takes focus briefly. The previous holder pauses.
	GainTransient
	// GainTransientMayDuck takes focus briefly. The previous holder may keep
	// playing at a lower volume.
	GainTransientMayDuck
	// GainTransientExclusive takes focus briefly and refuses every other
	// request until abandoned.
	GainTransientExclusive
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Gain:
		return "Gain"
	case GainTransient:
		return "GainTransient"
	case GainTransientMayDuck:
		return "GainTransientMayDuck"
	case GainTransientExclusive:
		return "GainTransientExclusive"
	default:
		return "Unknown"
	}
}

// Change is delivered to holders when their focus changes.
type Change int

const (
	ChangeGain Change = iota
	ChangeLoss
	ChangeTransientLoss
	ChangeTransientLossCanDuck
)

// String returns the change name.
func (c Change) String() string {
	switch c {
	case ChangeGain:
		return "Gain"
	case ChangeLoss:
		return "Loss"
	case ChangeTransientLoss:
		return "TransientLoss"
	case ChangeTransientLossCanDuck:
		return "TransientLossCanDuck"
	default:
		return "Unknown"
	}
}

// Listener receives focus changes. Implementations must not block.
type Listener interface {
	FocusChanged(c Change)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(c Change)

func (f ListenerFunc) FocusChanged(c Change) { f(c) }

// Request asks for focus on behalf of the client ID.
type Request struct {
	ID       string
	Kind     Kind
	Listener Listener
}

// Arbiter grants and revokes focus.
type Arbiter interface {
	// Request asks for focus and reports whether it was granted. A client
	// that already holds focus may request again to change its kind.
	Request(r Request) bool
	// Abandon gives focus up. The next holder down the stack regains it.
	Abandon(id string)
}

// Verify Stack implements Arbiter at compile time.
var _ Arbiter = (*Stack)(nil)

// Stack is an in-process Arbiter. The top entry holds focus.
type Stack struct {
	mu      sync.Mutex
	entries []Request
	log     zerolog.Logger
}

// NewStack creates an empty focus stack.
func NewStack(logger zerolog.Logger) *Stack {
	return &Stack{log: logger.With().Str("component", "focus").Logger()}
}

type delivery struct {
	l Listener
	c Change
}

func (s *Stack) Request(r Request) bool {
	s.mu.Lock()
	top, hasTop := s.topLocked()
	if hasTop && top.ID != r.ID && top.Kind == GainTransientExclusive {
		s.mu.Unlock()
		s.log.Debug().Str("id", r.ID).Str("holder", top.ID).Msg("Focus denied")
		return false
	}

	s.removeLocked(r.ID)
	var out []delivery
	if hasTop && top.ID != r.ID {
		change := lossFor(r.Kind)
		out = append(out, delivery{top.Listener, change})
		if change == ChangeLoss {
			s.removeLocked(top.ID)
		}
	}
	s.entries = append(s.entries, r)
	s.mu.Unlock()

	s.log.Debug().Str("id", r.ID).Stringer("kind", r.Kind).Msg("Focus granted")
	deliver(out)
	return true
}

func (s *Stack) Abandon(id string) {
	s.mu.Lock()
	top, hasTop := s.topLocked()
	if !s.removeLocked(id) {
		s.mu.Unlock()
		return
	}
	var out []delivery
	if hasTop && top.ID == id {
		if next, ok := s.topLocked(); ok {
			out = append(out, delivery{next.Listener, ChangeGain})
		}
	}
	s.mu.Unlock()

	s.log.Debug().Str("id", id).Msg("Focus abandoned")
	deliver(out)
}

// Holder returns the ID of the current focus holder, or "".
func (s *Stack) Holder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if top, ok := s.topLocked(); ok {
		return top.ID
	}
	return ""
}

func (s *Stack) topLocked() (Request, bool) {
	if len(s.entries) == 0 {
		return Request{}, false
	}
	return s.entries[len(s.entries)-1], true
}

func (s *Stack) removeLocked(id string) bool {
	i := slices.IndexFunc(s.entries, func(r Request) bool { return r.ID == id })
	if i < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// lossFor maps the kind of a new request to what the previous holder gets.
func lossFor(k Kind) Change {
	switch k {
	case GainTransient, GainTransientExclusive:
		return ChangeTransientLoss
	case GainTransientMayDuck:
		return ChangeTransientLossCanDuck
	default:
		return ChangeLoss
	}
}

func deliver(out []delivery) {
	for _, d := range out {
		if d.l != nil {
			d.l.FocusChanged(d.c)
		}
	}
}
