package playback

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StateBuffering, "Buffering"},
		{StatePlaying, "Playing"},
		{StatePaused, "Paused"},
		{StateSkippingToNext, "SkippingToNext"},
		{StateSkippingToPrevious, "SkippingToPrevious"},
		{StateStopped, "Stopped"},
		{StateError, "Error"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_IsActive(t *testing.T) {
	for s := StateIdle; s <= StateError; s++ {
		want := s == StatePlaying || s == StatePaused
		if got := s.IsActive(); got != want {
			t.Errorf("%v.IsActive() = %v, want %v", s, got, want)
		}
	}
}

func TestState_IsTransient(t *testing.T) {
	for s := StateIdle; s <= StateError; s++ {
		want := s == StateSkippingToNext || s == StateSkippingToPrevious
		if got := s.IsTransient(); got != want {
			t.Errorf("%v.IsTransient() = %v, want %v", s, got, want)
		}
	}
}
