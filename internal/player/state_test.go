package player

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "Idle"},
		{Loaded, "Loaded"},
		{Preparing, "Preparing"},
		{Prepared, "Prepared"},
		{Started, "Started"},
		{Paused, "Paused"},
		{Stopped, "Stopped"},
		{Errored, "Errored"},
		{Released, "Released"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_CanStart(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Idle, false},
		{Loaded, false},
		{Preparing, false},
		{Prepared, true},
		{Started, false},
		{Paused, true},
		{Stopped, false},
		{Released, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.CanStart(); got != tt.want {
				t.Errorf("State.CanStart() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_CanPause(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Prepared, false},
		{Started, true},
		{Paused, false},
		{Stopped, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.CanPause(); got != tt.want {
				t.Errorf("State.CanPause() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_HasOutput(t *testing.T) {
	for _, s := range []State{Prepared, Started, Paused} {
		if !s.HasOutput() {
			t.Errorf("%v.HasOutput() = false, want true", s)
		}
	}
	for _, s := range []State{Idle, Loaded, Preparing, Stopped, Errored, Released} {
		if s.HasOutput() {
			t.Errorf("%v.HasOutput() = true, want false", s)
		}
	}
}
