//nolint:goconst // test cases intentionally repeat strings for readability
package keymap

import (
	"slices"
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(Bindings)

	tests := []struct {
		key      string
		expected Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"p", ActionPlayPause},
		{"s", ActionStop},
		{"pgdown", ActionNextTrack},
		{"pgup", ActionPrevTrack},
		{"right", ActionSeekForward},
		{"shift+left", ActionSeekBackLong},
		{"unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if result := r.Resolve(tt.key); result != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.key, result, tt.expected)
			}
		})
	}
}

func TestResolver_KeysFor(t *testing.T) {
	r := NewResolver(Bindings)

	quitKeys := r.KeysFor(ActionQuit)
	if !slices.Contains(quitKeys, "q") || !slices.Contains(quitKeys, "ctrl+c") {
		t.Errorf("KeysFor(ActionQuit) = %v, expected to contain 'q' and 'ctrl+c'", quitKeys)
	}
	if keys := r.KeysFor(Action("unknown")); keys != nil {
		t.Errorf("KeysFor(unknown) = %v, want nil", keys)
	}
}

func TestResolver_DeduplicatesKeys(t *testing.T) {
	bindings := []Binding{
		{ActionStop, []string{"s", "x"}, "Stop", "playback"},
		{ActionStop, []string{"s"}, "Stop", "global"},
	}

	keys := NewResolver(bindings).KeysFor(ActionStop)
	if !slices.Equal(keys, []string{"s", "x"}) {
		t.Errorf("KeysFor(ActionStop) = %v, want [s x]", keys)
	}
}

func TestResolver_Help(t *testing.T) {
	r := NewResolver(Bindings)

	help := r.Help("playback")
	if len(help) != len(ByContext("playback")) {
		t.Fatalf("Help(playback) returned %d bindings, want %d", len(help), len(ByContext("playback")))
	}
	first := help[0].Help()
	if first.Key != "space" || first.Desc != "Play/pause" {
		t.Errorf("first help = %+v, want space/Play/pause", first)
	}
	if !slices.Contains(help[0].Keys(), "p") {
		t.Errorf("first binding keys = %v, want to contain p", help[0].Keys())
	}

	if got := r.Help("unknown"); got != nil {
		t.Errorf("Help(unknown) = %v, want nil", got)
	}
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"no duplicates", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"with duplicates", []string{"a", "b", "a", "c", "b"}, []string{"a", "b", "c"}},
		{"all duplicates", []string{"a", "a", "a"}, []string{"a"}},
		{"empty slice", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := dedupe(tt.input); !slices.Equal(result, tt.expected) {
				t.Errorf("dedupe(%v) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestResolver_EmptyBindings(t *testing.T) {
	r := NewResolver([]Binding{})

	if action := r.Resolve("q"); action != "" {
		t.Errorf("Resolve on empty resolver should return empty, got %q", action)
	}
	if keys := r.KeysFor(ActionQuit); keys != nil {
		t.Errorf("KeysFor on empty resolver should return nil, got %v", keys)
	}
}
