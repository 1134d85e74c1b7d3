//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music/track.mp3",
			expected: filepath.Join(home, "music", "track.mp3"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "url unchanged",
			input:    "https://example.com/stream.mp3",
			expected: "https://example.com/stream.mp3",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() returned %d paths, want 2", len(paths))
	}

	// Last path should be local config.toml
	if paths[1] != "config.toml" {
		t.Errorf("last config path = %q, want %q", paths[1], "config.toml")
	}
	if filepath.Base(filepath.Dir(paths[0])) != appName {
		t.Errorf("first config path = %q, want it under %q", paths[0], appName)
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	writeFile(t, base, `
stream_url = "https://example.com/a.mp3"
log_level = "debug"

[playback]
tick_interval_ms = 500
on_completion = "stop"

[lastfm]
api_key = "key"
`)
	writeFile(t, override, `
stream_url = "https://example.com/b.mp3"

[mpris]
enabled = false
`)

	cfg, err := LoadFrom(base, override, filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.StreamURL != "https://example.com/b.mp3" {
		t.Errorf("StreamURL = %q, want override value", cfg.StreamURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Playback.TickIntervalMS != 500 {
		t.Errorf("TickIntervalMS = %d, want 500", cfg.Playback.TickIntervalMS)
	}
	if cfg.Playback.OnCompletion != CompletionStop {
		t.Errorf("OnCompletion = %q, want %q", cfg.Playback.OnCompletion, CompletionStop)
	}
	if cfg.MPRISEnabled() {
		t.Error("MPRISEnabled() = true, want false")
	}
	if !cfg.NotificationsEnabled() {
		t.Error("NotificationsEnabled() = false, want default true")
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, p, "stream_url = ")

	if _, err := LoadFrom(p); err == nil {
		t.Error("LoadFrom() expected error for invalid TOML")
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom()
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestHasLastfmConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name: "all set",
			config: Config{
				Lastfm: LastfmConfig{
					APIKey:     "my-api-key",
					APISecret:  "my-api-secret",
					SessionKey: "my-session",
				},
			},
			expected: true,
		},
		{
			name: "no session key",
			config: Config{
				Lastfm: LastfmConfig{
					APIKey:    "my-api-key",
					APISecret: "my-api-secret",
				},
			},
			expected: false,
		},
		{
			name:     "neither set",
			config:   Config{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.HasLastfmConfig()
			if result != tt.expected {
				t.Errorf("HasLastfmConfig() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetPlaybackConfig_Defaults(t *testing.T) {
	cfg := Config{}
	p := cfg.GetPlaybackConfig()

	if p.TickInterval() != 250*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 250ms", p.TickInterval())
	}
	if p.PreviousRestartMS != 3000 {
		t.Errorf("PreviousRestartMS = %d, want 3000", p.PreviousRestartMS)
	}
	if p.DuckVolume != 0.1 {
		t.Errorf("DuckVolume = %f, want 0.1", p.DuckVolume)
	}
	if p.OnCompletion != CompletionNext {
		t.Errorf("OnCompletion = %q, want %q", p.OnCompletion, CompletionNext)
	}
	if p.BufferingTimeout() != 0 {
		t.Errorf("BufferingTimeout() = %v, want disabled", p.BufferingTimeout())
	}
	if p.PrepareBytes != 128*1024 {
		t.Errorf("PrepareBytes = %d, want %d", p.PrepareBytes, 128*1024)
	}
}

func TestGetPlaybackConfig_CustomValues(t *testing.T) {
	cfg := Config{
		Playback: PlaybackConfig{
			TickIntervalMS:     100,
			PreviousRestartMS:  5000,
			DuckVolume:         0.3,
			OnCompletion:       CompletionStop,
			BufferingTimeoutMS: 15000,
			PrepareBytes:       4096,
		},
	}
	p := cfg.GetPlaybackConfig()

	if p.TickInterval() != 100*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 100ms", p.TickInterval())
	}
	if p.PreviousRestartMS != 5000 {
		t.Errorf("PreviousRestartMS = %d, want 5000", p.PreviousRestartMS)
	}
	if p.DuckVolume != 0.3 {
		t.Errorf("DuckVolume = %f, want 0.3", p.DuckVolume)
	}
	if p.OnCompletion != CompletionStop {
		t.Errorf("OnCompletion = %q, want %q", p.OnCompletion, CompletionStop)
	}
	if p.BufferingTimeout() != 15*time.Second {
		t.Errorf("BufferingTimeout() = %v, want 15s", p.BufferingTimeout())
	}
}

func TestGetPlaybackConfig_InvalidValues(t *testing.T) {
	cfg := Config{
		Playback: PlaybackConfig{
			DuckVolume:         1.5,
			OnCompletion:       "loop",
			BufferingTimeoutMS: -1,
		},
	}
	p := cfg.GetPlaybackConfig()

	if p.DuckVolume != 0.1 {
		t.Errorf("DuckVolume = %f, want 0.1", p.DuckVolume)
	}
	if p.OnCompletion != CompletionNext {
		t.Errorf("OnCompletion = %q, want %q", p.OnCompletion, CompletionNext)
	}
	if p.BufferingTimeoutMS != 0 {
		t.Errorf("BufferingTimeoutMS = %d, want 0", p.BufferingTimeoutMS)
	}
}

func TestGetMetadataConfig_Defaults(t *testing.T) {
	cfg := Config{}
	m := cfg.GetMetadataConfig()

	if m.ProbeBytes != 512*1024 {
		t.Errorf("ProbeBytes = %d, want %d", m.ProbeBytes, 512*1024)
	}
	if m.CoverMaxPx != 512 {
		t.Errorf("CoverMaxPx = %d, want 512", m.CoverMaxPx)
	}
}

func TestNotificationTimeout(t *testing.T) {
	cfg := Config{}
	if cfg.NotificationTimeout() != 5*time.Second {
		t.Errorf("NotificationTimeout() = %v, want 5s", cfg.NotificationTimeout())
	}
	cfg.Notifications.Timeout = 1500
	if cfg.NotificationTimeout() != 1500*time.Millisecond {
		t.Errorf("NotificationTimeout() = %v, want 1.5s", cfg.NotificationTimeout())
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
