package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "wavestream"

// Completion policies for a track that plays to the end.
const (
	CompletionNext = "next" // skip forward, which replays the single track
	CompletionStop = "stop"
)

type Config struct {
	StreamURL string `koanf:"stream_url"` // played when no URL is given on the command line
	LogLevel  string `koanf:"log_level"`  // zerolog level name (default: "info")
	LogFile   string `koanf:"log_file"`   // empty logs to stderr

	Playback PlaybackConfig `koanf:"playback"`

	// Metadata fetch settings
	Metadata MetadataConfig `koanf:"metadata"`

	// Desktop notifications (default: enabled)
	Notifications NotificationsConfig `koanf:"notifications"`

	// Last.fm now-playing updates (enabled when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// MPRIS remote control (default: enabled)
	MPRIS MPRISConfig `koanf:"mpris"`
}

// PlaybackConfig holds session controller settings.
type PlaybackConfig struct {
	TickIntervalMS     int     `koanf:"tick_interval_ms"`     // position report cadence (default: 250)
	PreviousRestartMS  int     `koanf:"previous_restart_ms"`  // past this position, previous restarts the track (default: 3000)
	DuckVolume         float64 `koanf:"duck_volume"`          // output level while ducked (0.0-1.0, default: 0.1)
	OnCompletion       string  `koanf:"on_completion"`        // "next" or "stop" (default: "next")
	BufferingTimeoutMS int     `koanf:"buffering_timeout_ms"` // stop if buffering stalls this long (default: 0, disabled)
	PrepareBytes       int     `koanf:"prepare_bytes"`        // bytes buffered before playback starts (default: 131072)
}

// MetadataConfig holds tag fetching settings.
type MetadataConfig struct {
	ProbeBytes int `koanf:"probe_bytes"`  // bytes read from the head of the stream (default: 524288)
	CoverMaxPx int `koanf:"cover_max_px"` // covers are scaled down to fit (default: 512)
}

// NotificationsConfig holds desktop notification settings.
type NotificationsConfig struct {
	Enabled *bool `koanf:"enabled"`
	Timeout int   `koanf:"timeout_ms"` // default: 5000
}

// LastfmConfig holds Last.fm configuration.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

// MPRISConfig holds MPRIS settings.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"`
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given config files in order (last wins). Missing files
// are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		LogLevel: "info",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	cfg.StreamURL = expandPath(cfg.StreamURL)
	cfg.LogFile = expandPath(cfg.LogFile)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/wavestream/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// CacheDir returns the directory for generated files such as exported covers.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, appName)
}

// HasLastfmConfig returns true if Last.fm now-playing updates are configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != "" && c.Lastfm.SessionKey != ""
}

// NotificationsEnabled returns whether desktop notifications are on.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// NotificationTimeout returns the notification display time.
func (c *Config) NotificationTimeout() time.Duration {
	if c.Notifications.Timeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Notifications.Timeout) * time.Millisecond
}

// MPRISEnabled returns whether the MPRIS surface is exported.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	// Apply defaults
	if cfg.TickIntervalMS <= 0 {
		cfg.TickIntervalMS = 250
	}
	if cfg.PreviousRestartMS <= 0 {
		cfg.PreviousRestartMS = 3000
	}
	if cfg.DuckVolume <= 0 || cfg.DuckVolume > 1 {
		cfg.DuckVolume = 0.1
	}
	if cfg.OnCompletion != CompletionNext && cfg.OnCompletion != CompletionStop {
		cfg.OnCompletion = CompletionNext
	}
	if cfg.BufferingTimeoutMS < 0 {
		cfg.BufferingTimeoutMS = 0
	}
	if cfg.PrepareBytes <= 0 {
		cfg.PrepareBytes = 128 * 1024
	}

	return cfg
}

// GetMetadataConfig returns the metadata configuration with defaults applied.
func (c *Config) GetMetadataConfig() MetadataConfig {
	cfg := c.Metadata

	if cfg.ProbeBytes <= 0 {
		cfg.ProbeBytes = 512 * 1024
	}
	if cfg.CoverMaxPx <= 0 {
		cfg.CoverMaxPx = 512
	}

	return cfg
}

// TickInterval returns the position report cadence.
func (p PlaybackConfig) TickInterval() time.Duration {
	return time.Duration(p.TickIntervalMS) * time.Millisecond
}

// BufferingTimeout returns the buffering watchdog delay, 0 when disabled.
func (p PlaybackConfig) BufferingTimeout() time.Duration {
	return time.Duration(p.BufferingTimeoutMS) * time.Millisecond
}
