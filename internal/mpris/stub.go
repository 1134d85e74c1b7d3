//go:build !linux

package mpris

import (
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavestream/internal/dispatch"
	"github.com/llehouerou/wavestream/internal/playback"
)

// Options configures the adapter.
type Options struct {
	ArtDir string
	Logger zerolog.Logger
}

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ playback.Service, _ *dispatch.Dispatcher, _ Options) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
