//go:build linux

package mpris

import (
	"sync"

	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavestream/internal/dispatch"
	"github.com/llehouerou/wavestream/internal/playback"
)

// Options configures the adapter.
type Options struct {
	// ArtDir receives the current cover as a PNG for mpris:artUrl.
	// Empty disables cover export.
	ArtDir string
	Logger zerolog.Logger
}

// Adapter exposes the playback session on the session bus as an MPRIS
// media player. Transport calls go through the dispatcher.
type Adapter struct {
	server *server.Server
	player *playerAdapter
	sub    *playback.Subscription
	art    *artWriter
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// New creates and starts a new MPRIS adapter.
func New(service playback.Service, d *dispatch.Dispatcher, opts Options) (*Adapter, error) {
	log := opts.Logger.With().Str("component", "mpris").Logger()
	a := &Adapter{
		player: newPlayerAdapter(service, d),
		sub:    service.Subscribe(),
		art:    newArtWriter(opts.ArtDir),
		log:    log,
	}
	a.server = server.NewServer("wavestream", &rootAdapter{}, a.player)

	go func() {
		if err := a.server.Listen(); err != nil {
			log.Warn().Err(err).Msg("MPRIS server stopped")
		}
	}()

	a.wg.Add(1)
	go a.watch()

	return a, nil
}

// watch keeps the exported cover in step with the session.
func (a *Adapter) watch() {
	defer a.wg.Done()
	for {
		select {
		case ev, ok := <-a.sub.Events:
			if !ok {
				return
			}
			a.handle(ev)
		case <-a.sub.Done:
			return
		}
	}
}

func (a *Adapter) handle(ev playback.Event) {
	switch ev.Kind { //nolint:exhaustive // only cover and stop matter here
	case playback.EventCoverReloaded:
		url, err := a.art.write(ev.Snapshot.Generation, ev.Snapshot.Cover)
		if err != nil {
			a.log.Warn().Err(err).Msg("Failed to export cover")
			return
		}
		a.player.setArtURL(url)
	case playback.EventStatusChanged:
		if ev.Snapshot.State == playback.StateStopped {
			a.art.clear()
			a.player.setArtURL("")
		}
	}
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	err := a.server.Stop()
	a.wg.Wait()
	a.art.clear()
	return err
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Wavestream", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https", "file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/opus"}, nil
}
