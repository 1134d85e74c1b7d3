//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavestream/internal/dispatch"
	"github.com/llehouerou/wavestream/internal/playback"
)

type snapshotter interface {
	Snapshot() playback.Snapshot
}

type commander interface {
	Dispatch(req dispatch.Request) error
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	session snapshotter
	cmd     commander

	mu     sync.Mutex
	artURL string
}

func newPlayerAdapter(session snapshotter, cmd commander) *playerAdapter {
	return &playerAdapter{session: session, cmd: cmd}
}

func (p *playerAdapter) setArtURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artURL = url
}

func (p *playerAdapter) dispatch(c dispatch.Command) error {
	return p.cmd.Dispatch(dispatch.Request{Command: c})
}

func (p *playerAdapter) Next() error {
	return p.dispatch(dispatch.CommandNext)
}

func (p *playerAdapter) Previous() error {
	return p.dispatch(dispatch.CommandPrevious)
}

func (p *playerAdapter) Pause() error {
	return p.dispatch(dispatch.CommandPause)
}

func (p *playerAdapter) PlayPause() error {
	return p.dispatch(dispatch.CommandTogglePlayPause)
}

func (p *playerAdapter) Stop() error {
	return p.dispatch(dispatch.CommandStop)
}

func (p *playerAdapter) Play() error {
	return p.dispatch(dispatch.CommandPlay)
}

// Seek moves relative to the current position. It does nothing while the
// position is unknown.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	snap := p.session.Snapshot()
	if snap.PositionMillis == playback.UnknownPosition {
		return nil
	}
	target := max(snap.PositionMillis+int64(offset)/1000, 0)
	return p.cmd.Dispatch(dispatch.Request{Command: dispatch.CommandSeek, PositionMillis: target})
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	if position < 0 {
		return nil
	}
	return p.cmd.Dispatch(dispatch.Request{
		Command:        dispatch.CommandSeek,
		PositionMillis: int64(position) / 1000,
	})
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.session.Snapshot().State), nil
}

// playbackStatus folds session states into the three MPRIS statuses.
// Loading states report Playing since playback is what was asked for.
func playbackStatus(s playback.State) types.PlaybackStatus {
	switch s { //nolint:exhaustive // remaining states are stopped
	case playback.StatePlaying, playback.StateBuffering,
		playback.StateSkippingToNext, playback.StateSkippingToPrevious:
		return types.PlaybackStatusPlaying
	case playback.StatePaused:
		return types.PlaybackStatusPaused
	}
	return types.PlaybackStatusStopped
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.session.Snapshot()
	if snap.StreamURL == "" {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(snap.StreamURL)),
		Length:  types.Microseconds(snap.DurationMillis * 1000),
		Title:   snap.Metadata.Title,
		Album:   snap.Metadata.Album,
	}
	if snap.Metadata.Artist != "" {
		meta.Artist = []string{snap.Metadata.Artist}
	}

	p.mu.Lock()
	meta.ArtUrl = p.artURL
	p.mu.Unlock()

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.session.Snapshot().Volume, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Volume belongs to focus handling
}

func (p *playerAdapter) Position() (int64, error) {
	pos := p.session.Snapshot().PositionMillis
	if pos == playback.UnknownPosition {
		return 0, nil
	}
	return pos * 1000, nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.session.Snapshot().StreamURL != "", nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.session.Snapshot().StreamURL != "", nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.session.Snapshot().StreamURL != "", nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.session.Snapshot().DurationMillis > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(url string) string {
	h := fnv.New64a()
	h.Write([]byte(url))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
