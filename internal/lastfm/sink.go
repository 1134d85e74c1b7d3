package lastfm

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavestream/internal/playback"
)

// Last.fm scrobble rules: tracks shorter than minScrobbleDuration are never
// scrobbled, others once half of them or maxScrobbleWait has been heard.
const (
	minScrobbleDuration = 30 * time.Second
	maxScrobbleWait     = 4 * time.Minute
)

// Scrobbler is the part of Client the sink needs.
type Scrobbler interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// Verify Client implements Scrobbler at compile time.
var _ Scrobbler = (*Client)(nil)

// Sink reports the playback session to Last.fm: now playing once the track
// is playing with known metadata, then a scrobble once enough was heard.
// Every fresh load counts as a new play.
type Sink struct {
	client Scrobbler
	now    func() time.Time
	log    zerolog.Logger

	mu    sync.Mutex
	state ScrobbleState
}

// NewSink creates a sink reporting through client.
func NewSink(client Scrobbler, logger zerolog.Logger) *Sink {
	return &Sink{
		client: client,
		now:    time.Now,
		log:    logger.With().Str("component", "lastfm").Logger(),
	}
}

// Run consumes session events until the subscription ends.
func (s *Sink) Run(sub *playback.Subscription) {
	for {
		select {
		case ev := <-sub.Events:
			s.Handle(ev)
		case <-sub.Done:
			return
		}
	}
}

// Handle applies one session event.
func (s *Sink) Handle(ev playback.Event) {
	snap := ev.Snapshot
	if snap.State != playback.StatePlaying || snap.Generation == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Generation != snap.Generation {
		s.state = ScrobbleState{
			Generation: snap.Generation,
			StartedAt:  s.now().Add(-time.Duration(max(snap.PositionMillis, 0)) * time.Millisecond),
		}
	}

	track, ok := s.trackLocked(snap)
	if !ok {
		return
	}

	switch ev.Kind { //nolint:exhaustive // buffering events carry nothing new
	case playback.EventStatusChanged, playback.EventCoverReloaded:
		s.nowPlayingLocked(track)
	case playback.EventPlaying:
		s.nowPlayingLocked(track)
		if shouldScrobble(snap) && !s.state.Scrobbled {
			s.state.Scrobbled = true
			if err := s.client.Scrobble(track); err != nil {
				s.log.Warn().Err(err).Str("track", track.Track).Msg("Scrobble failed")
				return
			}
			s.log.Debug().Str("track", track.Track).Msg("Scrobbled")
		}
	}
}

func (s *Sink) nowPlayingLocked(track ScrobbleTrack) {
	if s.state.NowPlayingSent {
		return
	}
	s.state.NowPlayingSent = true
	if err := s.client.UpdateNowPlaying(track); err != nil {
		s.log.Warn().Err(err).Str("track", track.Track).Msg("Now playing update failed")
	}
}

// trackLocked builds the scrobble payload. Both artist and title are
// required by the API.
func (s *Sink) trackLocked(snap playback.Snapshot) (ScrobbleTrack, bool) {
	md := snap.Metadata
	if md.Artist == "" || md.Title == "" {
		return ScrobbleTrack{}, false
	}
	return ScrobbleTrack{
		Artist:    md.Artist,
		Track:     md.Title,
		Album:     md.Album,
		Duration:  time.Duration(snap.DurationMillis) * time.Millisecond,
		Timestamp: s.state.StartedAt,
	}, true
}

func shouldScrobble(snap playback.Snapshot) bool {
	duration := time.Duration(snap.DurationMillis) * time.Millisecond
	if duration < minScrobbleDuration {
		return false
	}
	heard := time.Duration(snap.PositionMillis) * time.Millisecond
	return heard >= min(duration/2, maxScrobbleWait)
}
