package lastfm

import "time"

// ScrobbleTrack is what Last.fm is told about the stream.
type ScrobbleTrack struct {
	Artist   string
	Track    string
	Album    string
	Duration time.Duration // 0 for live streams
	// Timestamp is when the play started, backdated by the position the
	// sink first saw.
	Timestamp time.Time
}

// ScrobbleState tracks one play, keyed by engine generation.
type ScrobbleState struct {
	Generation     uint64
	StartedAt      time.Time
	Scrobbled      bool
	NowPlayingSent bool
}
