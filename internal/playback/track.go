package playback

import (
	"image"

	"github.com/llehouerou/wavestream/internal/tags"
)

// UnknownPosition is reported as the position when no track is playing or
// paused.
const UnknownPosition int64 = -1

// Metadata is the now-playing information of the track.
// This is a copy of the data, not a reference to tags.Metadata.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// merge overwrites fields for which m carries a value, so known values
// survive a fetch that returns less.
func (md Metadata) merge(m *tags.Metadata) Metadata {
	if m == nil {
		return md
	}
	if m.Title != "" {
		md.Title = m.Title
	}
	if m.Artist != "" {
		md.Artist = m.Artist
	}
	if m.Album != "" {
		md.Album = m.Album
	}
	return md
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	State State

	// PositionMillis is UnknownPosition unless State is Playing or Paused.
	PositionMillis int64
	// DurationMillis is 0 unless State is Playing or Paused.
	DurationMillis int64
	// BufferedMillis is 0 while no engine exists.
	BufferedMillis int64

	// Cover is a placeholder until a fetch completes.
	Cover    image.Image
	Metadata Metadata

	// Generation identifies the live engine handle, 0 when there is none.
	Generation    uint64
	Volume        float64
	SessionActive bool
	StreamURL     string
}
