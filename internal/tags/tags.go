// Package tags fetches now-playing metadata and cover art for a stream.
// Tags are read from the head of the source only, so a remote track never
// has to be downloaded in full.
package tags

import (
	"context"
	"errors"
)

// MIME types of embedded pictures.
const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeWebP = "image/webp"
)

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// ErrNoTags is returned when the source carries no recognizable tags.
// Callers treat it as "keep the previous metadata", not as a failure.
var ErrNoTags = errors.New("no tags found")

// Metadata describes the track behind a stream.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int

	// Cover is the embedded picture, if any, with its MIME type.
	Cover     []byte
	CoverMIME string
}

// HasCover reports whether an embedded picture was found.
func (m *Metadata) HasCover() bool {
	return m != nil && len(m.Cover) > 0
}

// Fetcher retrieves metadata for a stream address.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Metadata, error)
}
