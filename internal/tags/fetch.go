package tags

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog"
)

const (
	defaultProbeBytes = 512 * 1024
	// maxProbeBytes bounds how far a large ID3 tag (big embedded covers) is
	// followed.
	maxProbeBytes = 8 * 1024 * 1024
)

// FetcherOptions configures an HTTPFetcher.
type FetcherOptions struct {
	Client *http.Client
	// ProbeBytes is how much of the source head is read for tags.
	ProbeBytes int
	Logger     zerolog.Logger
}

// Verify HTTPFetcher implements Fetcher at compile time.
var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher reads tags from the head of an HTTP(S) resource with a Range
// request, or from a local file.
type HTTPFetcher struct {
	client     *http.Client
	probeBytes int
	log        zerolog.Logger
}

// NewHTTPFetcher creates a fetcher.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.ProbeBytes <= 0 {
		opts.ProbeBytes = defaultProbeBytes
	}
	return &HTTPFetcher{
		client:     opts.Client,
		probeBytes: opts.ProbeBytes,
		log:        opts.Logger.With().Str("component", "tags").Logger(),
	}
}

// head is the start of a source plus what the server said about it.
type head struct {
	data   []byte
	header http.Header
}

// Fetch returns the metadata of src. It returns ErrNoTags when the source
// has no tags and the server sent no station headers either.
func (f *HTTPFetcher) Fetch(ctx context.Context, src string) (*Metadata, error) {
	h, err := f.readHead(ctx, src, f.probeBytes)
	if err != nil {
		return nil, err
	}
	if need := id3Size(h.data); need > len(h.data) && len(h.data) == f.probeBytes {
		if need > maxProbeBytes {
			f.log.Debug().Int("size", need).Msg("ID3 tag larger than probe limit, truncating")
			need = maxProbeBytes
		}
		if h, err = f.readHead(ctx, src, need); err != nil {
			return nil, err
		}
	}

	m, err := parse(h.data)
	if errors.Is(err, ErrNoTags) {
		if icy := icyMetadata(h.header); icy != nil {
			return icy, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if m.Title == "" {
		m.Title = titleFromURL(src)
	}
	if !m.HasCover() {
		m.Cover, m.CoverMIME = FolderCover(src)
	}
	return m, nil
}

func (f *HTTPFetcher) readHead(ctx context.Context, src string, n int) (*head, error) {
	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Range", "bytes=0-"+strconv.Itoa(n-1))
		req.Header.Set("Icy-MetaData", "0")
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching tags: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
			return nil, fmt.Errorf("fetching tags: unexpected status %s", resp.Status)
		}
		// Servers ignoring Range (live streams) are cut off at n bytes.
		data, err := io.ReadAll(io.LimitReader(resp.Body, int64(n)))
		if err != nil && len(data) == 0 {
			return nil, fmt.Errorf("reading tags: %w", err)
		}
		return &head{data: data, header: resp.Header}, nil
	}

	p := src
	if err == nil && u.Scheme == "file" {
		p = u.Path
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, int64(n)))
	if err != nil {
		return nil, err
	}
	return &head{data: data}, nil
}

// parse reads tags from the head of a source with dhowden/tag, falling
// back to a dedicated ID3v2 parser for tags it rejects.
func parse(data []byte) (*Metadata, error) {
	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		if bytes.HasPrefix(data, []byte(id3Magic)) {
			return readID3v2(data)
		}
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, ErrNoTags
		}
		return nil, fmt.Errorf("parsing tags: %w", err)
	}

	md := &Metadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Genre:  m.Genre(),
		Year:   m.Year(),
	}
	if md.Artist == "" {
		md.Artist = m.AlbumArtist()
	}
	if pic := m.Picture(); pic != nil {
		md.Cover = pic.Data
		md.CoverMIME = pic.MIMEType
	}
	return md, nil
}

// id3Size returns the full size of a leading ID3v2 tag, or 0.
func id3Size(data []byte) int {
	if len(data) < 10 || !bytes.HasPrefix(data, []byte(id3Magic)) {
		return 0
	}
	// Size is a 28-bit syncsafe integer.
	size := int(data[6]&0x7f)<<21 | int(data[7]&0x7f)<<14 | int(data[8]&0x7f)<<7 | int(data[9]&0x7f)
	size += 10
	if data[5]&0x10 != 0 {
		size += 10 // footer
	}
	return size
}

// icyMetadata builds metadata from Icecast/Shoutcast station headers.
func icyMetadata(h http.Header) *Metadata {
	name := h.Get("icy-name")
	if name == "" {
		return nil
	}
	return &Metadata{
		Title:  name,
		Artist: h.Get("icy-description"),
		Genre:  h.Get("icy-genre"),
	}
}

func titleFromURL(src string) string {
	p := src
	if u, err := url.Parse(src); err == nil {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return base
}
