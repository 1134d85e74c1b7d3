package player

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extOGA  = ".oga"
	extOPUS = ".opus"
	extM4A  = ".m4a"
	extM4B  = ".m4b"
	extMP4  = ".mp4"

	defaultPrepareBytes = 128 * 1024
)

type sourceKind int

const (
	kindMP3 sourceKind = iota
	kindFLAC
	kindOgg
	kindM4A
)

// needsWholeSource reports whether the decoder needs random access to the
// complete source before it can start.
func (k sourceKind) needsWholeSource() bool {
	return k == kindM4A
}

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// StreamOptions configures engines built by NewStreamFactory.
type StreamOptions struct {
	// Client fetches HTTP sources. Nil uses a client tuned for long-lived
	// streams.
	Client *http.Client
	// PrepareBytes is how much must be buffered before Prepared fires.
	PrepareBytes int
	Logger       zerolog.Logger
}

// NewStreamFactory returns a Factory building beep-backed stream engines.
func NewStreamFactory(opts StreamOptions) Factory {
	if opts.Client == nil {
		opts.Client = newStreamClient()
	}
	if opts.PrepareBytes <= 0 {
		opts.PrepareBytes = defaultPrepareBytes
	}
	return func(l Listener) (Engine, error) {
		return NewStreamEngine(l, opts), nil
	}
}

func newStreamClient() *http.Client {
	return &http.Client{
		Timeout: 0, // streams are long-lived
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConns:          4,
			IdleConnTimeout:       90 * time.Second,
			DisableCompression:    true,
		},
	}
}

// StreamEngine plays one MP3, FLAC or Ogg (Vorbis, Opus) source, local or
// over HTTP, or a local M4A (AAC, ALAC) file.
type StreamEngine struct {
	mu sync.Mutex

	listener     Listener
	client       *http.Client
	prepareBytes int
	log          zerolog.Logger

	state State
	run   uint64 // bumped on Reset so stale goroutines drop their results
	ctx   context.Context
	stop  context.CancelFunc

	url   string
	kind  sourceKind
	body  io.ReadCloser
	spool *spool

	format   beep.Format
	length   int // decoder length in samples, 0 when unknown
	pump     *pump
	streamer *pumpStreamer
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64
	seekCh   chan int64
	done     chan struct{}
}

// NewStreamEngine creates an idle engine.
func NewStreamEngine(l Listener, opts StreamOptions) *StreamEngine {
	if opts.Client == nil {
		opts.Client = newStreamClient()
	}
	if opts.PrepareBytes <= 0 {
		opts.PrepareBytes = defaultPrepareBytes
	}
	e := &StreamEngine{
		listener:     l,
		client:       opts.Client,
		prepareBytes: opts.PrepareBytes,
		log:          opts.Logger.With().Str("component", "engine").Logger(),
		level:        1,
		seekCh:       make(chan int64, 1),
		done:         make(chan struct{}),
	}
	go e.seekLoop()
	return e
}

// State returns the engine lifecycle state.
func (e *StreamEngine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Load opens src. HTTP(S) URLs are requested with ctx; anything else is
// treated as a local path or file:// URL.
func (e *StreamEngine) Load(ctx context.Context, src string) error {
	e.mu.Lock()
	if e.state == Released {
		e.mu.Unlock()
		return ErrReleased
	}
	if e.state != Idle {
		e.mu.Unlock()
		return fmt.Errorf("load in state %v: %w", e.state, ErrNotLoaded)
	}
	run := e.run
	runCtx, cancel := context.WithCancel(context.Background())
	e.ctx, e.stop = runCtx, cancel
	e.mu.Unlock()

	// Tie the request to both the caller and the engine lifetime.
	reqCtx, reqCancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-runCtx.Done():
			reqCancel()
		case <-reqCtx.Done():
		}
	}()

	body, total, kind, err := e.open(reqCtx, src)
	if err != nil {
		reqCancel()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run != run || e.state != Idle {
		reqCancel()
		body.Close()
		return ErrReleased
	}
	e.url = src
	e.kind = kind
	e.body = &cancelOnClose{ReadCloser: body, cancel: reqCancel}
	e.spool = newSpool(total)
	e.state = Loaded
	e.log.Debug().Str("url", src).Int64("size", total).Msg("Source loaded")
	return nil
}

func (e *StreamEngine) open(ctx context.Context, src string) (io.ReadCloser, int64, sourceKind, error) {
	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, 0, 0, &Error{Code: CodeIO, Op: "request", Err: err}
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return nil, 0, 0, &Error{Code: CodeIO, Op: "request", Err: err}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, 0, 0, &Error{Code: CodeIO, Op: "request", Err: fmt.Errorf("unexpected status %s", resp.Status)}
		}
		kind, err := detectKind(resp.Header.Get("Content-Type"), u.Path)
		if err == nil && kind.needsWholeSource() {
			err = fmt.Errorf("%w: m4a over http", ErrUnsupportedFormat)
		}
		if err != nil {
			resp.Body.Close()
			return nil, 0, 0, &Error{Code: CodeUnsupported, Op: "open", Err: err}
		}
		return resp.Body, resp.ContentLength, kind, nil
	}

	p := src
	if err == nil && u.Scheme == "file" {
		p = u.Path
	}
	kind, err := detectKind("", p)
	if err != nil {
		return nil, 0, 0, &Error{Code: CodeUnsupported, Op: "open", Err: err}
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, 0, &Error{Code: CodeIO, Op: "open", Err: err}
	}
	size := int64(-1)
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	return f, size, kind, nil
}

// detectKind picks a decoder from the Content-Type, falling back to the
// path extension. Unknown types default to MP3, the common stream format.
func detectKind(contentType, p string) (sourceKind, error) {
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mt {
			case "audio/mpeg", "audio/mp3", "audio/mpeg3":
				return kindMP3, nil
			case "audio/flac", "audio/x-flac":
				return kindFLAC, nil
			case "audio/ogg", "application/ogg", "audio/opus", "audio/vorbis":
				return kindOgg, nil
			case "audio/mp4", "audio/m4a", "audio/x-m4a":
				return kindM4A, nil
			}
		}
	}
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case extMP3:
		return kindMP3, nil
	case extFLAC:
		return kindFLAC, nil
	case extOGG, extOGA, extOPUS:
		return kindOgg, nil
	case extM4A, extM4B, extMP4:
		return kindM4A, nil
	case "":
		return kindMP3, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// PrepareAsync starts the download and decoder; Prepared fires once
// PrepareBytes are buffered and the stream header decoded.
func (e *StreamEngine) PrepareAsync() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Released:
		return ErrReleased
	case Loaded:
	default:
		return fmt.Errorf("prepare in state %v: %w", e.state, ErrNotLoaded)
	}
	e.state = Preparing
	run := e.run
	sp := e.spool
	body := e.body
	go sp.fill(body, func(pct int) { e.progress(run, pct) })
	go e.prepare(run, e.kind, sp)
	return nil
}

func (e *StreamEngine) prepare(run uint64, kind sourceKind, sp *spool) {
	var err error
	if kind.needsWholeSource() {
		err = sp.waitDone()
	} else {
		err = sp.waitFor(e.prepareBytes)
	}
	if err != nil {
		e.fail(run, &Error{Code: CodeIO, Op: "buffer", Err: err})
		return
	}

	counter := &countingReader{r: sp.reader()}
	dec, format, err := decode(kind, sp, counter)
	if err != nil {
		e.fail(run, &Error{Code: CodeDecode, Op: "decode", Err: err})
		return
	}

	e.mu.Lock()
	if e.run != run || e.state != Preparing {
		e.mu.Unlock()
		dec.Close()
		return
	}
	e.format = format
	e.length = dec.Len()
	e.pump = startPump(e.ctx, dec, counter, 0)
	e.streamer = newPumpStreamer(e.pump, 0)
	e.state = Prepared
	l := e.listener
	e.mu.Unlock()

	e.log.Debug().Int("sample_rate", int(format.SampleRate)).Msg("Stream prepared")
	l.Prepared()
}

// decode opens a decoder from the start of sp. Forward-only decoders read
// through r so the bytes they consume are counted.
func decode(kind sourceKind, sp *spool, r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch kind {
	case kindFLAC:
		return flac.Decode(r)
	case kindOgg:
		return decodeOgg(r)
	case kindM4A:
		return decodeM4A(sp.seeker())
	default:
		return decodeMP3(r)
	}
}

func (e *StreamEngine) progress(run uint64, pct int) {
	e.mu.Lock()
	stale := e.run != run
	l := e.listener
	e.mu.Unlock()
	if !stale {
		l.BufferingProgress(pct)
	}
}

// fail moves the engine to Errored and reports err, unless run is stale.
func (e *StreamEngine) fail(run uint64, err error) {
	e.mu.Lock()
	if e.run != run || e.state == Errored || e.state == Released || e.state == Idle {
		e.mu.Unlock()
		return
	}
	e.detachLocked()
	e.state = Errored
	l := e.listener
	e.mu.Unlock()

	e.log.Debug().Err(err).Msg("Engine failed")
	l.Failed(err)
}

// finish runs when the speaker drains the stream.
func (e *StreamEngine) finish(run uint64) {
	e.mu.Lock()
	if e.run != run || e.state != Started {
		e.mu.Unlock()
		return
	}
	var err error
	if e.streamer != nil {
		err = e.streamer.Err()
	}
	e.mu.Unlock()

	if err != nil {
		e.fail(run, &Error{Code: CodeDecode, Op: "stream", Err: err})
		return
	}

	e.mu.Lock()
	if e.run != run || e.state != Started {
		e.mu.Unlock()
		return
	}
	e.detachLocked()
	e.state = Stopped
	l := e.listener
	e.mu.Unlock()
	l.Completed()
}

func initSpeaker(rate beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return err
	}
	speakerSampleRate = rate
	speakerInitialized = true
	return nil
}

// cancelOnClose cancels the request context when the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
