// internal/playback/controller.go
package playback

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavestream/internal/config"
	"github.com/llehouerou/wavestream/internal/focus"
	"github.com/llehouerou/wavestream/internal/keepalive"
	"github.com/llehouerou/wavestream/internal/player"
	"github.com/llehouerou/wavestream/internal/tags"
)

// FocusClientID identifies the controller to the focus arbiter.
const FocusClientID = "wavestream"

var (
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("playback controller closed")
	// ErrBufferingTimeout is reported when buffering outlives the watchdog.
	ErrBufferingTimeout = errors.New("buffering timed out")
)

// Options configures a Controller. Engines and Fetcher are required.
type Options struct {
	URL       string
	Engines   player.Factory
	Fetcher   tags.Fetcher
	Focus     focus.Arbiter  // defaults to a private focus.Stack
	KeepAlive keepalive.Lock // defaults to keepalive.Noop
	Config    config.PlaybackConfig
	// CoverMaxPx scales fetched covers down to fit. 0 keeps them as is.
	CoverMaxPx int
	Logger     zerolog.Logger
}

// Verify Controller implements Service at compile time.
var _ Service = (*Controller)(nil)

// handle is a live engine. A nil *handle means no engine exists.
type handle struct {
	engine player.Engine
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Controller is the playback session state machine. Every state change
// runs on a single goroutine fed by a mailbox: commands post and wait,
// callbacks post and return.
type Controller struct {
	url       string
	newEngine player.Factory
	fetcher   tags.Fetcher
	arbiter   focus.Arbiter
	lock      keepalive.Lock
	cfg       config.PlaybackConfig
	coverMax  uint
	log       zerolog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	mbox      *mailbox
	exited    chan struct{}
	closeOnce sync.Once

	subsMu sync.RWMutex
	subs   []*Subscription
	closed bool

	// last is the snapshot of the last published event, served after Close.
	last atomic.Pointer[Snapshot]

	// Owned by the controller goroutine.
	state          State
	h              *handle
	gen            uint64
	buffered       int64
	cover          image.Image
	meta           Metadata
	volume         float64
	sessionActive  bool
	focusRequested bool
	closing        bool
	reporterRun    uint64
	stopReporter   context.CancelFunc
	watchdogRun    uint64
	watchdog       *time.Timer
}

// New creates a controller in the Idle state and starts its goroutine.
func New(opts Options) *Controller {
	logger := opts.Logger.With().Str("component", "playback").Logger()
	if opts.Focus == nil {
		opts.Focus = focus.NewStack(opts.Logger)
	}
	if opts.KeepAlive == nil {
		opts.KeepAlive = &keepalive.Noop{}
	}
	cfg := (&config.Config{Playback: opts.Config}).GetPlaybackConfig()

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		url:       opts.URL,
		newEngine: opts.Engines,
		fetcher:   opts.Fetcher,
		arbiter:   opts.Focus,
		lock:      opts.KeepAlive,
		cfg:       cfg,
		coverMax:  uint(max(opts.CoverMaxPx, 0)), //nolint:gosec // clamped
		log:       logger,
		ctx:       ctx,
		cancel:    cancel,
		mbox:      newMailbox(),
		exited:    make(chan struct{}),
		state:     StateIdle,
		cover:     tags.Placeholder(""),
		volume:    1,
	}
	snap := c.snapshot()
	c.last.Store(&snap)

	go c.run()
	return c
}

func (c *Controller) run() {
	defer close(c.exited)
	for {
		fn, ok := c.mbox.next()
		if !ok {
			return
		}
		fn()
	}
}

// call runs fn on the controller goroutine and waits for it.
func (c *Controller) call(fn func()) error {
	done := make(chan struct{})
	if !c.mbox.post(func() {
		defer close(done)
		fn()
	}) {
		return ErrClosed
	}
	<-done
	return nil
}

// post runs fn on the controller goroutine without waiting. Posts after
// Close are dropped.
func (c *Controller) post(fn func()) {
	c.mbox.post(fn)
}

// Play starts or resumes playback.
func (c *Controller) Play() error { return c.call(c.play) }

// Pause pauses playback. It does nothing unless playing.
func (c *Controller) Pause() error { return c.call(c.pause) }

// Stop stops playback and releases the engine and every system resource.
func (c *Controller) Stop() error { return c.call(c.stop) }

// PlayPause toggles between playing and paused.
func (c *Controller) PlayPause() error { return c.call(c.playPause) }

// Next reloads the track.
func (c *Controller) Next() error { return c.call(c.next) }

// Previous restarts the track when it has played past the restart
// threshold, and reloads it otherwise.
func (c *Controller) Previous() error { return c.call(c.previous) }

// Seek moves the playback position. The state is unchanged.
func (c *Controller) Seek(positionMillis int64) error {
	return c.call(func() { c.seek(positionMillis) })
}

// State returns the current playback state.
func (c *Controller) State() State {
	return c.Snapshot().State
}

// Snapshot returns a copy of the session state. After Close it returns
// the last published snapshot.
func (c *Controller) Snapshot() Snapshot {
	var s Snapshot
	if err := c.call(func() { s = c.snapshot() }); err != nil {
		return *c.last.Load()
	}
	return s
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	if c.closed {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)
	return sub
}

// Close stops playback and shuts the controller down.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		_ = c.call(func() {
			c.stop()
			c.closing = true
			c.disarmWatchdog()
		})
		c.mbox.close()
		<-c.exited
		c.cancel()

		c.subsMu.Lock()
		for _, sub := range c.subs {
			sub.close()
		}
		c.subs = nil
		c.closed = true
		c.subsMu.Unlock()
	})
	return nil
}

// Controller goroutine only below.

func (c *Controller) play() {
	if c.closing {
		return
	}
	// A failed engine is never resumed, only replaced.
	if c.h != nil && c.state != StateError {
		switch {
		case c.state == StatePaused:
			c.h.engine.Start()
			c.setState(StatePlaying)
			return
		case c.h.engine.IsPlaying():
			c.setState(StatePlaying)
			return
		case c.state == StateBuffering:
			// A load is already in flight.
			return
		}
	}

	c.releaseEngine()
	if err := c.newHandle(); err != nil {
		c.rollback("create engine", err)
		return
	}
	c.sessionActive = true
	c.load()
}

func (c *Controller) newHandle() error {
	c.gen++
	gen := c.gen
	e, err := c.newEngine(&engineListener{c: c, gen: gen})
	if err != nil {
		return err
	}
	e.SetVolume(c.volume)
	ctx, cancel := context.WithCancel(c.ctx)
	c.h = &handle{engine: e, gen: gen, ctx: ctx, cancel: cancel}
	return nil
}

// load starts a fresh load of the stream on the current handle.
func (c *Controller) load() {
	h := c.h
	granted := c.arbiter.Request(focus.Request{
		ID:       FocusClientID,
		Kind:     focus.Gain,
		Listener: focusListener{c: c},
	})
	if !granted {
		c.log.Warn().Msg("Could not get audio focus, playing anyway")
	}
	c.focusRequested = true

	c.setState(StateBuffering)
	if err := c.lock.Acquire(); err != nil {
		c.log.Warn().Err(err).Msg("Keep-alive lock unavailable")
	}

	go c.fetchMetadata(h.ctx, h.gen)
	go c.loadSource(h)
}

func (c *Controller) loadSource(h *handle) {
	err := h.engine.Load(h.ctx, c.url)
	c.post(func() { c.onLoaded(h.gen, err) })
}

func (c *Controller) onLoaded(gen uint64, err error) {
	if !c.current(gen) {
		return
	}
	if err != nil {
		c.rollback("load", err)
		return
	}
	if err := c.h.engine.PrepareAsync(); err != nil {
		c.rollback("prepare", err)
	}
}

func (c *Controller) fetchMetadata(ctx context.Context, gen uint64) {
	md, err := c.fetcher.Fetch(ctx, c.url)
	var cover image.Image
	if err == nil || errors.Is(err, tags.ErrNoTags) {
		cover = c.decodeCover(md)
	}
	c.post(func() { c.onMetadata(gen, md, cover, err) })
}

func (c *Controller) decodeCover(md *tags.Metadata) image.Image {
	img := tags.Cover(md)
	if c.coverMax > 0 {
		img = tags.Thumbnail(img, c.coverMax)
	}
	return img
}

func (c *Controller) onMetadata(gen uint64, md *tags.Metadata, cover image.Image, err error) {
	if !c.current(gen) {
		return
	}
	switch {
	case errors.Is(err, tags.ErrNoTags):
		c.log.Debug().Str("url", c.url).Msg("Stream has no tags")
	case err != nil:
		c.rollback("metadata", err)
		return
	default:
		c.meta = c.meta.merge(md)
	}
	c.cover = cover
	c.publish(EventCoverReloaded, c.state)
}

func (c *Controller) pause() {
	if c.h == nil || c.state != StatePlaying {
		return
	}
	if c.h.engine.IsPlaying() {
		c.h.engine.Pause()
	}
	c.setState(StatePaused)
}

func (c *Controller) stop() {
	if c.h == nil && (c.state == StateIdle || c.state == StateStopped) {
		return
	}
	if c.h != nil && c.h.engine.IsPlaying() {
		c.h.engine.Stop()
	}
	c.teardown()
	c.setState(StateStopped)
}

func (c *Controller) playPause() {
	if c.h == nil || c.state == StatePaused {
		c.play()
		return
	}
	c.pause()
}

func (c *Controller) next() {
	c.releaseEngine()
	c.setState(StateSkippingToNext)
	c.play()
}

func (c *Controller) previous() {
	if c.position() > int64(c.cfg.PreviousRestartMS) {
		c.seek(0)
		return
	}
	c.releaseEngine()
	c.setState(StateSkippingToPrevious)
	c.play()
}

func (c *Controller) seek(positionMillis int64) {
	if c.h == nil {
		return
	}
	c.h.engine.SeekTo(max(positionMillis, 0))
}

// rollback logs a load-phase fault and converges on Stopped.
func (c *Controller) rollback(op string, err error) {
	c.log.Error().Err(err).Str("op", op).Str("url", c.url).Msg("Playback failed, stopping")
	c.teardown()
	c.setState(StateStopped)
}

// teardown releases the engine and every system resource held for it.
func (c *Controller) teardown() {
	c.releaseEngine()
	c.disarmWatchdog()
	if c.lock.Held() {
		if err := c.lock.Release(); err != nil {
			c.log.Warn().Err(err).Msg("Releasing keep-alive lock")
		}
	}
	if c.focusRequested {
		c.focusRequested = false
		c.arbiter.Abandon(FocusClientID)
	}
	c.sessionActive = false
}

func (c *Controller) releaseEngine() {
	c.buffered = 0
	if c.h == nil {
		return
	}
	h := c.h
	c.h = nil
	h.cancel()
	h.engine.Reset()
	h.engine.Release()
}

// current reports whether gen is the live engine handle.
func (c *Controller) current(gen uint64) bool {
	return c.h != nil && c.h.gen == gen
}

func (c *Controller) setState(s State) {
	prev := c.state
	c.state = s

	if s == StatePlaying {
		if c.stopReporter == nil {
			c.startReporter()
		}
	} else {
		c.cancelReporter()
	}
	if s == StateBuffering {
		c.armWatchdog()
	} else {
		c.disarmWatchdog()
	}

	c.log.Debug().Stringer("from", prev).Stringer("to", s).Msg("State changed")
	c.publish(EventStatusChanged, prev)
}

func (c *Controller) setVolume(level float64) {
	c.volume = level
	if c.h != nil {
		c.h.engine.SetVolume(level)
	}
}

func (c *Controller) position() int64 {
	if c.h == nil || !c.state.IsActive() {
		return UnknownPosition
	}
	return c.h.engine.Position()
}

func (c *Controller) duration() int64 {
	if c.h == nil || !c.state.IsActive() {
		return 0
	}
	return c.h.engine.Duration()
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		State:          c.state,
		PositionMillis: c.position(),
		DurationMillis: c.duration(),
		Cover:          c.cover,
		Metadata:       c.meta,
		Volume:         c.volume,
		SessionActive:  c.sessionActive,
		StreamURL:      c.url,
	}
	if c.h != nil {
		s.Generation = c.h.gen
		s.BufferedMillis = c.buffered
	}
	return s
}

func (c *Controller) publish(kind EventKind, prev State) {
	snap := c.snapshot()
	c.last.Store(&snap)
	e := Event{Kind: kind, Previous: prev, Snapshot: snap}

	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.send(e)
	}
}
