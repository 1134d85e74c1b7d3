package cli

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavestream/internal/config"
	"github.com/llehouerou/wavestream/internal/dispatch"
	"github.com/llehouerou/wavestream/internal/errmsg"
	"github.com/llehouerou/wavestream/internal/focus"
	"github.com/llehouerou/wavestream/internal/keepalive"
	"github.com/llehouerou/wavestream/internal/lastfm"
	"github.com/llehouerou/wavestream/internal/mpris"
	"github.com/llehouerou/wavestream/internal/notify"
	"github.com/llehouerou/wavestream/internal/playback"
	"github.com/llehouerou/wavestream/internal/player"
	"github.com/llehouerou/wavestream/internal/tags"
)

// sessionOptions configures openSession.
type sessionOptions struct {
	URL    string
	Config *config.Config
	// Engines defaults to stream engines.
	Engines player.Factory
	// Fetcher defaults to an HTTP tag fetcher.
	Fetcher tags.Fetcher
	Logger  zerolog.Logger
}

// session is a running controller and every surface attached to it.
type session struct {
	ctrl       *playback.Controller
	dispatcher *dispatch.Dispatcher
	log        zerolog.Logger
	closers    []func()
	wg         sync.WaitGroup
}

// openSession builds the controller and attaches the optional surfaces
// the config enables. Surfaces that fail to start are logged and skipped.
func openSession(opts sessionOptions) *session {
	cfg := opts.Config
	log := opts.Logger
	meta := cfg.GetMetadataConfig()
	pb := cfg.GetPlaybackConfig()

	engines := opts.Engines
	if engines == nil {
		engines = player.NewStreamFactory(player.StreamOptions{
			PrepareBytes: pb.PrepareBytes,
			Logger:       log,
		})
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = tags.NewHTTPFetcher(tags.FetcherOptions{
			ProbeBytes: meta.ProbeBytes,
			Logger:     log,
		})
	}

	s := &session{log: log}

	arbiter := focus.NewStack(log)
	if stop, err := focus.WatchSleep(arbiter, log); err != nil {
		log.Debug().Err(err).Msg("Sleep watcher unavailable")
	} else {
		s.closers = append(s.closers, stop)
	}

	s.ctrl = playback.New(playback.Options{
		URL:        opts.URL,
		Engines:    engines,
		Fetcher:    fetcher,
		Focus:      arbiter,
		KeepAlive:  keepalive.New("wavestream", "Playing audio"),
		Config:     pb,
		CoverMaxPx: meta.CoverMaxPx,
		Logger:     log,
	})
	s.dispatcher = dispatch.New(s.ctrl, log)

	if cfg.MPRISEnabled() {
		s.attachMPRIS()
	}
	if cfg.NotificationsEnabled() {
		s.attachNotifications(cfg)
	}
	if cfg.HasLastfmConfig() {
		s.attachLastfm(cfg)
	}
	return s
}

func (s *session) attachMPRIS() {
	adapter, err := mpris.New(s.ctrl, s.dispatcher, mpris.Options{
		ArtDir: config.CacheDir(),
		Logger: s.log,
	})
	if err != nil {
		s.log.Warn().Msg(errmsg.Format(errmsg.OpMediaControls, err))
		return
	}
	s.closers = append(s.closers, func() { _ = adapter.Close() })
}

func (s *session) attachNotifications(cfg *config.Config) {
	n, err := notify.New()
	if err != nil {
		s.log.Warn().Msg(errmsg.Format(errmsg.OpNotifications, err))
		return
	}
	p := notify.NewPresenter(n, notify.PresenterOptions{
		IconDir:  config.CacheDir(),
		Timeout:  cfg.NotificationTimeout(),
		Commands: s.dispatcher,
		Logger:   s.log,
	})
	s.goRun(p.Run)
	s.closers = append(s.closers, n.Shutdown)
}

func (s *session) attachLastfm(cfg *config.Config) {
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	client.SetSessionKey(cfg.Lastfm.SessionKey)
	s.goRun(lastfm.NewSink(client, s.log).Run)
}

// goRun starts fn on a fresh subscription. Close waits for it to return,
// which happens once the controller ends the subscription.
func (s *session) goRun(fn func(sub *playback.Subscription)) {
	sub := s.ctrl.Subscribe()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(sub)
	}()
}

// Close stops the controller, which ends every subscription, waits for the
// subscribers and detaches the remaining surfaces in reverse order.
func (s *session) Close() {
	if err := s.ctrl.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Closing playback")
	}
	s.wg.Wait()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
