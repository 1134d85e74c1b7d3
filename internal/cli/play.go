package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavestream/internal/config"
	"github.com/llehouerou/wavestream/internal/errmsg"
	"github.com/llehouerou/wavestream/internal/stderr"
	"github.com/llehouerou/wavestream/internal/ui/nowplaying"
)

// ErrNoStream is returned when neither the command line nor the config
// names a stream.
var ErrNoStream = errors.New("no stream URL given and stream_url is not configured")

var (
	playHeadless bool
	playPaused   bool
	playLogFile  string
	playLogLevel string
)

var playCmd = &cobra.Command{
	Use:   "play [url]",
	Short: "Play a stream",
	Long: `Play a stream and keep the session alive until quit.

The URL may be http(s), file:// or a plain path. Without one, the
stream_url from the config file is played.

By default a now-playing view takes over the terminal. With --headless
wavestream runs in the foreground without a UI, reachable over MPRIS,
until SIGINT or SIGTERM.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolVar(&playHeadless, "headless", false, "Run without the terminal UI")
	playCmd.Flags().BoolVar(&playPaused, "paused", false, "Open the session without starting playback")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "Log file path (default: stderr headless, cache dir with the UI)")
	playCmd.Flags().StringVar(&playLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func runPlay(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	url, err := streamURL(args, cfg)
	if err != nil {
		return err
	}

	logger, closer, err := playLogger(cfg, playHeadless)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info().
		Str("version", version).
		Str("url", url).
		Bool("headless", playHeadless).
		Msg("Starting wavestream")

	if !playHeadless {
		if err := stderr.Start(logger); err != nil {
			logger.Debug().Err(err).Msg("Stderr capture unavailable")
		}
		defer stderr.Stop()
	}

	s := openSession(sessionOptions{URL: url, Config: cfg, Logger: logger})
	defer s.Close()

	if !playPaused {
		if err := s.ctrl.Play(); err != nil {
			logger.Error().Err(err).Msg(errmsg.FormatWith(errmsg.OpPlaybackStart, url, err))
		}
	}

	if playHeadless {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		logger.Info().Msg("Shutting down")
		return nil
	}

	model := nowplaying.New(s.ctrl.Snapshot(), s.ctrl.Subscribe(), s.dispatcher, nowplaying.Options{
		Kitty: nowplaying.KittySupported(),
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		stderr.WriteOriginal(fmt.Sprintf("Error running program: %v\n", err))
		return err
	}
	return nil
}

// streamURL picks the command-line URL over the configured one.
func streamURL(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.StreamURL != "" {
		return cfg.StreamURL, nil
	}
	return "", ErrNoStream
}

// playLogger applies flag overrides to the configured log settings. With
// the UI up nothing may log to the terminal, so an unset log file falls
// back to the cache directory.
func playLogger(cfg *config.Config, headless bool) (zerolog.Logger, io.Closer, error) {
	logFile := cfg.LogFile
	if playLogFile != "" {
		logFile = playLogFile
	}
	logLevel := cfg.LogLevel
	if playLogLevel != "" {
		logLevel = playLogLevel
	}

	if logFile == "" && !headless {
		dir := config.CacheDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create cache directory: %w", err)
		}
		logFile = filepath.Join(dir, "wavestream.log")
	}

	logger, closer := setupLogger(logFile, logLevel)
	return logger, closer, nil
}
