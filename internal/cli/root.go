// Package cli implements the wavestream command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "wavestream",
	Short: "Background player for a single audio stream",
	Long: `wavestream plays one streamed track (MP3, FLAC, Ogg Vorbis or Opus)
over HTTP(S) or from a local file.

It keeps the session alive in the background: media keys and desktop
widgets reach it over MPRIS, a notification follows the track, and
Last.fm now-playing updates and scrobbles are sent when configured.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
