package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavestream/internal/config"
	"github.com/llehouerou/wavestream/internal/errmsg"
	"github.com/llehouerou/wavestream/internal/lastfm"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with external services",
}

var authLastfmCmd = &cobra.Command{
	Use:   "lastfm",
	Short: "Authorize Last.fm now-playing updates and scrobbles",
	Long: `Authorize wavestream with Last.fm.

api_key and api_secret must already be set in the [lastfm] section of the
config file. You can get API credentials from:
https://www.last.fm/api/account/create

A browser opens on the authorization page. Once approved, the session key
is printed for you to add to the config file.`,
	Args: cobra.NoArgs,
	RunE: runAuthLastfm,
}

func init() {
	authCmd.AddCommand(authLastfmCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLastfm(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if cfg.Lastfm.APIKey == "" || cfg.Lastfm.APISecret == "" {
		return errors.New("lastfm api_key and api_secret must be set in the config file")
	}

	out := cmd.OutOrStdout()
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	username, sessionKey, err := lastfm.Authorize(cmd.Context(), client, out)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLastfmAuth, err))
	}

	fmt.Fprintf(out, "\n✓ Authenticated as %s\n", username)
	fmt.Fprintln(out, "\nAdd the session key to your config file:")
	fmt.Fprintf(out, "\n[lastfm]\nsession_key = %q\n", sessionKey)
	return nil
}
