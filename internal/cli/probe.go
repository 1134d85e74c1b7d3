package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavestream/internal/config"
	"github.com/llehouerou/wavestream/internal/errmsg"
	"github.com/llehouerou/wavestream/internal/tags"
)

var (
	probeCoverOut string
	probeTimeout  time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe <url>",
	Short: "Print the tags of a stream",
	Long: `Read the head of a stream and print the tags and cover art the player
would show for it, without playing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVar(&probeCoverOut, "cover-out", "", "Write the cover as PNG to this path")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 15*time.Second, "Give up after this long")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	logger, closer := setupLogger(cfg.LogFile, cfg.LogLevel)
	defer closer.Close()

	fetcher := tags.NewHTTPFetcher(tags.FetcherOptions{
		ProbeBytes: cfg.GetMetadataConfig().ProbeBytes,
		Logger:     logger,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
	defer cancel()

	url := args[0]
	md, err := fetcher.Fetch(ctx, url)
	if errors.Is(err, tags.ErrNoTags) {
		fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
		return nil
	}
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpTagsProbe, url, err))
	}

	printMetadata(cmd.OutOrStdout(), md)

	if probeCoverOut != "" {
		if err := writeCover(probeCoverOut, md); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cover written to %s\n", probeCoverOut)
	}
	return nil
}

func printMetadata(w io.Writer, md *tags.Metadata) {
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-8s %s\n", name+":", value)
		}
	}
	field("Title", md.Title)
	field("Artist", md.Artist)
	field("Album", md.Album)
	field("Genre", md.Genre)
	if md.Year > 0 {
		field("Year", fmt.Sprint(md.Year))
	}

	if !md.HasCover() {
		field("Cover", "none")
		return
	}
	desc := humanize.Bytes(uint64(len(md.Cover)))
	if md.CoverMIME != "" {
		desc += " " + md.CoverMIME
	}
	if img, err := tags.DecodeCover(md.Cover); err == nil {
		b := img.Bounds()
		desc += fmt.Sprintf(" %dx%d", b.Dx(), b.Dy())
	}
	field("Cover", desc)
}

// writeCover writes the cover of md, or its placeholder, as PNG.
func writeCover(path string, md *tags.Metadata) error {
	data, err := tags.EncodePNG(tags.Cover(md))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
