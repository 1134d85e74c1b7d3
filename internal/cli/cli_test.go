package cli

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavestream/internal/config"
	"github.com/llehouerou/wavestream/internal/dispatch"
	"github.com/llehouerou/wavestream/internal/playback"
	"github.com/llehouerou/wavestream/internal/player"
	"github.com/llehouerou/wavestream/internal/tags"
)

func TestStreamURL(t *testing.T) {
	cfg := &config.Config{StreamURL: "https://radio.example/live.mp3"}

	got, err := streamURL([]string{"/music/a.flac"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "/music/a.flac", got)

	got, err = streamURL(nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://radio.example/live.mp3", got)

	_, err = streamURL(nil, &config.Config{})
	assert.ErrorIs(t, err, ErrNoStream)
}

func TestRootCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"play", "probe", "auth"})

	sub, _, err := rootCmd.Find([]string{"auth", "lastfm"})
	require.NoError(t, err)
	assert.Equal(t, "lastfm", sub.Name())
}

func TestPrintMetadata(t *testing.T) {
	var buf bytes.Buffer
	printMetadata(&buf, &tags.Metadata{Title: "Song", Artist: "Band", Year: 1999})

	out := buf.String()
	assert.Contains(t, out, "Title:   Song\n")
	assert.Contains(t, out, "Artist:  Band\n")
	assert.Contains(t, out, "Year:    1999\n")
	assert.Contains(t, out, "Cover:   none\n")
	assert.NotContains(t, out, "Album")
}

func TestPrintMetadata_Cover(t *testing.T) {
	cover, err := tags.EncodePNG(tags.Placeholder("Song"))
	require.NoError(t, err)

	var buf bytes.Buffer
	printMetadata(&buf, &tags.Metadata{Title: "Song", Cover: cover, CoverMIME: "image/png"})

	assert.Regexp(t, `Cover:\s+[\d.]+ [kM]?B image/png \d+x\d+`, buf.String())
}

func TestWriteCover_Placeholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, writeCover(path, &tags.Metadata{Title: "Song"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

type noTags struct{}

func (noTags) Fetch(context.Context, string) (*tags.Metadata, error) {
	return nil, tags.ErrNoTags
}

func TestSession_RoutesCommandsToController(t *testing.T) {
	off := false
	cfg := &config.Config{
		Notifications: config.NotificationsConfig{Enabled: &off},
		MPRIS:         config.MPRISConfig{Enabled: &off},
	}

	var mu sync.Mutex
	var engines []*player.Mock
	factory := func(l player.Listener) (player.Engine, error) {
		m := player.NewMock(l)
		m.SetAutoPrepare(true)
		mu.Lock()
		engines = append(engines, m)
		mu.Unlock()
		return m, nil
	}

	s := openSession(sessionOptions{
		URL:     "https://radio.example/live.mp3",
		Config:  cfg,
		Engines: factory,
		Fetcher: noTags{},
		Logger:  zerolog.Nop(),
	})

	require.NoError(t, s.ctrl.Play())
	require.Eventually(t, func() bool {
		return s.ctrl.State() == playback.StatePlaying
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.dispatcher.Dispatch(dispatch.Request{Command: dispatch.CommandPause}))
	assert.Equal(t, playback.StatePaused, s.ctrl.State())

	s.Close()
	assert.Equal(t, playback.StateStopped, s.ctrl.State())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, engines, 1)
	assert.True(t, engines[0].Released())
	assert.Equal(t, 1, engines[0].Calls("load"))
}
