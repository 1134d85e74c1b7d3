package notify

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavestream/internal/dispatch"
	"github.com/llehouerou/wavestream/internal/playback"
	"github.com/llehouerou/wavestream/internal/tags"
)

// PresenterOptions configures a Presenter.
type PresenterOptions struct {
	// IconDir receives the cover used as the notification icon.
	// Empty sends notifications without an icon.
	IconDir string
	Timeout time.Duration
	// Commands receives the transport buttons. Nil sends notifications
	// without buttons.
	Commands Commander
	Logger   zerolog.Logger
}

// Commander runs playback commands.
type Commander interface {
	Dispatch(req dispatch.Request) error
}

// Button keys are freedesktop icon names.
const (
	keyPrevious = "media-skip-backward"
	keyPlay     = "media-playback-start"
	keyPause    = "media-playback-pause"
	keyNext     = "media-skip-forward"
)

// Presenter keeps a single now-playing notification in step with the
// playback session: it is refreshed while playing or paused and when the
// cover changes, and retracted once playback stops.
type Presenter struct {
	notifier Notifier
	iconDir  string
	timeout  int32
	commands Commander
	log      zerolog.Logger

	mu       sync.Mutex
	id       uint32
	iconPath string
}

// NewPresenter creates a presenter sending through n.
func NewPresenter(n Notifier, opts PresenterOptions) *Presenter {
	return &Presenter{
		notifier: n,
		iconDir:  opts.IconDir,
		timeout:  int32(opts.Timeout.Milliseconds()),
		commands: opts.Commands,
		log:      opts.Logger.With().Str("component", "notify").Logger(),
	}
}

// Run consumes session events and button presses until the subscription
// ends, then retracts the notification.
func (p *Presenter) Run(sub *playback.Subscription) {
	defer p.retract()
	invocations := p.notifier.Invocations()
	for {
		select {
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			p.Handle(ev)
		case inv, ok := <-invocations:
			if !ok {
				invocations = nil
				continue
			}
			p.Invoke(inv)
		case <-sub.Done:
			return
		}
	}
}

// Invoke runs the command behind a button of the current notification.
func (p *Presenter) Invoke(inv Invocation) {
	p.mu.Lock()
	current := p.id != 0 && inv.ID == p.id
	p.mu.Unlock()
	if !current || p.commands == nil {
		return
	}

	var cmd dispatch.Command
	switch inv.Key {
	case keyPrevious:
		cmd = dispatch.CommandPrevious
	case keyPlay, keyPause:
		cmd = dispatch.CommandTogglePlayPause
	case keyNext:
		cmd = dispatch.CommandNext
	default:
		p.log.Debug().Str("key", inv.Key).Msg("Unknown notification action")
		return
	}
	if err := p.commands.Dispatch(dispatch.Request{Command: cmd}); err != nil {
		p.log.Warn().Err(err).Stringer("command", cmd).Msg("Notification action failed")
	}
}

// Handle applies one session event.
func (p *Presenter) Handle(ev playback.Event) {
	snap := ev.Snapshot
	switch ev.Kind { //nolint:exhaustive // ticks and buffering do not change the notification
	case playback.EventStatusChanged:
		switch snap.State { //nolint:exhaustive // other states keep the notification as is
		case playback.StatePlaying, playback.StatePaused:
			p.show(snap, false)
		case playback.StateStopped:
			p.retract()
		}
	case playback.EventCoverReloaded:
		p.show(snap, true)
	}
}

func (p *Presenter) show(snap playback.Snapshot, coverChanged bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if coverChanged || p.iconPath == "" {
		p.writeIconLocked(snap.Cover)
	}

	n := Notification{
		Title:      nowPlayingTitle(snap),
		Body:       nowPlayingBody(snap),
		Icon:       p.iconPath,
		Timeout:    p.timeout,
		ReplacesID: p.id,
		Urgency:    UrgencyLow,
		Category:   CategoryMusic,
	}
	if snap.State == playback.StatePaused {
		n.Title = "Paused: " + n.Title
	}
	if p.commands != nil {
		n.Actions = transportActions(snap.State)
		n.Resident = true
	}

	id, err := p.notifier.Notify(n)
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to send notification")
		return
	}
	p.id = id
}

func (p *Presenter) retract() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.id == 0 {
		return
	}
	if err := p.notifier.Close(p.id); err != nil {
		p.log.Debug().Err(err).Uint32("id", p.id).Msg("Failed to close notification")
	}
	p.id = 0
}

func (p *Presenter) writeIconLocked(img image.Image) {
	if p.iconDir == "" || img == nil {
		return
	}
	data, err := tags.EncodePNG(img)
	if err != nil {
		p.log.Debug().Err(err).Msg("Failed to encode notification icon")
		return
	}
	if err := os.MkdirAll(p.iconDir, 0o755); err != nil {
		p.log.Debug().Err(err).Msg("Failed to create icon dir")
		return
	}
	path := filepath.Join(p.iconDir, "notification.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		p.log.Debug().Err(err).Msg("Failed to write notification icon")
		return
	}
	p.iconPath = path
}

func nowPlayingTitle(snap playback.Snapshot) string {
	if snap.Metadata.Title != "" {
		return snap.Metadata.Title
	}
	if snap.StreamURL != "" {
		return snap.StreamURL
	}
	return "Unknown"
}

// nowPlayingBody joins artist and album, skipping the missing ones.
func nowPlayingBody(snap playback.Snapshot) string {
	parts := make([]string, 0, 2)
	if snap.Metadata.Artist != "" {
		parts = append(parts, snap.Metadata.Artist)
	}
	if snap.Metadata.Album != "" {
		parts = append(parts, snap.Metadata.Album)
	}
	return strings.Join(parts, " · ")
}

// transportActions returns the buttons for a session in state.
func transportActions(state playback.State) []Action {
	toggle := Action{Key: keyPause, Label: "Pause"}
	if state == playback.StatePaused {
		toggle = Action{Key: keyPlay, Label: "Play"}
	}
	return []Action{
		{Key: keyPrevious, Label: "Previous"},
		toggle,
		{Key: keyNext, Label: "Next"},
	}
}
