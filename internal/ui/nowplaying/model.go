// Package nowplaying is the terminal view of the playback session: it
// renders the session snapshot and turns key presses into commands.
package nowplaying

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavestream/internal/dispatch"
	"github.com/llehouerou/wavestream/internal/errmsg"
	"github.com/llehouerou/wavestream/internal/keymap"
	"github.com/llehouerou/wavestream/internal/playback"
)

const (
	artCols = 20
	artRows = 10
)

// Commander runs transport commands.
type Commander interface {
	Dispatch(req dispatch.Request) error
}

// Options configures the view.
type Options struct {
	// Kitty enables cover rendering through the Kitty graphics protocol.
	Kitty bool
}

// eventMsg carries a session event into the update loop.
type eventMsg playback.Event

// closedMsg is sent once the session stops delivering events.
type closedMsg struct{}

// commandErrMsg reports a failed command.
type commandErrMsg struct{ err error }

// Model is the bubbletea model of the player view.
type Model struct {
	cmd  Commander
	sub  *playback.Subscription
	keys *keymap.Resolver
	help help.Model

	snap     playback.Snapshot
	cover    string // Kitty escape sequence of the current cover
	kitty    bool
	showHelp bool
	errText  string

	width  int
	height int
}

// New creates the view over the initial snapshot. Events arrive through sub.
func New(initial playback.Snapshot, sub *playback.Subscription, cmd Commander, opts Options) Model {
	m := Model{
		cmd:   cmd,
		sub:   sub,
		keys:  keymap.NewResolver(keymap.Bindings),
		help:  help.New(),
		snap:  initial,
		kitty: opts.Kitty,
		width: 60,
	}
	if m.kitty {
		m.cover = encodeKitty(initial.Cover, artCols, artRows)
	}
	return m
}

// Snapshot returns the last snapshot the view rendered.
func (m Model) Snapshot() playback.Snapshot { return m.snap }

// Init starts listening for session events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.sub)
}

func waitForEvent(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.Events:
			return eventMsg(ev)
		case <-sub.Done:
			return closedMsg{}
		}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case eventMsg:
		m.snap = msg.Snapshot
		if msg.Kind == playback.EventCoverReloaded && m.kitty {
			m.cover = encodeKitty(msg.Snapshot.Cover, artCols, artRows)
		}
		if msg.Kind == playback.EventStatusChanged && msg.Snapshot.State == playback.StatePlaying {
			m.errText = ""
		}
		return m, waitForEvent(m.sub)

	case closedMsg:
		return m, tea.Quit

	case commandErrMsg:
		m.errText = errmsg.Format(errmsg.OpPlaybackCommand, msg.err)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(k string) (tea.Model, tea.Cmd) {
	action := m.keys.Resolve(k)
	switch action { //nolint:exhaustive // seek actions handled below
	case "":
		return m, nil
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.showHelp = !m.showHelp
		return m, nil
	case keymap.ActionPlayPause:
		return m, m.dispatch(dispatch.Request{Command: dispatch.CommandTogglePlayPause})
	case keymap.ActionStop:
		return m, m.dispatch(dispatch.Request{Command: dispatch.CommandStop})
	case keymap.ActionNextTrack:
		return m, m.dispatch(dispatch.Request{Command: dispatch.CommandNext})
	case keymap.ActionPrevTrack:
		return m, m.dispatch(dispatch.Request{Command: dispatch.CommandPrevious})
	case keymap.ActionRestart:
		return m, m.dispatch(dispatch.Request{Command: dispatch.CommandSeek})
	}

	if offset := action.SeekOffset(); offset != 0 {
		if target, ok := m.seekTarget(offset); ok {
			return m, m.dispatch(dispatch.Request{Command: dispatch.CommandSeek, PositionMillis: target})
		}
	}
	return m, nil
}

// seekTarget computes a relative seek from the last known position,
// clamped to the track.
func (m Model) seekTarget(offsetSeconds int) (int64, bool) {
	pos := m.snap.PositionMillis
	if pos == playback.UnknownPosition {
		return 0, false
	}
	target := max(pos+int64(offsetSeconds)*1000, 0)
	if d := m.snap.DurationMillis; d > 0 {
		target = min(target, d)
	}
	return target, true
}

func (m Model) dispatch(req dispatch.Request) tea.Cmd {
	return func() tea.Msg {
		if err := m.cmd.Dispatch(req); err != nil {
			return commandErrMsg{err: err}
		}
		return nil
	}
}
