// Package keymap defines key bindings and action dispatch for the player view.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Playback actions
	ActionPlayPause       Action = "play_pause"
	ActionStop            Action = "stop"
	ActionNextTrack       Action = "next_track"
	ActionPrevTrack       Action = "prev_track"
	ActionRestart         Action = "restart"
	ActionSeekForward     Action = "seek_forward"
	ActionSeekBack        Action = "seek_back"
	ActionSeekForwardLong Action = "seek_forward_long"
	ActionSeekBackLong    Action = "seek_back_long"
)

// SeekOffset returns the relative seek in seconds for seek actions, 0 otherwise.
func (a Action) SeekOffset() int {
	switch a { //nolint:exhaustive // only seek actions carry an offset
	case ActionSeekForward:
		return 5
	case ActionSeekBack:
		return -5
	case ActionSeekForwardLong:
		return 30
	case ActionSeekBackLong:
		return -30
	}
	return 0
}
