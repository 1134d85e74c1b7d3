// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/wavestream/internal/player"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize player"

	// Playback operations
	OpPlaybackStart   Op = "start playback"
	OpPlaybackCommand Op = "run playback command"
	OpPlaybackSeek    Op = "seek"

	// Metadata
	OpTagsProbe Op = "read stream tags"

	// Desktop integration
	OpMediaControls Op = "start media controls"
	OpNotifications Op = "connect to notifications"

	// Last.fm
	OpLastfmAuth       Op = "authenticate with Last.fm"
	OpLastfmNowPlaying Op = "update Last.fm now playing"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, describe(err))
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, context, describe(err))
}

// describe replaces engine fault codes with words.
func describe(err error) string {
	var e *player.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	var reason string
	switch e.Code {
	case player.CodeIO:
		reason = "stream unreachable"
	case player.CodeDecode:
		reason = "stream could not be decoded"
	case player.CodeUnsupported:
		reason = "unsupported stream format"
	case player.CodeTimedOut:
		reason = "stream timed out"
	default:
		return err.Error()
	}
	if e.Err == nil {
		return reason
	}
	return reason + " (" + e.Err.Error() + ")"
}
