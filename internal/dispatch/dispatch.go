// Package dispatch turns transport commands coming from remote surfaces into
// calls on the playback session.
package dispatch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Command is a transport command accepted from the outside.
type Command string

const (
	CommandPlay            Command = "play"
	CommandPause           Command = "pause"
	CommandStop            Command = "stop"
	CommandTogglePlayPause Command = "toggle-play-pause"
	CommandNext            Command = "next"
	CommandPrevious        Command = "previous"
	CommandSeek            Command = "seek"
)

// Commands lists every known command in help order.
var Commands = []Command{
	CommandPlay,
	CommandPause,
	CommandStop,
	CommandTogglePlayPause,
	CommandNext,
	CommandPrevious,
	CommandSeek,
}

// ErrUnknownCommand is returned for command strings that match nothing.
var ErrUnknownCommand = errors.New("unknown command")

func (c Command) String() string { return string(c) }

// Valid reports whether c is a known command.
func (c Command) Valid() bool {
	for _, known := range Commands {
		if c == known {
			return true
		}
	}
	return false
}

// Request is a parsed command with its argument.
type Request struct {
	Command        Command
	PositionMillis int64 // seek target, only for CommandSeek
}

// Parse reads "play", "next", "seek 90000", "seek 1m30s" and the like.
// A bare number after seek is milliseconds.
func Parse(s string) (Request, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return Request{}, fmt.Errorf("%w: empty", ErrUnknownCommand)
	}

	cmd := Command(fields[0])
	if !cmd.Valid() {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}

	req := Request{Command: cmd}
	switch {
	case cmd == CommandSeek:
		if len(fields) != 2 {
			return Request{}, errors.New("seek needs exactly one position")
		}
		pos, err := parsePosition(fields[1])
		if err != nil {
			return Request{}, err
		}
		req.PositionMillis = pos
	case len(fields) > 1:
		return Request{}, fmt.Errorf("%s takes no arguments", cmd)
	}
	return req, nil
}

func parsePosition(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative seek position %d", ms)
		}
		return ms, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse seek position %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative seek position %s", d)
	}
	return d.Milliseconds(), nil
}

// Controller is the subset of the playback session commands are routed to.
type Controller interface {
	Play() error
	Pause() error
	Stop() error
	PlayPause() error
	Next() error
	Previous() error
	Seek(positionMillis int64) error
}

// Dispatcher routes commands to a Controller.
type Dispatcher struct {
	c   Controller
	log zerolog.Logger
}

// New creates a dispatcher for c.
func New(c Controller, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		c:   c,
		log: logger.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch runs the request against the controller.
func (d *Dispatcher) Dispatch(req Request) error {
	d.log.Debug().Stringer("command", req.Command).Int64("position_ms", req.PositionMillis).Msg("Dispatching command")

	switch req.Command {
	case CommandPlay:
		return d.c.Play()
	case CommandPause:
		return d.c.Pause()
	case CommandStop:
		return d.c.Stop()
	case CommandTogglePlayPause:
		return d.c.PlayPause()
	case CommandNext:
		return d.c.Next()
	case CommandPrevious:
		return d.c.Previous()
	case CommandSeek:
		return d.c.Seek(req.PositionMillis)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
}

// DispatchString parses s and dispatches it.
func (d *Dispatcher) DispatchString(s string) error {
	req, err := Parse(s)
	if err != nil {
		d.log.Warn().Err(err).Str("input", s).Msg("Rejected command")
		return err
	}
	return d.Dispatch(req)
}
