package player

import (
	"errors"
	"fmt"
)

var (
	// ErrReleased is returned by operations on a released engine.
	ErrReleased = errors.New("engine released")
	// ErrNotLoaded is returned by PrepareAsync before a successful Load.
	ErrNotLoaded = errors.New("no source loaded")
	// ErrUnsupportedFormat is returned when no decoder handles the source.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Error codes reported through Listener.Failed.
const (
	CodeUnknown = iota
	CodeIO
	CodeDecode
	CodeUnsupported
	CodeTimedOut
)

// Error is an engine fault with a numeric code.
type Error struct {
	Code int
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d): %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode extracts the engine error code from err, or CodeUnknown.
func ErrorCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
