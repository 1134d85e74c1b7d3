//go:build !windows

// Package stderr captures output that the audio backend's C libraries
// write straight to file descriptor 2, so it cannot scribble over the
// terminal UI. Captured lines are handed to the logger instead.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
)

var (
	origStderr = -1
	pipeRead   *os.File
	pipeWrite  *os.File
	lines      chan string
)

// Start redirects fd 2 into a pipe and logs every captured line at warn
// level on log. It must run before the audio output is opened. On error
// stderr is left untouched.
func Start(log zerolog.Logger) error {
	if lines != nil {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}
	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return err
	}

	origStderr, pipeRead, pipeWrite = orig, r, w
	lines = make(chan string, 100)
	go scan(r, lines)
	go forward(lines, log.With().Str("component", "stderr").Logger())
	return nil
}

func scan(r *os.File, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case out <- line:
		default:
			// Logger is behind, drop the line.
		}
	}
}

func forward(in <-chan string, log zerolog.Logger) {
	for line := range in {
		log.Warn().Msg(line)
	}
}

// WriteOriginal writes to the real stderr, bypassing capture.
func WriteOriginal(msg string) {
	if origStderr >= 0 {
		_, _ = syscall.Write(origStderr, []byte(msg))
		return
	}
	_, _ = os.Stderr.WriteString(msg)
}

// Stop restores the original stderr.
func Stop() {
	if lines == nil {
		return
	}
	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = -1

	pipeWrite.Close()
	pipeRead.Close()
	lines = nil
}
