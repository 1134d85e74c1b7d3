package player

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

const spoolChunk = 32 * 1024

// errSpoolAborted is returned to readers blocked on a spool that was torn down.
var errSpoolAborted = errors.New("spool aborted")

// spool keeps every downloaded byte of a source in memory so the decoder can
// be restarted from the beginning for seeks. Readers block until the bytes
// they ask for have arrived.
type spool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []byte
	total   int64 // -1 when the length is unknown
	done    bool
	err     error
	aborted bool
}

func newSpool(total int64) *spool {
	s := &spool{total: total}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// fill copies r into the spool until EOF, an error, or abort. progress is
// called with the new percentage every time it changes.
func (s *spool) fill(r io.Reader, progress func(percent int)) {
	chunk := make([]byte, spoolChunk)
	last := -1
	for {
		n, err := r.Read(chunk)

		s.mu.Lock()
		if s.aborted {
			s.mu.Unlock()
			return
		}
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
		}
		switch {
		case errors.Is(err, io.EOF):
			s.done = true
		case err != nil:
			s.err = err
		}
		pct := s.percentLocked()
		finished := s.done || s.err != nil
		s.cond.Broadcast()
		s.mu.Unlock()

		if pct != last && progress != nil {
			last = pct
			progress(pct)
		}
		if finished {
			return
		}
	}
}

func (s *spool) percentLocked() int {
	if s.done {
		return 100
	}
	if s.total <= 0 {
		return 0
	}
	return min(int(int64(len(s.buf))*100/s.total), 100)
}

// percent returns the download progress.
func (s *spool) percent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.percentLocked()
}

// abort wakes every blocked reader with errSpoolAborted.
func (s *spool) abort() {
	s.mu.Lock()
	s.aborted = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// waitFor blocks until at least n bytes are buffered, the download ends, or
// the spool is aborted.
func (s *spool) waitFor(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.buf) < n && !s.done && s.err == nil && !s.aborted {
		s.cond.Wait()
	}
	switch {
	case s.aborted:
		return errSpoolAborted
	case len(s.buf) == 0 && s.err != nil:
		return s.err
	}
	return nil
}

// waitDone blocks until the whole source is buffered or the spool is
// aborted.
func (s *spool) waitDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.done && s.err == nil && !s.aborted {
		s.cond.Wait()
	}
	switch {
	case s.aborted:
		return errSpoolAborted
	case s.err != nil:
		return s.err
	}
	return nil
}

// seeker returns a seekable view of the bytes buffered so far. Call it after
// waitDone: the view does not grow.
func (s *spool) seeker() io.ReadSeekCloser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nopSeekCloser{bytes.NewReader(s.buf)}
}

type nopSeekCloser struct{ *bytes.Reader }

func (nopSeekCloser) Close() error { return nil }

// size returns the expected total size: the final size once the download
// finished, the announced length otherwise.
func (s *spool) size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return int64(len(s.buf))
	}
	return s.total
}

func (s *spool) reader() *spoolReader {
	return &spoolReader{s: s}
}

// spoolReader reads a spool from the start. It deliberately does not
// implement io.Seeker: the MP3 decoder scans the whole source when handed a
// seeker, which would wait for the full download.
type spoolReader struct {
	s   *spool
	off int
}

func (r *spoolReader) Read(p []byte) (int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for r.off >= len(s.buf) && !s.done && s.err == nil && !s.aborted {
		s.cond.Wait()
	}
	if s.aborted {
		return 0, errSpoolAborted
	}
	if r.off < len(s.buf) {
		n := copy(p, s.buf[r.off:])
		r.off += n
		return n, nil
	}
	if s.err != nil {
		return 0, s.err
	}
	return 0, io.EOF
}

func (r *spoolReader) Close() error { return nil }
