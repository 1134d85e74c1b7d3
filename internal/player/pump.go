package player

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

const (
	pumpChunkSize = 512
	pumpQueueLen  = 64 // ~0.75s of 44.1kHz audio
)

// pump decodes a source on its own goroutine and hands sample chunks to the
// speaker through a channel. The speaker side never blocks on the network:
// an empty queue streams silence until the decoder catches up.
type pump struct {
	cancel context.CancelFunc
	chunks chan [][2]float64
	done   chan struct{}

	mu  sync.Mutex
	err error

	decoded atomic.Int64 // samples produced by the decoder
	bytes   *countingReader
}

// startPump decodes from dec, dropping the first skip samples. The pump owns
// dec and closes it when decoding ends.
func startPump(ctx context.Context, dec beep.StreamSeekCloser, bytes *countingReader, skip int) *pump {
	ctx, cancel := context.WithCancel(ctx)
	p := &pump{
		cancel: cancel,
		chunks: make(chan [][2]float64, pumpQueueLen),
		done:   make(chan struct{}),
		bytes:  bytes,
	}
	go p.run(ctx, dec, skip)
	return p
}

func (p *pump) run(ctx context.Context, dec beep.StreamSeekCloser, skip int) {
	defer close(p.done)
	defer close(p.chunks)
	defer dec.Close()

	for {
		buf := make([][2]float64, pumpChunkSize)
		n, ok := dec.Stream(buf)
		if n > 0 {
			p.decoded.Add(int64(n))
		}
		if !ok {
			if err := dec.Err(); err != nil && ctx.Err() == nil {
				p.mu.Lock()
				p.err = err
				p.mu.Unlock()
			}
			return
		}
		if skip > 0 {
			drop := min(skip, n)
			skip -= drop
			buf = buf[drop:n]
			n -= drop
			if n == 0 {
				continue
			}
		}
		select {
		case p.chunks <- buf[:n]:
		case <-ctx.Done():
			return
		}
	}
}

// stop cancels the decoder goroutine without waiting for it: a decoder
// blocked on a stalled download exits once the spool is aborted or data
// arrives.
func (p *pump) stop() {
	p.cancel()
	go func() {
		for range p.chunks {
		}
	}()
}

// Err returns the decode error that ended the pump, if any.
func (p *pump) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// samplesPerByte estimates the decoded samples per source byte so far.
func (p *pump) samplesPerByte() float64 {
	n := p.bytes.n.Load()
	if n == 0 {
		return 0
	}
	return float64(p.decoded.Load()) / float64(n)
}

// pumpStreamer is the beep.Streamer handed to the speaker.
type pumpStreamer struct {
	p        *pump
	cur      [][2]float64
	position atomic.Int64 // samples delivered at the source rate
	ended    bool
}

func newPumpStreamer(p *pump, position int64) *pumpStreamer {
	s := &pumpStreamer{p: p}
	s.position.Store(position)
	return s
}

func (s *pumpStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.ended {
		return 0, false
	}
	n := 0
	for n < len(samples) {
		if len(s.cur) == 0 {
			select {
			case chunk, ok := <-s.p.chunks:
				if !ok {
					s.ended = true
					s.position.Add(int64(n))
					return n, n > 0
				}
				s.cur = chunk
			default:
				// Underrun: pad with silence and keep the stream alive.
				clear(samples[n:])
				s.position.Add(int64(n))
				return len(samples), true
			}
		}
		c := copy(samples[n:], s.cur)
		s.cur = s.cur[c:]
		n += c
	}
	s.position.Add(int64(n))
	return n, true
}

func (s *pumpStreamer) Err() error {
	return s.p.Err()
}

// countingReader counts bytes consumed by the decoder.
type countingReader struct {
	r io.ReadCloser
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

func (c *countingReader) Close() error { return c.r.Close() }
