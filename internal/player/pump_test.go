package player

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
)

// fakeDecoder produces a ramp of samples then ends, optionally with an error.
type fakeDecoder struct {
	total    int
	produced int
	err      error
	closed   bool
}

func (d *fakeDecoder) Stream(samples [][2]float64) (int, bool) {
	remaining := d.total - d.produced
	if remaining <= 0 {
		return 0, false
	}
	n := min(len(samples), remaining)
	for i := range n {
		v := float64(d.produced + i)
		samples[i] = [2]float64{v, v}
	}
	d.produced += n
	return n, true
}

func (d *fakeDecoder) Err() error     { return d.err }
func (d *fakeDecoder) Len() int       { return d.total }
func (d *fakeDecoder) Position() int  { return d.produced }
func (d *fakeDecoder) Seek(int) error { return nil }
func (d *fakeDecoder) Close() error   { d.closed = true; return nil }

func newCounter(s string) *countingReader {
	return &countingReader{r: io.NopCloser(strings.NewReader(s))}
}

func drainStreamer(s *pumpStreamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 100)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestPump_DeliversAllSamples(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		dec := &fakeDecoder{total: pumpChunkSize*3 + 10}
		p := startPump(context.Background(), dec, newCounter(""), 0)
		synctest.Wait()

		s := newPumpStreamer(p, 0)
		out := drainStreamer(s)

		assert.Len(t, out, dec.total)
		assert.Equal(t, 0.0, out[0][0])
		assert.Equal(t, float64(dec.total-1), out[len(out)-1][0])
		assert.Equal(t, int64(dec.total), s.position.Load())
		<-p.done
		assert.True(t, dec.closed)
		assert.NoError(t, s.Err())
	})
}

func TestPump_SkipsLeadingSamples(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		dec := &fakeDecoder{total: 2000}
		p := startPump(context.Background(), dec, newCounter(""), 700)
		synctest.Wait()

		s := newPumpStreamer(p, 700)
		out := drainStreamer(s)

		assert.Len(t, out, 1300)
		assert.Equal(t, 700.0, out[0][0])
		assert.Equal(t, int64(2000), s.position.Load())
	})
}

func TestPump_UnderrunStreamsSilence(t *testing.T) {
	p := &pump{chunks: make(chan [][2]float64, 1), done: make(chan struct{})}
	s := newPumpStreamer(p, 0)

	buf := make([][2]float64, 10)
	buf[3] = [2]float64{1, 1}
	n, ok := s.Stream(buf)

	assert.True(t, ok)
	assert.Equal(t, 10, n)
	assert.Equal(t, [2]float64{0, 0}, buf[3])
	assert.Equal(t, int64(0), s.position.Load())
}

func TestPump_RecordsDecodeError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		boom := errors.New("bad frame")
		dec := &fakeDecoder{total: 100, err: boom}
		p := startPump(context.Background(), dec, newCounter(""), 0)
		<-p.done

		s := newPumpStreamer(p, 0)
		drainStreamer(s)
		assert.ErrorIs(t, s.Err(), boom)
	})
}

func TestPump_StopEndsDecoding(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		dec := &fakeDecoder{total: pumpChunkSize * pumpQueueLen * 4}
		p := startPump(context.Background(), dec, newCounter(""), 0)
		synctest.Wait()

		p.stop()
		<-p.done

		assert.Less(t, dec.produced, dec.total)
		assert.NoError(t, p.Err())
	})
}

func TestPump_SamplesPerByte(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		counter := newCounter("0123456789")
		_, _ = io.ReadAll(counter)
		dec := &fakeDecoder{total: 50}
		p := startPump(context.Background(), dec, counter, 0)
		<-p.done

		assert.InDelta(t, 5.0, p.samplesPerByte(), 0.001)
	})
}
