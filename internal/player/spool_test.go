package player

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpool_FillReportsProgress(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, spoolChunk*4)
	s := newSpool(int64(len(data)))

	var seen []int
	s.fill(bytes.NewReader(data), func(p int) { seen = append(seen, p) })

	require.NotEmpty(t, seen)
	assert.Equal(t, 100, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "progress must be strictly increasing")
	}
	assert.Equal(t, int64(len(data)), s.size())
}

func TestSpool_UnknownLengthReportsOnlyCompletion(t *testing.T) {
	s := newSpool(-1)
	var seen []int
	s.fill(bytes.NewReader(make([]byte, spoolChunk*2)), func(p int) { seen = append(seen, p) })

	assert.Equal(t, []int{0, 100}, seen)
}

func TestSpoolReader_BlocksUntilData(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pr, pw := io.Pipe()
		s := newSpool(-1)
		go s.fill(pr, nil)

		got := make(chan []byte, 1)
		go func() {
			b, _ := io.ReadAll(s.reader())
			got <- b
		}()

		synctest.Wait()
		select {
		case <-got:
			t.Fatal("reader returned before any data arrived")
		default:
		}

		_, _ = pw.Write([]byte("hello "))
		_, _ = pw.Write([]byte("world"))
		pw.Close()

		assert.Equal(t, "hello world", string(<-got))
	})
}

func TestSpool_AbortWakesReaders(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newSpool(1000)
		errs := make(chan error, 2)
		go func() {
			_, err := s.reader().Read(make([]byte, 10))
			errs <- err
		}()
		go func() {
			errs <- s.waitFor(500)
		}()

		synctest.Wait()
		s.abort()

		for range 2 {
			assert.ErrorIs(t, <-errs, errSpoolAborted)
		}
	})
}

func TestSpool_WaitForReturnsDownloadError(t *testing.T) {
	boom := errors.New("connection reset")
	s := newSpool(100)
	s.fill(iotestErrReader{err: boom}, nil)

	assert.ErrorIs(t, s.waitFor(10), boom)
}

func TestSpool_WaitForPartialThenEOF(t *testing.T) {
	s := newSpool(-1)
	s.fill(bytes.NewReader([]byte("short")), nil)

	// Download finished below the threshold: preparation proceeds.
	assert.NoError(t, s.waitFor(1<<20))
}

func TestSpool_WaitDoneThenSeeker(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pr, pw := io.Pipe()
		s := newSpool(11)
		go s.fill(pr, nil)

		done := make(chan error, 1)
		go func() { done <- s.waitDone() }()

		_, _ = pw.Write([]byte("hello "))
		synctest.Wait()
		select {
		case <-done:
			t.Fatal("waitDone returned before the download ended")
		default:
		}

		_, _ = pw.Write([]byte("world"))
		pw.Close()
		require.NoError(t, <-done)
		assert.Equal(t, 100, s.percent())

		r := s.seeker()
		_, err := r.Seek(6, io.SeekStart)
		require.NoError(t, err)
		rest, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "world", string(rest))
		assert.NoError(t, r.Close())
	})
}

func TestSpool_WaitDoneReturnsDownloadError(t *testing.T) {
	boom := errors.New("connection reset")
	s := newSpool(100)
	s.fill(iotestErrReader{err: boom}, nil)

	assert.ErrorIs(t, s.waitDone(), boom)
	assert.Zero(t, s.percent())
}

type iotestErrReader struct{ err error }

func (r iotestErrReader) Read([]byte) (int, error) { return 0, r.err }
