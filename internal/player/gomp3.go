package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// mp3Decoder adapts llehouerou/go-mp3 to beep.StreamSeekCloser.
type mp3Decoder struct {
	decoder *mp3.Decoder
	closer  io.Closer
	err     error
	buf     []byte
}

// decodeMP3 decodes MP3 from rc. The reader is passed without its Seek
// method, if any, so the decoder never scans ahead for the frame index:
// a live source has no end to scan to.
func decodeMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	decoder, err := mp3.NewDecoder(struct{ io.Reader }{rc})
	if err != nil {
		return nil, beep.Format{}, err
	}
	rate := decoder.SampleRate()
	if rate == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2, // go-mp3 always outputs stereo
		Precision:   2,
	}
	return &mp3Decoder{decoder: decoder, closer: rc, buf: make([]byte, 8192)}, format, nil
}

func (d *mp3Decoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}

	// 4 bytes per frame, 16-bit stereo
	need := len(samples) * 4
	if len(d.buf) < need {
		d.buf = make([]byte, need)
	}
	read, err := io.ReadFull(d.decoder, d.buf[:need])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		d.err = err
		return 0, false
	}

	frames := read / 4
	for i := range frames {
		off := i * 4
		left := int16(binary.LittleEndian.Uint16(d.buf[off:]))    //nolint:gosec // audio samples
		right := int16(binary.LittleEndian.Uint16(d.buf[off+2:])) //nolint:gosec // audio samples
		samples[i][0] = float64(left) / 32768.0
		samples[i][1] = float64(right) / 32768.0
	}
	return frames, frames > 0
}

func (d *mp3Decoder) Err() error { return d.err }

// Len is 0 while the length is unknown, which is always the case for a
// source read without seeking.
func (d *mp3Decoder) Len() int {
	return int(max(d.decoder.SampleCount(), 0))
}

func (d *mp3Decoder) Position() int {
	return int(d.decoder.SamplePosition())
}

func (d *mp3Decoder) Seek(p int) error {
	if err := d.decoder.SeekToSample(int64(max(p, 0))); err != nil {
		return err
	}
	d.err = nil
	return nil
}

func (d *mp3Decoder) Close() error {
	return d.closer.Close()
}
