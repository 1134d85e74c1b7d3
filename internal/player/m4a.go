package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// alacFrameSize is the default ALAC frame length in samples.
const alacFrameSize = 4096

// m4aDecoder plays the AAC or ALAC track of an MP4 container. The container
// index needs random access, so it is only built over a complete source.
type m4aDecoder struct {
	container *m4a.Reader
	closer    io.Closer
	codec     m4a.CodecType
	channels  int
	bits      int
	length    int

	aac  *faad2.Decoder
	alac *alac.Alac

	next    int // next container sample to decode
	pending [][2]float64
	err     error
}

func decodeM4A(rsc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	container, err := m4a.Open(rsc)
	if err != nil {
		return nil, beep.Format{}, err
	}

	rate := int(container.SampleRate())
	if rate <= 0 {
		return nil, beep.Format{}, errors.New("m4a: invalid sample rate")
	}
	d := &m4aDecoder{
		container: container,
		closer:    rsc,
		codec:     container.Codec(),
		channels:  int(container.Channels()),
		bits:      int(container.SampleSize()),
		length:    int(container.Duration().Seconds() * float64(rate)),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2,
		Precision:   2,
	}

	switch d.codec {
	case m4a.CodecAAC:
		dec, err := faad2.NewDecoder(context.Background())
		if err != nil {
			return nil, beep.Format{}, err
		}
		if err := dec.Init(context.Background(), container.CodecConfig()); err != nil {
			dec.Close(context.Background())
			return nil, beep.Format{}, err
		}
		d.aac = dec
	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  rate,
			SampleSize:  d.bits,
			NumChannels: d.channels,
			FrameSize:   alacFrameSize,
		})
		if err != nil {
			return nil, beep.Format{}, err
		}
		d.alac = dec
		if d.bits == 24 {
			format.Precision = 3
		}
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: m4a codec %v", ErrUnsupportedFormat, d.codec)
	}
	return d, format, nil
}

func (d *m4aDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if len(d.pending) > 0 {
			c := copy(samples[n:], d.pending)
			d.pending = d.pending[c:]
			n += c
			continue
		}
		if d.next >= d.container.SampleCount() {
			break
		}
		frames, err := d.decodeNext()
		if err != nil {
			d.err = err
			break
		}
		d.pending = frames
	}
	return n, n > 0
}

// decodeNext decodes one container sample into stereo frames.
func (d *m4aDecoder) decodeNext() ([][2]float64, error) {
	data, err := d.container.ReadSample(d.next)
	if err != nil {
		return nil, err
	}
	d.next++

	if d.aac != nil {
		pcm, err := d.aac.Decode(context.Background(), data)
		if err != nil {
			return nil, err
		}
		return int16Frames(pcm, d.channels), nil
	}
	return alacFrames(d.alac.Decode(data), d.channels, d.bits), nil
}

func int16Frames(pcm []int16, channels int) [][2]float64 {
	channels = max(channels, 1)
	frames := make([][2]float64, len(pcm)/channels)
	for i := range frames {
		left := float64(pcm[i*channels]) / 32768.0
		right := left
		if channels > 1 {
			right = float64(pcm[i*channels+1]) / 32768.0
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

// alacFrames converts interleaved little-endian PCM of the given bit depth
// (16 or 24) to stereo frames. Mono is duplicated.
func alacFrames(data []byte, channels, bits int) [][2]float64 {
	channels = max(channels, 1)
	width := 2
	scale := 32768.0
	if bits == 24 {
		width = 3
		scale = 8388608.0
	}
	sample := func(off int) float64 {
		if width == 2 {
			return float64(int16(uint16(data[off])|uint16(data[off+1])<<8)) / scale //nolint:gosec // audio samples
		}
		v := int32(data[off]) | int32(data[off+1])<<8 | int32(data[off+2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / scale
	}

	stride := width * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		off := i * stride
		left := sample(off)
		right := left
		if channels > 1 {
			right = sample(off + width)
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

func (d *m4aDecoder) Err() error { return d.err }

func (d *m4aDecoder) Len() int { return d.length }

func (d *m4aDecoder) Position() int {
	at := d.container.SampleTime(d.next)
	return int(at.Seconds() * float64(d.container.SampleRate()))
}

// Seek lands on the container sample containing p.
func (d *m4aDecoder) Seek(p int) error {
	p = min(max(p, 0), d.length)
	at := time.Duration(float64(p) / float64(d.container.SampleRate()) * float64(time.Second))
	d.next = d.container.SeekToTime(at)
	d.pending = nil
	d.err = nil
	return nil
}

func (d *m4aDecoder) Close() error {
	if d.aac != nil {
		d.aac.Close(context.Background())
	}
	return d.closer.Close()
}
