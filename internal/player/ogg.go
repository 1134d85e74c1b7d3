package player

import (
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
)

// Per-channel room for the largest Opus frame (5760) and Vorbis block.
const oggMaxFrames = 8192

var errOggNotSeekable = errors.New("ogg: stream decoder cannot seek")

// decodeOgg decodes an Ogg Opus or Vorbis stream read strictly forward, as
// served by internet radio. Chained streams are followed as long as the
// sample rate stays the same.
func decodeOgg(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	d := &oggDecoder{
		packets: newOggPacketReader(rc),
		closer:  rc,
	}
	ident, err := d.packets.next()
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("ogg: reading identification packet: %w", err)
	}
	if err := d.startStream(ident); err != nil {
		return nil, beep.Format{}, err
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(d.codec.SampleRate()),
		NumChannels: d.codec.Channels(),
		Precision:   2,
	}
	return d, format, nil
}

// oggDecoder implements beep.StreamSeekCloser over an oggPacketReader.
type oggDecoder struct {
	packets *oggPacketReader
	closer  io.Closer
	codec   oggCodec

	pcm  []float32
	buf  []float32 // decoded interleaved samples not yet streamed
	skip int       // frames left to drop at stream start
	pos  int
	err  error
}

// startStream initializes the codec of a new logical stream from its
// identification packet and consumes its remaining headers.
func (d *oggDecoder) startStream(ident []byte) error {
	codec, err := newOggCodec(ident)
	if err != nil {
		return err
	}
	return d.useCodec(codec)
}

func (d *oggDecoder) useCodec(codec oggCodec) error {
	if d.codec != nil && codec.SampleRate() != d.codec.SampleRate() {
		return fmt.Errorf("ogg: chained stream changes sample rate from %d to %d",
			d.codec.SampleRate(), codec.SampleRate())
	}
	for {
		pkt, err := d.packets.next()
		if err != nil {
			return fmt.Errorf("ogg: reading headers: %w", err)
		}
		complete, err := codec.AddHeaderPacket(pkt)
		if err != nil {
			return err
		}
		if complete {
			break
		}
	}
	d.codec = codec
	d.pcm = make([]float32, oggMaxFrames*codec.Channels())
	d.buf = nil
	d.skip = codec.PreSkip()
	return nil
}

// Stream reads audio samples into the provided buffer. Mono is duplicated
// to both channels; channels past the second are dropped.
func (d *oggDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if len(d.buf) == 0 {
			if !d.refill() {
				break
			}
			continue
		}
		ch := d.codec.Channels()
		frames := min(len(d.buf)/ch, len(samples)-n)
		for i := range frames {
			l := float64(d.buf[i*ch])
			r := l
			if ch > 1 {
				r = float64(d.buf[i*ch+1])
			}
			samples[n+i] = [2]float64{l, r}
		}
		d.buf = d.buf[frames*ch:]
		n += frames
	}
	d.pos += n
	return n, n > 0
}

// refill decodes the next audio packet into buf. It returns false at the
// end of the stream or on error.
func (d *oggDecoder) refill() bool {
	pkt, err := d.packets.next()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			d.err = err
		}
		return false
	}
	if isOggIdentPacket(pkt) {
		if err := d.startStream(pkt); err != nil {
			d.err = err
			return false
		}
		return true
	}

	frames, err := d.codec.Decode(pkt, d.pcm)
	if err != nil {
		d.err = err
		return false
	}
	ch := d.codec.Channels()
	out := d.pcm[:frames*ch]
	if d.skip > 0 {
		drop := min(d.skip, frames)
		d.skip -= drop
		out = out[drop*ch:]
	}
	d.buf = out
	return true
}

func (d *oggDecoder) Err() error { return d.err }

// Len is unknown for a forward-only stream.
func (d *oggDecoder) Len() int { return 0 }

func (d *oggDecoder) Position() int { return d.pos }

func (d *oggDecoder) Seek(int) error { return errOggNotSeekable }

func (d *oggDecoder) Close() error { return d.closer.Close() }
