package player

import (
	"encoding/binary"
	"errors"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

const opusSampleRate = 48000

var (
	errUnknownOggCodec     = errors.New("ogg: unknown codec (not Opus or Vorbis)")
	errInvalidOpusHead     = errors.New("opus: invalid OpusHead packet")
	errUnsupportedOpus     = errors.New("opus: unsupported version")
	errInvalidVorbisHeader = errors.New("vorbis: invalid identification header")
	errVorbisNotReady      = errors.New("vorbis: headers incomplete")
	errVorbisBufferSmall   = errors.New("vorbis: output buffer too small")
)

// oggCodec decodes the packets of one logical Ogg stream.
type oggCodec interface {
	SampleRate() int
	Channels() int
	// PreSkip is the number of leading samples per channel to discard.
	PreSkip() int
	// AddHeaderPacket consumes the header packets following the
	// identification packet. It reports true once audio packets can be
	// decoded.
	AddHeaderPacket(packet []byte) (complete bool, err error)
	// Decode writes interleaved samples into pcm and returns the number of
	// samples per channel.
	Decode(packet []byte, pcm []float32) (int, error)
}

// isOggIdentPacket reports whether packet starts a new logical stream.
func isOggIdentPacket(packet []byte) bool {
	return isOpusHead(packet) || isVorbisIdent(packet)
}

func isOpusHead(p []byte) bool {
	return len(p) >= 8 && string(p[:8]) == "OpusHead"
}

func isVorbisIdent(p []byte) bool {
	return len(p) >= 7 && p[0] == 0x01 && string(p[1:7]) == "vorbis"
}

// newOggCodec builds a codec from an identification packet.
func newOggCodec(ident []byte) (oggCodec, error) {
	switch {
	case isOpusHead(ident):
		return newOpusCodec(ident)
	case isVorbisIdent(ident):
		return newVorbisCodec(ident)
	default:
		return nil, errUnknownOggCodec
	}
}

type opusCodec struct {
	decoder  *opus.Decoder
	channels int
	preSkip  int
}

// OpusHead: magic(8) version(1) channels(1) pre-skip(2) input rate(4) gain(2) mapping(1)
func newOpusCodec(head []byte) (*opusCodec, error) {
	if len(head) < 19 {
		return nil, errInvalidOpusHead
	}
	if head[8] != 1 {
		return nil, errUnsupportedOpus
	}
	channels := int(head[9])
	dec, err := opus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		decoder:  dec,
		channels: channels,
		preSkip:  int(binary.LittleEndian.Uint16(head[10:12])),
	}, nil
}

// SampleRate is always 48kHz: Opus decodes at that rate regardless of the
// input rate recorded in the header.
func (c *opusCodec) SampleRate() int { return opusSampleRate }
func (c *opusCodec) Channels() int   { return c.channels }
func (c *opusCodec) PreSkip() int    { return c.preSkip }

// AddHeaderPacket swallows the OpusTags packet, the only header after
// OpusHead.
func (c *opusCodec) AddHeaderPacket([]byte) (bool, error) { return true, nil }

func (c *opusCodec) Decode(packet []byte, pcm []float32) (int, error) {
	return c.decoder.DecodeFloat32(packet, pcm)
}

// vorbisCodec buffers the three Vorbis headers (identification, comment,
// setup) before building the decoder.
type vorbisCodec struct {
	decoder    *vorbis.Decoder
	channels   int
	sampleRate int
	headers    [][]byte
}

// identification header: type(1) "vorbis"(6) version(4) channels(1) rate(4) ...
func newVorbisCodec(ident []byte) (*vorbisCodec, error) {
	if len(ident) < 16 || binary.LittleEndian.Uint32(ident[7:11]) != 0 || ident[11] == 0 {
		return nil, errInvalidVorbisHeader
	}
	return &vorbisCodec{
		channels:   int(ident[11]),
		sampleRate: int(binary.LittleEndian.Uint32(ident[12:16])),
		headers:    [][]byte{ident},
	}, nil
}

func (c *vorbisCodec) SampleRate() int { return c.sampleRate }
func (c *vorbisCodec) Channels() int   { return c.channels }
func (c *vorbisCodec) PreSkip() int    { return 0 }

func (c *vorbisCodec) AddHeaderPacket(packet []byte) (bool, error) {
	if c.decoder != nil {
		return true, nil
	}
	c.headers = append(c.headers, packet)
	if len(c.headers) < 3 {
		return false, nil
	}
	dec := &vorbis.Decoder{}
	for _, h := range c.headers {
		if err := dec.ReadHeader(h); err != nil {
			return false, err
		}
	}
	c.decoder = dec
	c.headers = nil
	return true, nil
}

func (c *vorbisCodec) Decode(packet []byte, pcm []float32) (int, error) {
	if c.decoder == nil {
		return 0, errVorbisNotReady
	}
	out, err := c.decoder.Decode(packet)
	if err != nil {
		return 0, err
	}
	if len(out) > len(pcm) {
		return 0, errVorbisBufferSmall
	}
	n := copy(pcm, out)
	return n / c.channels, nil
}
