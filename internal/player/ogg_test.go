package player

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeOggPage appends a page holding the given raw lacing values and body.
func writeOggPage(w *bytes.Buffer, flags byte, sequence uint32, segments []uint8, body []byte) {
	w.WriteString("OggS")
	w.WriteByte(0) // version
	w.WriteByte(flags)
	_ = binary.Write(w, binary.LittleEndian, int64(0))  // granule
	_ = binary.Write(w, binary.LittleEndian, uint32(1)) // serial
	_ = binary.Write(w, binary.LittleEndian, sequence)
	_ = binary.Write(w, binary.LittleEndian, uint32(0)) // checksum
	w.WriteByte(byte(len(segments)))
	w.Write(segments)
	w.Write(body)
}

// writeOggPackets appends one page holding complete packets.
func writeOggPackets(w *bytes.Buffer, sequence uint32, packets ...[]byte) {
	var segments []uint8
	var body []byte
	for _, pkt := range packets {
		remaining := len(pkt)
		for remaining >= 255 {
			segments = append(segments, 255)
			remaining -= 255
		}
		segments = append(segments, uint8(remaining))
		body = append(body, pkt...)
	}
	writeOggPage(w, 0, sequence, segments, body)
}

func opusHead(channels byte, preSkip uint16) []byte {
	head := []byte{'O', 'p', 'u', 's', 'H', 'e', 'a', 'd', 1, channels, 0, 0, 0x80, 0xBB, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint16(head[10:12], preSkip)
	return head
}

var opusTags = []byte{'O', 'p', 'u', 's', 'T', 'a', 'g', 's', 0, 0, 0, 0, 0, 0, 0, 0}

func TestParseOggPageHeader(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, oggFlagContinued, 7, []uint8{255, 10}, make([]byte, 265))

	hdr, err := parseOggPageHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, byte(oggFlagContinued), hdr.Flags)
	assert.Equal(t, uint32(1), hdr.SerialNumber)
	assert.Equal(t, uint32(7), hdr.SequenceNum)
	assert.Equal(t, []uint8{255, 10}, hdr.SegmentTable)
	assert.Equal(t, 265, hdr.bodySize())
}

func TestParseOggPageHeader_InvalidMagic(t *testing.T) {
	header := append([]byte("BadS"), make([]byte, 23)...)
	_, err := parseOggPageHeader(bytes.NewReader(header))
	assert.ErrorIs(t, err, errInvalidOggMagic)
}

func TestOggPacketReader_PacketSpanningPages(t *testing.T) {
	packet := bytes.Repeat([]byte{0x5A}, 600)

	var buf bytes.Buffer
	writeOggPage(&buf, 0, 0, []uint8{255, 255}, packet[:510])
	writeOggPage(&buf, oggFlagContinued, 1, []uint8{90, 3}, append(packet[510:], 1, 2, 3))

	r := newOggPacketReader(&buf)
	got, err := r.next()
	require.NoError(t, err)
	assert.Equal(t, packet, got)

	got, err = r.next()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, err = r.next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOggPacketReader_DropsOrphanedPartial(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 0, 0, []uint8{255}, make([]byte, 255))
	// Not marked continued: the previous partial packet is lost.
	writeOggPackets(&buf, 1, []byte("next"))

	got, err := newOggPacketReader(&buf).next()
	require.NoError(t, err)
	assert.Equal(t, []byte("next"), got)
}

func TestOggPacketReader_TruncatedPageIsEOF(t *testing.T) {
	var buf bytes.Buffer
	writeOggPackets(&buf, 0, make([]byte, 100))
	truncated := buf.Bytes()[:buf.Len()-40]

	_, err := newOggPacketReader(bytes.NewReader(truncated)).next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeOgg_OpusHeaders(t *testing.T) {
	var buf bytes.Buffer
	writeOggPackets(&buf, 0, opusHead(2, 312))
	writeOggPackets(&buf, 1, opusTags)

	s, format, err := decodeOgg(io.NopCloser(&buf))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 48000, int(format.SampleRate))
	assert.Equal(t, 2, format.NumChannels)
	assert.Equal(t, 0, s.Len())
	assert.ErrorIs(t, s.Seek(0), errOggNotSeekable)
}

func TestDecodeOgg_UnknownCodec(t *testing.T) {
	var buf bytes.Buffer
	writeOggPackets(&buf, 0, []byte("FLAC-ish"))

	_, _, err := decodeOgg(io.NopCloser(&buf))
	assert.ErrorIs(t, err, errUnknownOggCodec)
}

func TestDecodeOgg_InvalidOpusVersion(t *testing.T) {
	head := opusHead(2, 0)
	head[8] = 2

	var buf bytes.Buffer
	writeOggPackets(&buf, 0, head)

	_, _, err := decodeOgg(io.NopCloser(&buf))
	assert.ErrorIs(t, err, errUnsupportedOpus)
}

func TestNewVorbisCodec_RejectsBadHeader(t *testing.T) {
	_, err := newVorbisCodec([]byte{0x01, 'v', 'o', 'r', 'b', 'i', 's'})
	assert.ErrorIs(t, err, errInvalidVorbisHeader)
}

// byteCodec decodes each packet byte into one frame of value byte/100.
type byteCodec struct {
	rate     int
	channels int
	preSkip  int
}

func (c *byteCodec) SampleRate() int                      { return c.rate }
func (c *byteCodec) Channels() int                        { return c.channels }
func (c *byteCodec) PreSkip() int                         { return c.preSkip }
func (c *byteCodec) AddHeaderPacket([]byte) (bool, error) { return true, nil }
func (c *byteCodec) Decode(p []byte, pcm []float32) (int, error) {
	for i, b := range p {
		for ch := range c.channels {
			pcm[i*c.channels+ch] = float32(b) / 100
		}
	}
	return len(p), nil
}

func newByteDecoder(t *testing.T, codec oggCodec, packets ...[]byte) *oggDecoder {
	t.Helper()
	var buf bytes.Buffer
	writeOggPackets(&buf, 0, append([][]byte{[]byte("header")}, packets...)...)
	d := &oggDecoder{packets: newOggPacketReader(&buf), closer: io.NopCloser(nil)}
	require.NoError(t, d.useCodec(codec))
	return d
}

func TestOggDecoder_PreSkipAndMonoUpmix(t *testing.T) {
	d := newByteDecoder(t, &byteCodec{rate: 48000, channels: 1, preSkip: 2}, []byte{1, 2, 3, 4}, []byte{5})

	samples := make([][2]float64, 10)
	n, ok := d.Stream(samples)

	assert.True(t, ok)
	require.Equal(t, 3, n)
	assert.InDelta(t, 0.03, samples[0][0], 1e-6)
	assert.InDelta(t, 0.03, samples[0][1], 1e-6)
	assert.InDelta(t, 0.05, samples[2][0], 1e-6)
	assert.Equal(t, 3, d.Position())

	n, ok = d.Stream(samples)
	assert.Zero(t, n)
	assert.False(t, ok)
	assert.NoError(t, d.Err())
}

func TestOggDecoder_StreamsAcrossCalls(t *testing.T) {
	d := newByteDecoder(t, &byteCodec{rate: 48000, channels: 2}, []byte{1, 2, 3, 4, 5})

	samples := make([][2]float64, 2)
	var got []float64
	for {
		n, ok := d.Stream(samples)
		for _, s := range samples[:n] {
			got = append(got, s[0])
		}
		if !ok {
			break
		}
	}
	assert.InDeltaSlice(t, []float64{0.01, 0.02, 0.03, 0.04, 0.05}, got, 1e-6)
}

func TestOggDecoder_ChainedStreamRateChangeFails(t *testing.T) {
	d := newByteDecoder(t, &byteCodec{rate: 44100, channels: 2}, []byte{1}, opusHead(2, 0), opusTags)

	samples := make([][2]float64, 8)
	n, _ := d.Stream(samples)
	assert.Equal(t, 1, n)

	n, ok := d.Stream(samples)
	assert.Zero(t, n)
	assert.False(t, ok)
	assert.ErrorContains(t, d.Err(), "changes sample rate")
}
