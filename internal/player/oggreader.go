package player

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
)

const oggFlagContinued = 0x01

// oggPageHeader represents the header of an Ogg page.
type oggPageHeader struct {
	Flags        byte
	GranulePos   int64
	SerialNumber uint32
	SequenceNum  uint32
	SegmentTable []uint8
}

func (h *oggPageHeader) bodySize() int {
	n := 0
	for _, s := range h.SegmentTable {
		n += int(s)
	}
	return n
}

// parseOggPageHeader reads and parses an Ogg page header from the reader.
func parseOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	// "OggS" + version(1) + flags(1) + granule(8) + serial(4) + sequence(4) + checksum(4) + segments(1)
	var buf [27]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != "OggS" {
		return nil, errInvalidOggMagic
	}
	if buf[4] != 0 {
		return nil, errInvalidOggVersion
	}

	hdr := &oggPageHeader{
		Flags:        buf[5],
		GranulePos:   int64(binary.LittleEndian.Uint64(buf[6:14])),
		SerialNumber: binary.LittleEndian.Uint32(buf[14:18]),
		SequenceNum:  binary.LittleEndian.Uint32(buf[18:22]),
	}
	if n := buf[26]; n > 0 {
		hdr.SegmentTable = make([]uint8, n)
		if _, err := io.ReadFull(r, hdr.SegmentTable); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}

// oggPacketReader reassembles packets from a forward-only sequence of Ogg
// pages. Packets may span any number of pages.
type oggPacketReader struct {
	r       io.Reader
	pending [][]byte
	partial []byte
}

func newOggPacketReader(r io.Reader) *oggPacketReader {
	return &oggPacketReader{r: r}
}

// next returns the next complete packet. A packet cut off by the end of the
// stream is dropped and io.EOF returned.
func (p *oggPacketReader) next() ([]byte, error) {
	for len(p.pending) == 0 {
		if err := p.readPage(); err != nil {
			return nil, err
		}
	}
	pkt := p.pending[0]
	p.pending = p.pending[1:]
	return pkt, nil
}

func (p *oggPacketReader) readPage() error {
	hdr, err := parseOggPageHeader(p.r)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		return err
	}
	body := make([]byte, hdr.bodySize())
	if _, err := io.ReadFull(p.r, body); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		return err
	}

	if hdr.Flags&oggFlagContinued == 0 {
		// Lost the tail of a spanning packet.
		p.partial = nil
	}
	off := 0
	for _, lacing := range hdr.SegmentTable {
		p.partial = append(p.partial, body[off:off+int(lacing)]...)
		off += int(lacing)
		if lacing < 255 {
			p.pending = append(p.pending, p.partial)
			p.partial = nil
		}
	}
	return nil
}
