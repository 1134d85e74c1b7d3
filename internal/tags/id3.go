package tags

import (
	"bytes"
	"strconv"

	"github.com/bogem/id3v2/v2"
)

// readID3v2 reads an ID3v2 tag with bogem/id3v2. This is used as a fallback
// when dhowden/tag fails (e.g., on some UTF-16 encoded tags).
func readID3v2(data []byte) (*Metadata, error) {
	id3tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	m := &Metadata{
		Title:  id3tag.Title(),
		Artist: id3tag.Artist(),
		Album:  id3tag.Album(),
		Genre:  id3tag.Genre(),
	}
	if m.Artist == "" {
		m.Artist = getID3TextFrame(id3tag, "TPE2") // album artist
	}
	if y := id3tag.Year(); len(y) >= 4 {
		m.Year, _ = strconv.Atoi(y[:4])
	}
	for _, frame := range id3tag.GetFrames("APIC") {
		if pic, ok := frame.(id3v2.PictureFrame); ok && len(pic.Picture) > 0 {
			m.Cover = pic.Picture
			m.CoverMIME = pic.MimeType
			break
		}
	}

	if m.Title == "" && m.Artist == "" && m.Album == "" && !m.HasCover() {
		return nil, ErrNoTags
	}
	return m, nil
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}
