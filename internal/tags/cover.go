package tags

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // JPEG decoder for covers
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // WebP decoder for covers
)

// PlaceholderSize is the edge length of the generated placeholder cover.
const PlaceholderSize = 256

// ErrNoCover is returned when there is no cover art to decode.
var ErrNoCover = errors.New("no cover art")

// Common cover art filenames to look for next to local sources.
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png", "cover.webp",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
}

// DecodeCover decodes embedded cover art (JPEG, PNG or WebP).
func DecodeCover(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoCover
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding cover: %w", err)
	}
	return img, nil
}

// Thumbnail scales img to fit within size x size, keeping the aspect ratio.
func Thumbnail(img image.Image, size uint) image.Image {
	return resize.Thumbnail(size, size, img, resize.Lanczos3)
}

// Cover returns the decoded cover of m, or a placeholder when m has none
// or it cannot be decoded.
func Cover(m *Metadata) image.Image {
	if m != nil && m.HasCover() {
		if img, err := DecodeCover(m.Cover); err == nil {
			return img
		}
	}
	title := ""
	if m != nil {
		title = m.Title
	}
	return Placeholder(title)
}

// Placeholder draws a generic cover carrying the initials of title.
func Placeholder(title string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{0x2b, 0x2d, 0x42, 0xff}}, image.Point{}, draw.Src)

	// Inner frame.
	inner := image.Rect(16, 16, PlaceholderSize-16, PlaceholderSize-16)
	draw.Draw(img, inner, &image.Uniform{color.RGBA{0x3d, 0x40, 0x5b, 0xff}}, image.Point{}, draw.Src)

	text := initials(title)
	if text == "" {
		text = "?"
	}
	// basicfont glyphs are 7x13; draw at 1:1 then upscale the whole label.
	label := image.NewRGBA(image.Rect(0, 0, 7*len(text), 13))
	d := &font.Drawer{
		Dst:  label,
		Src:  image.NewUniform(color.RGBA{0xed, 0xf2, 0xf4, 0xff}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, 11),
	}
	d.DrawString(text)

	scaled := resize.Resize(uint(label.Bounds().Dx()*8), 0, label, resize.NearestNeighbor) //nolint:gosec // small
	b := scaled.Bounds()
	at := image.Pt((PlaceholderSize-b.Dx())/2, (PlaceholderSize-b.Dy())/2)
	draw.Draw(img, b.Add(at), scaled, b.Min, draw.Over)
	return img
}

// initials returns up to two uppercase ASCII initials of s.
func initials(s string) string {
	var out []rune
	for _, word := range strings.Fields(s) {
		r := []rune(word)[0]
		if r > unicode.MaxASCII || !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FolderCover looks for common cover art files next to a local source.
// Remote sources have no folder, so nil is returned for them.
func FolderCover(src string) (data []byte, mimeType string) {
	p := src
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		if u.Scheme != "file" {
			return nil, ""
		}
		p = u.Path
	}
	dir := filepath.Dir(p)

	for _, filename := range coverArtFilenames {
		data, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			// Try case-insensitive match
			data, err = os.ReadFile(filepath.Join(dir, strings.ToUpper(filename)))
			if err != nil {
				continue
			}
		}

		// Determine MIME type from extension
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".jpg", ".jpeg":
			mimeType = mimeJPEG
		case ".png":
			mimeType = mimePNG
		case ".webp":
			mimeType = mimeWebP
		default:
			mimeType = "application/octet-stream"
		}
		return data, mimeType
	}
	return nil, ""
}
