package nowplaying

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/nfnt/resize"
)

const (
	kittyChunkSize = 4096 // Max bytes per escape sequence chunk
	// kittyMaxPx bounds the transmitted cover; the terminal scales it to
	// the cell area anyway.
	kittyMaxPx = 256
)

// KittySupported reports whether the terminal speaks the Kitty graphics
// protocol. WAVESTREAM_IMAGE_PROTOCOL=kitty|none overrides detection.
func KittySupported() bool {
	switch os.Getenv("WAVESTREAM_IMAGE_PROTOCOL") {
	case "kitty":
		return true
	case "none":
		return false
	}
	// Contour inherits parent terminal variables but has no Kitty support.
	if os.Getenv("CONTOUR_PROFILE") != "" {
		return false
	}
	return os.Getenv("KITTY_WINDOW_ID") != "" ||
		os.Getenv("TERM") == "xterm-kitty" ||
		os.Getenv("TERM_PROGRAM") == "WezTerm" ||
		os.Getenv("GHOSTTY_RESOURCES_DIR") != ""
}

// encodeKitty converts img to a Kitty graphics escape sequence displayed
// over cols x rows cells. Returns "" if img is nil or cannot be encoded.
func encodeKitty(img image.Image, cols, rows int) string {
	if img == nil {
		return ""
	}
	img = resize.Thumbnail(kittyMaxPx, kittyMaxPx, img, resize.Bilinear)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	b64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	// a=T transmits and displays, f=100 is PNG, m=1 means more chunks follow.
	var sb strings.Builder
	for i := 0; i < len(b64); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(b64))
		more := 0
		if end < len(b64) {
			more = 1
		}
		if i == 0 {
			fmt.Fprintf(&sb, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, b64[i:end])
		} else {
			fmt.Fprintf(&sb, "\x1b_Gm=%d;%s\x1b\\", more, b64[i:end])
		}
	}
	return sb.String()
}

// artPlaceholder draws a framed music note where the cover would be.
func artPlaceholder(cols, rows int) []string {
	if cols < 4 || rows < 2 {
		return make([]string, rows)
	}

	lines := make([]string, 0, rows)
	lines = append(lines, "┌"+strings.Repeat("─", cols-2)+"┐")
	for i := 1; i < rows-1; i++ {
		if i == rows/2 && cols >= 5 {
			left := (cols - 3) / 2
			lines = append(lines, "│"+strings.Repeat(" ", left)+"♪"+strings.Repeat(" ", cols-3-left)+"│")
			continue
		}
		lines = append(lines, "│"+strings.Repeat(" ", cols-2)+"│")
	}
	lines = append(lines, "└"+strings.Repeat("─", cols-2)+"┘")
	return lines
}
