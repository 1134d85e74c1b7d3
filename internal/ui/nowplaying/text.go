package nowplaying

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// sanitize drops control characters and invalid bytes from tag text so a
// broken tag cannot corrupt the terminal.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == unicode.ReplacementChar:
			return -1
		case r == '\u00a0':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))
}

// truncate shortens s to maxWidth cells with a single-cell ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(sanitize(s), maxWidth, "…")
}

// pad fills s with spaces up to width cells.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}
