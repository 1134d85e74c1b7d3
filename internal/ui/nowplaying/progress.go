package nowplaying

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock   = "▓"
	bufferedBlock = "▒"
	emptyBlock    = "░"
)

// renderProgressBar renders position and buffered amount against duration.
// Format: 1:23  ▓▓▓▓▒▒▒░░░░  4:56
func renderProgressBar(position, buffered, duration time.Duration, width int) string {
	posStr := formatDuration(max(position, 0))
	durStr := "--:--"
	if duration > 0 {
		durStr = formatDuration(duration)
	}

	fixedWidth := lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth
	if barWidth < 3 {
		return posStr + " / " + durStr
	}

	filled, ahead := barCells(position, buffered, duration, barWidth)
	bar := progressFilledStyle.Render(strings.Repeat(filledBlock, filled)) +
		progressBufferedStyle.Render(strings.Repeat(bufferedBlock, ahead)) +
		progressEmptyStyle.Render(strings.Repeat(emptyBlock, barWidth-filled-ahead))

	return posStr + "  " + bar + "  " + durStr
}

// barCells splits width into played cells and buffered cells past them.
func barCells(position, buffered, duration time.Duration, width int) (filled, ahead int) {
	if duration <= 0 || width <= 0 {
		return 0, 0
	}
	cells := func(d time.Duration) int {
		return min(max(int(float64(width)*float64(d)/float64(duration)), 0), width)
	}
	filled = cells(position)
	ahead = max(cells(buffered)-filled, 0)
	return filled, ahead
}

func formatDuration(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
