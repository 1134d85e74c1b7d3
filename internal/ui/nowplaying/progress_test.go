package nowplaying

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestBarCells(t *testing.T) {
	tests := []struct {
		name                  string
		pos, buffered, dur    time.Duration
		width                 int
		wantFilled, wantAhead int
	}{
		{"unknown duration", time.Second, time.Second, 0, 10, 0, 0},
		{"half played quarter ahead", 50 * time.Second, 75 * time.Second, 100 * time.Second, 20, 10, 5},
		{"buffered behind position", 50 * time.Second, 10 * time.Second, 100 * time.Second, 20, 10, 0},
		{"clamped", 200 * time.Second, 300 * time.Second, 100 * time.Second, 20, 20, 0},
		{"negative position", -time.Second, 0, 100 * time.Second, 20, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled, ahead := barCells(tt.pos, tt.buffered, tt.dur, tt.width)
			assert.Equal(t, tt.wantFilled, filled)
			assert.Equal(t, tt.wantAhead, ahead)
		})
	}
}

func TestRenderProgressBar(t *testing.T) {
	out := renderProgressBar(30*time.Second, 60*time.Second, 2*time.Minute, 40)

	assert.Equal(t, 40, lipgloss.Width(out))
	plain := ansi.Strip(out)
	assert.True(t, strings.HasPrefix(plain, "0:30  "))
	assert.True(t, strings.HasSuffix(plain, "  2:00"))
	assert.Contains(t, plain, filledBlock)
	assert.Contains(t, plain, bufferedBlock)
}

func TestRenderProgressBar_UnknownDurationAndNarrow(t *testing.T) {
	assert.Contains(t, ansi.Strip(renderProgressBar(0, 0, 0, 30)), "--:--")
	assert.Equal(t, "0:05 / 1:00", renderProgressBar(5*time.Second, 0, time.Minute, 10))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "3:20", formatDuration(200*time.Second))
	assert.Equal(t, "1:01:01", formatDuration(time.Hour+time.Minute+time.Second))
}
