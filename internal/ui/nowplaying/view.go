package nowplaying

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/wavestream/internal/playback"
)

// View renders the player.
func (m Model) View() string {
	// Frame border and padding take 4 columns.
	innerWidth := max(m.width-4, 20)
	metaWidth := max(innerWidth-artCols-2, 10)

	meta := m.metaLines(metaWidth)
	art := artPlaceholder(artCols, artRows)
	if m.cover != "" {
		art = make([]string, artRows)
	}

	lines := make([]string, artRows)
	for i := range artRows {
		left := pad(art[i], artCols)
		lines[i] = left + "  " + meta[i]
	}
	rendered := frameStyle.Width(innerWidth + 2).Render(strings.Join(lines, "\n"))
	if m.cover != "" {
		rendered = injectImage(rendered, m.cover)
	}

	footer := m.help.ShortHelpView(m.keys.Help("playback"))
	if m.showHelp {
		footer = m.help.FullHelpView([][]key.Binding{m.keys.Help("playback"), m.keys.Help("global")})
	}
	return rendered + "\n" + footer
}

// injectImage puts the image sequence right after the left border of the
// first content line.
func injectImage(rendered, seq string) string {
	lines := strings.SplitN(rendered, "\n", 3)
	if len(lines) < 2 || !strings.HasPrefix(ansi.Strip(lines[1]), "│") {
		return rendered
	}
	idx := strings.Index(lines[1], "│")
	cut := idx + len("│")
	lines[1] = lines[1][:cut] + seq + lines[1][cut:]
	return strings.Join(lines, "\n")
}

func (m Model) metaLines(width int) []string {
	s := m.snap
	lines := make([]string, 0, artRows)

	lines = append(lines,
		titleGradient(truncate(trackTitle(s), width)),
		artistStyle.Render(truncate(artistLine(s.Metadata), width)),
		"",
		m.stateLine(width),
		renderProgressBar(
			time.Duration(s.PositionMillis)*time.Millisecond,
			time.Duration(s.BufferedMillis)*time.Millisecond,
			time.Duration(s.DurationMillis)*time.Millisecond,
			width,
		),
		"",
		mutedStyle.Render(truncate(volumeLine(s.Volume), width)),
		subtleStyle.Render(truncate(s.StreamURL, width)),
	)
	if m.errText != "" {
		lines = append(lines, errorStyle.Render(truncate(m.errText, width)))
	}

	for len(lines) < artRows {
		lines = append(lines, "")
	}
	return lines[:artRows]
}

func (m Model) stateLine(width int) string {
	s := m.snap
	label := stateLabel(s.State)
	style := stateStyle(
		s.State == playback.StatePlaying,
		s.State == playback.StateError,
		s.State == playback.StateBuffering || s.State.IsTransient(),
	)
	line := style.Render(label)
	if s.Generation > 0 {
		line += subtleStyle.Render(fmt.Sprintf("  #%d", s.Generation))
	}
	if lipgloss.Width(line) > width {
		return style.Render(truncate(label, width))
	}
	return line
}

func stateLabel(s playback.State) string {
	switch s {
	case playback.StateIdle:
		return "■ Idle"
	case playback.StateBuffering:
		return "… Buffering"
	case playback.StatePlaying:
		return "▶ Playing"
	case playback.StatePaused:
		return "⏸ Paused"
	case playback.StateSkippingToNext:
		return "⏭ Skipping"
	case playback.StateSkippingToPrevious:
		return "⏮ Skipping"
	case playback.StateStopped:
		return "■ Stopped"
	case playback.StateError:
		return "✖ Error"
	}
	return s.String()
}

func trackTitle(s playback.Snapshot) string {
	if s.Metadata.Title != "" {
		return s.Metadata.Title
	}
	if name := streamName(s.StreamURL); name != "" {
		return name
	}
	return "Nothing playing"
}

// streamName is the last path element of the stream URL.
func streamName(raw string) string {
	if raw == "" {
		return ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func artistLine(md playback.Metadata) string {
	parts := make([]string, 0, 2)
	if md.Artist != "" {
		parts = append(parts, md.Artist)
	}
	if md.Album != "" {
		parts = append(parts, md.Album)
	}
	if len(parts) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(parts, " · ")
}

func volumeLine(v float64) string {
	line := fmt.Sprintf("Volume %3d%%", int(v*100+0.5))
	if v > 0 && v < 1 {
		line += " (ducked)"
	}
	return line
}
