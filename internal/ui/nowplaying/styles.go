package nowplaying

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

var (
	colorPrimary   = lipgloss.Color("#a78bfa")
	colorSecondary = lipgloss.Color("#f1a208")
	colorFgBase    = lipgloss.Color("#c0c0c0")
	colorFgMuted   = lipgloss.Color("#808080")
	colorFgSubtle  = lipgloss.Color("#585858")
	colorSuccess   = lipgloss.Color("#42b883")
	colorError     = lipgloss.Color("#ff5555")
	colorWarning   = lipgloss.Color("#f1a208")
)

var (
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	artistStyle = lipgloss.NewStyle().Foreground(colorFgBase)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorFgMuted)
	subtleStyle = lipgloss.NewStyle().Foreground(colorFgSubtle)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)

	progressFilledStyle   = lipgloss.NewStyle().Foreground(colorPrimary)
	progressBufferedStyle = lipgloss.NewStyle().Foreground(colorFgMuted)
	progressEmptyStyle    = lipgloss.NewStyle().Foreground(colorFgSubtle)
)

// stateStyle colors the state label.
func stateStyle(active, failed, loading bool) lipgloss.Style {
	switch {
	case failed:
		return errorStyle.Bold(true)
	case loading:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case active:
		return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	}
	return mutedStyle
}

// titleGradient renders bold text with a horizontal color gradient.
func titleGradient(text string) string {
	return applyGradient(text, colorPrimary, colorSecondary)
}

func applyGradient(text string, from, to lipgloss.Color) string {
	if text == "" {
		return ""
	}

	// Grapheme clusters keep combined characters in one color.
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	if len(clusters) == 1 {
		return lipgloss.NewStyle().Foreground(from).Bold(true).Render(text)
	}

	colors := blendColors(len(clusters), from, to)

	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorToHex(colors[i]))).Bold(true)
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

// blendColors returns size colors blended in HCL space between from and to.
func blendColors(size int, from, to lipgloss.Color) []color.Color {
	if size < 2 {
		return []color.Color{lipglossToColor(from)}
	}

	c1, _ := colorful.MakeColor(lipglossToColor(from))
	c2, _ := colorful.MakeColor(lipglossToColor(to))

	colors := make([]color.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		colors[i] = c1.BlendHcl(c2, t).Clamped()
	}
	return colors
}

func lipglossToColor(c lipgloss.Color) color.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	// ANSI palette colors have no hex form.
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

func colorToHex(c color.Color) string {
	if cf, ok := c.(colorful.Color); ok {
		return cf.Hex()
	}
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
