package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

// Warm palette shared by the live progress output
var (
	colorMuted  = lipgloss.Color("#5c5044")
	colorText   = lipgloss.Color("#d3b597")
	colorYellow = lipgloss.Color("#f5b761")
	colorGreen  = lipgloss.Color("#93b56b")
	colorRed    = lipgloss.Color("#d95f5f")
	colorCyan   = lipgloss.Color("#61afaf")
	colorPurple = lipgloss.Color("#976bb5")
	colorOrange = lipgloss.Color("#eb8755")
)

// liveStyles styles the snapshot progress lines
type liveStyles struct {
	Stream    lipgloss.Style
	Status    lipgloss.Style
	Reasoning lipgloss.Style
	Plan      lipgloss.Style
	Content   lipgloss.Style
	Completed lipgloss.Style
	Errored   lipgloss.Style
	Cancelled lipgloss.Style
}

// newLiveStyles builds styles for r, so color is only emitted when the
// destination supports it.
func newLiveStyles(r *lipgloss.Renderer) liveStyles {
	return liveStyles{
		Stream:    r.NewStyle().Foreground(colorMuted),
		Status:    r.NewStyle().Foreground(colorCyan).Italic(true),
		Reasoning: r.NewStyle().Foreground(colorPurple).Faint(true),
		Plan:      r.NewStyle().Foreground(colorOrange),
		Content:   r.NewStyle().Foreground(colorText),
		Completed: r.NewStyle().Foreground(colorGreen).Bold(true),
		Errored:   r.NewStyle().Foreground(colorRed).Bold(true),
		Cancelled: r.NewStyle().Foreground(colorYellow).Bold(true),
	}
}
