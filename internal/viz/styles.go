package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are the panel styles derived from a theme.
type styles struct {
	canvas   lipgloss.Style
	panel    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
	value    lipgloss.Style
	active   lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
	running  lipgloss.Style
	paused   lipgloss.Style
	selected lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(0, 1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(0, 2).
			Width(42),
		header:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(13),
		dim:      lipgloss.NewStyle().Foreground(t.Muted),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		active:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:    lipgloss.NewStyle().Foreground(t.Links[1]),
		help:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		running:  lipgloss.NewStyle().Foreground(t.Good).Bold(true),
		paused:   lipgloss.NewStyle().Foreground(t.Warn).Bold(true),
		selected: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent),
	}
}

// separator draws a muted rule with a center mark.
func (s styles) separator(width int) string {
	mid := width / 2
	if mid < 3 {
		return ""
	}
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return s.help.Render(left + " ◆ " + right)
}
