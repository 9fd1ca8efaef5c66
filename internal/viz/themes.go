package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the TUI color scheme. Links holds one color per link, used for
// both the bob and its trail.
type Theme struct {
	Name   string
	Links  [3]lipgloss.Color
	Rod    lipgloss.Color
	Pivot  lipgloss.Color
	Arrow  lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
	Border lipgloss.Color
	Good   lipgloss.Color
	Warn   lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:   "default",
		Links:  [3]lipgloss.Color{"#ff6b6b", "#4ecdc4", "#ffd93d"},
		Rod:    lipgloss.Color("#d0d0d0"),
		Pivot:  lipgloss.Color("#ffffff"),
		Arrow:  lipgloss.Color("#7f7fff"),
		Text:   lipgloss.Color("252"),
		Muted:  lipgloss.Color("245"),
		Accent: lipgloss.Color("205"),
		Border: lipgloss.Color("240"),
		Good:   lipgloss.Color("#00ff88"),
		Warn:   lipgloss.Color("#ffaa00"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Links:  [3]lipgloss.Color{"#00ff00", "#88ff88", "#00aa00"},
		Rod:    lipgloss.Color("#00cc00"),
		Pivot:  lipgloss.Color("#ccffcc"),
		Arrow:  lipgloss.Color("#ffff00"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#007700"),
		Accent: lipgloss.Color("#ccffcc"),
		Border: lipgloss.Color("#005500"),
		Good:   lipgloss.Color("#88ff88"),
		Warn:   lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Links:  [3]lipgloss.Color{"#ffffff", "#bbbbbb", "#888888"},
		Rod:    lipgloss.Color("#666666"),
		Pivot:  lipgloss.Color("#ffffff"),
		Arrow:  lipgloss.Color("#0088ff"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
		Accent: lipgloss.Color("#0088ff"),
		Border: lipgloss.Color("#444444"),
		Good:   lipgloss.Color("#ffffff"),
		Warn:   lipgloss.Color("#ffaa00"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Links:  [3]lipgloss.Color{"#00a8cc", "#ffd700", "#00ff88"},
		Rod:    lipgloss.Color("#4488aa"),
		Pivot:  lipgloss.Color("#e0f0ff"),
		Arrow:  lipgloss.Color("#ff4444"),
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
		Accent: lipgloss.Color("#ffd700"),
		Border: lipgloss.Color("#0077be"),
		Good:   lipgloss.Color("#00ff88"),
		Warn:   lipgloss.Color("#ffcc00"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Links:  [3]lipgloss.Color{"#ff6b6b", "#feca57", "#ff9ff3"},
		Rod:    lipgloss.Color("#8b6b8c"),
		Pivot:  lipgloss.Color("#fff5f5"),
		Arrow:  lipgloss.Color("#5fd068"),
		Text:   lipgloss.Color("#fff5f5"),
		Muted:  lipgloss.Color("#8b6b8c"),
		Accent: lipgloss.Color("#ff9ff3"),
		Border: lipgloss.Color("#5d3b5e"),
		Good:   lipgloss.Color("#5fd068"),
		Warn:   lipgloss.Color("#ffc048"),
	}

	Themes = []Theme{ThemeDefault, ThemeRetro, ThemeMinimal, ThemeOcean, ThemeSunset}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeDefault
}

// Inks maps canvas inks to foreground styles.
func (t Theme) Inks() map[Ink]lipgloss.Style {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	inks := map[Ink]lipgloss.Style{
		InkArrow: fg(t.Arrow),
		InkRod:   fg(t.Rod),
		InkPivot: fg(t.Pivot).Bold(true),
	}
	for i, c := range t.Links {
		inks[TrailInk(i)] = fg(c).Faint(true)
		inks[BobInk(i)] = fg(c).Bold(true)
	}
	return inks
}
