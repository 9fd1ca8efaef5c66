package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pendulab/internal/config"
	"github.com/san-kum/pendulab/internal/sim"
)

var presetInfo = map[string]string{
	"single/small":   "near-harmonic swing",
	"single/large":   "anharmonic swing",
	"single/damped":  "decays to rest",
	"double/gentle":  "quasi-periodic",
	"double/chaos":   "flips and tumbles",
	"double/whip":    "light outer link",
	"triple/classic": "the stock triple",
	"triple/chaos":   "all links high",
	"triple/settle":  "heavy damping",
}

// Menu lists the presets and opens the live view on the chosen one.
type Menu struct {
	entries []string
	cursor  int
	opts    Options
	live    *Model
	err     error
	theme   Theme
	styles  styles
}

func NewMenu(opts Options) *Menu {
	var entries []string
	for _, kind := range config.Kinds() {
		for _, name := range config.ListPresets(kind) {
			entries = append(entries, kind+"/"+name)
		}
	}
	theme := GetTheme(opts.Theme)
	return &Menu{entries: entries, opts: opts, theme: theme, styles: newStyles(theme)}
}

func (m *Menu) Init() tea.Cmd { return nil }

// Live returns the chosen chain's model once one was opened.
func (m *Menu) Live() *Model { return m.live }

func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		_, cmd := m.live.Update(msg)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m, m.open(m.entries[m.cursor])
	}
	return m, nil
}

func (m *Menu) open(entry string) tea.Cmd {
	kind, name, _ := strings.Cut(entry, "/")
	cfg := config.GetPreset(kind, name)
	if cfg == nil {
		m.err = fmt.Errorf("unknown preset %s", entry)
		return nil
	}
	opts := m.opts
	opts.Theme = m.theme.Name
	live, err := NewModel([]sim.Params{cfg.Params()}, opts)
	if err != nil {
		m.err = err
		return nil
	}
	m.live = live
	return live.Init()
}

func (m *Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}

	st := m.styles
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render("PENDULAB") + "\n    " + st.help.Render("chained pendulums") + "\n    " + st.separator(26) + "\n\n")
	for i, entry := range m.entries {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", st.active.Render(fmt.Sprintf("▸ %-16s", entry)), st.value.Render(presetInfo[entry])))
			continue
		}
		b.WriteString(fmt.Sprintf("      %s %s\n", st.dim.Render(fmt.Sprintf("%-16s", entry)), st.help.Render(presetInfo[entry])))
	}
	if m.err != nil {
		b.WriteString("\n    " + st.paused.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.help.Render("j/k navigate  enter open  q quit") + "\n")
	return b.String()
}

// RunMenu starts the preset picker on the terminal.
func RunMenu(opts Options) error {
	_, err := tea.NewProgram(NewMenu(opts), tea.WithAltScreen()).Run()
	return err
}
