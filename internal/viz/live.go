package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pendulab/internal/kinematics"
	"github.com/san-kum/pendulab/internal/sim"
	"github.com/san-kum/pendulab/internal/trail"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width          = 72
	height         = 26
	energyCapacity = 240
	trailStep      = 100
)

type TickMsg time.Time

type Options struct {
	Theme string
	FPS   int
	// Clock defaults to the system clock.
	Clock  sim.Clock
	Width  int
	Height int
	Log    *zap.Logger
}

// panel holds a chain's input values. It is the chain's ParameterSource:
// reset returns to the angles shown here.
type panel struct {
	angles []float64
}

func (p *panel) InitialAngles() []float64 {
	out := make([]float64, len(p.angles))
	copy(out, p.angles)
	return out
}

// chainView is one chain on the page and the Renderer of its driver.
type chainView struct {
	driver *sim.Driver
	panel  *panel
	frame  sim.Frame
	energy []float64
	view   *Viewport
}

func (c *chainView) Render(f sim.Frame) {
	switch {
	case f.Time < c.frame.Time:
		c.energy = c.energy[:0]
	case f.Time > c.frame.Time && !math.IsNaN(f.Energy) && !math.IsInf(f.Energy, 0):
		c.energy = append(c.energy, f.Energy)
		if len(c.energy) > energyCapacity {
			c.energy = c.energy[1:]
		}
	}
	c.frame = f
}

// Model is the live TUI. It schedules frames for every chain on one
// bubbletea tick chain, so key edits and steps never interleave.
type Model struct {
	group    *sim.Group
	chains   []*chainView
	canvas   *Canvas
	theme    Theme
	styles   styles
	interval time.Duration

	wantFrame bool
	inFlight  bool

	current  int
	selected int
	status   string
	showHelp bool
	log      *zap.Logger
}

// NewModel builds one simulator and driver per parameter set.
func NewModel(params []sim.Params, opts Options) (*Model, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("viz: no chains")
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Width <= 0 {
		opts.Width = width
	}
	if opts.Height <= 0 {
		opts.Height = height
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	theme := GetTheme(opts.Theme)
	m := &Model{
		group:    sim.NewGroup(),
		canvas:   NewCanvas(opts.Width, opts.Height),
		theme:    theme,
		styles:   newStyles(theme),
		interval: time.Second / time.Duration(opts.FPS),
		log:      opts.Log,
	}

	for _, p := range params {
		s, err := sim.New(p, opts.Log)
		if err != nil {
			return nil, err
		}
		cv := &chainView{
			panel:  &panel{angles: p.InitialAngles()},
			energy: make([]float64, 0, energyCapacity),
			view:   NewViewport(opts.FPS),
		}
		cv.driver = sim.NewDriver(s, opts.Clock, m, cv, cv.panel)
		m.chains = append(m.chains, cv)
		m.group.Add(cv.driver)
	}
	m.group.Draw()
	m.fit()
	return m, nil
}

// RequestFrame makes the model a sim.Scheduler.
func (m *Model) RequestFrame() { m.wantFrame = true }

func (m *Model) Group() *sim.Group { return m.group }
func (m *Model) Theme() Theme      { return m.theme }
func (m *Model) Current() int      { return m.current }
func (m *Model) Status() string    { return m.status }

// Selected returns the parameter under the cursor.
func (m *Model) Selected() string { return m.params()[m.selected] }

func (m *Model) Init() tea.Cmd { return m.schedule() }

// schedule starts a tick when a driver asked for a frame, or a zoom is
// still easing, and none is in flight.
func (m *Model) schedule() tea.Cmd {
	m.fit()
	if m.inFlight || !(m.wantFrame || m.animating()) {
		return nil
	}
	m.wantFrame = false
	m.inFlight = true
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKey(msg.String()) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.inFlight = false
		m.group.Tick()
		for _, c := range m.chains {
			c.view.Step()
		}
	}
	return m, m.schedule()
}

// handleKey applies one key press and reports whether to quit.
func (m *Model) handleKey(key string) bool {
	m.status = ""
	switch key {
	case "q", "ctrl+c":
		return true
	case " ":
		m.group.Toggle()
	case "r":
		m.group.Reset()
	case "p":
		on := !m.chains[0].driver.Simulator().ShowPath()
		m.group.SetShowPath(on)
	case "[":
		m.stepCapacity(-trailStep)
	case "]":
		m.stepCapacity(trailStep)
	case "n":
		m.current = (m.current + 1) % len(m.chains)
		m.selected = 0
	case "tab":
		m.selected = (m.selected + 1) % len(m.params())
	case "shift+tab":
		m.selected = (m.selected + len(m.params()) - 1) % len(m.params())
	case "up", "k":
		m.adjust(1)
	case "down", "j":
		m.adjust(-1)
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return false
}

func (m *Model) stepCapacity(delta int) {
	n := m.chains[0].driver.Simulator().MaxPathPoints() + delta
	if !m.group.SetMaxPathPoints(n) {
		m.status = fmt.Sprintf("path points must be %d..%d", trail.MinCapacity, trail.MaxCapacity)
	}
}

// params lists the per-chain parameters the cursor walks. Trail settings
// are page-wide and have their own keys.
func (m *Model) params() []string {
	names := sim.ParamNames(m.chains[m.current].driver.Simulator().N())
	out := names[:0:0]
	for _, n := range names {
		if n != sim.ParamMaxPathPoints && n != sim.ParamShowPath {
			out = append(out, n)
		}
	}
	return out
}

// paramStep is the increment and lower bound of one arrow press.
func paramStep(name string) (step, lo float64) {
	switch {
	case strings.HasPrefix(name, sim.ParamAngle):
		return 5, math.Inf(-1)
	case strings.HasPrefix(name, sim.ParamLength):
		return 0.1, 0.1
	case strings.HasPrefix(name, sim.ParamMass):
		return 1, 1
	case name == sim.ParamGravity:
		return 0.5, 0
	default:
		return 0.01, 0
	}
}

func (m *Model) adjust(dir float64) {
	c := m.chains[m.current]
	name := m.Selected()
	angle := -1
	if strings.HasPrefix(name, sim.ParamAngle) {
		i, _ := strconv.Atoi(strings.TrimPrefix(name, sim.ParamAngle))
		angle = i - 1
	}

	var cur float64
	if angle >= 0 {
		cur = c.panel.angles[angle]
	} else {
		v, err := c.driver.Simulator().Param(name)
		if err != nil {
			m.status = err.Error()
			return
		}
		cur = v
	}
	step, lo := paramStep(name)
	next := math.Max(lo, math.Round((cur+dir*step)*100)/100)

	if err := c.driver.SetParam(name, next); err != nil {
		m.status = err.Error()
		return
	}
	if angle >= 0 {
		c.panel.angles[angle] = next
	}
	m.log.Debug("param adjusted", zap.String("sim", c.driver.Simulator().ID()),
		zap.String("name", name), zap.Float64("value", next))
}

func (m *Model) resize(w, h int) {
	cw := w - 50
	ch := h - 4
	if cw < 20 || ch < 8 {
		return
	}
	m.canvas = NewCanvas(cw, ch)
}

// slot is the dot width each chain gets.
func (m *Model) slot() int {
	cw, _ := m.canvas.Dots()
	return cw / len(m.chains)
}

// fit retargets every zoom to its chain's current reach.
func (m *Model) fit() {
	_, ch := m.canvas.Dots()
	for _, c := range m.chains {
		c.view.Fit(Reach(c.frame.Origin, c.frame.Bobs), m.slot(), ch)
	}
}

func (m *Model) animating() bool {
	for _, c := range m.chains {
		if !c.view.Settled() {
			return true
		}
	}
	return false
}

// draw paints every chain into the canvas, side by side.
func (m *Model) draw() {
	m.canvas.Clear()
	_, ch := m.canvas.Dots()
	slot := m.slot()
	for i, c := range m.chains {
		drawChain(m.canvas, c.view, c.frame, i*slot, slot, ch)
	}
}

// drawChain draws one frame into the dot columns [x0, x0+w).
func drawChain(cv *Canvas, v *Viewport, f sim.Frame, x0, w, h int) {
	dot := func(p r2.Vec) (int, int, bool) {
		x, y := v.Map(p, f.Origin, w, h)
		if x < 0 || x >= w || y < 0 {
			return 0, 0, false
		}
		return x0 + x, y, true
	}
	line := func(a, b r2.Vec, ink Ink) {
		ax, ay, okA := dot(a)
		bx, by, okB := dot(b)
		if okA && okB {
			cv.Line(ax, ay, bx, by, ink)
		}
	}

	for link, path := range f.Trails {
		for i := 1; i < len(path); i++ {
			line(path[i-1], path[i], TrailInk(link))
		}
	}

	prev := f.Origin
	for _, b := range f.Bobs {
		line(prev, b, InkRod)
		prev = b
	}
	for i, b := range f.Bobs {
		if i < len(f.Velocities) {
			line(b, kinematics.Arrow(b, f.Velocities[i]), InkArrow)
		}
	}

	if x, y, ok := dot(f.Origin); ok {
		cv.Disc(x, y, 1, InkPivot)
	}
	for i, b := range f.Bobs {
		x, y, ok := dot(b)
		if !ok {
			continue
		}
		r := 1
		if i < len(f.Masses) {
			r = bobRadius(f.Masses[i], v.Zoom())
		}
		cv.Disc(x, y, r, BobInk(i))
	}
}

// bobRadius sizes a bob by mass, a third of the mass in internal units,
// clamped to what a braille grid can show.
func bobRadius(mass, zoom float64) int {
	r := int(math.Round(mass / 3 * zoom))
	return max(1, min(r, 4))
}

func (m *Model) View() string {
	m.draw()
	canvas := m.styles.canvas.Render(m.canvas.Render(m.theme.Inks()))
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvas, m.styles.panel.Render(m.panelView()))
	if m.showHelp {
		return m.helpView() + "\n" + main
	}
	return main
}

func (m *Model) panelView() string {
	st := m.styles
	c := m.chains[m.current]
	r := c.driver.Readout()

	var s strings.Builder
	title := fmt.Sprintf("PENDULAB  %d-link", c.driver.Simulator().N())
	if len(m.chains) > 1 {
		title += fmt.Sprintf("  [%d/%d]", m.current+1, len(m.chains))
	}
	s.WriteString(st.header.Render(title) + "\n")
	if r.Running {
		s.WriteString(st.running.Render("RUNNING"))
	} else {
		s.WriteString(st.paused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	if len(c.energy) > 1 {
		chart := asciigraph.Plot(c.energy,
			asciigraph.Height(4), asciigraph.Width(28), asciigraph.Precision(2), asciigraph.Caption("Energy (J)"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	s.WriteString(st.label.Render("Time") + st.value.Render(fmt.Sprintf("%.2fs", r.Time)) + "\n")
	s.WriteString(st.label.Render("Energy") + st.value.Render(fmt.Sprintf("%.2f J", r.Energy)) + "\n\n")

	selected := m.Selected()
	for _, f := range r.Fields() {
		if f.Key == selected {
			s.WriteString(st.active.Render(fmt.Sprintf("> %-13s%s", f.Label, f.Value)) + "\n")
			continue
		}
		s.WriteString("  " + st.label.Render(f.Label) + st.value.Render(f.Value) + "\n")
	}

	if m.status != "" {
		s.WriteString("\n" + st.paused.Render(m.status) + "\n")
	}
	s.WriteString("\n" + st.separator(36) + "\n")
	s.WriteString(st.help.Render("SP:Start/Pause R:Reset P:Path\nTab:Select ↑↓:Adjust N:Chain\n[ ]:Path points T:Theme Q:Quit"))
	return s.String()
}

func (m *Model) helpView() string {
	return m.styles.selected.Render(strings.Join([]string{
		"Space      start or pause every chain",
		"R          reset every chain to its angles",
		"P          toggle path display",
		"[ / ]      path points -/+ " + strconv.Itoa(trailStep),
		"Tab        next parameter (Shift+Tab back)",
		"Up / Down  adjust the selected parameter",
		"N          next chain",
		"T          cycle themes",
		"?          toggle this help",
		"Q          quit",
	}, "\n"))
}

// Run starts the TUI on the terminal and blocks until the user quits.
func Run(params []sim.Params, opts Options) error {
	m, err := NewModel(params, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
