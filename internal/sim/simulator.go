package sim

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/dynamics"
	"github.com/san-kum/pendulab/internal/kinematics"
	"github.com/san-kum/pendulab/internal/trail"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// Simulator is one pendulum chain with its trail and display settings.
// Setters take user units and convert with the simulator's scale.
type Simulator struct {
	id        uuid.UUID
	state     *chain.State
	origin    r2.Vec
	scale     float64
	trail     *trail.Buffer
	showPath  bool
	time      float64
	metrics   []Metric
	observers []Observer
	log       *zap.Logger
}

func New(p Params, log *zap.Logger) (*Simulator, error) {
	n := len(p.Angles)
	if n < chain.MinLinks || n > chain.MaxLinks {
		return nil, fmt.Errorf("%w: got %d", chain.ErrLinkCount, n)
	}
	if len(p.Lengths) != n || len(p.Masses) != n {
		return nil, fmt.Errorf("%w: %d angles, %d lengths, %d masses",
			chain.ErrLinkCount, n, len(p.Lengths), len(p.Masses))
	}
	if log == nil {
		log = zap.NewNop()
	}
	scale := p.Scale
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = chain.DefaultScale
	}

	state, err := chain.New(n, scale)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		state.Config[i] = chain.LinkConfig{Length: p.Lengths[i] * scale, Mass: p.Masses[i]}
		state.Links[i].Angle = chain.Radians(p.Angles[i])
	}
	state.Gravity = p.Gravity * scale
	state.Damping = p.Damping

	s := &Simulator{
		id:       uuid.New(),
		state:    state,
		origin:   p.Origin,
		scale:    scale,
		trail:    trail.New(n, p.MaxPathPoints),
		showPath: p.ShowPath,
	}
	s.log = log.With(zap.String("sim", s.id.String()), zap.Int("links", n))
	return s, nil
}

func (s *Simulator) ID() string             { return s.id.String() }
func (s *Simulator) N() int                 { return s.state.N() }
func (s *Simulator) Scale() float64         { return s.scale }
func (s *Simulator) Origin() r2.Vec         { return s.origin }
func (s *Simulator) SetOrigin(o r2.Vec)     { s.origin = o }
func (s *Simulator) Time() float64          { return s.time }
func (s *Simulator) ShowPath() bool         { return s.showPath }
func (s *Simulator) MaxPathPoints() int     { return s.trail.Capacity() }
func (s *Simulator) Trail() [][]r2.Vec      { return s.trail.Snapshot() }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// State returns a copy of the chain in internal units.
func (s *Simulator) State() *chain.State { return s.state.Clone() }

// Energy returns the chain's mechanical energy in joules.
func (s *Simulator) Energy() float64 {
	return dynamics.Energy(s.state) / (s.scale * s.scale)
}

func (s *Simulator) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Advance steps the chain by dt seconds and notifies metrics and observers.
// It reports false, changing nothing, when dt is not a usable timestep.
func (s *Simulator) Advance(dt float64) bool {
	if !dynamics.Step(s.state, dt) {
		return false
	}
	s.time += dt
	for _, m := range s.metrics {
		m.Observe(s.state, s.time)
	}
	for _, o := range s.observers {
		o.OnStep(s.state, s.time)
	}
	return true
}

// RecordTrail appends the current bob positions to the trail while the path
// display is on.
func (s *Simulator) RecordTrail() {
	if !s.showPath {
		return
	}
	s.trail.PushAll(kinematics.Project(s.state, s.origin))
}

// Reset zeroes all motion, restores the given angles (degrees) and empties
// the trail. Missing or non-finite angles fall back to the defaults.
func (s *Simulator) Reset(angles []float64) {
	for i := range s.state.Links {
		deg := chain.DefaultAngles[i]
		if i < len(angles) && finite(angles[i]) {
			deg = angles[i]
		}
		s.state.Links[i].Angle = chain.Radians(deg)
	}
	s.state.Halt()
	s.trail.Clear()
	s.time = 0
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Frame captures what a renderer draws for the current state.
func (s *Simulator) Frame(running bool) Frame {
	masses := make([]float64, s.N())
	for i, c := range s.state.Config {
		masses[i] = c.Mass
	}
	f := Frame{
		ID:         s.ID(),
		Origin:     s.origin,
		Bobs:       kinematics.Project(s.state, s.origin),
		Velocities: kinematics.Velocities(s.state),
		Masses:     masses,
		Scale:      s.scale,
		Running:    running,
		Time:       s.time,
		Energy:     s.Energy(),
	}
	if s.showPath {
		f.Trails = s.trail.Snapshot()
	}
	return f
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (s *Simulator) link(i int) bool { return i >= 0 && i < s.N() }

// SetLength sets link i's length in meters.
func (s *Simulator) SetLength(i int, meters float64) bool {
	if !s.link(i) || !finite(meters) {
		return false
	}
	s.state.Config[i].Length = meters * s.scale
	return true
}

func (s *Simulator) SetMass(i int, mass float64) bool {
	if !s.link(i) || !finite(mass) {
		return false
	}
	s.state.Config[i].Mass = mass
	return true
}

// SetAngle moves link i to deg degrees without touching its velocity.
func (s *Simulator) SetAngle(i int, deg float64) bool {
	if !s.link(i) || !finite(deg) {
		return false
	}
	s.state.Links[i].Angle = chain.Radians(deg)
	return true
}

// SetGravity takes g in m/s².
func (s *Simulator) SetGravity(g float64) bool {
	if !finite(g) {
		return false
	}
	s.state.Gravity = g * s.scale
	return true
}

func (s *Simulator) SetDamping(c float64) bool {
	if !finite(c) {
		return false
	}
	s.state.Damping = c
	return true
}

// SetShowPath toggles trail recording. Turning it off discards the trail.
func (s *Simulator) SetShowPath(on bool) {
	s.showPath = on
	if !on {
		s.trail.Clear()
	}
}

func (s *Simulator) SetMaxPathPoints(n int) bool {
	if !s.trail.SetCapacity(n) {
		s.log.Debug("trail capacity rejected", zap.Int("requested", n))
		return false
	}
	return true
}

// Param names accepted by SetParam and Param.
const (
	ParamLength        = "length"
	ParamMass          = "mass"
	ParamAngle         = "angle"
	ParamGravity       = "gravity"
	ParamDamping       = "damping"
	ParamMaxPathPoints = "max_path_points"
	ParamShowPath      = "show_path"
)

// ParamNames lists every parameter of an n-link chain in display order.
func ParamNames(n int) []string {
	var names []string
	for _, prefix := range []string{ParamAngle, ParamLength, ParamMass} {
		for i := 1; i <= n; i++ {
			names = append(names, prefix+strconv.Itoa(i))
		}
	}
	return append(names, ParamGravity, ParamDamping, ParamMaxPathPoints, ParamShowPath)
}

// splitParam turns "mass2" into ("mass", 1).
func splitParam(name string) (string, int, error) {
	for _, prefix := range []string{ParamLength, ParamMass, ParamAngle} {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
		if err != nil {
			return "", 0, fmt.Errorf("%w: %q", chain.ErrUnknownParam, name)
		}
		if n < chain.MinLinks || n > chain.MaxLinks {
			return "", 0, fmt.Errorf("%w: %q", chain.ErrLinkIndex, name)
		}
		return prefix, n - 1, nil
	}
	switch name {
	case ParamGravity, ParamDamping, ParamMaxPathPoints, ParamShowPath:
		return name, -1, nil
	}
	return "", 0, fmt.Errorf("%w: %q", chain.ErrUnknownParam, name)
}

// SetParam applies a named edit. Non-finite values are ignored and leave
// the prior value in place, except for max_path_points where any value
// outside the capacity range is reported as ErrCapacity.
func (s *Simulator) SetParam(name string, value float64) error {
	key, i, err := splitParam(name)
	if err != nil {
		return err
	}
	if i >= 0 && !s.link(i) {
		return fmt.Errorf("%w: %s on a %d-link chain", chain.ErrLinkIndex, name, s.N())
	}
	if key == ParamMaxPathPoints {
		if !finite(value) || value != math.Trunc(value) || !s.SetMaxPathPoints(int(value)) {
			return fmt.Errorf("%w: %v", chain.ErrCapacity, value)
		}
		s.log.Debug("param set", zap.String("name", name), zap.Float64("value", value))
		return nil
	}
	if !finite(value) {
		return nil
	}

	switch key {
	case ParamLength:
		s.SetLength(i, value)
	case ParamMass:
		s.SetMass(i, value)
	case ParamAngle:
		s.SetAngle(i, value)
	case ParamGravity:
		s.SetGravity(value)
	case ParamDamping:
		s.SetDamping(value)
	case ParamShowPath:
		s.SetShowPath(value != 0)
	}
	s.log.Debug("param set", zap.String("name", name), zap.Float64("value", value))
	return nil
}

// Param reads a named parameter back in user units.
func (s *Simulator) Param(name string) (float64, error) {
	key, i, err := splitParam(name)
	if err != nil {
		return 0, err
	}
	if i >= 0 && !s.link(i) {
		return 0, fmt.Errorf("%w: %s on a %d-link chain", chain.ErrLinkIndex, name, s.N())
	}

	switch key {
	case ParamLength:
		return s.state.Config[i].Length / s.scale, nil
	case ParamMass:
		return s.state.Config[i].Mass, nil
	case ParamAngle:
		return chain.Degrees(s.state.Links[i].Angle), nil
	case ParamGravity:
		return s.state.Gravity / s.scale, nil
	case ParamDamping:
		return s.state.Damping, nil
	case ParamMaxPathPoints:
		return float64(s.trail.Capacity()), nil
	default:
		if s.showPath {
			return 1, nil
		}
		return 0, nil
	}
}
