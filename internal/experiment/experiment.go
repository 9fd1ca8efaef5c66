// Package experiment runs chains headless and records what happened.
//
// A run drives a real sim.Driver with a manual clock that advances by a
// fixed timestep per frame, so results are reproducible.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/kinematics"
	"github.com/san-kum/pendulab/internal/script"
	"github.com/san-kum/pendulab/internal/sim"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

var ErrConfig = errors.New("experiment: invalid config")

type Config struct {
	Params   sim.Params
	Dt       float64
	Duration float64
	// SampleEvery records every n-th frame; 0 or 1 records all of them.
	SampleEvery int
	Metrics     []string
	Script      *script.Script
}

// Result is the record of one run. Angles and Velocities hold one row per
// sample with one entry per link.
type Result struct {
	ID         string
	Links      int
	Dt         float64
	Origin     r2.Vec
	Scale      float64
	Times      []float64
	Angles     [][]float64
	Velocities [][]float64
	Energy     []float64
	Bobs       [][]r2.Vec
	Trails     [][]r2.Vec
	Metrics    map[string]float64
	Final      *chain.State
	Readout    sim.Readout
	Frames     int
	// MaxAngle is the largest |angle| any link reached, in radians.
	MaxAngle float64
}

// Flipped reports whether any link went over the top.
func (r *Result) Flipped() bool { return r.MaxAngle > math.Pi }

// Series returns one link's angle samples.
func (r *Result) Series(link int) []float64 {
	out := make([]float64, len(r.Angles))
	for i, row := range r.Angles {
		out[i] = row[link]
	}
	return out
}

type Experiment struct {
	cfg      Config
	registry *Registry
	log      *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, registry: NewRegistry(), log: log}
}

func (e *Experiment) validate() error {
	if !(e.cfg.Dt > 0) || math.IsInf(e.cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrConfig, e.cfg.Dt)
	}
	if !(e.cfg.Duration > 0) || math.IsInf(e.cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrConfig, e.cfg.Duration)
	}
	if time.Duration(math.Round(e.cfg.Dt*float64(time.Second))) <= 0 {
		return fmt.Errorf("%w: dt %g is below clock resolution", ErrConfig, e.cfg.Dt)
	}
	return nil
}

// recorder samples the chain after every accepted step.
type recorder struct {
	every int
	steps int
	res   *Result
	s     *sim.Simulator
}

func (r *recorder) OnStep(s *chain.State, t float64) {
	for _, l := range s.Links {
		r.res.MaxAngle = math.Max(r.res.MaxAngle, math.Abs(l.Angle))
	}
	r.steps++
	if r.steps%r.every != 0 {
		return
	}
	r.res.Times = append(r.res.Times, t)
	r.res.Angles = append(r.res.Angles, s.Angles())
	r.res.Velocities = append(r.res.Velocities, s.Velocities())
	r.res.Energy = append(r.res.Energy, r.s.Energy())
	r.res.Bobs = append(r.res.Bobs, kinematics.Project(s, r.s.Origin()))
}

// Run executes the experiment. The chain starts running before the first
// frame; an attached script can pause, reset and restart it from there.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	params := e.cfg.Params
	var source sim.ParameterSource = params
	if e.cfg.Script != nil {
		if angles := e.cfg.Script.InitialAngles(); angles != nil {
			params.Angles = params.InitialAngles()
			copy(params.Angles, angles)
		}
		source = scriptSource{script: e.cfg.Script, fallback: params}
	}

	s, err := sim.New(params, e.log)
	if err != nil {
		return nil, err
	}

	ms, err := e.metrics(s.Scale())
	if err != nil {
		return nil, err
	}
	for _, m := range ms {
		s.AddMetric(m)
	}

	every := e.cfg.SampleEvery
	if every < 1 {
		every = 1
	}
	res := &Result{ID: s.ID(), Links: s.N(), Origin: s.Origin(), Scale: s.Scale(), Metrics: make(map[string]float64)}
	s.AddObserver(&recorder{every: every, res: res, s: s})

	step := time.Duration(math.Round(e.cfg.Dt * float64(time.Second)))
	res.Dt = step.Seconds()
	frames := int(math.Round(e.cfg.Duration / res.Dt))

	clock := sim.NewManualClock(time.Unix(0, 0))
	queue := &sim.FrameQueue{}
	d := sim.NewDriver(s, clock, queue, nil, source)
	d.MaxFrameDelta = 0

	var player *script.Player
	if e.cfg.Script != nil {
		player = script.NewPlayer(e.cfg.Script, e.log)
	}
	d.Start()

	log := e.log.With(zap.String("sim", s.ID()))
	log.Info("run started", zap.Int("links", s.N()), zap.Float64("dt", res.Dt), zap.Int("frames", frames))

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			e.finish(res, s, d, ms)
			return res, ctx.Err()
		default:
		}

		if player != nil {
			if err := player.Advance(d, float64(i)*res.Dt); err != nil {
				e.finish(res, s, d, ms)
				return res, err
			}
		}

		clock.Advance(step)
		if queue.Take() {
			d.Tick()
			res.Frames++
		}
	}

	e.finish(res, s, d, ms)
	log.Info("run finished", zap.Int("frames", res.Frames), zap.Float64("t", s.Time()))
	return res, nil
}

func (e *Experiment) finish(res *Result, s *sim.Simulator, d *sim.Driver, ms []sim.Metric) {
	for _, m := range ms {
		res.Metrics[m.Name()] = m.Value()
	}
	res.Final = s.State()
	res.Readout = d.Readout()
	res.Trails = s.Trail()
}

func (e *Experiment) metrics(scale float64) ([]sim.Metric, error) {
	if len(e.cfg.Metrics) == 0 {
		return e.registry.DefaultMetrics(scale), nil
	}
	ms := make([]sim.Metric, 0, len(e.cfg.Metrics))
	for _, name := range e.cfg.Metrics {
		m, err := e.registry.GetMetric(name, scale)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		ms = append(ms, m)
	}
	return ms, nil
}

// scriptSource prefers the script's angles and falls back to the config's
// for links the script leaves out.
type scriptSource struct {
	script   *script.Script
	fallback sim.Params
}

func (s scriptSource) InitialAngles() []float64 {
	out := s.fallback.InitialAngles()
	copy(out, s.script.InitialAngles())
	return out
}
