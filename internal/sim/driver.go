package sim

import (
	"time"

	"go.uber.org/zap"
)

// DefaultMaxFrameDelta is the longest frame gap treated as real elapsed
// time. Longer gaps (a suspended terminal, a debugger stop) are dropped.
const DefaultMaxFrameDelta = 250 * time.Millisecond

// Driver runs one Simulator against a clock. It is Paused until Start and
// keeps at most one frame request outstanding with its Scheduler.
//
// A Driver is not safe for concurrent use; every call, including Tick, must
// come from the same frame loop.
type Driver struct {
	sim    *Simulator
	clock  Clock
	sched  Scheduler
	render Renderer
	params ParameterSource

	// MaxFrameDelta caps the frame delta; 0 disables the cap.
	MaxFrameDelta time.Duration

	running  bool
	pending  bool
	last     time.Time
	diverged bool
	log      *zap.Logger
}

func NewDriver(s *Simulator, clock Clock, sched Scheduler, r Renderer, p ParameterSource) *Driver {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Driver{
		sim:           s,
		clock:         clock,
		sched:         sched,
		render:        r,
		params:        p,
		MaxFrameDelta: DefaultMaxFrameDelta,
		log:           s.log,
	}
}

func (d *Driver) Simulator() *Simulator { return d.sim }
func (d *Driver) Running() bool         { return d.running }

// Pending reports whether a requested frame has not been served yet.
func (d *Driver) Pending() bool { return d.pending }

// Start begins the animation from Paused and reports whether it did.
func (d *Driver) Start() bool {
	if d.running {
		return false
	}
	d.running = true
	d.last = d.clock.Now()
	d.request()
	d.log.Debug("started", zap.Float64("t", d.sim.Time()))
	return true
}

func (d *Driver) Pause() {
	if !d.running {
		return
	}
	d.running = false
	d.log.Debug("paused", zap.Float64("t", d.sim.Time()))
}

func (d *Driver) Toggle() {
	if d.running {
		d.Pause()
		return
	}
	d.Start()
}

// Tick serves one frame: it steps the chain by the wall time since the last
// frame, records the trail, hands the frame to the renderer and asks for the
// next frame. A Tick that arrives while paused does nothing.
func (d *Driver) Tick() {
	d.pending = false
	if !d.running {
		return
	}

	now := d.clock.Now()
	elapsed := now.Sub(d.last)
	d.last = now

	if d.MaxFrameDelta <= 0 || elapsed <= d.MaxFrameDelta {
		d.sim.Advance(elapsed.Seconds())
	} else {
		d.log.Debug("frame gap dropped", zap.Duration("elapsed", elapsed))
	}
	if !d.diverged && !d.sim.state.IsFinite() {
		d.diverged = true
		d.log.Warn("state is no longer finite", zap.Float64("t", d.sim.Time()))
	}

	d.sim.RecordTrail()
	d.draw()
	d.request()
}

// Reset pauses, restores the initial angles from the parameter source, zeroes
// all motion, clears the trail and draws once.
func (d *Driver) Reset() {
	d.running = false
	d.diverged = false
	var angles []float64
	if d.params != nil {
		angles = d.params.InitialAngles()
	}
	d.sim.Reset(angles)
	d.log.Debug("reset")
	d.draw()
}

// Apply runs a parameter edit between frames. A paused chain is redrawn so
// the edit shows immediately; a running one picks it up on the next frame.
func (d *Driver) Apply(edit func(*Simulator)) {
	edit(d.sim)
	if !d.running {
		d.draw()
	}
}

// SetParam is Apply for a single named edit.
func (d *Driver) SetParam(name string, value float64) error {
	var err error
	d.Apply(func(s *Simulator) { err = s.SetParam(name, value) })
	return err
}

// Readout is the simulator readout with the driver's running flag.
func (d *Driver) Readout() Readout {
	r := d.sim.Readout()
	r.Running = d.running
	return r
}

func (d *Driver) Frame() Frame { return d.sim.Frame(d.running) }

// Draw hands the current frame to the renderer without stepping.
func (d *Driver) Draw() { d.draw() }

func (d *Driver) draw() {
	if d.render != nil {
		d.render.Render(d.sim.Frame(d.running))
	}
}

func (d *Driver) request() {
	if d.pending || d.sched == nil {
		return
	}
	d.pending = true
	d.sched.RequestFrame()
}
