package sim

import "github.com/san-kum/pendulab/internal/trail"

// Group controls several drivers as one page: start, reset and the trail
// settings are broadcast to every member.
type Group struct {
	drivers []*Driver
}

func NewGroup(drivers ...*Driver) *Group {
	return &Group{drivers: drivers}
}

func (g *Group) Add(d *Driver)        { g.drivers = append(g.drivers, d) }
func (g *Group) Len() int             { return len(g.drivers) }
func (g *Group) Drivers() []*Driver   { return g.drivers }
func (g *Group) Driver(i int) *Driver { return g.drivers[i] }

// Running reports whether any member is running.
func (g *Group) Running() bool {
	for _, d := range g.drivers {
		if d.Running() {
			return true
		}
	}
	return false
}

func (g *Group) Start() {
	for _, d := range g.drivers {
		d.Start()
	}
}

func (g *Group) Pause() {
	for _, d := range g.drivers {
		d.Pause()
	}
}

// Toggle pauses every member if any is running and starts all otherwise.
func (g *Group) Toggle() {
	if g.Running() {
		g.Pause()
		return
	}
	g.Start()
}

func (g *Group) Reset() {
	for _, d := range g.drivers {
		d.Reset()
	}
}

// Tick serves the members that asked for a frame.
func (g *Group) Tick() {
	for _, d := range g.drivers {
		if d.Pending() {
			d.Tick()
		}
	}
}

func (g *Group) Draw() {
	for _, d := range g.drivers {
		d.Draw()
	}
}

func (g *Group) SetShowPath(on bool) {
	for _, d := range g.drivers {
		d.Apply(func(s *Simulator) { s.SetShowPath(on) })
	}
}

// SetMaxPathPoints applies n to every member, or to none when n is out of
// range.
func (g *Group) SetMaxPathPoints(n int) bool {
	if !trail.ValidCapacity(n) {
		return false
	}
	for _, d := range g.drivers {
		d.Apply(func(s *Simulator) { s.SetMaxPathPoints(n) })
	}
	return true
}
