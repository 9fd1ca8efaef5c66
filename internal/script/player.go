package script

import (
	"fmt"
	"sort"

	"github.com/san-kum/pendulab/internal/sim"
	"go.uber.org/zap"
)

// Target is what a Player drives; *sim.Driver satisfies it.
type Target interface {
	Start() bool
	Pause()
	Reset()
	SetParam(name string, value float64) error
}

// Player fires a script's events in time order. Script time is the time
// elapsed since the script started, not the chain's simulated time, so it
// keeps running while the chain is paused or after a reset.
type Player struct {
	script *Script
	next   int
	log    *zap.Logger
}

func NewPlayer(s *Script, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{script: s, log: log.With(zap.String("script", s.Name))}
}

// Done reports whether every event has fired.
func (p *Player) Done() bool { return p.next >= len(p.script.Events) }

// Rewind restarts the script from its first event.
func (p *Player) Rewind() { p.next = 0 }

// Advance fires every event due at script time t.
func (p *Player) Advance(target Target, t float64) error {
	for p.next < len(p.script.Events) && p.script.Events[p.next].At <= t {
		e := p.script.Events[p.next]
		p.next++

		names := make([]string, 0, len(e.Set))
		for name := range e.Set {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := target.SetParam(name, e.Set[name]); err != nil {
				return fmt.Errorf("event at %gs: %w", e.At, err)
			}
		}

		p.log.Debug("event", zap.Float64("at", e.At), zap.String("action", e.Action), zap.Int("set", len(e.Set)))
		switch e.Action {
		case ActionStart:
			target.Start()
		case ActionPause:
			target.Pause()
		case ActionReset:
			target.Reset()
		}
	}
	return nil
}

var _ Target = (*sim.Driver)(nil)
