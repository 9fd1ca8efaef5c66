package experiment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/sim"
)

func cloneParams(p sim.Params) sim.Params {
	c := p
	c.Lengths = append([]float64(nil), p.Lengths...)
	c.Masses = append([]float64(nil), p.Masses...)
	c.Angles = append([]float64(nil), p.Angles...)
	return c
}

// applyParam sets a named parameter on the starting configuration, using
// the same names as sim.Simulator.SetParam.
func applyParam(cfg *Config, name string, value float64) error {
	p := &cfg.Params
	for _, prefix := range []string{sim.ParamLength, sim.ParamMass, sim.ParamAngle} {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		i, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
		if err != nil {
			return fmt.Errorf("%w: %q", chain.ErrUnknownParam, name)
		}
		if i < 1 || i > len(p.Angles) {
			return fmt.Errorf("%w: %s", chain.ErrLinkIndex, name)
		}
		switch prefix {
		case sim.ParamLength:
			p.Lengths[i-1] = value
		case sim.ParamMass:
			p.Masses[i-1] = value
		default:
			p.Angles[i-1] = value
		}
		return nil
	}

	switch name {
	case sim.ParamGravity:
		p.Gravity = value
	case sim.ParamDamping:
		p.Damping = value
	case sim.ParamMaxPathPoints:
		p.MaxPathPoints = int(value)
	case sim.ParamShowPath:
		p.ShowPath = value != 0
	case "dt":
		cfg.Dt = value
	case "duration":
		cfg.Duration = value
	default:
		return fmt.Errorf("%w: %q", chain.ErrUnknownParam, name)
	}
	return nil
}
