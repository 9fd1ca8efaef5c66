package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pendulab/internal/metrics"
	"github.com/san-kum/pendulab/internal/sim"
)

// Registry maps metric names to constructors. The scale is the simulator's
// pixels per meter, for metrics that report in user units.
type Registry struct {
	metrics map[string]func(scale float64) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(scale float64) sim.Metric),
	}

	r.metrics["energy"] = func(scale float64) sim.Metric { return metrics.NewEnergy(scale) }
	r.metrics["energy_drift"] = func(float64) sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["divergence"] = func(float64) sim.Metric { return metrics.NewDivergence() }
	r.metrics["speed"] = func(float64) sim.Metric { return metrics.NewSpeed() }

	return r
}

func (r *Registry) GetMetric(name string, scale float64) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(scale), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are attached when a run names none.
func (r *Registry) DefaultMetrics(scale float64) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(scale),
		metrics.NewEnergyDrift(),
		metrics.NewDivergence(),
		metrics.NewSpeed(),
	}
}
