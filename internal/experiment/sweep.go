package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/san-kum/pendulab/internal/chain"
	"go.uber.org/zap"
)

// ParameterSweep reruns a base configuration across a range of values of
// one named parameter.
type ParameterSweep struct {
	Base      Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	// Workers bounds the runs in flight; 0 uses GOMAXPROCS.
	Workers int
}

type SweepResult struct {
	ParamValue float64
	MinEnergy  float64
	MaxEnergy  float64
	Drift      float64
	Flipped    bool
	Diverged   bool
}

// RunSweep runs every step of the sweep, concurrently, and returns the
// results in parameter order. The parameter is set on the starting
// configuration and takes the names sim.Simulator.SetParam accepts, plus dt
// and duration. On failure the steps before the first failed one are
// returned with the error.
func RunSweep(ctx context.Context, sweep ParameterSweep, log *zap.Logger) ([]SweepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	n := sweep.NumSteps
	if n < 2 {
		n = 2
	}
	step := (sweep.ParamMax - sweep.ParamMin) / float64(n-1)

	cfgs := make([]Config, n)
	for i := range cfgs {
		cfgs[i] = sweep.Base
		cfgs[i].Params = cloneParams(sweep.Base.Params)
		if err := applyParam(&cfgs[i], sweep.ParamName, sweep.ParamMin+float64(i)*step); err != nil {
			return nil, err
		}
	}

	results := make([]SweepResult, n)
	done, err := ensemble(ctx, n, sweep.Workers, func(ctx context.Context, i int) error {
		value := sweep.ParamMin + float64(i)*step
		res, err := New(cfgs[i], log).Run(ctx)
		if err != nil {
			return fmt.Errorf("sweep %s=%g: %w", sweep.ParamName, value, err)
		}

		r := SweepResult{
			ParamValue: value,
			Drift:      res.Metrics["energy_drift"],
			Flipped:    res.Flipped(),
			Diverged:   res.Metrics["divergence"] >= 0,
		}
		r.MinEnergy, r.MaxEnergy = span(res.Energy)
		results[i] = r

		log.Debug("sweep step", zap.Int("step", i+1), zap.Int("of", n),
			zap.String("param", sweep.ParamName), zap.Float64("value", value))
		return nil
	})
	return results[:done], err
}

func span(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// MonteCarloConfig perturbs the initial angles of a base configuration.
type MonteCarloConfig struct {
	Base Config
	// Perturbation is the largest change applied to each angle, in degrees.
	Perturbation float64
	NumTrials    int
	Seed         int64
	// Workers bounds the trials in flight; 0 uses GOMAXPROCS.
	Workers int
}

type MonteCarloResult struct {
	TrialID     int
	InitAngles  []float64
	FinalAngles []float64
	Flipped     bool
	Diverged    bool
}

// RunMonteCarlo runs NumTrials perturbed copies of the base configuration
// concurrently. Perturbations are drawn up front in trial order, so the same
// seed yields the same trials whatever the scheduling.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig, log *zap.Logger) ([]MonteCarloResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	runs := make([]Config, cfg.NumTrials)
	for trial := range runs {
		runs[trial] = cfg.Base
		runs[trial].Params = cloneParams(cfg.Base.Params)
		for i := range runs[trial].Params.Angles {
			runs[trial].Params.Angles[i] += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		}
	}

	var finished atomic.Int64
	results := make([]MonteCarloResult, cfg.NumTrials)
	done, err := ensemble(ctx, cfg.NumTrials, cfg.Workers, func(ctx context.Context, trial int) error {
		run := runs[trial]
		res, err := New(run, log).Run(ctx)
		if err != nil {
			return fmt.Errorf("trial %d: %w", trial, err)
		}

		final := make([]float64, res.Final.N())
		for i, a := range res.Final.Angles() {
			final[i] = chain.Degrees(a)
		}
		results[trial] = MonteCarloResult{
			TrialID:     trial,
			InitAngles:  run.Params.InitialAngles(),
			FinalAngles: final,
			Flipped:     res.Flipped(),
			Diverged:    res.Metrics["divergence"] >= 0,
		}

		if n := finished.Add(1); n%10 == 0 {
			log.Info("monte carlo progress", zap.Int64("done", n), zap.Int("of", cfg.NumTrials))
		}
		return nil
	})
	return results[:done], err
}

// MonteCarloStats counts trials in which some link went over the top.
func MonteCarloStats(results []MonteCarloResult) (flipped int, settled int) {
	for _, r := range results {
		if r.Flipped {
			flipped++
		} else {
			settled++
		}
	}
	return
}
