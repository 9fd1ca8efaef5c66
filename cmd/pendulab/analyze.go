package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/san-kum/pendulab/internal/analysis"
	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/config"
	"github.com/san-kum/pendulab/internal/experiment"
	"github.com/san-kum/pendulab/internal/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	perturbation float64
	link         int
	crossLink    int
	plotWidth    int
	plotHeight   int

	paramName string
	paramMin  float64
	paramMax  float64
	numSteps  int
	transient float64

	numTrials int
	seed      int64
	workers   int
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "chaos and sensitivity analysis",
	}

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent per perturbed link",
		Args:  cobra.NoArgs,
		RunE:  lyapunov,
	}
	addChainFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation in radians")

	phaseCmd := &cobra.Command{
		Use:   "phase",
		Short: "plot a link's angle against its angular velocity",
		Args:  cobra.NoArgs,
		RunE:  phase,
	}
	addChainFlags(phaseCmd)
	addPlotFlags(phaseCmd)
	phaseCmd.Flags().IntVar(&link, "link", 1, "link to plot")

	poincareCmd := &cobra.Command{
		Use:   "poincare",
		Short: "sample a link each time another swings through the bottom",
		Args:  cobra.NoArgs,
		RunE:  poincare,
	}
	addChainFlags(poincareCmd)
	addPlotFlags(poincareCmd)
	poincareCmd.Flags().IntVar(&crossLink, "cross", 1, "link whose upward pass through the bottom triggers a sample")
	poincareCmd.Flags().IntVar(&link, "link", 2, "link to sample")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "turning-point angles of a link across a parameter range",
		Args:  cobra.NoArgs,
		RunE:  bifurcation,
	}
	addChainFlags(bifurcationCmd)
	addPlotFlags(bifurcationCmd)
	addRangeFlags(bifurcationCmd, 40)
	bifurcationCmd.Flags().IntVar(&link, "link", 1, "link to record")
	bifurcationCmd.Flags().Float64Var(&transient, "transient", 10, "seconds to skip before recording")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "rerun the chain across a parameter range",
		Args:  cobra.NoArgs,
		RunE:  sweep,
	}
	addChainFlags(sweepCmd)
	addRangeFlags(sweepCmd, 10)
	addWorkersFlag(sweepCmd)

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run randomly perturbed copies of the chain",
		Args:  cobra.NoArgs,
		RunE:  monteCarlo,
	}
	addChainFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&numTrials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 1, "largest angle change in degrees")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	addWorkersFlag(monteCarloCmd)

	cmd.AddCommand(lyapunovCmd, phaseCmd, poincareCmd, bifurcationCmd, sweepCmd, monteCarloCmd)
	return cmd
}

func addPlotFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&plotWidth, "width", 60, "plot width in characters")
	cmd.Flags().IntVar(&plotHeight, "height", 20, "plot height in characters")
}

func addWorkersFlag(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workers, "workers", 0, "runs in flight at once (0: one per CPU)")
}

func addRangeFlags(cmd *cobra.Command, steps int) {
	cmd.Flags().StringVar(&paramName, "param", sim.ParamGravity, "parameter to vary, e.g. gravity, damping, length2, angle1")
	cmd.Flags().Float64Var(&paramMin, "min", 5, "first value")
	cmd.Flags().Float64Var(&paramMax, "max", 15, "last value")
	cmd.Flags().IntVar(&numSteps, "steps", steps, "number of values")
}

// initialState builds the chain in simulator units.
func initialState(cfg *config.Config) (*chain.State, error) {
	s, err := sim.New(cfg.Params(), logger)
	if err != nil {
		return nil, err
	}
	return s.State(), nil
}

// linkIndex turns a 1-based link flag into an index.
func linkIndex(flag string, v, n int) (int, error) {
	if v < 1 || v > n {
		return 0, fmt.Errorf("--%s must be between 1 and %d, got %d", flag, n, v)
	}
	return v - 1, nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, err := initialState(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("lyapunov exponents: %d-link chain, %.1fs at dt=%.4f\n\n", cfg.Links, cfg.Duration, cfg.Dt)
	spectrum := analysis.LyapunovSpectrum(s, cfg.Dt, cfg.Duration, perturbation)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "perturbed link\tλ (1/s)")
	largest := math.Inf(-1)
	for i, l := range spectrum {
		fmt.Fprintf(w, "%d\t%.4f\n", i+1, l)
		largest = math.Max(largest, l)
	}
	w.Flush()

	if largest > 0.05 {
		fmt.Printf("\nchaotic: nearby starts separate by e every %.2f s\n", 1/largest)
	} else {
		fmt.Println("\nregular: no exponential separation")
	}
	return nil
}

func phase(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, err := initialState(cfg)
	if err != nil {
		return err
	}
	i, err := linkIndex("link", link, s.N())
	if err != nil {
		return err
	}

	p := analysis.GeneratePhasePortrait(s, i, cfg.Dt, cfg.Duration)
	fmt.Printf("phase portrait: link %d of %d, %d points\n", link, s.N(), len(p.Points))
	fmt.Println("x: angle (rad, wrapped)  y: angular velocity (rad/s)")
	fmt.Println()
	fmt.Print(analysis.PhasePortraitToASCII(p, plotWidth, plotHeight))
	return nil
}

func poincare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, err := initialState(cfg)
	if err != nil {
		return err
	}
	c, err := linkIndex("cross", crossLink, s.N())
	if err != nil {
		return err
	}
	r, err := linkIndex("link", link, s.N())
	if err != nil {
		return err
	}

	section := analysis.GeneratePoincareSection(s, c, r, cfg.Dt, cfg.Duration)
	fmt.Printf("poincaré section: link %d sampled on link %d crossings, %d points\n\n", link, crossLink, len(section.Points))
	fmt.Println(analysis.PoincareSectionToASCII(section, plotWidth, plotHeight))
	return nil
}

func bifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	params := cfg.Params()
	base, err := sim.New(params, logger)
	if err != nil {
		return err
	}
	if err := base.SetParam(paramName, paramMin); err != nil {
		return err
	}
	i, err := linkIndex("link", link, base.N())
	if err != nil {
		return err
	}

	// Each value gets a fresh simulator so the name resolves the same way
	// the live controls do, including unit scaling.
	apply := func(x *chain.State, v float64) {
		s, err := sim.New(params, logger)
		if err != nil {
			return
		}
		if err := s.SetParam(paramName, v); err != nil {
			logger.Warn("value rejected", zap.String("param", paramName), zap.Float64("value", v), zap.Error(err))
		}
		*x = *s.State()
	}

	data := analysis.Sweep(base.State(), apply, paramMin, paramMax, numSteps, i, cfg.Dt, transient, cfg.Duration)
	fmt.Printf("bifurcation: link %d turning points, %s from %g to %g\n\n", link, paramName, paramMin, paramMax)
	fmt.Print(analysis.SweepToASCII(data, plotWidth, plotHeight))
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := experiment.RunSweep(ctx, experiment.ParameterSweep{
		Base:      experiment.Config{Params: cfg.Params(), Dt: cfg.Dt, Duration: cfg.Duration},
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
		Workers:   workers,
	}, logger)
	if err != nil && len(results) == 0 {
		return err
	}

	fmt.Printf("sweep: %s from %g to %g\n\n", paramName, paramMin, paramMax)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tmin energy\tmax energy\tdrift\tflipped\tdiverged\n", paramName)
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.2e\t%v\t%v\n",
			r.ParamValue, r.MinEnergy, r.MaxEnergy, r.Drift, r.Flipped, r.Diverged)
	}
	w.Flush()
	return err
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := experiment.RunMonteCarlo(ctx, experiment.MonteCarloConfig{
		Base:         experiment.Config{Params: cfg.Params(), Dt: cfg.Dt, Duration: cfg.Duration},
		Perturbation: perturbation,
		NumTrials:    numTrials,
		Seed:         seed,
		Workers:      workers,
	}, logger)
	if err != nil && len(results) == 0 {
		return err
	}

	flipped, settled := experiment.MonteCarloStats(results)
	diverged := 0
	for _, r := range results {
		if r.Diverged {
			diverged++
		}
	}
	fmt.Printf("monte carlo: %d trials, ±%g° on every angle, seed %d\n\n", len(results), perturbation, seed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "flipped\t%d\t%.1f%%\n", flipped, pct(flipped, len(results)))
	fmt.Fprintf(w, "stayed below\t%d\t%.1f%%\n", settled, pct(settled, len(results)))
	fmt.Fprintf(w, "diverged\t%d\t%.1f%%\n", diverged, pct(diverged, len(results)))
	w.Flush()
	return err
}

func pct(k, n int) float64 {
	if n == 0 {
		return 0
	}
	return 100 * float64(k) / float64(n)
}
