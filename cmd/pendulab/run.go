package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pendulab/internal/analysis"
	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/dynamics"
	"github.com/san-kum/pendulab/internal/experiment"
	"github.com/san-kum/pendulab/internal/export"
	"github.com/san-kum/pendulab/internal/script"
	"github.com/san-kum/pendulab/internal/sim"
	"github.com/san-kum/pendulab/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scriptFile  string
	sampleEvery int
	metricNames []string
	quiet       bool

	csvPath  string
	jsonPath string
	svgPath  string
	pngPath  string
	svgSize  int

	tolerance float64

	save bool
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a chain headless and report what happened",
		Example: `  pendulab run --links 2 --time 30
  pendulab run --preset triple/chaos --png chaos.png
  pendulab run --script swing.yaml --json out.json`,
		Args: cobra.NoArgs,
		RunE: runSimulation,
	}
	addChainFlags(cmd)
	cmd.Flags().StringVar(&scriptFile, "script", "", "script of timed edits (yaml)")
	cmd.Flags().IntVar(&sampleEvery, "sample", 1, "record every n-th step")
	cmd.Flags().StringSliceVar(&metricNames, "metrics", nil,
		"metrics to attach ("+strings.Join(experiment.NewRegistry().ListMetrics(), ", ")+")")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the plots")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write samples to a CSV file")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the run to a JSON file")
	cmd.Flags().StringVar(&svgPath, "svg", "", "draw the bob paths to an SVG file")
	cmd.Flags().IntVar(&svgSize, "svg-size", 800, "SVG width and height in pixels")
	cmd.Flags().StringVar(&pngPath, "png", "", "plot trajectory, angles and energy to PNG files")
	cmd.Flags().BoolVar(&save, "save", false, "keep the run in the runs directory")
	addRunsDirFlag(cmd)
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "check the closed-form accelerations against the mass-matrix solve",
		Args:  cobra.NoArgs,
		RunE:  verify,
	}
	addChainFlags(cmd)
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-6, "largest relative deviation accepted")
	return cmd
}

// signalContext cancels on interrupt so a long run still reports what it
// has so far.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ecfg := experiment.Config{
		Params:      cfg.Params(),
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		SampleEvery: sampleEvery,
		Metrics:     metricNames,
	}
	if scriptFile != "" {
		sc, err := script.Load(scriptFile)
		if err != nil {
			return fmt.Errorf("failed to load script: %w", err)
		}
		ecfg.Script = sc
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d-link chain for %.1fs (dt=%.4f)...\n", cfg.Links, cfg.Duration, cfg.Dt)
	start := time.Now()
	res, err := experiment.New(ecfg, logger).Run(ctx)
	if errors.Is(err, context.Canceled) && res != nil {
		fmt.Println("interrupted")
	} else if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	printSummary(res, cfg.Gravity)
	if !quiet {
		printPlots(res)
	}
	if save {
		st := store.New(runsDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(cfg, preset, res)
		if err != nil {
			return err
		}
		logger.Info("run saved", zap.String("id", id), zap.String("dir", runsDir))
		fmt.Printf("saved run %s\n", id)
	}
	return writeExports(res)
}

func printSummary(res *experiment.Result, gravity float64) {
	fmt.Printf("run id: %s\n", res.ID)
	fmt.Printf("frames: %d  samples: %d\n\n", res.Frames, len(res.Times))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, f := range res.Readout.Fields() {
		fmt.Fprintf(w, "%s\t%s\n", f.Label, f.Value)
	}
	fmt.Fprintf(w, "time\t%.2f s\n", res.Readout.Time)
	fmt.Fprintf(w, "energy\t%.4f J\n", res.Readout.Energy)
	fmt.Fprintf(w, "flipped\t%v\n", res.Flipped())
	w.Flush()

	if len(res.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, name := range experiment.NewRegistry().ListMetrics() {
			if v, ok := res.Metrics[name]; ok {
				fmt.Fprintf(w, "  %s\t%.6g\n", name, v)
			}
		}
		w.Flush()
	}

	if len(res.Times) < 2 {
		return
	}
	dt := res.Times[1] - res.Times[0]
	period, err := analysis.DominantPeriod(res.Series(0), dt)
	if err != nil {
		logger.Debug("no period", zap.Error(err))
		return
	}
	fmt.Printf("\nlink 1 period: %.3f s", period)
	if res.Links == 1 && len(res.Readout.Links) == 1 {
		fmt.Printf(" (small-angle %.3f s)", analysis.SmallAnglePeriod(res.Readout.Links[0].Length, gravity))
	}
	fmt.Println()
}

func printPlots(res *experiment.Result) {
	if len(res.Times) < 2 {
		return
	}
	for i := 0; i < res.Links; i++ {
		data := finiteSeries(res.Series(i), chain.Degrees)
		if len(data) < 2 {
			continue
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(downsample(data, 80),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("link %d angle (deg)", i+1)),
		))
	}

	energy := finiteSeries(res.Energy, nil)
	if len(energy) >= 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(downsample(energy, 80),
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("energy (J)"),
		))
	}
}

func finiteSeries(xs []float64, conv func(float64) float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		if conv != nil {
			x = conv(x)
		}
		out = append(out, x)
	}
	return out
}

// downsample keeps at most n evenly spaced points.
func downsample(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = xs[i*(len(xs)-1)/(n-1)]
	}
	return out
}

func writeExports(res *experiment.Result) error {
	if csvPath != "" {
		if err := export.SaveCSV(csvPath, res); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvPath)
	}
	if jsonPath != "" {
		if err := export.SaveJSON(jsonPath, res); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonPath)
	}
	if svgPath != "" {
		if err := export.SaveSVG(svgPath, res, svgSize, svgSize); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if pngPath != "" {
		paths, err := export.SavePNG(pngPath, res)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("wrote %s\n", p)
		}
	}
	return nil
}

func verify(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, err := sim.New(cfg.Params(), logger)
	if err != nil {
		return err
	}
	x := s.State()

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	worst, worstAt := 0.0, 0.0
	checked := 0
	for i := 0; i <= steps; i++ {
		want, err := dynamics.MassMatrixAccelerations(x)
		if err != nil {
			return fmt.Errorf("t=%.3f: %w", float64(i)*cfg.Dt, err)
		}
		fast := x.Clone()
		dynamics.Accelerations(fast)
		for j, w := range want {
			got := fast.Links[j].AngularAcceleration
			d := math.Abs(got-w) / math.Max(1, math.Abs(w))
			if d > worst {
				worst, worstAt = d, float64(i)*cfg.Dt
			}
		}
		checked++
		if !dynamics.Step(x, cfg.Dt) || !x.IsFinite() {
			logger.Warn("chain left the finite range, stopping", zap.Float64("t", float64(i)*cfg.Dt))
			break
		}
	}

	fmt.Printf("checked %d states of a %d-link chain\n", checked, cfg.Links)
	fmt.Printf("max relative deviation: %.3e at t=%.3f s\n", worst, worstAt)
	if worst > tolerance {
		return fmt.Errorf("deviation %.3e exceeds tolerance %.1e", worst, tolerance)
	}
	fmt.Println("ok")
	return nil
}
