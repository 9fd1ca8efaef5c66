package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/config"
	"github.com/san-kum/pendulab/internal/logging"
	"github.com/san-kum/pendulab/internal/sim"
	"github.com/san-kum/pendulab/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var (
	logLevel string
	logFile  string
	logger   = zap.NewNop()

	// Chain selection, shared by run, live, verify and analyze.
	configFile string
	preset     string
	links      int
	dt         float64
	duration   float64
	gravity    float64
	damping    float64
	angles     []float64

	theme     string
	frameRate int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pendulab",
		Short: "chained pendulum lab",
		Long: `pendulab simulates single, double and triple pendulums.

Without a command it opens a preset picker in the terminal.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(viz.Options{Theme: theme, FPS: frameRate, Log: logger})
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	addDisplayFlags(rootCmd)

	rootCmd.AddCommand(liveCmd(), runCmd(), verifyCmd(), analyzeCmd(), runsCmd(), presetsCmd(), configCmd())

	defer func() { _ = logger.Sync() }()
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// terminalCommands own the terminal and log only to a file.
var terminalCommands = map[string]bool{"pendulab": true, "live": true}

func setupLogging(cmd *cobra.Command) error {
	// A config file's log section applies unless the flags say otherwise.
	if configFile != "" {
		if cfg, err := config.Load(configFile); err == nil {
			flags := cmd.Flags()
			if !flags.Changed("log-level") && cfg.Log.Level != "" {
				logLevel = cfg.Log.Level
			}
			if !flags.Changed("log-file") && cfg.Log.File != "" {
				logFile = cfg.Log.File
			}
		}
	}

	var err error
	if terminalCommands[cmd.Name()] {
		logger, err = logging.ForTerminalUI(logLevel, logFile)
	} else {
		logger, err = logging.New(logLevel, logFile)
	}
	return err
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset name, as kind/name or a name for --links")
	cmd.Flags().IntVar(&links, "links", config.DefaultLinks, "number of links (1-3)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Float64Var(&gravity, "gravity", chain.DefaultGravity, "gravity in m/s²")
	cmd.Flags().Float64Var(&damping, "damping", chain.DefaultDamping, "damping coefficient")
	cmd.Flags().Float64SliceVar(&angles, "angles", nil, "initial angles in degrees, one per link")
}

func addDisplayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
}

// resolveConfig builds the chain setup: defaults, then the preset, then the
// config file, then any flag given on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		kind, name, ok := strings.Cut(preset, "/")
		if !ok {
			kind, name = config.Kind(links), preset
		}
		p := config.GetPreset(kind, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available for %s: %v)", preset, kind, config.ListPresets(kind))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("links") {
		cfg = cfg.WithLinks(links)
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("damping") {
		cfg.Damping = damping
	}
	if flags.Changed("angles") {
		for i, a := range angles {
			if i < len(cfg.Chain) {
				cfg.Chain[i].Angle = a
			}
		}
	}
	if flags.Changed("theme") {
		cfg.Display.Theme = theme
	}
	if flags.Changed("fps") {
		cfg.Display.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config resolved", zap.Int("links", cfg.Links), zap.Float64("dt", cfg.Dt),
		zap.Float64("duration", cfg.Duration), zap.String("preset", preset), zap.String("file", configFile))
	return cfg, nil
}

func liveCmd() *cobra.Command {
	var chains []int
	cmd := &cobra.Command{
		Use:   "live",
		Short: "animate one or more chains in the terminal",
		Long: `live runs chains side by side on one page. Start, reset and the
path settings apply to every chain; parameters are edited per chain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("chains") {
				chains = []int{cfg.Links}
			}

			params := make([]sim.Params, 0, len(chains))
			for _, n := range chains {
				if n < chain.MinLinks || n > chain.MaxLinks {
					return fmt.Errorf("%w: --chains entry %d", chain.ErrLinkCount, n)
				}
				params = append(params, cfg.WithLinks(n).Params())
			}
			logger.Info("live view", zap.Ints("chains", chains), zap.String("theme", cfg.Display.Theme))
			return viz.Run(params, viz.Options{Theme: cfg.Display.Theme, FPS: cfg.Display.FPS, Log: logger})
		},
	}
	addChainFlags(cmd)
	addDisplayFlags(cmd)
	cmd.Flags().IntSliceVar(&chains, "chains", nil, "link counts of the chains to show, e.g. 1,2,3")
	return cmd
}
