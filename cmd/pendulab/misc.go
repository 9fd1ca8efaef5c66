package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/san-kum/pendulab/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var force bool

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [kind]",
		Short: "list presets, optionally for one kind (single, double, triple)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := config.Kinds()
			if len(args) > 0 {
				kinds = args
			}
			for _, kind := range kinds {
				presets := config.ListPresets(kind)
				if len(presets) == 0 {
					fmt.Printf("no presets for kind: %s\n", kind)
					continue
				}
				fmt.Printf("presets for %s:\n", kind)
				for _, p := range presets {
					fmt.Printf("  %s/%s\n", kind, p)
				}
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "create and inspect config files",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "pendulab.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			cfg := config.DefaultConfig()
			if preset != "" {
				var err error
				if cfg, err = resolveConfig(cmd); err != nil {
					return err
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			logger.Info("config written", zap.String("path", path))
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset, as kind/name")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "print the config a run would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
	addChainFlags(showCmd)

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
