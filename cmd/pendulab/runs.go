package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/store"
	"github.com/spf13/cobra"
)

var runsDir string

func addRunsDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runsDir, "runs-dir", ".pendulab/runs", "directory holding saved runs")
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "list, show and remove saved runs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := store.New(runsDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no saved runs")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLINKS\tPRESET\tDURATION\tSAMPLES\tFLIPPED\tTIMESTAMP")
			for _, r := range runs {
				p := r.Preset
				if p == "" {
					p = "-"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%.1fs\t%d\t%v\t%s\n",
					r.ID, r.Links, p, r.Duration, r.Samples, r.Flipped, r.Timestamp.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
	addRunsDirFlag(listCmd)

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a saved run and plot its angles",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	addRunsDirFlag(showCmd)

	rmCmd := &cobra.Command{
		Use:   "rm [run_id]...",
		Short: "delete saved runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := store.New(runsDir)
			for _, id := range args {
				if err := st.Remove(id); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", id)
			}
			return nil
		},
	}
	addRunsDirFlag(rmCmd)

	cmd.AddCommand(listCmd, showCmd, rmCmd)
	return cmd
}

func showRun(cmd *cobra.Command, args []string) error {
	st := store.New(runsDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("sim: %s\n", meta.SimID)
	fmt.Printf("saved: %s\n\n", meta.Timestamp.Format("2006-01-02 15:04:05"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "links\t%d\n", meta.Links)
	if meta.Preset != "" {
		fmt.Fprintf(w, "preset\t%s\n", meta.Preset)
	}
	fmt.Fprintf(w, "dt\t%.4f s\n", meta.Dt)
	fmt.Fprintf(w, "duration\t%.1f s\n", meta.Duration)
	fmt.Fprintf(w, "gravity\t%.2f m/s²\n", meta.Gravity)
	fmt.Fprintf(w, "damping\t%.2f\n", meta.Damping)
	for i, l := range meta.Chain {
		fmt.Fprintf(w, "link %d\t%.2f m, %.1f kg, %.1f°\n", i+1, l.Length, l.Mass, l.Angle)
	}
	fmt.Fprintf(w, "flipped\t%v\n", meta.Flipped)
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, meta.Metrics[name])
	}
	w.Flush()

	if len(samples.Times) < 2 {
		return nil
	}
	for i := 0; i < len(samples.Angles[0]); i++ {
		series := make([]float64, len(samples.Angles))
		for j, row := range samples.Angles {
			series[j] = row[i]
		}
		data := finiteSeries(series, chain.Degrees)
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
	return nil
}
