package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/san-kum/pendulab/internal/experiment"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var linkRGBA = []color.RGBA{
	{R: 0xff, G: 0x6b, B: 0x6b, A: 0xff},
	{R: 0x4e, G: 0xcd, B: 0xc4, A: 0xff},
	{R: 0xe0, G: 0xb0, B: 0x20, A: 0xff},
}

// DPI of written PNG files.
const DPI = 150

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel

	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)
	p.X.Tick.Marker = limitedTicker(7, "%.1f")
	p.Y.Tick.Marker = limitedTicker(7, "%.1f")
	p.Legend.Top = true
	return p
}

// finite copies the points that can be plotted; plotter rejects NaN and Inf.
func finite(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if plotter.CheckFloats(xs[i], ys[i]) != nil {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color) error {
	if len(pts) < 2 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.2)
	line.LineStyle.Color = c
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// TrajectoryPlot draws every bob's path in meters, y pointing up.
func TrajectoryPlot(res *experiment.Result) (*plot.Plot, error) {
	p := newPlot("Bob paths", "x (m)", "y (m)")
	scale := res.Scale
	if scale <= 0 {
		scale = 1
	}

	for i, path := range Paths(res) {
		xs := make([]float64, len(path))
		ys := make([]float64, len(path))
		for j, v := range path {
			xs[j] = (v.X - res.Origin.X) / scale
			ys[j] = -(v.Y - res.Origin.Y) / scale
		}
		if err := addLine(p, fmt.Sprintf("bob %d", i+1), finite(xs, ys), linkRGBA[i%len(linkRGBA)]); err != nil {
			return nil, fmt.Errorf("export: bob %d: %w", i+1, err)
		}
	}
	return p, nil
}

func AnglePlot(res *experiment.Result) (*plot.Plot, error) {
	p := newPlot("Angles", "time (s)", "angle (rad)")
	for i := 0; i < res.Links; i++ {
		if err := addLine(p, fmt.Sprintf("link %d", i+1), finite(res.Times, res.Series(i)), linkRGBA[i%len(linkRGBA)]); err != nil {
			return nil, fmt.Errorf("export: link %d: %w", i+1, err)
		}
	}
	return p, nil
}

func EnergyPlot(res *experiment.Result) (*plot.Plot, error) {
	p := newPlot("Total energy", "time (s)", "energy (J)")
	p.Y.Tick.Marker = limitedTicker(7, "%.3g")
	if err := addLine(p, "energy", finite(res.Times, res.Energy), color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}); err != nil {
		return nil, fmt.Errorf("export: energy: %w", err)
	}
	return p, nil
}

// WritePNG renders p at widthIn x heightIn inches.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(DPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("export: png: %w", err)
	}
	return bw.Flush()
}

// SavePNG writes the bob paths to path. Angle and energy plots are
// rendered next to it with "-angles" and "-energy" suffixes.
func SavePNG(path string, res *experiment.Result) ([]string, error) {
	plots := []struct {
		suffix string
		build  func(*experiment.Result) (*plot.Plot, error)
		w, h   float64
	}{
		{"", TrajectoryPlot, 6, 6},
		{"-angles", AnglePlot, 8, 4},
		{"-energy", EnergyPlot, 8, 4},
	}

	written := make([]string, 0, len(plots))
	for _, pl := range plots {
		p, err := pl.build(res)
		if err != nil {
			return written, err
		}
		name := suffixed(path, pl.suffix)
		if err := save(name, func(w io.Writer) error { return WritePNG(w, p, pl.w, pl.h) }); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

func suffixed(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
