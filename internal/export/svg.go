package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/pendulab/internal/experiment"
	"gonum.org/v1/gonum/spatial/r2"
)

// LinkColors are the stroke colors of links 1..3.
var LinkColors = []string{"#ff6b6b", "#4ecdc4", "#ffd93d"}

// Paths transposes the recorded bob positions into one path per link.
func Paths(res *experiment.Result) [][]r2.Vec {
	paths := make([][]r2.Vec, res.Links)
	for _, bobs := range res.Bobs {
		for j := range paths {
			if j < len(bobs) {
				paths[j] = append(paths[j], bobs[j])
			}
		}
	}
	return paths
}

type bounds struct {
	min, max r2.Vec
}

func (b bounds) project(p r2.Vec, width, height int) (float64, float64) {
	rx := b.max.X - b.min.X
	ry := b.max.Y - b.min.Y
	// y grows downward in both the simulation and SVG.
	return (p.X - b.min.X) / rx * float64(width), (p.Y - b.min.Y) / ry * float64(height)
}

// fit returns a square box around every finite point with 10% padding.
func fit(origin r2.Vec, paths [][]r2.Vec) bounds {
	b := bounds{min: origin, max: origin}
	for _, path := range paths {
		for _, p := range path {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				continue
			}
			b.min.X = math.Min(b.min.X, p.X)
			b.min.Y = math.Min(b.min.Y, p.Y)
			b.max.X = math.Max(b.max.X, p.X)
			b.max.Y = math.Max(b.max.Y, p.Y)
		}
	}

	span := math.Max(b.max.X-b.min.X, b.max.Y-b.min.Y)
	if span == 0 {
		span = 1
	}
	center := r2.Scale(0.5, r2.Add(b.min, b.max))
	half := span * 0.6
	return bounds{
		min: r2.Sub(center, r2.Vec{X: half, Y: half}),
		max: r2.Add(center, r2.Vec{X: half, Y: half}),
	}
}

// TrajectoryToSVG draws each link's bob path plus the final rods and bobs.
func TrajectoryToSVG(res *experiment.Result, width, height int) string {
	paths := Paths(res)
	origin := res.Origin
	b := fit(origin, paths)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, path := range paths {
		if len(path) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.7" d="`, LinkColors[i%len(LinkColors)])
		move := true
		for _, p := range path {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				move = true
				continue
			}
			x, y := b.project(p, width, height)
			if move {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				move = false
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	if len(res.Bobs) > 0 {
		last := res.Bobs[len(res.Bobs)-1]
		px, py := b.project(origin, width, height)
		for i, bob := range last {
			x, y := b.project(bob, width, height)
			fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#cccccc" stroke-width="2"/>
<circle cx="%.1f" cy="%.1f" r="6" fill="%s"/>
`, px, py, x, y, x, y, LinkColors[i%len(LinkColors)])
			px, py = x, y
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func WriteSVG(w io.Writer, res *experiment.Result, width, height int) error {
	_, err := io.WriteString(w, TrajectoryToSVG(res, width, height))
	return err
}

func SaveSVG(path string, res *experiment.Result, width, height int) error {
	return save(path, func(w io.Writer) error { return WriteSVG(w, res, width, height) })
}
