package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/dynamics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Wrap maps an angle into [-π, π).
func Wrap(angle float64) float64 {
	a := math.Mod(angle+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// PhasePortrait holds one link's trajectory in (wrapped angle, angular
// velocity) space.
type PhasePortrait struct {
	Link   int
	Points []r2.Vec
}

// GeneratePhasePortrait steps a copy of s and records link's wrapped angle
// against its angular velocity after every step.
func GeneratePhasePortrait(s *chain.State, link int, dt, duration float64) *PhasePortrait {
	if link < 0 || link >= s.N() || !dynamics.ValidStep(dt) {
		return nil
	}

	portrait := &PhasePortrait{
		Link:   link,
		Points: make([]r2.Vec, 0, int(duration/dt)+1),
	}

	x := s.Clone()
	for t := 0.0; t < duration; t += dt {
		dynamics.Step(x, dt)
		l := x.Links[link]
		portrait.Points = append(portrait.Points, r2.Vec{X: Wrap(l.Angle), Y: l.AngularVelocity})
	}
	return portrait
}

// PoincareSection holds the samples of a Poincaré section.
type PoincareSection struct {
	Points []r2.Vec
}

// GeneratePoincareSection records record's (wrapped angle, angular
// velocity) each time link cross swings through the bottom moving in the
// positive direction.
func GeneratePoincareSection(s *chain.State, cross, record int, dt, duration float64) *PoincareSection {
	if cross < 0 || cross >= s.N() || record < 0 || record >= s.N() || !dynamics.ValidStep(dt) {
		return nil
	}

	section := &PoincareSection{}
	x := s.Clone()
	prev := Wrap(x.Links[cross].Angle)

	for t := 0.0; t < duration; t += dt {
		dynamics.Step(x, dt)
		curr := Wrap(x.Links[cross].Angle)

		// A jump of more than π is the wrap at ±π, not a pass through zero.
		if prev < 0 && curr >= 0 && curr-prev < math.Pi {
			l := x.Links[record]
			section.Points = append(section.Points, r2.Vec{X: Wrap(l.Angle), Y: l.AngularVelocity})
		}
		prev = curr
	}
	return section
}

// PhasePortraitToASCII plots the portrait on a width×height character grid.
func PhasePortraitToASCII(portrait *PhasePortrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}
	return scatterASCII(portrait.Points, width, height, '•')
}

func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return scatterASCII(section.Points, width, height, '*')
}

func scatterASCII(points []r2.Vec, width, height int, mark rune) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if math.IsInf(minX, 1) {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = mark
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
