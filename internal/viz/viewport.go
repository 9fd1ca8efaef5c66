package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport maps chain coordinates to canvas dots with the pivot at the
// canvas center. Its zoom follows the chain's reach through a critically
// damped spring, so length edits rescale smoothly instead of jumping.
type Viewport struct {
	spring   harmonica.Spring
	zoom     float64
	velocity float64
	target   float64
}

func NewViewport(fps int) *Viewport {
	if fps <= 0 {
		fps = 60
	}
	return &Viewport{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
}

// Zoom is the current scale in dots per internal unit.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Fit sets the zoom target so a chain of the given reach stays inside a
// cw x ch dot canvas. The first fit snaps.
func (v *Viewport) Fit(reach float64, cw, ch int) {
	if !(reach > 0) || math.IsInf(reach, 0) {
		return
	}
	v.target = 0.95 * float64(min(cw, ch)) / 2 / reach
	if v.zoom == 0 {
		v.zoom = v.target
	}
}

// Step advances the zoom spring by one frame.
func (v *Viewport) Step() {
	if v.Settled() {
		v.zoom, v.velocity = v.target, 0
		return
	}
	v.zoom, v.velocity = v.spring.Update(v.zoom, v.velocity, v.target)
}

// Settled reports whether the zoom has reached its target.
func (v *Viewport) Settled() bool {
	return v.target == 0 ||
		math.Abs(v.zoom-v.target) <= 1e-3*v.target && math.Abs(v.velocity) <= 1e-3*v.target
}

// Map converts a point to dot coordinates. Non-finite points map to
// (-1, -1), which the canvas ignores.
func (v *Viewport) Map(p, origin r2.Vec, cw, ch int) (int, int) {
	d := r2.Scale(v.zoom, r2.Sub(p, origin))
	if math.IsNaN(d.X) || math.IsNaN(d.Y) || math.IsInf(d.X, 0) || math.IsInf(d.Y, 0) {
		return -1, -1
	}
	return cw/2 + int(math.Round(d.X)), ch/2 + int(math.Round(d.Y))
}

// Reach is the summed rod length of a projected chain.
func Reach(origin r2.Vec, bobs []r2.Vec) float64 {
	var reach float64
	prev := origin
	for _, b := range bobs {
		reach += r2.Norm(r2.Sub(b, prev))
		prev = b
	}
	return reach
}
