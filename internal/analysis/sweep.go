package analysis

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/dynamics"
)

// SweepPoint holds the distinct turning-point angles of one link for one
// parameter value.
type SweepPoint struct {
	Param  float64
	Values []float64
}

// Sweep runs a copy of base for each of steps parameter values spread over
// [lo, hi]. apply sets the parameter on the copy. After a transient, the
// wrapped angle of link is recorded whenever its angular velocity changes
// sign; values closer than 1e-3 rad count once.
func Sweep(
	base *chain.State,
	apply func(s *chain.State, v float64),
	lo, hi float64,
	steps, link int,
	dt, transient, record float64,
) []SweepPoint {
	if link < 0 || link >= base.N() || !dynamics.ValidStep(dt) {
		return nil
	}
	if steps <= 1 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)

	results := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := lo + float64(i)*step
		x := base.Clone()
		apply(x, param)

		t := 0.0
		for t < transient {
			dynamics.Step(x, dt)
			t += dt
		}

		values := make([]float64, 0, 16)
		seen := make(map[int]bool)
		prev := x.Links[link].AngularVelocity
		for t < transient+record {
			dynamics.Step(x, dt)
			t += dt

			curr := x.Links[link].AngularVelocity
			if prev*curr < 0 {
				v := Wrap(x.Links[link].Angle)
				key := int(math.Round(v * 1000))
				if !seen[key] {
					seen[key] = true
					values = append(values, v)
				}
			}
			prev = curr
		}

		results = append(results, SweepPoint{Param: param, Values: values})
	}
	return results
}

// SweepToASCII draws one column per parameter value.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			minVal, maxVal = math.Min(minVal, v), math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i, p := range data {
		col := i * width / len(data)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	out := make([]rune, 0, (width+1)*height)
	for _, row := range canvas {
		out = append(out, row...)
		out = append(out, '\n')
	}
	return string(out)
}
