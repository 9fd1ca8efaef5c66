package metrics

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
)

// Divergence records when the chain state first stops being finite.
// Value is that simulated time, or -1 while the state is finite.
type Divergence struct {
	name     string
	at       float64
	diverged bool
}

func NewDivergence() *Divergence {
	return &Divergence{name: "divergence", at: -1}
}

func (d *Divergence) Name() string { return d.name }

func (d *Divergence) Observe(s *chain.State, t float64) {
	if d.diverged || s.IsFinite() {
		return
	}
	d.diverged = true
	d.at = t
}

func (d *Divergence) Value() float64 { return d.at }
func (d *Divergence) Diverged() bool { return d.diverged }

func (d *Divergence) Reset() {
	d.at = -1
	d.diverged = false
}

// Speed averages the summed absolute angular velocity of all links.
type Speed struct {
	name    string
	sum     float64
	peak    float64
	samples int
}

func NewSpeed() *Speed {
	return &Speed{name: "speed"}
}

func (s *Speed) Name() string { return s.name }

func (s *Speed) Observe(st *chain.State, t float64) {
	total := 0.0
	for _, l := range st.Links {
		total += math.Abs(l.AngularVelocity)
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return
	}
	s.sum += total
	s.peak = math.Max(s.peak, total)
	s.samples++
}

func (s *Speed) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *Speed) Peak() float64 { return s.peak }

func (s *Speed) Reset() {
	s.sum = 0
	s.peak = 0
	s.samples = 0
}
