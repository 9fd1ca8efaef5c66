package metrics

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/dynamics"
)

// Energy averages the chain's mechanical energy over observed steps, in
// joules for a chain built at the given scale.
type Energy struct {
	name        string
	scale       float64
	samples     int
	totalEnergy float64
}

func NewEnergy(scale float64) *Energy {
	if scale <= 0 {
		scale = 1
	}
	return &Energy{name: "energy", scale: scale}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *chain.State, t float64) {
	e.totalEnergy += dynamics.Energy(s) / (e.scale * e.scale)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure from the energy seen on
// the first observed step. Non-finite energies are skipped.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s *chain.State, t float64) {
	energy := dynamics.Energy(s)
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return
	}

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Final returns the relative drift of the last observed step.
func (e *EnergyDrift) Final() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return math.Abs(e.currentEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
