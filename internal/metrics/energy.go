package metrics

import (
	"math"

	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
)

// Energy is the running mean of the local energy.
type Energy struct {
	name    string
	samples int
	total   float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnStep(_ int, _ *system.System, s montecarlo.SampledValues, _ bool) {
	e.total += s.Energy
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of the running mean over the
// second half of the chain. A large value means the chain was not yet
// equilibrated when production began.
type EnergyDrift struct {
	name  string
	steps int
	mean  Energy
	ref   float64
	max   float64
}

func NewEnergyDrift(steps int) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", steps: steps}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnStep(step int, sys *system.System, s montecarlo.SampledValues, accepted bool) {
	e.mean.OnStep(step, sys, s, accepted)
	if step < e.steps/2 {
		return
	}
	cur := e.mean.Value()
	if step == e.steps/2 {
		e.ref = cur
		return
	}
	if e.ref != 0 {
		e.max = math.Max(e.max, math.Abs(cur-e.ref)/math.Abs(e.ref))
	}
}

func (e *EnergyDrift) Value() float64 { return e.max }

func (e *EnergyDrift) Reset() {
	e.mean.Reset()
	e.ref = 0
	e.max = 0
}
