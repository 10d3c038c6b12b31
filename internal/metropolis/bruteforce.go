package metropolis

import (
	"github.com/san-kum/vmc/internal/hamiltonian"
	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
)

// BruteForce proposes uniform displacements in [-StepSize/2, StepSize/2)
// per coordinate.
type BruteForce struct {
	base
	StepSize float64
}

func NewBruteForce(stepSize float64, ham hamiltonian.Hamiltonian, rng vmc.Rand) *BruteForce {
	return &BruteForce{
		base:     base{ham: ham, rng: rng},
		StepSize: stepSize,
	}
}

func (b *BruteForce) Step(sys *system.System) (*montecarlo.SampledValues, error) {
	p := b.rng.Intn(sys.N())
	pos := sys.Particles()[p].Position
	for d := 0; d < pos.Dim(); d++ {
		pos = pos.With(d, (b.rng.Float64()-0.5)*b.StepSize)
	}

	b.propose()
	m, err := sys.Propose(p, pos)
	if err != nil {
		return nil, particleError(p, err)
	}
	ratio := m.Ratio()
	if err := checkRatio(ratio); err != nil {
		return nil, particleError(p, err)
	}
	if !HastingsCheck(ratio, b.rng) {
		return b.reject()
	}
	return b.accept(sys, m)
}
