// Package metropolis implements single-particle Metropolis-Hastings samplers.
//
// Every step walks the states Proposed -> Accepted or Proposed -> Rejected.
// A rejected proposal leaves the system untouched; an accepted one is
// committed and measured.
package metropolis

import (
	"fmt"
	"math"

	"github.com/san-kum/vmc/internal/hamiltonian"
	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
)

type State int

const (
	Proposed State = iota
	Accepted
	Rejected
)

func (s State) String() string {
	switch s {
	case Proposed:
		return "proposed"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats counts the outcomes of a sampler's steps.
type Stats struct {
	Proposed int
	Accepted int
}

func (s Stats) AcceptanceRate() float64 {
	if s.Proposed == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Proposed)
}

// HastingsCheck accepts ratios ≥ 1 outright and otherwise with probability ratio.
func HastingsCheck(ratio float64, rng vmc.Rand) bool {
	if ratio >= 1 {
		return true
	}
	return rng.Float64() < ratio
}

// Sample measures the committed configuration of sys.
func Sample(sys *system.System, ham hamiltonian.Hamiltonian) (montecarlo.SampledValues, error) {
	energy, kinetic, err := ham.Energy(sys)
	if err != nil {
		return montecarlo.SampledValues{}, err
	}
	da, err := sys.GradientAlpha()
	if err != nil {
		return montecarlo.SampledValues{}, err
	}
	db, err := sys.GradientBeta()
	if err != nil {
		return montecarlo.SampledValues{}, err
	}
	return montecarlo.NewSample(energy, kinetic, da, db), nil
}

// base is the accept/measure half shared by both samplers.
type base struct {
	ham   hamiltonian.Hamiltonian
	rng   vmc.Rand
	state State
	stats Stats
}

func (b *base) State() State { return b.state }
func (b *base) Stats() Stats { return b.stats }

func (b *base) Sample(sys *system.System) (montecarlo.SampledValues, error) {
	return Sample(sys, b.ham)
}

func (b *base) propose() {
	b.state = Proposed
	b.stats.Proposed++
}

func (b *base) reject() (*montecarlo.SampledValues, error) {
	b.state = Rejected
	return nil, nil
}

func (b *base) accept(sys *system.System, m *system.Move) (*montecarlo.SampledValues, error) {
	if err := sys.Commit(m); err != nil {
		return nil, particleError(m.Index, err)
	}
	b.state = Accepted
	b.stats.Accepted++
	s, err := Sample(sys, b.ham)
	if err != nil {
		return nil, particleError(m.Index, err)
	}
	return &s, nil
}

func particleError(p int, err error) error {
	return &vmc.StepError{Phase: "step", Step: -1, Particle: p, Wrapped: err}
}

func checkRatio(ratio float64) error {
	if math.IsNaN(ratio) {
		return fmt.Errorf("%w: acceptance ratio is NaN", vmc.ErrSingularConfiguration)
	}
	return nil
}
