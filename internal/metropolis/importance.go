package metropolis

import (
	"math"

	"github.com/san-kum/vmc/internal/hamiltonian"
	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
)

const (
	// TimeStep is Δt of the discretized Langevin equation.
	TimeStep = 0.005
	// Diffusion is the diffusion constant D.
	Diffusion = 0.5
)

// Importance proposes moves from the Langevin equation
//
//	r' = r + D·F(r)·Δt + ξ·√Δt,  ξ ~ N(0,1)
//
// and corrects the asymmetric proposal with the Green's function ratio.
type Importance struct {
	base
}

// NewImportance builds an importance sampler. The step size argument is
// ignored; the step is fixed by TimeStep.
func NewImportance(_ float64, ham hamiltonian.Hamiltonian, rng vmc.Rand) *Importance {
	return &Importance{base: base{ham: ham, rng: rng}}
}

func (im *Importance) Step(sys *system.System) (*montecarlo.SampledValues, error) {
	p := im.rng.Intn(sys.N())
	old := sys.Particles()[p].Position

	fOld, err := sys.QuantumForce(p)
	if err != nil {
		return nil, particleError(p, err)
	}
	next := old
	sq := math.Sqrt(TimeStep)
	for d := 0; d < old.Dim(); d++ {
		next = next.With(d, Diffusion*fOld.At(d)*TimeStep+im.rng.NormFloat64()*sq)
	}

	im.propose()
	m, err := sys.Propose(p, next)
	if err != nil {
		return nil, particleError(p, err)
	}
	ratio := m.Ratio()
	if err := checkRatio(ratio); err != nil {
		return nil, particleError(p, err)
	}
	if ratio == 0 {
		return im.reject()
	}

	fNew, err := m.QuantumForce()
	if err != nil {
		return nil, particleError(p, err)
	}

	g, err := Greens(old, next, fOld, fNew)
	if err != nil {
		return nil, particleError(p, err)
	}
	if !HastingsCheck(ratio*g, im.rng) {
		return im.reject()
	}
	return im.accept(sys, m)
}

// Greens returns G(y→x)/G(x→y) for the Langevin proposal x→y with forces
// fx at x and fy at y, where
//
//	G(x→y) ∝ exp(−|y − x − D·Δt·F(x)|² / (4DΔt))
//
// The normalization is the same in both directions and cancels.
func Greens(x, y, fx, fy vmc.Vector) (float64, error) {
	forward, err := greensExponent(x, y, fx)
	if err != nil {
		return 0, err
	}
	backward, err := greensExponent(y, x, fy)
	if err != nil {
		return 0, err
	}
	return math.Exp(backward - forward), nil
}

func greensExponent(from, to, force vmc.Vector) (float64, error) {
	d, err := to.Sub(from)
	if err != nil {
		return 0, err
	}
	d, err = d.Sub(force.Scale(Diffusion * TimeStep))
	if err != nil {
		return 0, err
	}
	return -d.SquaredNorm() / (4 * Diffusion * TimeStep), nil
}
