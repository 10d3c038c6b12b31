// Package hamiltonian computes the local energy E_L = HΨ/Ψ of a harmonic
// trap with optional Coulomb repulsion.
package hamiltonian

import (
	"fmt"

	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
	"github.com/san-kum/vmc/internal/wavefunction"
)

// Hamiltonian describes the trap. Lambda scales the z² term of the trap
// potential; it has no effect below three dimensions.
type Hamiltonian struct {
	Lambda float64
}

func Spherical() Hamiltonian { return Hamiltonian{Lambda: 1} }

func Elliptical(lambda float64) Hamiltonian { return Hamiltonian{Lambda: lambda} }

// Energy returns the local energy and its kinetic part for the committed
// configuration of s.
func (h Hamiltonian) Energy(s *system.System) (total, kinetic float64, err error) {
	particles := s.Particles()
	wf := s.WaveFunction()

	if len(particles) == 2 && !s.Config().NumericalLaplace {
		kinetic, err = twoParticleKinetic(wf, particles)
	} else {
		var lap float64
		lap, err = s.Laplace()
		kinetic = -0.5 * lap
	}
	if err != nil {
		return 0, 0, err
	}

	total = kinetic + h.Trap(particles, wf.Omega)
	if s.Interacting() {
		rep, err := Repulsive(particles)
		if err != nil {
			return 0, 0, err
		}
		total += rep
	}
	return total, kinetic, nil
}

// Trap is ½ω²Σ(x²+y²+λz²).
func (h Hamiltonian) Trap(particles []vmc.Particle, omega float64) float64 {
	sum := 0.0
	for _, p := range particles {
		sum += p.SquaredSumScaledZ(h.Lambda)
	}
	return 0.5 * omega * omega * sum
}

// Repulsive is the Coulomb energy Σ_{i<j} 1/r_ij.
func Repulsive(particles []vmc.Particle) (float64, error) {
	sum := 0.0
	for i := range particles {
		for j := i + 1; j < len(particles); j++ {
			r, err := particles[i].DistanceTo(particles[j])
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, fmt.Errorf("%w: particles %d and %d", vmc.ErrDegenerateDistance, i, j)
			}
			sum += 1 / r
		}
	}
	return sum, nil
}

// twoParticleKinetic is -½∇²Ψ/Ψ for the two-particle Gaussian-Jastrow
// function in closed form:
//
//	dαω − ½α²ω²(r1²+r2²) + αω·a·r·f' − a(f'' + (d−1)f'/r) − a²f'²
func twoParticleKinetic(wf *wavefunction.WaveFunction, particles []vmc.Particle) (float64, error) {
	aw := wf.Alpha * wf.Omega
	d := float64(particles[0].Dim())
	r2 := particles[0].SquaredSum() + particles[1].SquaredSum()
	kin := d*aw - 0.5*aw*aw*r2
	if !wf.Jastrow {
		return kin, nil
	}

	r, err := particles[0].DistanceTo(particles[1])
	if err != nil {
		return 0, err
	}
	if r == 0 {
		return 0, fmt.Errorf("%w: particles 0 and 1", vmc.ErrDegenerateDistance)
	}
	a := wavefunction.SpinFactor(0, 1, 2)
	_, df, d2f := wavefunction.Correlation(r, wf.Beta)
	kin += aw*a*r*df - a*(d2f+(d-1)*df/r) - a*a*df*df
	return kin, nil
}
