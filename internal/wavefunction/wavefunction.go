// Package wavefunction implements the Slater-Jastrow trial wavefunction
//
//	Ψ(r_1..r_N) = det[φ_j(r_i)] · exp(Σ_{i<j} a_ij·r_ij/(1+β·r_ij))
//
// built from 2-D harmonic-oscillator orbitals, together with the analytic
// gradients and Laplacians the samplers and the local energy need. For two
// particles the determinant reduces to the Gaussian exp(-½αω(r1²+r2²)),
// which is valid in one, two and three dimensions.
//
// Quantities that depend on the whole determinant take the current inverse
// Slater matrix as an argument; the particle system owns and updates it.
package wavefunction

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/vmc/internal/vmc"
)

type WaveFunction struct {
	Alpha   float64
	Beta    float64
	Omega   float64
	Jastrow bool

	orbitals []QuantumNumbers
}

func New(alpha, beta, omega float64, jastrow bool) (*WaveFunction, error) {
	wf := &WaveFunction{
		Alpha:    alpha,
		Beta:     beta,
		Omega:    omega,
		Jastrow:  jastrow,
		orbitals: defaultOrbitals,
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return wf, nil
}

// WithOrbitals returns a copy of wf using table instead of the default orbitals.
func (wf *WaveFunction) WithOrbitals(table []QuantumNumbers) *WaveFunction {
	c := *wf
	c.orbitals = make([]QuantumNumbers, len(table))
	copy(c.orbitals, table)
	return &c
}

func (wf *WaveFunction) Orbitals() []QuantumNumbers {
	out := make([]QuantumNumbers, len(wf.orbitals))
	copy(out, wf.orbitals)
	return out
}

func (wf *WaveFunction) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	switch {
	case !finite(wf.Alpha) || wf.Alpha <= 0:
		return fmt.Errorf("%w: alpha must be positive, got %g", vmc.ErrInvalidParameter, wf.Alpha)
	case !finite(wf.Omega) || wf.Omega <= 0:
		return fmt.Errorf("%w: omega must be positive, got %g", vmc.ErrInvalidParameter, wf.Omega)
	case !finite(wf.Beta) || wf.Beta < 0:
		return fmt.Errorf("%w: beta must be non-negative, got %g", vmc.ErrInvalidParameter, wf.Beta)
	}
	return nil
}

// Supports reports whether n particles in dim dimensions can be described:
// two particles in any dimension, or a filled even count in 2-D.
func (wf *WaveFunction) Supports(n, dim int) error {
	if dim < 1 || dim > vmc.MaxDim {
		return fmt.Errorf("%w: %d", vmc.ErrUnsupportedDimension, dim)
	}
	if n == 2 {
		return nil
	}
	if n < 2 || n%2 != 0 || n > len(wf.orbitals) {
		return fmt.Errorf("%w: %d (orbital table holds %d)", vmc.ErrParticleCount, n, len(wf.orbitals))
	}
	if dim != 2 {
		return fmt.Errorf("%w: %d particles need 2-D orbitals, got %dD", vmc.ErrUnsupportedDimension, n, dim)
	}
	up := 0
	for _, q := range wf.orbitals[:n] {
		if q.Spin == Up {
			up++
		}
	}
	if up != n/2 {
		return fmt.Errorf("%w: first %d orbitals hold %d spin-up states", vmc.ErrParticleCount, n, up)
	}
	return nil
}

// UsesSlater reports whether n particles need the determinant machinery.
func UsesSlater(n int) bool { return n != 2 }

// SlaterMatrix builds S[i][j] = φ_j(r_i) for the configuration.
func (wf *WaveFunction) SlaterMatrix(particles []vmc.Particle) (*mat.Dense, error) {
	n := len(particles)
	if n > len(wf.orbitals) {
		return nil, fmt.Errorf("%w: %d", vmc.ErrParticleCount, n)
	}
	s := mat.NewDense(n, n, nil)
	row := make([]float64, n)
	for i, p := range particles {
		if err := wf.SlaterRow(row, i, p.Position); err != nil {
			return nil, err
		}
		s.SetRow(i, row)
	}
	return s, nil
}

func (wf *WaveFunction) gaussian(particles []vmc.Particle) float64 {
	sum := 0.0
	for _, p := range particles {
		sum += p.SquaredSum()
	}
	return -0.5 * wf.Alpha * wf.Omega * sum
}

// Evaluate returns Ψ for the configuration.
func (wf *WaveFunction) Evaluate(particles []vmc.Particle) (float64, error) {
	j, err := wf.JastrowExponent(particles)
	if err != nil {
		return 0, err
	}
	if !UsesSlater(len(particles)) {
		return math.Exp(wf.gaussian(particles) + j), nil
	}
	s, err := wf.SlaterMatrix(particles)
	if err != nil {
		return 0, err
	}
	return mat.Det(s) * math.Exp(j), nil
}
