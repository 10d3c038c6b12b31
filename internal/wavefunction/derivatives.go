package wavefunction

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/vmc/internal/vmc"
)

const (
	// LaplaceStep is the finite-difference step of LaplaceNumerical. It is
	// larger than GradientStep: a second difference at 1e-6 divides rounding
	// noise of order 1e-16 by h² and loses about four digits.
	LaplaceStep = 1e-4
	// GradientStep is the finite-difference step of GradientNumerical.
	GradientStep = 1e-6
)

// slaterGradient is ∇_k D / D. For two particles it is the Gaussian term -αω·r_k.
func (wf *WaveFunction) slaterGradient(k int, particles []vmc.Particle, inv mat.Matrix) (vmc.Vector, error) {
	n := len(particles)
	pos := particles[k].Position
	if !UsesSlater(n) {
		return pos.Scale(-wf.Alpha * wf.Omega), nil
	}
	if inv == nil {
		return vmc.Vector{}, fmt.Errorf("%w: missing inverse", vmc.ErrSingularConfiguration)
	}
	grad, err := vmc.Zero(pos.Dim())
	if err != nil {
		return vmc.Vector{}, err
	}
	for j := 0; j < n; j++ {
		q := wf.orbitals[j]
		if q.Spin != ParticleSpin(k, n) {
			continue
		}
		g, err := wf.GradientSPF(pos, q)
		if err != nil {
			return vmc.Vector{}, err
		}
		grad, _ = grad.Add(g.Scale(inv.At(j, k)))
	}
	return grad, nil
}

// slaterLaplacian is ∇²_k D / D.
func (wf *WaveFunction) slaterLaplacian(k int, particles []vmc.Particle, inv mat.Matrix) (float64, error) {
	n := len(particles)
	if !UsesSlater(n) {
		aw := wf.Alpha * wf.Omega
		return aw*aw*particles[k].SquaredSum() - float64(particles[k].Dim())*aw, nil
	}
	if inv == nil {
		return 0, fmt.Errorf("%w: missing inverse", vmc.ErrSingularConfiguration)
	}
	sum := 0.0
	for j := 0; j < n; j++ {
		l, err := wf.orbitalEntry(k, n, j, particles[k].Position, wf.LaplaceSPF)
		if err != nil {
			return 0, err
		}
		sum += l * inv.At(j, k)
	}
	return sum, nil
}

// LogGradient is ∇_k lnΨ.
func (wf *WaveFunction) LogGradient(k int, particles []vmc.Particle, inv mat.Matrix) (vmc.Vector, error) {
	gd, err := wf.slaterGradient(k, particles, inv)
	if err != nil {
		return vmc.Vector{}, err
	}
	gj, err := wf.JastrowGradient(k, particles)
	if err != nil {
		return vmc.Vector{}, err
	}
	return gd.Add(gj)
}

// QuantumForce is 2∇_k lnΨ, with inv the inverse Slater matrix of particles.
func (wf *WaveFunction) QuantumForce(k int, particles []vmc.Particle, inv mat.Matrix) (vmc.Vector, error) {
	g, err := wf.LogGradient(k, particles, inv)
	if err != nil {
		return vmc.Vector{}, err
	}
	return g.Scale(2), nil
}

// Laplace returns ∇²Ψ/Ψ summed over all particles:
//
//	Σ_k ∇²D/D + 2(∇D/D)·∇J + ∇²J + |∇J|²
func (wf *WaveFunction) Laplace(particles []vmc.Particle, inv mat.Matrix) (float64, error) {
	total := 0.0
	for k := range particles {
		ld, err := wf.slaterLaplacian(k, particles, inv)
		if err != nil {
			return 0, err
		}
		total += ld
		if !wf.Jastrow {
			continue
		}
		gd, err := wf.slaterGradient(k, particles, inv)
		if err != nil {
			return 0, err
		}
		gj, err := wf.JastrowGradient(k, particles)
		if err != nil {
			return 0, err
		}
		lj, err := wf.JastrowLaplacian(k, particles)
		if err != nil {
			return 0, err
		}
		cross, err := gd.Inner(gj)
		if err != nil {
			return 0, err
		}
		total += 2*cross + lj + gj.SquaredNorm()
	}
	return total, nil
}

// GradientAlpha is ∂lnΨ/∂α.
func (wf *WaveFunction) GradientAlpha(particles []vmc.Particle, inv mat.Matrix) (float64, error) {
	n := len(particles)
	if !UsesSlater(n) {
		return wf.gaussian(particles) / wf.Alpha, nil
	}
	if inv == nil {
		return 0, fmt.Errorf("%w: missing inverse", vmc.ErrSingularConfiguration)
	}
	// d ln det S = tr(S⁻¹ dS)
	sum := 0.0
	for i, p := range particles {
		for j := 0; j < n; j++ {
			d, err := wf.orbitalEntry(i, n, j, p.Position, wf.DerivativeAlphaSPF)
			if err != nil {
				return 0, err
			}
			sum += d * inv.At(j, i)
		}
	}
	return sum, nil
}

// LaplaceNumerical approximates ∇²Ψ/Ψ with central second differences of
// Evaluate, step LaplaceStep on every coordinate.
func (wf *WaveFunction) LaplaceNumerical(particles []vmc.Particle) (float64, error) {
	psi, err := wf.Evaluate(particles)
	if err != nil {
		return 0, err
	}
	if psi == 0 {
		return 0, fmt.Errorf("%w: wavefunction vanishes", vmc.ErrSingularConfiguration)
	}
	h := LaplaceStep
	work := vmc.CloneParticles(particles)
	sum := 0.0
	for k, p := range particles {
		for d := 0; d < p.Dim(); d++ {
			work[k] = p.Bumped(d, h)
			plus, err := wf.Evaluate(work)
			if err != nil {
				return 0, err
			}
			work[k] = p.Bumped(d, -h)
			minus, err := wf.Evaluate(work)
			if err != nil {
				return 0, err
			}
			work[k] = p
			sum += plus + minus - 2*psi
		}
	}
	return sum / (h * h * psi), nil
}

// GradientNumerical approximates ∇_kΨ/Ψ with central differences, step GradientStep.
func (wf *WaveFunction) GradientNumerical(k int, particles []vmc.Particle) (vmc.Vector, error) {
	psi, err := wf.Evaluate(particles)
	if err != nil {
		return vmc.Vector{}, err
	}
	if psi == 0 {
		return vmc.Vector{}, fmt.Errorf("%w: wavefunction vanishes", vmc.ErrSingularConfiguration)
	}
	h := GradientStep
	p := particles[k]
	work := vmc.CloneParticles(particles)
	comps := make([]float64, p.Dim())
	for d := range comps {
		work[k] = p.Bumped(d, h)
		plus, err := wf.Evaluate(work)
		if err != nil {
			return vmc.Vector{}, err
		}
		work[k] = p.Bumped(d, -h)
		minus, err := wf.Evaluate(work)
		if err != nil {
			return vmc.Vector{}, err
		}
		work[k] = p
		comps[d] = (plus - minus) / (2 * h * psi)
	}
	return vmc.NewVector(comps...)
}
