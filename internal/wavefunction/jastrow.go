package wavefunction

import (
	"fmt"

	"github.com/san-kum/vmc/internal/vmc"
)

// Correlation returns f(r) = r/(1+βr) and its first two derivatives in r.
func Correlation(r, beta float64) (f, df, d2f float64) {
	q := 1 + beta*r
	return r / q, 1 / (q * q), -2 * beta / (q * q * q)
}

// JastrowExponent returns the exponent Σ_{i<j} a_ij·f(r_ij), or 0 when the factor is off.
func (wf *WaveFunction) JastrowExponent(particles []vmc.Particle) (float64, error) {
	if !wf.Jastrow {
		return 0, nil
	}
	n := len(particles)
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, err := particles[i].DistanceTo(particles[j])
			if err != nil {
				return 0, err
			}
			f, _, _ := Correlation(r, wf.Beta)
			sum += SpinFactor(i, j, n) * f
		}
	}
	return sum, nil
}

// JastrowDelta is the change of the Jastrow exponent when particle k moves
// from old[k] to moved[k]; only pairs involving k contribute.
func (wf *WaveFunction) JastrowDelta(k int, old, moved []vmc.Particle) (float64, error) {
	if !wf.Jastrow {
		return 0, nil
	}
	n := len(old)
	delta := 0.0
	for j := 0; j < n; j++ {
		if j == k {
			continue
		}
		rNew, err := moved[k].DistanceTo(moved[j])
		if err != nil {
			return 0, err
		}
		rOld, err := old[k].DistanceTo(old[j])
		if err != nil {
			return 0, err
		}
		fNew, _, _ := Correlation(rNew, wf.Beta)
		fOld, _, _ := Correlation(rOld, wf.Beta)
		delta += SpinFactor(k, j, n) * (fNew - fOld)
	}
	return delta, nil
}

// JastrowGradient is ∇_k of the Jastrow exponent.
func (wf *WaveFunction) JastrowGradient(k int, particles []vmc.Particle) (vmc.Vector, error) {
	grad, err := vmc.Zero(particles[k].Dim())
	if err != nil {
		return vmc.Vector{}, err
	}
	if !wf.Jastrow {
		return grad, nil
	}
	n := len(particles)
	for j := 0; j < n; j++ {
		if j == k {
			continue
		}
		d, err := particles[k].Position.Sub(particles[j].Position)
		if err != nil {
			return vmc.Vector{}, err
		}
		r := d.Norm()
		if r == 0 {
			return vmc.Vector{}, fmt.Errorf("%w: particles %d and %d", vmc.ErrDegenerateDistance, k, j)
		}
		_, df, _ := Correlation(r, wf.Beta)
		grad, _ = grad.Add(d.Scale(SpinFactor(k, j, n) * df / r))
	}
	return grad, nil
}

// JastrowLaplacian is ∇²_k of the Jastrow exponent.
func (wf *WaveFunction) JastrowLaplacian(k int, particles []vmc.Particle) (float64, error) {
	if !wf.Jastrow {
		return 0, nil
	}
	n := len(particles)
	dim := float64(particles[k].Dim())
	sum := 0.0
	for j := 0; j < n; j++ {
		if j == k {
			continue
		}
		r, err := particles[k].DistanceTo(particles[j])
		if err != nil {
			return 0, err
		}
		if r == 0 {
			return 0, fmt.Errorf("%w: particles %d and %d", vmc.ErrDegenerateDistance, k, j)
		}
		_, df, d2f := Correlation(r, wf.Beta)
		sum += SpinFactor(k, j, n) * (d2f + (dim-1)*df/r)
	}
	return sum, nil
}

// GradientBeta is ∂lnΨ/∂β = Σ_{i<j} -a_ij·r²/(1+βr)².
func (wf *WaveFunction) GradientBeta(particles []vmc.Particle) (float64, error) {
	if !wf.Jastrow {
		return 0, nil
	}
	n := len(particles)
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, err := particles[i].DistanceTo(particles[j])
			if err != nil {
				return 0, err
			}
			q := 1 + wf.Beta*r
			sum -= SpinFactor(i, j, n) * r * r / (q * q)
		}
	}
	return sum, nil
}
