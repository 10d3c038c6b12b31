package wavefunction

import (
	"fmt"
	"math"

	"github.com/san-kum/vmc/internal/hermite"
	"github.com/san-kum/vmc/internal/vmc"
)

type Spin int8

const (
	Up Spin = iota
	Down
)

func (s Spin) String() string {
	if s == Up {
		return "up"
	}
	return "down"
}

// QuantumNumbers identifies a 2-D harmonic-oscillator orbital.
type QuantumNumbers struct {
	Nx, Ny int
	Spin   Spin
}

// defaultOrbitals fills closed shells of the 2-D oscillator, spins interleaved.
var defaultOrbitals = []QuantumNumbers{
	{0, 0, Up}, {0, 0, Down},
	{1, 0, Up}, {1, 0, Down},
	{0, 1, Up}, {0, 1, Down},
	{2, 0, Up}, {2, 0, Down},
	{1, 1, Up}, {1, 1, Down},
	{0, 2, Up}, {0, 2, Down},
	{3, 0, Up}, {3, 0, Down},
	{2, 1, Up}, {2, 1, Down},
	{1, 2, Up}, {1, 2, Down},
	{0, 3, Up}, {0, 3, Down},
}

// DefaultOrbitals returns a copy of the built-in table (20 entries).
func DefaultOrbitals() []QuantumNumbers {
	out := make([]QuantumNumbers, len(defaultOrbitals))
	copy(out, defaultOrbitals)
	return out
}

// ParticleSpin assigns spin up to the first n/2 particles.
func ParticleSpin(i, n int) Spin {
	if i < n/2 {
		return Up
	}
	return Down
}

// SpinFactor is the Jastrow coefficient a(i,j): 1/3 for parallel spins, 1 otherwise.
func SpinFactor(i, j, n int) float64 {
	if ParticleSpin(i, n) == ParticleSpin(j, n) {
		return 1.0 / 3.0
	}
	return 1
}

func (wf *WaveFunction) scale() float64 { return math.Sqrt(wf.Alpha * wf.Omega) }

func planar(pos vmc.Vector) (x, y float64, err error) {
	if pos.Dim() != 2 {
		return 0, 0, fmt.Errorf("%w: orbitals are 2-D, got %dD", vmc.ErrUnsupportedDimension, pos.Dim())
	}
	return pos.At(0), pos.At(1), nil
}

type hermitePair struct {
	h, d, dd float64
}

func hermiteAll(x float64, n int) (hermitePair, error) {
	h, err := hermite.Evaluate(x, n)
	if err != nil {
		return hermitePair{}, err
	}
	d, err := hermite.Derivative(x, n)
	if err != nil {
		return hermitePair{}, err
	}
	dd, err := hermite.DoubleDerivative(x, n)
	if err != nil {
		return hermitePair{}, err
	}
	return hermitePair{h, d, dd}, nil
}

// SPF evaluates the orbital H_nx(kx)·H_ny(ky)·exp(-½αω|r|²), k = √(αω).
func (wf *WaveFunction) SPF(pos vmc.Vector, q QuantumNumbers) (float64, error) {
	x, y, err := planar(pos)
	if err != nil {
		return 0, err
	}
	k := wf.scale()
	hx, err := hermite.Evaluate(k*x, q.Nx)
	if err != nil {
		return 0, err
	}
	hy, err := hermite.Evaluate(k*y, q.Ny)
	if err != nil {
		return 0, err
	}
	return hx * hy * math.Exp(-0.5*wf.Alpha*wf.Omega*(x*x+y*y)), nil
}

// GradientSPF is the analytic gradient of SPF.
func (wf *WaveFunction) GradientSPF(pos vmc.Vector, q QuantumNumbers) (vmc.Vector, error) {
	x, y, err := planar(pos)
	if err != nil {
		return vmc.Vector{}, err
	}
	k := wf.scale()
	aw := wf.Alpha * wf.Omega
	hx, err := hermiteAll(k*x, q.Nx)
	if err != nil {
		return vmc.Vector{}, err
	}
	hy, err := hermiteAll(k*y, q.Ny)
	if err != nil {
		return vmc.Vector{}, err
	}
	g := math.Exp(-0.5 * aw * (x*x + y*y))
	gx := (k*hx.d - aw*x*hx.h) * hy.h * g
	gy := (k*hy.d - aw*y*hy.h) * hx.h * g
	return vmc.NewVector(gx, gy)
}

// LaplaceSPF is the analytic Laplacian of SPF.
func (wf *WaveFunction) LaplaceSPF(pos vmc.Vector, q QuantumNumbers) (float64, error) {
	x, y, err := planar(pos)
	if err != nil {
		return 0, err
	}
	k := wf.scale()
	aw := wf.Alpha * wf.Omega
	hx, err := hermiteAll(k*x, q.Nx)
	if err != nil {
		return 0, err
	}
	hy, err := hermiteAll(k*y, q.Ny)
	if err != nil {
		return 0, err
	}
	g := math.Exp(-0.5 * aw * (x*x + y*y))
	// d²/du² [H(ku)·exp(-½αω u²)] / exp(-½αω u²)
	second := func(u float64, p hermitePair) float64 {
		return aw*p.dd - 2*aw*k*u*p.d + (aw*aw*u*u-aw)*p.h
	}
	return (second(x, hx)*hy.h + second(y, hy)*hx.h) * g, nil
}

// DerivativeAlphaSPF is ∂SPF/∂α.
func (wf *WaveFunction) DerivativeAlphaSPF(pos vmc.Vector, q QuantumNumbers) (float64, error) {
	x, y, err := planar(pos)
	if err != nil {
		return 0, err
	}
	k := wf.scale()
	hx, err := hermite.Evaluate(k*x, q.Nx)
	if err != nil {
		return 0, err
	}
	hy, err := hermite.Evaluate(k*y, q.Ny)
	if err != nil {
		return 0, err
	}
	dx, err := hermite.DerivativeAlpha(q.Nx, x, wf.Omega, wf.Alpha)
	if err != nil {
		return 0, err
	}
	dy, err := hermite.DerivativeAlpha(q.Ny, y, wf.Omega, wf.Alpha)
	if err != nil {
		return 0, err
	}
	r2 := x*x + y*y
	g := math.Exp(-0.5 * wf.Alpha * wf.Omega * r2)
	return (dx*hy + hx*dy - 0.5*wf.Omega*r2*hx*hy) * g, nil
}

// orbitalEntry evaluates orbital j at pos for particle i of n, zero when spins differ.
func (wf *WaveFunction) orbitalEntry(i, n, j int, pos vmc.Vector, f func(vmc.Vector, QuantumNumbers) (float64, error)) (float64, error) {
	q := wf.orbitals[j]
	if q.Spin != ParticleSpin(i, n) {
		return 0, nil
	}
	return f(pos, q)
}

// SlaterRow writes φ_j(pos) for j < n into dst, as seen by particle i.
func (wf *WaveFunction) SlaterRow(dst []float64, i int, pos vmc.Vector) error {
	n := len(dst)
	for j := 0; j < n; j++ {
		v, err := wf.orbitalEntry(i, n, j, pos, wf.SPF)
		if err != nil {
			return err
		}
		dst[j] = v
	}
	return nil
}
