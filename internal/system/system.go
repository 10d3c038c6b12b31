// Package system holds the particle configuration of one Markov chain
// together with its Slater matrix and inverse.
//
// The inverse always belongs to the committed configuration. Proposals are
// separate Move values; only Commit changes the system, and it does so with
// an O(N²) Sherman-Morrison update instead of a fresh O(N³) inversion.
//
// A System is not safe for concurrent use. Each chain owns its own.
package system

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/vmc/internal/vmc"
	"github.com/san-kum/vmc/internal/wavefunction"
)

type Placement int

const (
	// Distributed places every coordinate uniformly in [-spread/2, spread/2).
	Distributed Placement = iota
	// Origin places all particles at the origin. Only valid for two
	// particles without pair terms.
	Origin
)

func (p Placement) String() string {
	if p == Origin {
		return "origin"
	}
	return "distributed"
}

type Config struct {
	Particles        int
	Dim              int
	Interacting      bool
	NumericalLaplace bool
	Spread           float64
	Placement        Placement
	// MaxRetries bounds the resampling of a singular initial configuration.
	MaxRetries int
	// RefreshInterval rebuilds the inverse from scratch every that many
	// accepted moves. Zero disables it.
	RefreshInterval int
}

func DefaultConfig() Config {
	return Config{
		Particles:  2,
		Dim:        2,
		Spread:     1.0,
		Placement:  Distributed,
		MaxRetries: 100,
	}
}

type System struct {
	cfg       Config
	wf        *wavefunction.WaveFunction
	particles []vmc.Particle

	slater  *mat.Dense
	inverse *mat.Dense
	scratch *mat.Dense
	ratio   float64

	scratchOwner *Move

	version      uint64
	sinceRefresh int
}

// New places the particles and builds the Slater inverse, resampling the
// configuration until the Slater matrix is invertible.
func New(cfg Config, wf *wavefunction.WaveFunction, rng vmc.Rand) (*System, error) {
	if err := validate(cfg, wf); err != nil {
		return nil, err
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}

	s := &System{cfg: cfg, wf: wf, ratio: 1}
	if !wavefunction.UsesSlater(cfg.Particles) {
		ps, err := s.place(rng)
		if err != nil {
			return nil, err
		}
		s.particles = ps
		return s, nil
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		ps, err := s.place(rng)
		if err != nil {
			return nil, err
		}
		s.particles = ps
		if lastErr = s.Refresh(); lastErr == nil {
			s.scratch = mat.NewDense(cfg.Particles, cfg.Particles, nil)
			return s, nil
		}
	}
	return nil, fmt.Errorf("no invertible configuration after %d attempts: %w", cfg.MaxRetries, lastErr)
}

func validate(cfg Config, wf *wavefunction.WaveFunction) error {
	if wf == nil {
		return fmt.Errorf("%w: nil wavefunction", vmc.ErrInvalidParameter)
	}
	if err := wf.Validate(); err != nil {
		return err
	}
	if err := wf.Supports(cfg.Particles, cfg.Dim); err != nil {
		return err
	}
	switch cfg.Placement {
	case Distributed:
		if !(cfg.Spread > 0) {
			return fmt.Errorf("%w: spread must be positive, got %g", vmc.ErrInvalidParameter, cfg.Spread)
		}
	case Origin:
		if wavefunction.UsesSlater(cfg.Particles) {
			return fmt.Errorf("%w: %d particles at the origin", vmc.ErrSingularConfiguration, cfg.Particles)
		}
		if cfg.Interacting || wf.Jastrow {
			return fmt.Errorf("%w: origin placement with pair terms", vmc.ErrDegenerateDistance)
		}
	default:
		return fmt.Errorf("%w: placement %d", vmc.ErrInvalidParameter, cfg.Placement)
	}
	return nil
}

func (s *System) place(rng vmc.Rand) ([]vmc.Particle, error) {
	ps := make([]vmc.Particle, s.cfg.Particles)
	for i := range ps {
		pos, err := vmc.Zero(s.cfg.Dim)
		if err != nil {
			return nil, err
		}
		if s.cfg.Placement == Distributed {
			for d := 0; d < s.cfg.Dim; d++ {
				pos = pos.With(d, (rng.Float64()-0.5)*s.cfg.Spread)
			}
		}
		ps[i] = vmc.NewParticle(pos)
	}
	return ps, nil
}

// Refresh rebuilds the Slater matrix and its inverse from the committed
// configuration. It is a no-op for two particles.
func (s *System) Refresh() error {
	if !wavefunction.UsesSlater(len(s.particles)) {
		return nil
	}
	slater, err := s.wf.SlaterMatrix(s.particles)
	if err != nil {
		return err
	}
	var inv mat.Dense
	if err := inv.Inverse(slater); err != nil {
		return fmt.Errorf("%w: %v", vmc.ErrSingularConfiguration, err)
	}
	s.slater = slater
	s.inverse = &inv
	s.scratchOwner = nil
	s.sinceRefresh = 0
	s.version++
	return nil
}

func (s *System) Config() Config                          { return s.cfg }
func (s *System) WaveFunction() *wavefunction.WaveFunction { return s.wf }
func (s *System) N() int                                  { return len(s.particles) }
func (s *System) Dim() int                                { return s.cfg.Dim }
func (s *System) Interacting() bool                       { return s.cfg.Interacting }

// Particles returns the committed configuration. Callers must not modify it.
func (s *System) Particles() []vmc.Particle { return s.particles }

// SlaterMatrix returns a copy of the Slater matrix, or nil for two particles.
func (s *System) SlaterMatrix() *mat.Dense {
	if s.slater == nil {
		return nil
	}
	return mat.DenseCopyOf(s.slater)
}

// SlaterInverse returns a copy of the inverse Slater matrix, or nil for two particles.
func (s *System) SlaterInverse() *mat.Dense {
	if s.inverse == nil {
		return nil
	}
	return mat.DenseCopyOf(s.inverse)
}

// SlaterRatio is the determinant ratio of the last accepted move.
func (s *System) SlaterRatio() float64 { return s.ratio }

func (s *System) inv() mat.Matrix {
	if s.inverse == nil {
		return nil
	}
	return s.inverse
}

// Laplace returns ∇²Ψ/Ψ summed over all particles, analytic or by finite
// differences depending on the configuration.
func (s *System) Laplace() (float64, error) {
	if s.cfg.NumericalLaplace {
		return s.wf.LaplaceNumerical(s.particles)
	}
	return s.wf.Laplace(s.particles, s.inv())
}

func (s *System) QuantumForce(k int) (vmc.Vector, error) {
	if err := s.checkIndex(k); err != nil {
		return vmc.Vector{}, err
	}
	return s.wf.QuantumForce(k, s.particles, s.inv())
}

func (s *System) GradientAlpha() (float64, error) {
	return s.wf.GradientAlpha(s.particles, s.inv())
}

func (s *System) GradientBeta() (float64, error) {
	return s.wf.GradientBeta(s.particles)
}

func (s *System) checkIndex(k int) error {
	if k < 0 || k >= len(s.particles) {
		return fmt.Errorf("%w: particle index %d of %d", vmc.ErrInvalidParameter, k, len(s.particles))
	}
	return nil
}
