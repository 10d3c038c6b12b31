package system

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/vmc/internal/vmc"
	"github.com/san-kum/vmc/internal/wavefunction"
)

// ErrStaleMove is returned when committing a move proposed before the last commit.
var ErrStaleMove = errors.New("system: stale move")

// Move is a proposed single-particle displacement. It never aliases the
// committed state of the system it came from.
type Move struct {
	Index int
	// Particles is the full proposed configuration.
	Particles []vmc.Particle
	// SlaterRatio is det S'/det S. For two particles it is the ratio of
	// the Gaussian factors.
	SlaterRatio float64
	// JastrowDelta is the change of the Jastrow exponent.
	JastrowDelta float64

	sys     *System
	version uint64
	row     []float64
	v       *mat.VecDense
	inverse *mat.Dense
}

// Ratio is |Ψ'/Ψ|², the Metropolis weight of the move.
func (m *Move) Ratio() float64 {
	r := m.SlaterRatio * math.Exp(m.JastrowDelta)
	return r * r
}

// Propose scores moving particle p to pos without touching the system.
func (s *System) Propose(p int, pos vmc.Vector) (*Move, error) {
	if err := s.checkIndex(p); err != nil {
		return nil, err
	}
	if pos.Dim() != s.cfg.Dim {
		return nil, fmt.Errorf("%w: %dD move in a %dD system", vmc.ErrDimensionMismatch, pos.Dim(), s.cfg.Dim)
	}

	moved := vmc.CloneParticles(s.particles)
	moved[p] = moved[p].MovedTo(pos)

	dj, err := s.wf.JastrowDelta(p, s.particles, moved)
	if err != nil {
		return nil, err
	}
	m := &Move{
		Index:        p,
		Particles:    moved,
		JastrowDelta: dj,
		sys:          s,
		version:      s.version,
	}

	if !wavefunction.UsesSlater(len(moved)) {
		aw := s.wf.Alpha * s.wf.Omega
		m.SlaterRatio = math.Exp(-0.5 * aw * (moved[p].SquaredSum() - s.particles[p].SquaredSum()))
		return m, nil
	}

	n := len(moved)
	m.row = make([]float64, n)
	if err := s.wf.SlaterRow(m.row, p, pos); err != nil {
		return nil, err
	}
	m.v = mat.NewVecDense(n, nil)
	ratio := 1.0
	for j := 0; j < n; j++ {
		d := m.row[j] - s.slater.At(p, j)
		m.v.SetVec(j, d)
		ratio += d * s.inverse.At(j, p)
	}
	m.SlaterRatio = ratio
	return m, nil
}

// proposedInverse applies the Sherman-Morrison correction
//
//	S'⁻¹ = S⁻¹ − (S⁻¹e_p)(vᵀS⁻¹)/R
//
// to the pre-move inverse into the system's scratch buffer, which holds
// the result of the most recent move only.
func (m *Move) proposedInverse() (*mat.Dense, error) {
	s := m.sys
	if m.inverse != nil && s.scratchOwner == m {
		return m.inverse, nil
	}
	if m.version != s.version {
		return nil, ErrStaleMove
	}
	if m.SlaterRatio == 0 || math.IsNaN(m.SlaterRatio) || math.IsInf(m.SlaterRatio, 0) {
		return nil, fmt.Errorf("%w: determinant ratio %g", vmc.ErrSingularConfiguration, m.SlaterRatio)
	}

	n := len(m.Particles)
	u := mat.NewVecDense(n, nil)
	u.CopyVec(s.inverse.ColView(m.Index))
	w := mat.NewVecDense(n, nil)
	w.MulVec(s.inverse.T(), m.v)

	s.scratch.RankOne(s.inverse, -1/m.SlaterRatio, u, w)
	m.inverse = s.scratch
	s.scratchOwner = m
	return m.inverse, nil
}

// QuantumForce is the quantum force on the moved particle in the proposed
// configuration.
func (m *Move) QuantumForce() (vmc.Vector, error) {
	if !wavefunction.UsesSlater(len(m.Particles)) {
		return m.sys.wf.QuantumForce(m.Index, m.Particles, nil)
	}
	inv, err := m.proposedInverse()
	if err != nil {
		return vmc.Vector{}, err
	}
	return m.sys.wf.QuantumForce(m.Index, m.Particles, inv)
}

// Commit makes m the committed configuration.
func (s *System) Commit(m *Move) error {
	if m == nil || m.sys != s || m.version != s.version {
		return ErrStaleMove
	}

	if wavefunction.UsesSlater(len(m.Particles)) {
		inv, err := m.proposedInverse()
		if err != nil {
			return err
		}
		s.slater.SetRow(m.Index, m.row)
		s.scratch, s.inverse = s.inverse, inv
		s.scratchOwner = nil
		s.sinceRefresh++
	}

	s.particles = m.Particles
	s.ratio = m.SlaterRatio
	s.version++

	if s.cfg.RefreshInterval > 0 && s.sinceRefresh >= s.cfg.RefreshInterval {
		return s.Refresh()
	}
	return nil
}
