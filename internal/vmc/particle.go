package vmc

import "math"

// Particle is a single walker coordinate. A proposed move builds a new
// Particle value; the committed one is only replaced once the move is
// accepted. Quantum forces are always recomputed from the committed state.
type Particle struct {
	Position Vector
}

// NewParticle places a particle at pos.
func NewParticle(pos Vector) Particle {
	return Particle{Position: pos}
}

func (p Particle) Dim() int { return p.Position.dim }

// SquaredSum is the sum of the squared coordinates.
func (p Particle) SquaredSum() float64 {
	return p.Position.SquaredNorm()
}

// SquaredSumScaledZ is like SquaredSum with the z term multiplied by factor.
// In one and two dimensions it equals SquaredSum.
func (p Particle) SquaredSumScaledZ(factor float64) float64 {
	if p.Position.dim < 3 {
		return p.SquaredSum()
	}
	c := p.Position.c
	return c[0]*c[0] + c[1]*c[1] + factor*(c[2]*c[2])
}

// DistanceTo returns |p - other|.
func (p Particle) DistanceTo(other Particle) (float64, error) {
	d, err := p.Position.Sub(other.Position)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(d.SquaredNorm()), nil
}

// Bumped returns a copy of p moved by h along axis dim.
func (p Particle) Bumped(dim int, h float64) Particle {
	p.Position = p.Position.With(dim, h)
	return p
}

// MovedTo returns a copy of p at pos.
func (p Particle) MovedTo(pos Vector) Particle {
	p.Position = pos
	return p
}

// CloneParticles copies a configuration so a proposal never aliases the
// committed slice.
func CloneParticles(ps []Particle) []Particle {
	out := make([]Particle, len(ps))
	copy(out, ps)
	return out
}
