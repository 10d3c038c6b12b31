package vmc

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrDimensionMismatch indicates an operation between vectors of different dimensionality.
	ErrDimensionMismatch = errors.New("vmc: dimension mismatch")

	// ErrUnsupportedDimension indicates a dimensionality outside 1..3, or one the orbitals do not support.
	ErrUnsupportedDimension = errors.New("vmc: unsupported dimensionality")

	// ErrUnsupportedOrbitalOrder indicates a Hermite order beyond the supported bound.
	ErrUnsupportedOrbitalOrder = errors.New("vmc: unsupported orbital order")

	// ErrSingularConfiguration indicates a Slater matrix that cannot be inverted.
	ErrSingularConfiguration = errors.New("vmc: singular slater configuration")

	// ErrDegenerateDistance indicates two particles at the same position where 1/r is needed.
	ErrDegenerateDistance = errors.New("vmc: degenerate particle distance")

	// ErrParticleCount indicates a particle count the quantum-number table cannot fill.
	ErrParticleCount = errors.New("vmc: unsupported particle count")

	// ErrInvalidParameter indicates a non-positive or non-finite model parameter.
	ErrInvalidParameter = errors.New("vmc: invalid parameter")
)

// StepError wraps an error with Markov chain context.
type StepError struct {
	Phase    string
	Step     int
	Particle int
	Wrapped  error
}

func (e *StepError) Error() string {
	if e.Particle >= 0 {
		return fmt.Sprintf("%s step %d (particle %d): %v", e.Phase, e.Step, e.Particle, e.Wrapped)
	}
	return fmt.Sprintf("%s step %d: %v", e.Phase, e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
