package vmc

import (
	"fmt"
	"math"
)

// MaxDim is the largest supported dimensionality.
const MaxDim = 3

// Vector is a fixed small-dimension Euclidean vector. The dimensionality is
// fixed at construction; arithmetic between vectors of different
// dimensionality fails with ErrDimensionMismatch.
type Vector struct {
	dim int
	c   [MaxDim]float64
}

// NewVector builds a vector from 1 to 3 components.
func NewVector(components ...float64) (Vector, error) {
	if len(components) < 1 || len(components) > MaxDim {
		return Vector{}, fmt.Errorf("%w: %d components", ErrUnsupportedDimension, len(components))
	}
	v := Vector{dim: len(components)}
	copy(v.c[:], components)
	return v, nil
}

// Zero returns the origin in dim dimensions.
func Zero(dim int) (Vector, error) {
	if dim < 1 || dim > MaxDim {
		return Vector{}, fmt.Errorf("%w: %d", ErrUnsupportedDimension, dim)
	}
	return Vector{dim: dim}, nil
}

func (v Vector) Dim() int { return v.dim }

// At returns component i. It panics when i is out of range, like a slice index.
func (v Vector) At(i int) float64 {
	if i < 0 || i >= v.dim {
		panic(fmt.Sprintf("vmc: index %d out of range for %d-dimensional vector", i, v.dim))
	}
	return v.c[i]
}

// Components returns a copy of the components.
func (v Vector) Components() []float64 {
	out := make([]float64, v.dim)
	copy(out, v.c[:v.dim])
	return out
}

func (v Vector) Scale(factor float64) Vector {
	r := Vector{dim: v.dim}
	for i := 0; i < v.dim; i++ {
		r.c[i] = factor * v.c[i]
	}
	return r
}

func (v Vector) Add(o Vector) (Vector, error) {
	if v.dim != o.dim {
		return Vector{}, mismatch(v, o)
	}
	r := Vector{dim: v.dim}
	for i := 0; i < v.dim; i++ {
		r.c[i] = v.c[i] + o.c[i]
	}
	return r, nil
}

func (v Vector) Sub(o Vector) (Vector, error) {
	if v.dim != o.dim {
		return Vector{}, mismatch(v, o)
	}
	r := Vector{dim: v.dim}
	for i := 0; i < v.dim; i++ {
		r.c[i] = v.c[i] - o.c[i]
	}
	return r, nil
}

func (v Vector) Inner(o Vector) (float64, error) {
	if v.dim != o.dim {
		return 0, mismatch(v, o)
	}
	sum := 0.0
	for i := 0; i < v.dim; i++ {
		sum += v.c[i] * o.c[i]
	}
	return sum, nil
}

// SquaredNorm is the inner product of v with itself.
func (v Vector) SquaredNorm() float64 {
	sum := 0.0
	for i := 0; i < v.dim; i++ {
		sum += v.c[i] * v.c[i]
	}
	return sum
}

func (v Vector) Norm() float64 { return math.Sqrt(v.SquaredNorm()) }

// With returns a copy of v with component i shifted by delta.
func (v Vector) With(i int, delta float64) Vector {
	_ = v.At(i)
	v.c[i] += delta
	return v
}

func (v Vector) String() string {
	return fmt.Sprint(v.c[:v.dim])
}

func mismatch(a, b Vector) error {
	return fmt.Errorf("%w: %dD and %dD", ErrDimensionMismatch, a.dim, b.dim)
}
