// Package vmc provides the core primitives shared by the variational Monte
// Carlo engine.
//
// The package defines the value types every other engine package builds on:
//
//   - [Vector]: 1, 2 or 3 dimensional Euclidean vector
//   - [Particle]: position plus cached quantum force
//   - [Rand]: the uniform and standard-normal random source a chain consumes
//   - the error taxonomy ([ErrDimensionMismatch], [ErrSingularConfiguration], ...)
//
// # Example
//
//	p, _ := vmc.NewVector(0, 0, 0)
//	q, _ := vmc.NewVector(2, 0, 0)
//	d, _ := vmc.NewParticle(p).DistanceTo(vmc.NewParticle(q)) // 2
//
// # Thread Safety
//
// Vector and Particle are immutable values and safe to share. A Rand is
// owned by exactly one Markov chain and must never be shared between
// goroutines.
package vmc
