package vmc

// Rand is the random source consumed by a chain. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	NormFloat64() float64
	Intn(n int) int
}
