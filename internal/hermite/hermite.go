// Package hermite evaluates physicists' Hermite polynomials H_n and the
// derivatives the harmonic-oscillator orbitals need.
//
// Derivatives use the identities H'_n = 2n·H_{n-1} and H''_n = 4n(n-1)·H_{n-2},
// so they are exact for every supported order.
package hermite

import (
	"fmt"
	"math"

	"github.com/san-kum/vmc/internal/vmc"
)

// MaxOrder is the highest supported polynomial order.
const MaxOrder = 7

func checkOrder(n int) error {
	if n < 0 || n > MaxOrder {
		return fmt.Errorf("%w: hermite order %d (max %d)", vmc.ErrUnsupportedOrbitalOrder, n, MaxOrder)
	}
	return nil
}

// Evaluate returns H_n(x) using the three-term recurrence
// H_{k+1} = 2x·H_k − 2k·H_{k−1}.
func Evaluate(x float64, n int) (float64, error) {
	if err := checkOrder(n); err != nil {
		return 0, err
	}
	return eval(x, n), nil
}

func eval(x float64, n int) float64 {
	if n < 0 {
		return 0
	}
	prev, cur := 0.0, 1.0
	for k := 0; k < n; k++ {
		prev, cur = cur, 2*x*cur-2*float64(k)*prev
	}
	return cur
}

// Derivative returns dH_n/dx.
func Derivative(x float64, n int) (float64, error) {
	if err := checkOrder(n); err != nil {
		return 0, err
	}
	return 2 * float64(n) * eval(x, n-1), nil
}

// DoubleDerivative returns d²H_n/dx².
func DoubleDerivative(x float64, n int) (float64, error) {
	if err := checkOrder(n); err != nil {
		return 0, err
	}
	return 4 * float64(n) * float64(n-1) * eval(x, n-2), nil
}

// DerivativeAlpha returns d/dα of H_n(√(αω)·x), the variation of a scaled
// orbital polynomial with respect to the width parameter.
func DerivativeAlpha(n int, x, omega, alpha float64) (float64, error) {
	if err := checkOrder(n); err != nil {
		return 0, err
	}
	if omega <= 0 || alpha <= 0 {
		return 0, fmt.Errorf("%w: omega=%g alpha=%g", vmc.ErrInvalidParameter, omega, alpha)
	}
	k := math.Sqrt(omega * alpha)
	// dk/dα = ω/(2k)
	return 2 * float64(n) * eval(k*x, n-1) * x * omega / (2 * k), nil
}
