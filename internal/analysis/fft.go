package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the Sokal window constant c in k >= c·tau.
const DefaultWindow = 5.0

// Autocorrelation returns the normalized autocorrelation ρ(k) for
// k = 0..len(data)-1, with ρ(0) = 1.
func Autocorrelation(data []float64) ([]float64, error) {
	n := len(data)
	if n < 2 {
		return nil, ErrTooFewSamples
	}

	mean := stat.Mean(data, nil)
	padded := make([]float64, nextPow2(2*n))
	for i, v := range data {
		padded[i] = v - mean
	}

	freq := fft.FFTReal(padded)
	for i, c := range freq {
		a := cmplx.Abs(c)
		freq[i] = complex(a*a, 0)
	}
	acov := fft.IFFT(freq)

	c0 := real(acov[0])
	if c0 <= 0 {
		return nil, ErrConstant
	}
	rho := make([]float64, n)
	for k := range rho {
		rho[k] = real(acov[k]) / c0
	}
	return rho, nil
}

// AutocorrelationTime is the integrated autocorrelation time
// tau = 1 + 2·Σρ(k), summed until k >= DefaultWindow·tau.
func AutocorrelationTime(data []float64) (float64, error) {
	rho, err := Autocorrelation(data)
	if err != nil {
		return 0, err
	}
	tau := 1.0
	for k := 1; k < len(rho); k++ {
		tau += 2 * rho[k]
		if float64(k) >= DefaultWindow*tau {
			break
		}
	}
	return tau, nil
}

// PowerSpectrum returns the magnitude of the first half of the spectrum.
func PowerSpectrum(data []float64) []float64 {
	freq := fft.FFTReal(data)
	ps := make([]float64, len(freq)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(freq[i])
	}
	return ps
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
