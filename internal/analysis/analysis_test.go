package analysis

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func ar1(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	x := 0.0
	for i := range out {
		x = phi*x + rng.NormFloat64()
		out[i] = x
	}
	return out
}

func TestBlocking_Uncorrelated(t *testing.T) {
	data := ar1(1<<14, 0, 1)
	res, err := Blocking(data)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(res.Mean) > 0.05 {
		t.Errorf("mean = %v, expected near 0", res.Mean)
	}
	if math.Abs(res.Variance-1) > 0.05 {
		t.Errorf("variance = %v, expected near 1", res.Variance)
	}
	if res.StdErr < res.NaiveErr {
		t.Errorf("blocked error %v below naive %v", res.StdErr, res.NaiveErr)
	}
	if res.StdErr > 3*res.NaiveErr {
		t.Errorf("blocked error %v too large for white noise (naive %v)", res.StdErr, res.NaiveErr)
	}
}

func TestBlocking_Correlated(t *testing.T) {
	res, err := Blocking(ar1(1<<14, 0.9, 2))
	if err != nil {
		t.Fatal(err)
	}
	// tau = (1+phi)/(1-phi) = 19, so the true error is about sqrt(19) times the naive one.
	if res.StdErr < 2.5*res.NaiveErr {
		t.Errorf("blocked error %v should exceed naive %v for correlated data", res.StdErr, res.NaiveErr)
	}
}

func TestBlocking_Levels(t *testing.T) {
	data := make([]float64, 37)
	for i := range data {
		data[i] = float64(i % 3)
	}
	res, err := Blocking(data)
	if err != nil {
		t.Fatal(err)
	}

	wantBlocks := []int{37, 18, 9, 4}
	if len(res.Levels) != len(wantBlocks) {
		t.Fatalf("got %d levels, want %d", len(res.Levels), len(wantBlocks))
	}
	for i, lvl := range res.Levels {
		if lvl.Blocks != wantBlocks[i] || lvl.BlockSize != 1<<i {
			t.Errorf("level %d = %+v", i, lvl)
		}
		if lvl.StdErr > res.StdErr {
			t.Errorf("level %d error %v above reported max %v", i, lvl.StdErr, res.StdErr)
		}
	}
}

func TestBlocking_Constant(t *testing.T) {
	data := []float64{2, 2, 2, 2, 2, 2, 2, 2}
	res, err := Blocking(data)
	if err != nil {
		t.Fatal(err)
	}
	if res.Mean != 2 || res.StdErr != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestBlocking_TooFew(t *testing.T) {
	if _, err := Blocking([]float64{1, 2, 3}); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestAutocorrelation(t *testing.T) {
	rho, err := Autocorrelation(ar1(4096, 0.5, 3))
	if err != nil {
		t.Fatal(err)
	}
	if len(rho) != 4096 {
		t.Fatalf("len = %d", len(rho))
	}
	if math.Abs(rho[0]-1) > 1e-12 {
		t.Errorf("rho(0) = %v", rho[0])
	}
	if math.Abs(rho[1]-0.5) > 0.06 {
		t.Errorf("rho(1) = %v, expected near 0.5", rho[1])
	}
	if math.Abs(rho[2]-0.25) > 0.06 {
		t.Errorf("rho(2) = %v, expected near 0.25", rho[2])
	}
}

func TestAutocorrelation_Alternating(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = float64(1 - 2*(i%2))
	}
	rho, err := Autocorrelation(data)
	if err != nil {
		t.Fatal(err)
	}
	// Without circular wrap-around the lag-1 sum has n-1 terms.
	want := -63.0 / 64.0
	if math.Abs(rho[1]-want) > 1e-9 {
		t.Errorf("rho(1) = %v, want %v", rho[1], want)
	}
}

func TestAutocorrelation_Errors(t *testing.T) {
	if _, err := Autocorrelation([]float64{1}); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
	if _, err := Autocorrelation([]float64{3, 3, 3, 3}); !errors.Is(err, ErrConstant) {
		t.Errorf("expected ErrConstant, got %v", err)
	}
}

func TestAutocorrelationTime(t *testing.T) {
	tests := []struct {
		name string
		phi  float64
		want float64
		tol  float64
	}{
		{"white noise", 0, 1, 0.2},
		{"phi=0.5", 0.5, 3, 0.5},
		{"phi=0.9", 0.9, 19, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tau, err := AutocorrelationTime(ar1(1<<16, tt.phi, 4))
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(tau-tt.want) > tt.tol {
				t.Errorf("tau = %v, want %v ± %v", tau, tt.want, tt.tol)
			}
		})
	}
}

func TestPowerSpectrum(t *testing.T) {
	n := 64
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Cos(2 * math.Pi * 4 * float64(i) / float64(n))
	}
	ps := PowerSpectrum(data)
	if len(ps) != n/2 {
		t.Fatalf("len = %d", len(ps))
	}
	peak := 0
	for i := range ps {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak != 4 {
		t.Errorf("peak at bin %d, want 4", peak)
	}
}
