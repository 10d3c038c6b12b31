package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
)

// EnergyTrace records the local energy of every production step.
type EnergyTrace struct {
	values []float64
}

func NewEnergyTrace(capacity int) *EnergyTrace {
	if capacity < 0 {
		capacity = 0
	}
	return &EnergyTrace{values: make([]float64, 0, capacity)}
}

func (t *EnergyTrace) OnStep(_ int, _ *system.System, sample montecarlo.SampledValues, _ bool) {
	t.values = append(t.values, sample.Energy)
}

func (t *EnergyTrace) Values() []float64 { return t.values }
func (t *EnergyTrace) Reset()            { t.values = t.values[:0] }

// OneBodyDensity histograms the radial distance of every particle on
// [0, rmax). Distances beyond rmax are counted but not binned.
type OneBodyDensity struct {
	rmax     float64
	width    float64
	counts   []float64
	total    int
	overflow int
}

func NewOneBodyDensity(bins int, rmax float64) (*OneBodyDensity, error) {
	if bins <= 0 || !(rmax > 0) || math.IsInf(rmax, 0) {
		return nil, fmt.Errorf("%w: density needs bins > 0 and rmax > 0, got %d and %g", vmc.ErrInvalidParameter, bins, rmax)
	}
	return &OneBodyDensity{
		rmax:   rmax,
		width:  rmax / float64(bins),
		counts: make([]float64, bins),
	}, nil
}

func (d *OneBodyDensity) OnStep(_ int, sys *system.System, _ montecarlo.SampledValues, _ bool) {
	for _, p := range sys.Particles() {
		d.Observe(p.Position.Norm())
	}
}

// Observe bins one radial distance.
func (d *OneBodyDensity) Observe(r float64) {
	d.total++
	if r < 0 || r >= d.rmax {
		d.overflow++
		return
	}
	i := int(r / d.width)
	if i >= len(d.counts) {
		i = len(d.counts) - 1
	}
	d.counts[i]++
}

// Density is a normalized radial histogram: bin centres and the fraction of
// observations per unit r in each bin.
type Density struct {
	Radii    []float64 `json:"radii"`
	Values   []float64 `json:"values"`
	Overflow float64   `json:"overflow"`
}

func (d *OneBodyDensity) Density() Density {
	out := Density{
		Radii:  make([]float64, len(d.counts)),
		Values: make([]float64, len(d.counts)),
	}
	for i, c := range d.counts {
		out.Radii[i] = (float64(i) + 0.5) * d.width
		if d.total > 0 {
			out.Values[i] = c / (float64(d.total) * d.width)
		}
	}
	if d.total > 0 {
		out.Overflow = float64(d.overflow) / float64(d.total)
	}
	return out
}

func (d *OneBodyDensity) Reset() {
	for i := range d.counts {
		d.counts[i] = 0
	}
	d.total, d.overflow = 0, 0
}
