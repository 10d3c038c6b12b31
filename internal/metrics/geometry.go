package metrics

import (
	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
)

// MeanRadius is the mean distance of a particle from the trap centre.
type MeanRadius struct {
	name    string
	samples int
	total   float64
}

func NewMeanRadius() *MeanRadius {
	return &MeanRadius{name: "mean_radius"}
}

func (m *MeanRadius) Name() string { return m.name }

func (m *MeanRadius) OnStep(_ int, sys *system.System, _ montecarlo.SampledValues, _ bool) {
	for _, p := range sys.Particles() {
		m.total += p.Position.Norm()
		m.samples++
	}
}

func (m *MeanRadius) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanRadius) Reset() {
	m.total = 0
	m.samples = 0
}

// PairDistance is the mean distance over all particle pairs.
type PairDistance struct {
	name    string
	samples int
	total   float64
}

func NewPairDistance() *PairDistance {
	return &PairDistance{name: "pair_distance"}
}

func (m *PairDistance) Name() string { return m.name }

func (m *PairDistance) OnStep(_ int, sys *system.System, _ montecarlo.SampledValues, _ bool) {
	ps := sys.Particles()
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			r, err := ps[i].DistanceTo(ps[j])
			if err != nil {
				continue
			}
			m.total += r
			m.samples++
		}
	}
}

func (m *PairDistance) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *PairDistance) Reset() {
	m.total = 0
	m.samples = 0
}
