// Package metrics holds running accumulators that watch a Markov chain
// through the montecarlo observer hook.
package metrics

import (
	"github.com/san-kum/vmc/internal/montecarlo"
)

type Metric interface {
	montecarlo.Observer
	Name() string
	Value() float64
	Reset()
}

// Defaults returns the metrics attached to every experiment.
func Defaults() []Metric {
	return []Metric{
		NewEnergy(),
		NewAcceptance(),
		NewMeanRadius(),
		NewPairDistance(),
	}
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
