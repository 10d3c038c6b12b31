package metrics

import (
	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
)

type Acceptance struct {
	name     string
	accepted int
	samples  int
}

func NewAcceptance() *Acceptance {
	return &Acceptance{name: "acceptance"}
}

func (a *Acceptance) Name() string { return a.name }

func (a *Acceptance) OnStep(_ int, _ *system.System, _ montecarlo.SampledValues, accepted bool) {
	a.samples++
	if accepted {
		a.accepted++
	}
}

func (a *Acceptance) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.samples)
}

func (a *Acceptance) Reset() {
	a.accepted = 0
	a.samples = 0
}
