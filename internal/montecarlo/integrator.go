// Package montecarlo drives a Metropolis sampler over one Markov chain and
// turns its samples into mean estimators.
//
// A run first discards steps/4 burn-in steps, then accumulates exactly
// steps production samples. A rejected step adds the last accepted sample
// again, so the mean weights every visited configuration by its dwell time.
package montecarlo

import (
	"errors"
	"fmt"

	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
)

// Sampler advances a chain by one Metropolis step.
type Sampler interface {
	// Step returns the sample of the new configuration, or nil when the
	// proposal was rejected.
	Step(sys *system.System) (*SampledValues, error)
	// Sample measures the committed configuration.
	Sample(sys *system.System) (SampledValues, error)
}

// Observer sees every production step after it has been accumulated.
type Observer interface {
	OnStep(step int, sys *system.System, sample SampledValues, accepted bool)
}

type ObserverFunc func(step int, sys *system.System, sample SampledValues, accepted bool)

func (f ObserverFunc) OnStep(step int, sys *system.System, sample SampledValues, accepted bool) {
	f(step, sys, sample, accepted)
}

type Integrator struct {
	sampler   Sampler
	observers []Observer
}

func New(sampler Sampler) *Integrator {
	return &Integrator{
		sampler:   sampler,
		observers: make([]Observer, 0),
	}
}

func (in *Integrator) AddObserver(o Observer) { in.observers = append(in.observers, o) }

// BurnIn is the number of discarded steps preceding steps production steps.
func BurnIn(steps int) int { return steps / 4 }

func (in *Integrator) Run(steps int, sys *system.System) (SampledValues, error) {
	if steps <= 0 {
		return SampledValues{}, fmt.Errorf("%w: step count %d", vmc.ErrInvalidParameter, steps)
	}

	last, err := in.sampler.Sample(sys)
	if err != nil {
		return SampledValues{}, stepError("initial", 0, err)
	}

	for i := 0; i < BurnIn(steps); i++ {
		s, err := in.sampler.Step(sys)
		if err != nil {
			return SampledValues{}, stepError("burn-in", i, err)
		}
		if s != nil {
			last = *s
		}
	}

	var sum SampledValues
	accepted := 0
	for i := 0; i < steps; i++ {
		s, err := in.sampler.Step(sys)
		if err != nil {
			return SampledValues{}, stepError("production", i, err)
		}
		if s != nil {
			last = *s
			accepted++
		}
		sum.Add(last)
		for _, o := range in.observers {
			o.OnStep(i, sys, last, s != nil)
		}
	}

	sum.Divide(steps)
	sum.Accepted = accepted
	return sum, nil
}

// MonteCarlo runs steps production steps of sampler on sys without observers.
func MonteCarlo(steps int, sys *system.System, sampler Sampler) (SampledValues, error) {
	return New(sampler).Run(steps, sys)
}

func stepError(phase string, step int, err error) error {
	var se *vmc.StepError
	if errors.As(err, &se) {
		out := *se
		out.Phase = phase
		out.Step = step
		return &out
	}
	return &vmc.StepError{Phase: phase, Step: step, Particle: -1, Wrapped: err}
}
