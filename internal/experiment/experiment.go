// Package experiment runs one seeded Markov chain from a run configuration.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/vmc/internal/analysis"
	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/logging"
	"github.com/san-kum/vmc/internal/metrics"
	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
)

// cancelCheck is how many steps pass between context checks.
const cancelCheck = 1024

type Result struct {
	Values            montecarlo.SampledValues `json:"values"`
	Energy            float64                  `json:"energy"`
	EnergyPerParticle float64                  `json:"energy_per_particle"`
	Variance          float64                  `json:"variance"`
	Acceptance        float64                  `json:"acceptance"`
	Elapsed           time.Duration            `json:"elapsed"`
	Blocking          *analysis.BlockingResult `json:"blocking,omitempty"`
	Autocorrelation   float64                  `json:"autocorrelation_time,omitempty"`
	Density           *analysis.Density        `json:"density,omitempty"`
	Metrics           map[string]float64       `json:"metrics"`
	Trace             []float64                `json:"-"`
}

type Experiment struct {
	cfg       *config.Config
	logger    *log.Logger
	registry  *Registry
	observers []montecarlo.Observer
}

func New(cfg *config.Config, logger *log.Logger) *Experiment {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Experiment{
		cfg:      cfg,
		logger:   logger,
		registry: NewRegistry(),
	}
}

// WithRegistry swaps the sampler registry.
func (e *Experiment) WithRegistry(r *Registry) *Experiment {
	e.registry = r
	return e
}

// AddObserver attaches an extra observer to the next Run.
func (e *Experiment) AddObserver(o montecarlo.Observer) {
	e.observers = append(e.observers, o)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Setup builds the seeded system and sampler without running them.
func (e *Experiment) Setup() (*system.System, montecarlo.Sampler, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	rng := rand.New(rand.NewSource(e.cfg.Seed))

	wf, err := e.cfg.NewWaveFunction()
	if err != nil {
		return nil, nil, err
	}
	sysCfg, err := e.cfg.SystemConfig()
	if err != nil {
		return nil, nil, err
	}
	sys, err := system.New(sysCfg, wf, rng)
	if err != nil {
		return nil, nil, err
	}
	sampler, err := e.registry.GetSampler(e.cfg.Sampler, e.cfg, e.cfg.Hamiltonian(), rng)
	if err != nil {
		return nil, nil, err
	}
	return sys, sampler, nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sys, sampler, err := e.Setup()
	if err != nil {
		return nil, err
	}

	in := montecarlo.New(&contextSampler{Sampler: sampler, ctx: ctx})
	ms := append(metrics.Defaults(), metrics.NewEnergyDrift(e.cfg.Steps))
	for _, m := range ms {
		in.AddObserver(m)
	}

	var trace *analysis.EnergyTrace
	if e.cfg.Analysis.Trace {
		trace = analysis.NewEnergyTrace(e.cfg.Steps)
		in.AddObserver(trace)
	}
	var density *analysis.OneBodyDensity
	if e.cfg.Analysis.Density {
		density, err = analysis.NewOneBodyDensity(e.cfg.Analysis.DensityBins, e.cfg.Analysis.DensityMax)
		if err != nil {
			return nil, err
		}
		in.AddObserver(density)
	}
	for _, o := range e.observers {
		in.AddObserver(o)
	}

	e.logger.Debug("chain start",
		"sampler", e.cfg.Sampler,
		"particles", e.cfg.Particles,
		"dim", e.cfg.Dim,
		"alpha", e.cfg.WaveFunction.Alpha,
		"beta", e.cfg.WaveFunction.Beta,
		"steps", e.cfg.Steps,
		"seed", e.cfg.Seed,
	)

	start := time.Now()
	values, err := in.Run(e.cfg.Steps, sys)
	if err != nil {
		return nil, fmt.Errorf("alpha=%g beta=%g: %w", e.cfg.WaveFunction.Alpha, e.cfg.WaveFunction.Beta, err)
	}

	res := &Result{
		Values:            values,
		Energy:            values.Energy,
		EnergyPerParticle: values.Energy / float64(e.cfg.Particles),
		Variance:          values.Variance(),
		Acceptance:        values.AcceptanceRate(),
		Elapsed:           time.Since(start),
		Metrics:           metrics.Collect(ms),
	}

	if trace != nil {
		res.Trace = trace.Values()
		if b, err := analysis.Blocking(res.Trace); err == nil {
			res.Blocking = &b
		}
		tau, err := analysis.AutocorrelationTime(res.Trace)
		switch {
		case err == nil:
			res.Autocorrelation = tau
		case !errors.Is(err, analysis.ErrConstant) && !errors.Is(err, analysis.ErrTooFewSamples):
			return nil, err
		}
	}
	if density != nil {
		d := density.Density()
		res.Density = &d
	}

	e.logger.Debug("chain done",
		"energy", res.Energy,
		"variance", res.Variance,
		"acceptance", res.Acceptance,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// contextSampler aborts a chain once its context is done.
type contextSampler struct {
	montecarlo.Sampler
	ctx   context.Context
	steps int
}

func (s *contextSampler) Step(sys *system.System) (*montecarlo.SampledValues, error) {
	s.steps++
	if s.steps%cancelCheck == 0 {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
	}
	return s.Sampler.Step(sys)
}
