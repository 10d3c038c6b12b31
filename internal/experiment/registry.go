package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/hamiltonian"
	"github.com/san-kum/vmc/internal/metropolis"
	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/vmc"
)

type SamplerFunc func(cfg *config.Config, ham hamiltonian.Hamiltonian, rng vmc.Rand) montecarlo.Sampler

type Registry struct {
	samplers map[string]SamplerFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		samplers: make(map[string]SamplerFunc),
	}

	r.samplers["bruteforce"] = func(cfg *config.Config, ham hamiltonian.Hamiltonian, rng vmc.Rand) montecarlo.Sampler {
		return metropolis.NewBruteForce(cfg.StepSize, ham, rng)
	}
	r.samplers["importance"] = func(cfg *config.Config, ham hamiltonian.Hamiltonian, rng vmc.Rand) montecarlo.Sampler {
		return metropolis.NewImportance(cfg.StepSize, ham, rng)
	}

	return r
}

// Register adds or replaces a sampler constructor.
func (r *Registry) Register(name string, fn SamplerFunc) {
	r.samplers[name] = fn
}

func (r *Registry) GetSampler(name string, cfg *config.Config, ham hamiltonian.Hamiltonian, rng vmc.Rand) (montecarlo.Sampler, error) {
	fn, ok := r.samplers[name]
	if !ok {
		return nil, fmt.Errorf("unknown sampler: %s", name)
	}
	return fn(cfg, ham, rng), nil
}

func (r *Registry) ListSamplers() []string {
	names := make([]string, 0, len(r.samplers))
	for name := range r.samplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
