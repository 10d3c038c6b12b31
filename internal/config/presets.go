package config

import "sort"

// Presets are named systems. The dot presets use the interacting
// Slater-Jastrow form with parameters near their variational minimum.
var Presets = map[string]*Config{
	"harmonic2": {
		Particles: 2, Dim: 3, Sampler: "bruteforce", Steps: 1 << 18, StepSize: 1.0,
		WaveFunction: WaveFunctionConfig{Alpha: 1.0, Omega: 1.0},
	},
	"dot2": {
		Particles: 2, Dim: 2, Sampler: "importance", Steps: 1 << 20, Interacting: true,
		WaveFunction: WaveFunctionConfig{Alpha: 0.988, Beta: 0.398, Omega: 1.0, Jastrow: true},
	},
	"dot6": {
		Particles: 6, Dim: 2, Sampler: "importance", Steps: 1 << 20, Interacting: true,
		WaveFunction: WaveFunctionConfig{Alpha: 0.926, Beta: 0.561, Omega: 1.0, Jastrow: true},
	},
	"dot12": {
		Particles: 12, Dim: 2, Sampler: "importance", Steps: 1 << 20, Interacting: true, RefreshInterval: 10000,
		WaveFunction: WaveFunctionConfig{Alpha: 0.875, Beta: 0.640, Omega: 1.0, Jastrow: true},
	},
	"dot20": {
		Particles: 20, Dim: 2, Sampler: "importance", Steps: 1 << 19, Interacting: true, RefreshInterval: 10000,
		WaveFunction: WaveFunctionConfig{Alpha: 0.853, Beta: 0.683, Omega: 1.0, Jastrow: true},
	},
}

// GetPreset returns a copy of the named preset on top of DefaultConfig,
// or nil when it does not exist.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Particles = p.Particles
	cfg.Dim = p.Dim
	cfg.Sampler = p.Sampler
	cfg.Steps = p.Steps
	if p.StepSize != 0 {
		cfg.StepSize = p.StepSize
	}
	cfg.Interacting = p.Interacting
	cfg.RefreshInterval = p.RefreshInterval
	cfg.WaveFunction = p.WaveFunction
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
