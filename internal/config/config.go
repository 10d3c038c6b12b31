package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vmc/internal/hamiltonian"
	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
	"github.com/san-kum/vmc/internal/wavefunction"
)

const (
	DefaultSteps    = 1 << 18
	DefaultStepSize = 1.0
	DefaultSpread   = 1.0
	DefaultAlpha    = 1.0
	DefaultBeta     = 0.4
	DefaultOmega    = 1.0
	DefaultRetries  = 100
)

type Config struct {
	Particles        int     `yaml:"particles"`
	Dim              int     `yaml:"dim"`
	Sampler          string  `yaml:"sampler"`
	Steps            int     `yaml:"steps"`
	StepSize         float64 `yaml:"step_size"`
	Seed             int64   `yaml:"seed"`
	Interacting      bool    `yaml:"interacting"`
	NumericalLaplace bool    `yaml:"numerical_laplace"`
	Spread           float64 `yaml:"spread"`
	Placement        string  `yaml:"placement"`
	MaxRetries       int     `yaml:"max_retries"`
	RefreshInterval  int     `yaml:"refresh_interval"`

	WaveFunction WaveFunctionConfig `yaml:"wavefunction"`
	Trap         TrapConfig         `yaml:"trap"`
	Sweep        SweepConfig        `yaml:"sweep"`
	SGD          SGDConfig          `yaml:"sgd"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
}

type WaveFunctionConfig struct {
	Alpha   float64 `yaml:"alpha"`
	Beta    float64 `yaml:"beta"`
	Omega   float64 `yaml:"omega"`
	Jastrow bool    `yaml:"jastrow"`
}

type TrapConfig struct {
	Lambda float64 `yaml:"lambda"`
}

type SweepConfig struct {
	AlphaFrom  float64 `yaml:"alpha_from"`
	AlphaTo    float64 `yaml:"alpha_to"`
	BetaFrom   float64 `yaml:"beta_from"`
	BetaTo     float64 `yaml:"beta_to"`
	Points     int     `yaml:"points"`
	BetaPoints int     `yaml:"beta_points"`
	Workers    int     `yaml:"workers"`
	SkipFailed bool    `yaml:"skip_failed"`
}

type SGDConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Iterations   int     `yaml:"iterations"`
	Tolerance    float64 `yaml:"tolerance"`
	Steps        int     `yaml:"steps"`
}

type AnalysisConfig struct {
	Trace       bool    `yaml:"trace"`
	Density     bool    `yaml:"density"`
	DensityBins int     `yaml:"density_bins"`
	DensityMax  float64 `yaml:"density_max"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles:  2,
		Dim:        2,
		Sampler:    "importance",
		Steps:      DefaultSteps,
		StepSize:   DefaultStepSize,
		Spread:     DefaultSpread,
		Placement:  "distributed",
		MaxRetries: DefaultRetries,
		WaveFunction: WaveFunctionConfig{
			Alpha:   DefaultAlpha,
			Beta:    DefaultBeta,
			Omega:   DefaultOmega,
			Jastrow: false,
		},
		Trap: TrapConfig{Lambda: 1},
		Sweep: SweepConfig{
			AlphaFrom:  0.5,
			AlphaTo:    1.5,
			BetaFrom:   0.2,
			BetaTo:     0.6,
			Points:     11,
			BetaPoints: 5,
		},
		SGD: SGDConfig{
			LearningRate: 0.1,
			Iterations:   50,
			Tolerance:    1e-4,
			Steps:        1 << 15,
		},
		Analysis: AnalysisConfig{
			DensityBins: 50,
			DensityMax:  4,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

func (c *Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", vmc.ErrInvalidParameter, c.Steps)
	}
	if c.Sampler == "bruteforce" && !(c.StepSize > 0) {
		return fmt.Errorf("%w: step_size must be positive, got %g", vmc.ErrInvalidParameter, c.StepSize)
	}
	if _, err := c.PlacementMode(); err != nil {
		return err
	}
	wf, err := c.NewWaveFunction()
	if err != nil {
		return err
	}
	return wf.Supports(c.Particles, c.Dim)
}

func (c *Config) PlacementMode() (system.Placement, error) {
	switch c.Placement {
	case "", "distributed":
		return system.Distributed, nil
	case "origin":
		return system.Origin, nil
	default:
		return 0, fmt.Errorf("%w: unknown placement %q", vmc.ErrInvalidParameter, c.Placement)
	}
}

func (c *Config) NewWaveFunction() (*wavefunction.WaveFunction, error) {
	w := c.WaveFunction
	return wavefunction.New(w.Alpha, w.Beta, w.Omega, w.Jastrow)
}

func (c *Config) SystemConfig() (system.Config, error) {
	placement, err := c.PlacementMode()
	if err != nil {
		return system.Config{}, err
	}
	return system.Config{
		Particles:        c.Particles,
		Dim:              c.Dim,
		Interacting:      c.Interacting,
		NumericalLaplace: c.NumericalLaplace,
		Spread:           c.Spread,
		Placement:        placement,
		MaxRetries:       c.MaxRetries,
		RefreshInterval:  c.RefreshInterval,
	}, nil
}

func (c *Config) Hamiltonian() hamiltonian.Hamiltonian {
	if c.Trap.Lambda == 0 || c.Trap.Lambda == 1 {
		return hamiltonian.Spherical()
	}
	return hamiltonian.Elliptical(c.Trap.Lambda)
}

// ExactEnergy is the non-interacting ground state N·d·ω/2 for two
// particles, or the filled-shell sum for larger counts.
func (c *Config) ExactEnergy() float64 {
	omega := c.WaveFunction.Omega
	if c.Particles == 2 {
		return float64(c.Particles*c.Dim) * omega / 2
	}
	sum := 0.0
	for _, q := range wavefunction.DefaultOrbitals()[:c.Particles] {
		sum += float64(q.Nx+q.Ny+1) * omega
	}
	return sum
}
