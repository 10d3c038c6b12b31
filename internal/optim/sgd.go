// Package optim searches the variational parameters for the lowest energy.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/experiment"
	"github.com/san-kum/vmc/internal/logging"
	"github.com/san-kum/vmc/internal/sweep"
)

// Iteration is one point of a gradient descent trajectory.
type Iteration struct {
	Iteration         int     `json:"iteration"`
	Alpha             float64 `json:"alpha"`
	Beta              float64 `json:"beta"`
	Energy            float64 `json:"energy"`
	EnergyPerParticle float64 `json:"energy_per_particle"`
	GradAlpha         float64 `json:"grad_alpha"`
	GradBeta          float64 `json:"grad_beta"`
}

type SGDResult struct {
	Alpha      float64     `json:"alpha"`
	Beta       float64     `json:"beta"`
	Energy     float64     `json:"energy"`
	Converged  bool        `json:"converged"`
	Trajectory []Iteration `json:"trajectory"`
}

// SGD is gradient descent with a fixed learning rate on the Monte Carlo
// estimate dE/dθ = 2(<E·∂lnΨ/∂θ> − <E><∂lnΨ/∂θ>).
type SGD struct {
	LearningRate float64
	Iterations   int
	Tolerance    float64
	// Steps overrides the chain length of every iteration when positive.
	Steps       int
	Logger      *log.Logger
	OnIteration func(Iteration)
}

func NewSGD(cfg config.SGDConfig, logger *log.Logger) *SGD {
	return &SGD{
		LearningRate: cfg.LearningRate,
		Iterations:   cfg.Iterations,
		Tolerance:    cfg.Tolerance,
		Steps:        cfg.Steps,
		Logger:       logger,
	}
}

// Optimize starts from cfg's alpha and beta. Iteration k runs a chain
// seeded cfg.Seed+k. Beta only moves when the Jastrow factor is on.
func (s *SGD) Optimize(ctx context.Context, cfg *config.Config) (*SGDResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if !(s.LearningRate > 0) || s.Iterations <= 0 {
		return nil, fmt.Errorf("sgd: need a positive learning rate and iteration count")
	}

	p := sweep.Point{Alpha: cfg.WaveFunction.Alpha, Beta: cfg.WaveFunction.Beta}
	res := &SGDResult{Trajectory: make([]Iteration, 0, s.Iterations)}

	for k := 0; k < s.Iterations; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pc := p.Apply(cfg)
		pc.Seed = cfg.Seed + int64(k)
		if s.Steps > 0 {
			pc.Steps = s.Steps
		}
		run, err := experiment.New(pc, logger).Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("sgd iteration %d: %w", k, err)
		}

		it := Iteration{
			Iteration:         k,
			Alpha:             p.Alpha,
			Beta:              p.Beta,
			Energy:            run.Energy,
			EnergyPerParticle: run.EnergyPerParticle,
			GradAlpha:         run.Values.AlphaGradient(),
		}
		if cfg.WaveFunction.Jastrow {
			it.GradBeta = run.Values.BetaGradient()
		}
		res.Trajectory = append(res.Trajectory, it)
		res.Alpha, res.Beta, res.Energy = p.Alpha, p.Beta, run.Energy
		if s.OnIteration != nil {
			s.OnIteration(it)
		}

		dA := s.LearningRate * it.GradAlpha
		dB := s.LearningRate * it.GradBeta
		logger.Debug("sgd step", "iteration", k, "alpha", p.Alpha, "beta", p.Beta, "energy", run.Energy, "grad_alpha", it.GradAlpha)

		p.Alpha -= dA
		p.Beta -= dB
		if math.Hypot(dA, dB) < s.Tolerance {
			res.Converged = true
			break
		}
	}

	logger.Info("sgd done", "alpha", res.Alpha, "beta", res.Beta, "energy", res.Energy, "converged", res.Converged, "iterations", len(res.Trajectory))
	return res, nil
}
