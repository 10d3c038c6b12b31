package optim

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/sweep"
)

// GridSearch evaluates every alpha × beta point in parallel and keeps the
// lowest energy. Without a Jastrow factor beta is not searched.
type GridSearch struct {
	alphas  []float64
	betas   []float64
	workers int
	logger  *log.Logger
}

func NewGridSearch(alphas, betas []float64, workers int, logger *log.Logger) *GridSearch {
	return &GridSearch{alphas: alphas, betas: betas, workers: workers, logger: logger}
}

type GridResult struct {
	Best   sweep.Result
	Points []sweep.Result
}

func (g *GridSearch) Search(ctx context.Context, cfg *config.Config) (*GridResult, error) {
	betas := g.betas
	if !cfg.WaveFunction.Jastrow || len(betas) == 0 {
		betas = []float64{cfg.WaveFunction.Beta}
	}
	points := sweep.Grid(g.alphas, betas)
	if len(points) == 0 {
		return nil, fmt.Errorf("grid search: empty grid")
	}

	r := &sweep.Runner{Workers: g.workers, SkipFailed: cfg.Sweep.SkipFailed, Logger: g.logger}
	results, err := r.Run(ctx, cfg, points)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("grid search: every point failed")
	}

	energies := make([]float64, len(results))
	for i, res := range results {
		energies[i] = res.Energy
	}
	best := results[floats.MinIdx(energies)]
	if g.logger != nil {
		g.logger.Info("grid search done", "alpha", best.Alpha, "beta", best.Beta, "energy", best.Energy)
	}
	return &GridResult{Best: best, Points: results}, nil
}
