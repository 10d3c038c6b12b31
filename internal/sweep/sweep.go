// Package sweep runs independent Markov chains in parallel, one per
// variational parameter point or per seed.
package sweep

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/experiment"
	"github.com/san-kum/vmc/internal/logging"
	"github.com/san-kum/vmc/internal/vmc"
)

type Point struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// Apply returns a copy of cfg evaluated at p.
func (p Point) Apply(cfg *config.Config) *config.Config {
	out := cfg.Clone()
	out.WaveFunction.Alpha = p.Alpha
	out.WaveFunction.Beta = p.Beta
	return out
}

type Result struct {
	Point
	Index             int           `json:"index"`
	Seed              int64         `json:"seed"`
	Energy            float64       `json:"energy"`
	EnergyPerParticle float64       `json:"energy_per_particle"`
	Variance          float64       `json:"variance"`
	Acceptance        float64       `json:"acceptance"`
	Elapsed           time.Duration `json:"elapsed"`

	Run *experiment.Result `json:"-"`
	Err error              `json:"-"`
}

// Runner evaluates points on a bounded number of workers.
type Runner struct {
	Workers    int
	SkipFailed bool
	Logger     *log.Logger
	// OnPoint is called from worker goroutines as each chain finishes.
	OnPoint func(Result)
}

// Run evaluates every point with cfg, chain i seeded cfg.Seed+i. A failed
// chain aborts the sweep unless cfg.Sweep.SkipFailed is set.
func Run(ctx context.Context, cfg *config.Config, points []Point, workers int) ([]Result, error) {
	r := &Runner{Workers: workers, SkipFailed: cfg.Sweep.SkipFailed}
	return r.Run(ctx, cfg, points)
}

// Run returns results in input order. Once ctx is done no new chain is
// started; chains already running finish. Skipped points are left out.
func (r *Runner) Run(ctx context.Context, cfg *config.Config, points []Point) ([]Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	logger.Info("sweep start", "points", len(points), "workers", workers, "sampler", cfg.Sampler)
	start := time.Now()

	for i, p := range points {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			pc := p.Apply(cfg)
			pc.Seed = cfg.Seed + int64(i)
			res := Result{Point: p, Index: i, Seed: pc.Seed}

			run, err := experiment.New(pc, logger).Run(context.WithoutCancel(gctx))
			if err != nil {
				if !r.SkipFailed {
					return fmt.Errorf("point %d: %w", i, err)
				}
				logger.Warn("skipping point", "alpha", p.Alpha, "beta", p.Beta, "err", err)
				res.Err = err
				results[i] = res
				return nil
			}

			res.Run = run
			res.Energy = run.Energy
			res.EnergyPerParticle = run.EnergyPerParticle
			res.Variance = run.Variance
			res.Acceptance = run.Acceptance
			res.Elapsed = run.Elapsed
			results[i] = res

			logger.Debug("point done", "alpha", p.Alpha, "beta", p.Beta, "energy", res.Energy)
			if r.OnPoint != nil {
				r.OnPoint(res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			out = append(out, res)
		}
	}
	logger.Info("sweep done", "points", len(out), "skipped", len(points)-len(out), "elapsed", time.Since(start))
	return out, nil
}

// Alphas is a linear grid of n values from from to to inclusive.
func Alphas(from, to float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{from}
	}
	return floats.Span(make([]float64, n), from, to)
}

// AlphaPoints pairs every alpha with a fixed beta.
func AlphaPoints(alphas []float64, beta float64) []Point {
	out := make([]Point, len(alphas))
	for i, a := range alphas {
		out[i] = Point{Alpha: a, Beta: beta}
	}
	return out
}

// Grid is the alpha × beta product, alpha varying slowest.
func Grid(alphas, betas []float64) []Point {
	out := make([]Point, 0, len(alphas)*len(betas))
	for _, a := range alphas {
		for _, b := range betas {
			out = append(out, Point{Alpha: a, Beta: b})
		}
	}
	return out
}

type EnsembleResult struct {
	Energies []float64 `json:"energies"`
	Mean     float64   `json:"mean"`
	StdErr   float64   `json:"std_err"`
}

// Ensemble repeats cfg's point over n seeds and reports the spread of the
// chain energies.
func Ensemble(ctx context.Context, cfg *config.Config, n, workers int) (EnsembleResult, error) {
	if n < 1 {
		return EnsembleResult{}, fmt.Errorf("%w: ensemble size %d", vmc.ErrInvalidParameter, n)
	}
	p := Point{Alpha: cfg.WaveFunction.Alpha, Beta: cfg.WaveFunction.Beta}
	points := make([]Point, n)
	for i := range points {
		points[i] = p
	}

	r := &Runner{Workers: workers}
	results, err := r.Run(ctx, cfg, points)
	if err != nil {
		return EnsembleResult{}, err
	}

	out := EnsembleResult{Energies: make([]float64, len(results))}
	for i, res := range results {
		out.Energies[i] = res.Energy
	}
	if n == 1 {
		out.Mean = out.Energies[0]
		return out, nil
	}
	mean, sd := stat.MeanStdDev(out.Energies, nil)
	out.Mean = mean
	out.StdErr = sd / math.Sqrt(float64(n))
	return out, nil
}
