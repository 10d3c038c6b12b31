package optim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/sweep"
)

func TestSGD_HarmonicMinimum(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WaveFunction.Alpha = 0.7
	cfg.Seed = 3

	sgd := &SGD{LearningRate: 0.2, Iterations: 40, Tolerance: 1e-5, Steps: 4000}
	calls := 0
	sgd.OnIteration = func(Iteration) { calls++ }

	res, err := sgd.Optimize(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Alpha-1) > 0.05 {
		t.Errorf("alpha = %v, expected near 1", res.Alpha)
	}
	if math.Abs(res.Energy-2) > 0.01 {
		t.Errorf("energy = %v, expected near 2", res.Energy)
	}
	if res.Beta != cfg.WaveFunction.Beta {
		t.Errorf("beta moved without a Jastrow factor: %v", res.Beta)
	}
	if calls != len(res.Trajectory) || calls == 0 {
		t.Errorf("OnIteration called %d times for %d iterations", calls, len(res.Trajectory))
	}
	if res.Trajectory[0].Alpha != 0.7 || res.Trajectory[0].GradAlpha >= 0 {
		t.Errorf("first iteration should start at 0.7 with a negative gradient: %+v", res.Trajectory[0])
	}
}

func TestSGD_Invalid(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := (&SGD{LearningRate: 0, Iterations: 3}).Optimize(context.Background(), cfg); err == nil {
		t.Error("expected error for zero learning rate")
	}
	if _, err := (&SGD{LearningRate: 0.1, Iterations: 0}).Optimize(context.Background(), cfg); err == nil {
		t.Error("expected error for zero iterations")
	}
}

func TestSGD_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSGD(config.DefaultConfig().SGD, nil).Optimize(ctx, config.DefaultConfig()); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestGridSearch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sampler = "bruteforce"
	cfg.Steps = 20000
	cfg.Seed = 9

	g := NewGridSearch([]float64{0.6, 1.0, 1.4}, []float64{0.1, 0.5}, 3, nil)
	res, err := g.Search(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 3 {
		t.Errorf("beta should not be searched without a Jastrow factor, got %d points", len(res.Points))
	}
	if res.Best.Alpha != 1.0 {
		t.Errorf("best alpha = %v, want 1", res.Best.Alpha)
	}
	if math.Abs(res.Best.Energy-2) > 1e-9 {
		t.Errorf("best energy = %v, want 2", res.Best.Energy)
	}
}

func TestGridSearch_WithJastrow(t *testing.T) {
	cfg := config.GetPreset("dot2")
	cfg.Steps = 2000

	g := NewGridSearch(sweep.Alphas(0.9, 1.0, 2), []float64{0.3, 0.4}, 2, nil)
	res, err := g.Search(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 4 {
		t.Errorf("expected 4 grid points, got %d", len(res.Points))
	}
	for _, p := range res.Points {
		if p.Energy < res.Best.Energy {
			t.Errorf("point %+v below reported best %v", p.Point, res.Best.Energy)
		}
	}
}

func TestGridSearch_Empty(t *testing.T) {
	if _, err := NewGridSearch(nil, nil, 1, nil).Search(context.Background(), config.DefaultConfig()); err == nil {
		t.Error("expected error for empty grid")
	}
}
