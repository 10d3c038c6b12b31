package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/optim"
	"github.com/san-kum/vmc/internal/sweep"
)

func samplePoints() []sweep.Result {
	return []sweep.Result{
		{Point: sweep.Point{Alpha: 0.9, Beta: 0.4}, Energy: 3.01, EnergyPerParticle: 1.505, Variance: 0.02, Acceptance: 0.99, Elapsed: 1500 * time.Millisecond},
		{Point: sweep.Point{Alpha: 1.0, Beta: 0.4}, Energy: 3.0, EnergyPerParticle: 1.5, Variance: 0.01, Acceptance: 0.98, Elapsed: 2 * time.Second},
		{Point: sweep.Point{Alpha: 1.1, Beta: 0.4}, Energy: 3.02, EnergyPerParticle: 1.51, Variance: 0.03, Acceptance: 0.97, Elapsed: time.Second},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("dot2")
	runID, err := st.Save("sweep", cfg, samplePoints())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "sweep_n2_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != "sweep" || meta.Particles != 2 || meta.Rows != 3 || !meta.Jastrow {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["best_alpha"] != 1.0 || meta.Metrics["best_energy"] != 3.0 {
		t.Errorf("unexpected best point %v", meta.Metrics)
	}
	if meta.Config == nil || meta.Config.WaveFunction != cfg.WaveFunction {
		t.Errorf("config not stored: %+v", meta.Config)
	}

	points, err := st.LoadPoints(runID)
	if err != nil {
		t.Fatalf("load points failed: %v", err)
	}
	want := samplePoints()
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i := range want {
		got := points[i]
		if got.Point != want[i].Point || got.Energy != want[i].Energy || got.Variance != want[i].Variance ||
			got.Acceptance != want[i].Acceptance || got.Elapsed != want[i].Elapsed {
			t.Errorf("point %d = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestStoreCSVHeader(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runID, err := st.Save("sweep", config.DefaultConfig(), samplePoints())
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, runID, "points.csv"))
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if first != "alpha,beta,energy,energy_per_particle,variance,acceptance,time" {
		t.Errorf("unexpected header %q", first)
	}

	header, rows, err := st.Table(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(header) != 7 || len(rows) != 3 || rows[0][0] != "0.9" {
		t.Errorf("unexpected table %v %v", header, rows)
	}
}

func TestStoreTrajectory(t *testing.T) {
	st := New(t.TempDir())
	res := &optim.SGDResult{
		Alpha: 0.99, Beta: 0.41, Energy: 3.0001, Converged: true,
		Trajectory: []optim.Iteration{
			{Iteration: 0, Alpha: 0.8, Beta: 0.3, Energy: 3.1, EnergyPerParticle: 1.55},
			{Iteration: 1, Alpha: 0.99, Beta: 0.41, Energy: 3.0001, EnergyPerParticle: 1.50005},
		},
	}
	runID, err := st.SaveTrajectory(config.GetPreset("dot2"), res)
	if err != nil {
		t.Fatal(err)
	}

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(traj) != 2 || traj[1] != res.Trajectory[1] {
		t.Errorf("unexpected trajectory %+v", traj)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Kind != "sgd" || meta.Metrics["converged"] != 1 || meta.Metrics["final_alpha"] != 0.99 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	if _, err := st.LoadPoints(runID); !errors.Is(err, ErrNoTable) {
		t.Errorf("expected ErrNoTable for points of an sgd run, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: %v, %v", runs, err)
	}

	first, _ := st.Save("sweep", config.DefaultConfig(), samplePoints())
	second, _ := st.Save("grid", config.DefaultConfig(), samplePoints()[:1])
	if err := os.Mkdir(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs out of order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreList_Missing(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "missing")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("missing dir should list nothing, got %v, %v", runs, err)
	}
}

func TestStoreLoad_Missing(t *testing.T) {
	if _, err := New(t.TempDir()).Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
}
