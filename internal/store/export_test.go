package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/vmc/internal/analysis"
	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/experiment"
	"github.com/san-kum/vmc/internal/montecarlo"
)

func sampleResult() *experiment.Result {
	return &experiment.Result{
		Values:            montecarlo.SampledValues{Energy: 3.0, EnergySquared: 9.01, Accepted: 90, Steps: 100},
		Energy:            3.0,
		EnergyPerParticle: 1.5,
		Variance:          0.01,
		Acceptance:        0.9,
		Elapsed:           250 * time.Millisecond,
		Blocking:          &analysis.BlockingResult{StdErr: 0.002},
		Density:           &analysis.Density{Radii: []float64{0.5}, Values: []float64{1}},
		Metrics:           map[string]float64{"energy": 3.0},
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, config.GetPreset("dot2"), sampleResult()); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Particles != 2 || got.Energy != 3.0 || !got.Jastrow {
		t.Errorf("unexpected export %+v", got)
	}
	if got.StdErr == nil || *got.StdErr != 0.002 {
		t.Errorf("std err not exported: %v", got.StdErr)
	}
	if got.ElapsedSeconds != 0.25 {
		t.Errorf("elapsed = %v", got.ElapsedSeconds)
	}
	if got.Observables["accepted"] != 90 {
		t.Errorf("observables = %v", got.Observables)
	}
	if got.Density == nil || len(got.Density.Radii) != 1 {
		t.Errorf("density = %+v", got.Density)
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	res := sampleResult()
	res.Blocking = nil
	res.Density = nil
	if err := ExportJSON(path, config.DefaultConfig(), res); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["std_err"]; ok {
		t.Error("std_err should be omitted without blocking")
	}
	if _, ok := raw["density"]; ok {
		t.Error("density should be omitted when not collected")
	}
}
