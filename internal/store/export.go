// Package store exports single runs as JSON documents.
package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/vmc/internal/analysis"
	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/experiment"
)

type ExportData struct {
	Sampler           string             `json:"sampler"`
	Particles         int                `json:"particles"`
	Dim               int                `json:"dim"`
	Steps             int                `json:"steps"`
	Seed              int64              `json:"seed"`
	Alpha             float64            `json:"alpha"`
	Beta              float64            `json:"beta"`
	Omega             float64            `json:"omega"`
	Jastrow           bool               `json:"jastrow"`
	Interacting       bool               `json:"interacting"`
	Energy            float64            `json:"energy"`
	EnergyPerParticle float64            `json:"energy_per_particle"`
	Variance          float64            `json:"variance"`
	Acceptance        float64            `json:"acceptance"`
	ElapsedSeconds    float64            `json:"elapsed_seconds"`
	StdErr            *float64           `json:"std_err,omitempty"`
	Autocorrelation   float64            `json:"autocorrelation_time,omitempty"`
	Observables       map[string]float64 `json:"observables"`
	Metrics           map[string]float64 `json:"metrics"`
	Density           *analysis.Density  `json:"density,omitempty"`
}

func NewExportData(cfg *config.Config, res *experiment.Result) ExportData {
	data := ExportData{
		Sampler:           cfg.Sampler,
		Particles:         cfg.Particles,
		Dim:               cfg.Dim,
		Steps:             cfg.Steps,
		Seed:              cfg.Seed,
		Alpha:             cfg.WaveFunction.Alpha,
		Beta:              cfg.WaveFunction.Beta,
		Omega:             cfg.WaveFunction.Omega,
		Jastrow:           cfg.WaveFunction.Jastrow,
		Interacting:       cfg.Interacting,
		Energy:            res.Energy,
		EnergyPerParticle: res.EnergyPerParticle,
		Variance:          res.Variance,
		Acceptance:        res.Acceptance,
		ElapsedSeconds:    res.Elapsed.Seconds(),
		Autocorrelation:   res.Autocorrelation,
		Observables:       res.Values.Map(),
		Metrics:           res.Metrics,
		Density:           res.Density,
	}
	if res.Blocking != nil {
		se := res.Blocking.StdErr
		data.StdErr = &se
	}
	return data
}

func Encode(w io.Writer, cfg *config.Config, res *experiment.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(cfg, res))
}

func ExportJSON(path string, cfg *config.Config, res *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Encode(file, cfg, res)
}

func ExportJSONStdout(cfg *config.Config, res *experiment.Result) error {
	return Encode(os.Stdout, cfg, res)
}
