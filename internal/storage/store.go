// Package storage keeps finished sweeps and optimisation runs on disk, one
// directory per run holding metadata.json and a CSV table.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/optim"
	"github.com/san-kum/vmc/internal/sweep"
)

const (
	metadataFile   = "metadata.json"
	pointsFile     = "points.csv"
	trajectoryFile = "trajectory.csv"
)

var (
	PointsHeader     = []string{"alpha", "beta", "energy", "energy_per_particle", "variance", "acceptance", "time"}
	TrajectoryHeader = []string{"iteration", "alpha", "beta", "energy", "energy_per_particle"}
)

var ErrNoTable = errors.New("storage: run has no such table")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Timestamp   time.Time          `json:"timestamp"`
	Sampler     string             `json:"sampler"`
	Particles   int                `json:"particles"`
	Dim         int                `json:"dim"`
	Steps       int                `json:"steps"`
	Seed        int64              `json:"seed"`
	Interacting bool               `json:"interacting"`
	Jastrow     bool               `json:"jastrow"`
	Omega       float64            `json:"omega"`
	Rows        int                `json:"rows"`
	Metrics     map[string]float64 `json:"metrics"`
	Config      *config.Config     `json:"config"`
}

func (s *Store) newRun(kind string, cfg *config.Config, rows int) (RunMetadata, string, error) {
	now := time.Now()
	id := fmt.Sprintf("%s_n%d_%d", kind, cfg.Particles, now.UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return RunMetadata{}, "", err
	}
	return RunMetadata{
		ID:          id,
		Kind:        kind,
		Timestamp:   now,
		Sampler:     cfg.Sampler,
		Particles:   cfg.Particles,
		Dim:         cfg.Dim,
		Steps:       cfg.Steps,
		Seed:        cfg.Seed,
		Interacting: cfg.Interacting,
		Jastrow:     cfg.WaveFunction.Jastrow,
		Omega:       cfg.WaveFunction.Omega,
		Rows:        rows,
		Metrics:     make(map[string]float64),
		Config:      cfg,
	}, dir, nil
}

// Save writes a finished sweep. The lowest-energy point is recorded in the
// metadata metrics.
func (s *Store) Save(kind string, cfg *config.Config, points []sweep.Result) (string, error) {
	meta, dir, err := s.newRun(kind, cfg, len(points))
	if err != nil {
		return "", err
	}

	best := -1
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			formatFloat(p.Alpha),
			formatFloat(p.Beta),
			formatFloat(p.Energy),
			formatFloat(p.EnergyPerParticle),
			formatFloat(p.Variance),
			formatFloat(p.Acceptance),
			formatFloat(p.Elapsed.Seconds()),
		}
		if best < 0 || p.Energy < points[best].Energy {
			best = i
		}
	}
	if best >= 0 {
		meta.Metrics["best_alpha"] = points[best].Alpha
		meta.Metrics["best_beta"] = points[best].Beta
		meta.Metrics["best_energy"] = points[best].Energy
	}

	if err := writeCSV(filepath.Join(dir, pointsFile), PointsHeader, rows); err != nil {
		return "", err
	}
	if err := writeMetadata(dir, meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveTrajectory writes a gradient descent run.
func (s *Store) SaveTrajectory(cfg *config.Config, res *optim.SGDResult) (string, error) {
	meta, dir, err := s.newRun("sgd", cfg, len(res.Trajectory))
	if err != nil {
		return "", err
	}

	rows := make([][]string, len(res.Trajectory))
	for i, it := range res.Trajectory {
		rows[i] = []string{
			strconv.Itoa(it.Iteration),
			formatFloat(it.Alpha),
			formatFloat(it.Beta),
			formatFloat(it.Energy),
			formatFloat(it.EnergyPerParticle),
		}
	}
	meta.Metrics["final_alpha"] = res.Alpha
	meta.Metrics["final_beta"] = res.Beta
	meta.Metrics["final_energy"] = res.Energy
	if res.Converged {
		meta.Metrics["converged"] = 1
	} else {
		meta.Metrics["converged"] = 0
	}

	if err := writeCSV(filepath.Join(dir, trajectoryFile), TrajectoryHeader, rows); err != nil {
		return "", err
	}
	if err := writeMetadata(dir, meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadPoints(runID string) ([]sweep.Result, error) {
	records, err := s.readCSV(runID, pointsFile)
	if err != nil {
		return nil, err
	}

	points := make([]sweep.Result, 0, len(records))
	for i, rec := range records {
		vals, err := parseRow(rec, len(PointsHeader))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", pointsFile, i+1, err)
		}
		points = append(points, sweep.Result{
			Point:             sweep.Point{Alpha: vals[0], Beta: vals[1]},
			Index:             i,
			Energy:            vals[2],
			EnergyPerParticle: vals[3],
			Variance:          vals[4],
			Acceptance:        vals[5],
			Elapsed:           time.Duration(vals[6] * float64(time.Second)),
		})
	}
	return points, nil
}

func (s *Store) LoadTrajectory(runID string) ([]optim.Iteration, error) {
	records, err := s.readCSV(runID, trajectoryFile)
	if err != nil {
		return nil, err
	}

	out := make([]optim.Iteration, 0, len(records))
	for i, rec := range records {
		vals, err := parseRow(rec, len(TrajectoryHeader))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", trajectoryFile, i+1, err)
		}
		out = append(out, optim.Iteration{
			Iteration:         int(vals[0]),
			Alpha:             vals[1],
			Beta:              vals[2],
			Energy:            vals[3],
			EnergyPerParticle: vals[4],
		})
	}
	return out, nil
}

// Table returns the raw header and rows of whichever table the run holds.
func (s *Store) Table(runID string) ([]string, [][]string, error) {
	for _, name := range []string{pointsFile, trajectoryFile} {
		f, err := os.Open(filepath.Join(s.baseDir, runID, name))
		if err != nil {
			continue
		}
		records, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			return nil, nil, err
		}
		if len(records) == 0 {
			return nil, nil, nil
		}
		return records[0], records[1:], nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrNoTable, runID)
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNoTable, runID, name)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func writeMetadata(dir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func parseRow(rec []string, n int) ([]float64, error) {
	if len(rec) != n {
		return nil, fmt.Errorf("expected %d fields, got %d", n, len(rec))
	}
	vals := make([]float64, n)
	for i, field := range rec {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
