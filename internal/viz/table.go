package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/experiment"
	"github.com/san-kum/vmc/internal/sweep"
)

var cell = lipgloss.NewStyle().Padding(0, 1)

// SweepTable lists sweep points with the lowest energy highlighted.
func SweepTable(points []sweep.Result) string {
	best := -1
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			fmt.Sprintf("%.4f", p.Alpha),
			fmt.Sprintf("%.4f", p.Beta),
			fmt.Sprintf("%.6f", p.Energy),
			fmt.Sprintf("%.6f", p.EnergyPerParticle),
			fmt.Sprintf("%.3e", p.Variance),
			fmt.Sprintf("%.3f", p.Acceptance),
			p.Elapsed.Round(1e6).String(),
		}
		if best < 0 || p.Energy < points[best].Energy {
			best = i
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Subtle).
		Headers("α", "β", "E", "E/N", "σ²", "accept", "time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cell.Bold(true).Foreground(lipgloss.Color("#ffffff"))
			case row == best:
				return cell.Inherit(Best)
			default:
				return cell
			}
		})
	return t.String()
}

// RunPanel summarises a single chain.
func RunPanel(cfg *config.Config, res *experiment.Result) string {
	var b strings.Builder
	b.WriteString(Title.Render(fmt.Sprintf("%d particles · %dD · %s", cfg.Particles, cfg.Dim, cfg.Sampler)) + "\n\n")
	b.WriteString(Metric("alpha", "%.4f", cfg.WaveFunction.Alpha) + "\n")
	if cfg.WaveFunction.Jastrow {
		b.WriteString(Metric("beta", "%.4f", cfg.WaveFunction.Beta) + "\n")
	}
	b.WriteString(Metric("energy", "%.8f", res.Energy) + "\n")
	if res.Blocking != nil {
		b.WriteString(Metric("std error", "%.3e (naive %.3e)", res.Blocking.StdErr, res.Blocking.NaiveErr) + "\n")
	}
	if res.Autocorrelation > 0 {
		b.WriteString(Metric("tau", "%.2f", res.Autocorrelation) + "\n")
	}
	b.WriteString(Metric("E/N", "%.8f", res.EnergyPerParticle) + "\n")
	b.WriteString(Metric("variance", "%.3e", res.Variance) + "\n")
	b.WriteString(Metric("acceptance", "%.2f%%", 100*res.Acceptance) + "\n")
	b.WriteString(Metric("elapsed", "%s", res.Elapsed.Round(1e6)) + "\n")
	if !cfg.Interacting {
		b.WriteString(Metric("exact", "%.4f", cfg.ExactEnergy()) + "\n")
	}
	if r, ok := res.Metrics["mean_radius"]; ok {
		b.WriteString(Metric("<r>", "%.4f", r) + "\n")
	}
	if r, ok := res.Metrics["pair_distance"]; ok && cfg.Particles > 1 {
		b.WriteString(Metric("<r_ij>", "%.4f", r))
	}
	return Panel.Render(b.String())
}
