package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/vmc/internal/analysis"
	"github.com/san-kum/vmc/internal/optim"
	"github.com/san-kum/vmc/internal/sweep"
)

// EnergyCurve plots energy against the sweep index. Fewer than two points
// give an empty string.
func EnergyCurve(points []sweep.Result, width, height int) string {
	if len(points) < 2 {
		return ""
	}
	energies := make([]float64, len(points))
	for i, p := range points {
		energies[i] = p.Energy
	}
	caption := fmt.Sprintf("E(α), α = %.3f … %.3f", points[0].Alpha, points[len(points)-1].Alpha)
	return asciigraph.Plot(energies,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// TrajectoryCurve plots the energy per particle of every SGD iteration.
func TrajectoryCurve(iters []optim.Iteration, width, height int) string {
	if len(iters) < 2 {
		return ""
	}
	e := make([]float64, len(iters))
	for i, it := range iters {
		e[i] = it.EnergyPerParticle
	}
	return asciigraph.Plot(e,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("E/N per iteration"),
	)
}

// ParameterCurves plots alpha and beta of an SGD trajectory together.
func ParameterCurves(iters []optim.Iteration, width, height int) string {
	if len(iters) < 2 {
		return ""
	}
	alpha := make([]float64, len(iters))
	beta := make([]float64, len(iters))
	for i, it := range iters {
		alpha[i] = it.Alpha
		beta[i] = it.Beta
	}
	return asciigraph.PlotMany([][]float64{alpha, beta},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.Caption("α (red), β (blue)"),
	)
}

func DensityCurve(d analysis.Density, width, height int) string {
	if len(d.Values) < 2 {
		return ""
	}
	caption := fmt.Sprintf("ρ(r), r < %.2f", d.Radii[len(d.Radii)-1]+0.5*(d.Radii[1]-d.Radii[0]))
	return asciigraph.Plot(d.Values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// TraceCurve plots a local energy trace, thinned to at most width points.
func TraceCurve(values []float64, width, height int) string {
	if len(values) < 2 {
		return ""
	}
	if width > 0 && len(values) > width {
		thin := make([]float64, 0, width)
		stride := len(values) / width
		for i := 0; i < len(values) && len(thin) < width; i += stride {
			thin = append(thin, values[i])
		}
		values = thin
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("local energy"),
	)
}
