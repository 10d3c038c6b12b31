// Package viz renders results for the terminal: lipgloss panels and tables,
// asciigraph curves and a Braille canvas for particle snapshots.
//
//   - [SweepTable], [RunPanel]: styled summaries of sweeps and single runs
//   - [EnergyCurve], [TrajectoryCurve], [DensityCurve]: asciigraph plots
//   - [Canvas]: Braille pixel canvas, 2×4 dots per cell
//   - [Walkers]: the particles of a 2-D configuration drawn on a Canvas
package viz
