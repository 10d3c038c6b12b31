package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/viz"
)

const (
	canvasWidth  = 40
	canvasHeight = 16
	historyLen   = 60
	clearScreen  = "\033[2J\033[H"
	hideCursor   = "\033[?25l"
	showCursor   = "\033[?25h"
)

// WalkerRenderer is a montecarlo observer that redraws the particle
// configuration at most frameRate times per second. A non-positive
// frameRate draws every step.
type WalkerRenderer struct {
	w         io.Writer
	title     string
	frameRate int
	lastFrame time.Time
	canvas    *viz.Canvas
	energies  []float64
	sum       float64
	n         int
}

func NewWalkerRenderer(w io.Writer, title string, extent float64, frameRate int) *WalkerRenderer {
	return &WalkerRenderer{
		w:         w,
		title:     title,
		frameRate: frameRate,
		canvas:    viz.NewCanvas(canvasWidth, canvasHeight, extent),
		energies:  make([]float64, 0, historyLen),
	}
}

func (r *WalkerRenderer) OnStep(step int, sys *system.System, sample montecarlo.SampledValues, accepted bool) {
	r.sum += sample.Energy
	r.n++

	if r.frameRate > 0 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = time.Now()
	}

	r.energies = append(r.energies, r.sum/float64(r.n))
	if len(r.energies) > historyLen {
		r.energies = r.energies[1:]
	}

	r.canvas.Clear()
	r.canvas.Axes()
	viz.Walkers(r.canvas, sys.Particles())
	r.render(step, sample, accepted)
}

func (r *WalkerRenderer) render(step int, sample montecarlo.SampledValues, accepted bool) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  step=%d\n", r.title, step))
	b.WriteString("  " + strings.Repeat("-", canvasWidth) + "\n")
	for _, line := range strings.Split(strings.TrimSuffix(r.canvas.String(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  " + strings.Repeat("-", canvasWidth) + "\n")

	mark := "rejected"
	if accepted {
		mark = "accepted"
	}
	b.WriteString(fmt.Sprintf("  E_L=%.5f  <E>=%.5f  %s\n", sample.Energy, r.sum/float64(r.n), mark))
	b.WriteString("  " + viz.Sparkline(r.energies, canvasWidth) + "\n")

	fmt.Fprint(r.w, b.String())
}

func (r *WalkerRenderer) Start() { fmt.Fprint(r.w, hideCursor) }
func (r *WalkerRenderer) Stop()  { fmt.Fprint(r.w, showCursor) }
