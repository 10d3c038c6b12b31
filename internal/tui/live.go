// Package tui holds the interactive terminal views: a bubbletea model that
// follows a parallel sweep and a frame renderer that follows one chain.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/san-kum/vmc/internal/config"
	"github.com/san-kum/vmc/internal/sweep"
	"github.com/san-kum/vmc/internal/viz"
)

const (
	frameInterval = time.Second / 10
	tableRows     = 8
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type (
	TickMsg  time.Time
	PointMsg sweep.Result
	DoneMsg  struct {
		Results []sweep.Result
		Err     error
	}
)

// SweepModel shows the progress of a sweep as its chains finish.
type SweepModel struct {
	title    string
	total    int
	points   []sweep.Result
	started  time.Time
	frame    int
	finished bool
	err      error
	cancel   context.CancelFunc
}

func NewSweepModel(title string, total int, cancel context.CancelFunc) SweepModel {
	return SweepModel{
		title:   title,
		total:   total,
		points:  make([]sweep.Result, 0, total),
		started: time.Now(),
		cancel:  cancel,
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m SweepModel) Init() tea.Cmd { return tick() }

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case PointMsg:
		m.points = append(m.points, sweep.Result(msg))
		sort.Slice(m.points, func(i, j int) bool { return m.points[i].Index < m.points[j].Index })
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		if msg.Err == nil {
			m.points = msg.Results
		}
	case TickMsg:
		m.frame++
		if !m.finished {
			return m, tick()
		}
	}
	return m, nil
}

func (m SweepModel) Points() []sweep.Result { return m.points }

func (m SweepModel) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")

	frac := 0.0
	if m.total > 0 {
		frac = float64(len(m.points)) / float64(m.total)
	}
	status := spinner[m.frame%len(spinner)]
	if m.finished {
		status = "✓"
	}
	s.WriteString(fmt.Sprintf("%s %s %d/%d  %s\n", status, viz.ProgressBar(frac, 30), len(m.points), m.total,
		time.Since(m.started).Round(time.Second)))

	if m.err != nil {
		s.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n")
	}

	if chart := viz.EnergyCurve(m.points, 50, 8); chart != "" {
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if len(m.points) > 0 {
		shown := m.points
		if len(shown) > tableRows {
			shown = shown[len(shown)-tableRows:]
		}
		s.WriteString(viz.SweepTable(shown) + "\n")

		best := m.points[0]
		for _, p := range m.points[1:] {
			if p.Energy < best.Energy {
				best = p
			}
		}
		s.WriteString(viz.Metric("best", "α=%.4f β=%.4f E=%.6f", best.Alpha, best.Beta, best.Energy) + "\n")
	}

	help := "q: stop"
	if m.finished {
		help = "q: quit"
	}
	s.WriteString(helpStyle.Render(help))
	return s.String()
}

// RunLive runs a sweep behind a SweepModel. Quitting early stops the sweep
// from starting new chains.
func RunLive(ctx context.Context, cfg *config.Config, points []sweep.Point, workers int, logger *log.Logger) ([]sweep.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	title := fmt.Sprintf("%s sweep · %d particles · %dD", cfg.Sampler, cfg.Particles, cfg.Dim)
	p := tea.NewProgram(NewSweepModel(title, len(points), cancel))

	r := &sweep.Runner{
		Workers:    workers,
		SkipFailed: cfg.Sweep.SkipFailed,
		Logger:     logger,
		OnPoint:    func(res sweep.Result) { p.Send(PointMsg(res)) },
	}

	var (
		results []sweep.Result
		runErr  error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		results, runErr = r.Run(ctx, cfg, points)
		p.Send(DoneMsg{Results: results, Err: runErr})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	cancel()
	<-done
	return results, runErr
}
