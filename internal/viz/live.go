// Package viz provides the live terminal view of a running simulation.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cruisesim/internal/cruise"
)

const (
	historyCapacity = 600
	framesPerSecond = 30
)

var (
	chartStyle  = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(36)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the cruise loop in real time and renders speed history.
type Model struct {
	plant cruise.System
	integ cruise.Integrator
	ctrl  cruise.Controller
	ref   cruise.Reference
	grade cruise.GradeProfile

	x       cruise.State
	u       float64
	t, dt   float64
	initial cruise.State

	running  bool
	unstable bool
	history  []float64
}

func NewModel(plant cruise.System, integ cruise.Integrator, ctrl cruise.Controller, ref cruise.Reference, grade cruise.GradeProfile, initState []float64, dt float64) Model {
	return Model{
		plant:   plant,
		integ:   integ,
		ctrl:    ctrl,
		ref:     ref,
		grade:   grade,
		x:       cruise.State(initState).Clone(),
		dt:      dt,
		initial: cruise.State(initState).Clone(),
		running: true,
		history: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.adjustGain("Kp", 1.1)
		case "-":
			m.adjustGain("Kp", 1/1.1)
		case "]":
			m.adjustGain("Ki", 1.1)
		case "[":
			m.adjustGain("Ki", 1/1.1)
		}
		return m, nil

	case TickMsg:
		if m.running && !m.unstable {
			m.advance()
		}
		return m, tick()
	}

	return m, nil
}

func (m *Model) advance() {
	steps := int(1.0 / framesPerSecond / m.dt)
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		ref := m.ref.Speed(m.t)
		e := ref - m.x[0]
		m.u = m.ctrl.Compute(e, m.dt)
		grade := m.grade.Angle(m.t)

		next := m.integ.Step(m.plant, m.x, m.u, grade, m.t, m.dt)
		if !next.IsValid() || math.IsNaN(m.u) {
			m.unstable = true
			m.running = false
			return
		}
		m.x = next
		m.t += m.dt
	}

	m.history = append(m.history, m.x[0])
	if len(m.history) > historyCapacity {
		m.history = m.history[len(m.history)-historyCapacity:]
	}
}

func (m *Model) reset() {
	m.x = m.initial.Clone()
	m.t = 0
	m.u = 0
	m.unstable = false
	m.running = true
	m.history = m.history[:0]
	m.ctrl.Reset()
}

func (m *Model) adjustGain(name string, factor float64) {
	cfg, ok := m.ctrl.(cruise.Configurable)
	if !ok {
		return
	}
	params := cfg.GetParams()
	if v, ok := params[name]; ok {
		_ = cfg.SetParam(name, v*factor)
	}
}

func (m Model) View() string {
	chart := "collecting samples..."
	if len(m.history) > 1 {
		chart = asciigraph.Plot(m.history,
			asciigraph.Height(14),
			asciigraph.Width(64),
			asciigraph.Caption("velocity [m/s]"),
		)
	}

	var stats strings.Builder
	stats.WriteString(headerStyle.Render("cruisesim live") + "\n")
	row := func(label, value string) {
		stats.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("t", fmt.Sprintf("%8.2f s", m.t))
	row("v", fmt.Sprintf("%8.3f m/s", m.x[0]))
	row("vref", fmt.Sprintf("%8.3f m/s", m.ref.Speed(m.t)))
	row("u", fmt.Sprintf("%8.2f", m.u))
	row("grade", fmt.Sprintf("%8.4f rad", m.grade.Angle(m.t)))

	if cfg, ok := m.ctrl.(cruise.Configurable); ok {
		params := cfg.GetParams()
		row("Kp", fmt.Sprintf("%8.2f", params["Kp"]))
		row("Ki", fmt.Sprintf("%8.2f", params["Ki"]))
	}

	if m.unstable {
		stats.WriteString("\n" + warnStyle.Render("UNSTABLE (press r to reset)"))
	} else if !m.running {
		stats.WriteString("\n" + warnStyle.Render("paused"))
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		chartStyle.Render(chart),
		statsStyle.Render(stats.String()),
	)
	help := helpStyle.Render("space pause · r reset · +/- Kp · [/] Ki · q quit")

	return main + "\n" + help + "\n"
}
