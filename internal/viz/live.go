package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fluidsim/internal/metrics"
	"github.com/san-kum/fluidsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	particleStep    = 50
	pointerStep     = 8.0
)

type TickMsg time.Time

// param is one live-tunable knob.
type param struct {
	name  string
	get   func(m *Model) float64
	apply func(m *Model, v float64) error
	up    func(v float64) float64
	down  func(v float64) float64
	scale float64 // value shown as a full bar
}

var liveParams = []param{
	{
		name:  "viscosity",
		get:   func(m *Model) float64 { return m.drv.Config().Fluid.Viscosity },
		apply: func(m *Model, v float64) error { return m.drv.SetViscosity(v) },
		up:    func(v float64) float64 { return math.Max(v*1.1, 1) },
		down:  func(v float64) float64 { return v / 1.1 },
		scale: 500,
	},
	{
		name:  "tension",
		get:   func(m *Model) float64 { return m.drv.Config().Fluid.Tension },
		apply: func(m *Model, v float64) error { return m.drv.SetTension(v) },
		up:    func(v float64) float64 { return math.Max(v*1.1, 0.5) },
		down:  func(v float64) float64 { return v / 1.1 },
		scale: 50,
	},
	{
		name: "particles",
		get:  func(m *Model) float64 { return float64(m.drv.NumFluid()) },
		apply: func(m *Model, v float64) error {
			if err := m.drv.SetParticleCount(int(v)); err != nil {
				return err
			}
			m.clearHistory()
			return nil
		},
		up:    func(v float64) float64 { return v + particleStep },
		down:  func(v float64) float64 { return math.Max(v-particleStep, 0) },
		scale: 4000,
	},
}

// Model is the live terminal view. It owns its driver; every call into
// the driver happens on the bubbletea update goroutine.
type Model struct {
	drv           *sim.Driver
	name          string
	canvas        *Canvas
	width, height int
	running       bool
	pointer       sim.Pointer
	selected      int
	avgHeight     *metrics.AverageHeight
	speed         *metrics.MaxSpeed
	heightHistory []float64
	speedHistory  []float64
	status        string
	showHelp      bool
}

// NewModel wraps a driver in the live view. name is shown as the title.
func NewModel(drv *sim.Driver, name string) Model {
	m := Model{
		drv:           drv,
		name:          name,
		canvas:        NewCanvas(width, height),
		width:         width,
		height:        height,
		running:       true,
		avgHeight:     metrics.NewAverageHeight(),
		speed:         metrics.NewMaxSpeed(),
		heightHistory: make([]float64, 0, historyCapacity),
		speedHistory:  make([]float64, 0, historyCapacity),
	}
	w, h := m.world()
	m.pointer.X, m.pointer.Y = w/2, h/2
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(liveParams)
		case "up", "k":
			m.adjustParam(true)
		case "down", "j":
			m.adjustParam(false)
		case "enter", "p":
			m.pointer.Active = !m.pointer.Active
		case "w":
			m.movePointer(0, -pointerStep)
		case "s":
			m.movePointer(0, pointerStep)
		case "a":
			m.movePointer(-pointerStep, 0)
		case "d":
			m.movePointer(pointerStep, 0)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) world() (float64, float64) {
	cfg := m.drv.Config()
	return cfg.Width, cfg.Height
}

// moveTo places the pointer at world (x, y). The displacement since the
// last placement becomes the pointer velocity for the next frame.
func (m *Model) moveTo(x, y float64) {
	w, h := m.world()
	x, y = math.Max(0, math.Min(x, w)), math.Max(0, math.Min(y, h))
	m.pointer.VX += x - m.pointer.X
	m.pointer.VY += y - m.pointer.Y
	m.pointer.X, m.pointer.Y = x, y
}

func (m *Model) movePointer(dx, dy float64) {
	m.moveTo(m.pointer.X+dx, m.pointer.Y+dy)
}

// handleMouse maps a terminal cell to world coordinates, accounting for
// the canvas padding.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X-2, msg.Y-1
	if col < 0 || row < 0 || col >= m.width || row >= m.height {
		if msg.Action == tea.MouseActionRelease {
			m.pointer.Active = false
		}
		return
	}
	w, h := m.world()
	x := (float64(col) + 0.5) / float64(m.width) * w
	y := (float64(row) + 0.5) / float64(m.height) * h

	switch msg.Action {
	case tea.MouseActionPress:
		m.pointer.X, m.pointer.Y = x, y
		m.pointer.VX, m.pointer.VY = 0, 0
		m.pointer.Active = true
	case tea.MouseActionMotion:
		m.moveTo(x, y)
	case tea.MouseActionRelease:
		m.pointer.Active = false
	}
}

func (m *Model) adjustParam(up bool) {
	p := liveParams[m.selected]
	v := p.get(m)
	if up {
		v = p.up(v)
	} else {
		v = p.down(v)
	}
	if err := p.apply(m, v); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

// step advances one frame and records diagnostics.
func (m *Model) step() {
	ptr := m.pointer
	m.drv.Step(&ptr)
	m.pointer.VX, m.pointer.VY = 0, 0

	f := m.drv.Snapshot()
	m.avgHeight.Observe(f)
	m.speed.Observe(f)
	m.heightHistory = appendCapped(m.heightHistory, m.avgHeight.Value())
	m.speedHistory = appendCapped(m.speedHistory, m.speed.Value())
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) clearHistory() {
	m.heightHistory = m.heightHistory[:0]
	m.speedHistory = m.speedHistory[:0]
	m.avgHeight.Reset()
	m.speed.Reset()
}

// reset rebuilds the fluid from the current configuration.
func (m *Model) reset() {
	m.drv.Reset()
	m.clearHistory()
	m.pointer.Active = false
	m.pointer.VX, m.pointer.VY = 0, 0
	m.status = ""
}

// draw renders the box, the fluid and the pointer into the canvas. Fluid
// cells are leveled by speed relative to the clamp.
func (m *Model) draw() {
	c := m.canvas
	c.Clear()
	w, h := m.world()
	cfg := m.drv.Config()

	x1, y1 := c.Project(w, h-cfg.Floor, w, h)
	dw, dh := c.Dots()
	c.DrawRect(0, 0, min(x1, dw-1), min(y1, dh-1))

	snap := m.drv.Snapshot()
	limit := snap.Params.MaxSpeed
	for i := 0; i < snap.NumFluid; i++ {
		x, y := c.Project(snap.X[i], snap.Y[i], w, h)
		v := math.Hypot(snap.VX[i], snap.VY[i])
		level := uint8(1)
		switch {
		case v > 0.6*limit:
			level = 3
		case v > 0.2*limit:
			level = 2
		}
		c.Mark(x, y, level)
	}

	if m.pointer.Active {
		px, py := c.Project(m.pointer.X, m.pointer.Y, w, h)
		r, _ := c.Project(snap.Params.PointerRadius, 0, w, h)
		m.markCircle(px, py, max(r, 1))
	}
}

func (m *Model) markCircle(cx, cy, r int) {
	const segments = 24
	for k := 0; k < segments; k++ {
		a := 2 * math.Pi * float64(k) / segments
		m.canvas.Mark(cx+int(float64(r)*math.Cos(a)), cy+int(float64(r)*math.Sin(a)), 4)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(CurrentTheme.cellStyles()))

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING"))
	} else {
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	if m.pointer.Active {
		s.WriteString("  " + lipgloss.NewStyle().Foreground(CurrentTheme.Pointer).Render("POINTER"))
	}
	s.WriteString("\n")

	if len(m.heightHistory) > 1 {
		chart := asciigraph.Plot(m.heightHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Avg height"))
		s.WriteString(GraphStyle.Render(chart) + "\n")
	}

	snap := m.drv.Snapshot()
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", snap.Index))
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Fluid", fmt.Sprintf("%d / %d", snap.NumFluid, m.drv.Total()))
	row("Max speed", fmt.Sprintf("%.1f", m.speed.Value()))
	row("Truncated", fmt.Sprintf("%d", snap.Truncated))
	row("Pointer", fmt.Sprintf("(%.0f, %.0f)", m.pointer.X, m.pointer.Y))
	s.WriteString(SparklineChart(m.speedHistory, snap.Params.MaxSpeed, 30) + "\n")

	s.WriteString("\nPARAMETERS\n")
	for i, p := range liveParams {
		v := p.get(&m)
		line := fmt.Sprintf("%-10s %s %.1f", p.name, Bar(v/p.scale, 10), v)
		if i == m.selected {
			s.WriteString(ActiveParam.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + MetricLabel.UnsetWidth().Render(line) + "\n")
		}
	}
	if m.status != "" {
		s.WriteString(StatusError.Render(m.status) + "\n")
	}
	s.WriteString(KeyHint.Render("SP:Pause R:Reset Q:Quit ?:Help\nTab:Param ↑↓:Tune P:Pointer WASD:Move"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, StatsPanel.Render(s.String()))
	if m.showHelp {
		themes := Subtle.Render(fmt.Sprintf("themes: %s (current %s)", strings.Join(ThemeNames(), ", "), CurrentTheme.Name))
		return helpText + "\n" + themes + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Single frame (paused)    ║
║  R        - Reset fluid              ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  P/Enter  - Toggle pointer           ║
║  W/A/S/D  - Move pointer             ║
║  Mouse    - Drag to stir             ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the live view full screen with mouse tracking.
func Run(drv *sim.Driver, name string) error {
	_, err := tea.NewProgram(NewModel(drv, name), tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
