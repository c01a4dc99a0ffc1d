package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/sim"
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

var presetInfo = map[string]string{
	"default":   "resting block",
	"dam_break": "collapsing column",
	"calm":      "small thick pool",
	"viscous":   "honey-like",
	"splash":    "big jittered column",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable entry of the configuration page.
type field struct {
	name string
	get  func(c *config.Config) float64
	set  func(c *config.Config, v float64)
	step float64
}

var configFields = []field{
	{"particles", func(c *config.Config) float64 { return float64(c.Particles) }, func(c *config.Config, v float64) { c.Particles = int(v) }, 50},
	{"viscosity", func(c *config.Config) float64 { return c.Fluid.Viscosity }, func(c *config.Config, v float64) { c.Fluid.Viscosity = v }, 10},
	{"tension", func(c *config.Config) float64 { return c.Fluid.Tension }, func(c *config.Config, v float64) { c.Fluid.Tension = v }, 1},
	{"gravity", func(c *config.Config) float64 { return c.Fluid.Gravity }, func(c *config.Config, v float64) { c.Fluid.Gravity = v }, 100},
	{"substeps", func(c *config.Config) float64 { return float64(c.Substeps) }, func(c *config.Config, v float64) { c.Substeps = int(v) }, 1},
}

// menu picks a preset, optionally edits it, then hands over to the live
// view.
type menu struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           string
	live          Model
}

func NewInteractiveApp() *menu {
	return &menu{
		state:   stateMenu,
		presets: config.ListPresets(),
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.live.Update(msg)
		m.live = newLive.(Model)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		}
	}
	return m, nil
}

func (m menu) menuKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.fieldCursor, m.err = stateConfig, 0, ""
	}
	return m, nil
}

func (m menu) configKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	f := configFields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if val, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				f.set(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				m.editBuf += s
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(configFields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(f.get(m.cfg), 'f', -1, 64)
	case "left", "h":
		f.set(m.cfg, f.get(m.cfg)-f.step)
	case "right", "l":
		f.set(m.cfg, f.get(m.cfg)+f.step)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (menu, tea.Cmd) {
	drv, err := sim.New(m.cfg)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.live = NewModel(drv, m.selected)
	m.state = stateSim
	return m, m.live.Init()
}

func (m menu) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func header(title, sub string) string {
	return "\n\n    " + GradientText(title, "#00cccc", "#ff88ff") + "\n    " +
		Subtle.Render(sub) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n"
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + dimStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m menu) viewMenu() string {
	var b strings.Builder
	b.WriteString(header("FLUIDSIM", "particle fluid in a box"))
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), itemStyle.Render(fmt.Sprintf("%-12s", name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", dimStyle.Render(fmt.Sprintf("  %-12s", name)), dimStyle.Render(desc)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m menu) viewConfig() string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(m.selected), presetInfo[m.selected]))
	for i, f := range configFields {
		valStr := fmt.Sprintf("%8.1f", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), itemStyle.Render(fmt.Sprintf("%-10s", f.name)), descStyle.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", dimStyle.Render(fmt.Sprintf("  %-10s", f.name)), dimStyle.Render(valStr)))
		}
	}
	if m.err != "" {
		b.WriteString("\n    " + StatusError.Render(m.err) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back"))
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
