package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/collider/internal/collision"
	"github.com/vovakirdan/collider/internal/core"
	"github.com/vovakirdan/collider/internal/physics"
	"github.com/vovakirdan/collider/internal/scene"
)

// Monitor layout constants
const (
	minWidthForSidebar = 70 // Minimum width to show the pair list beside the plot
	sidebarWidth       = 28 // Width of the pair list
	chromeHeight       = 5  // Title, status line, help and margins
	minSpeed           = 0.125
	maxSpeed           = 8.0
)

// MonitorConfig holds display and clock settings for the monitor.
type MonitorConfig struct {
	Title        string
	TickInterval time.Duration // Wall time between frames
	Width        int
	Height       int
}

// DefaultMonitorConfig returns sensible defaults.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Title:        "collider",
		TickInterval: time.Second / 30,
		Width:        80,
		Height:       24,
	}
}

// MonitorModel is the Bubble Tea model that animates a scene and shows the
// pairs the physics instance currently reports.
type MonitorModel struct {
	scene   *scene.Scene
	phys    *physics.Physics
	config  MonitorConfig
	screen  *core.Screen
	table   table.Model
	help    help.Model
	keys    MonitorKeyMap
	paused  bool
	speed   float64
	frame   uint64
	simTime float64 // Simulated seconds

	// Detector state loaded once per refresh so every panel shows one cycle
	pairs *collision.PairSet
	stats physics.Stats

	width       int
	height      int
	showSidebar bool
	quitting    bool
}

// NewMonitorModel creates a monitor for a scene already bound to phys.
func NewMonitorModel(sc *scene.Scene, phys *physics.Physics, cfg MonitorConfig) MonitorModel {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultMonitorConfig().TickInterval
	}

	h := help.New()
	h.ShowAll = false

	m := MonitorModel{
		scene:  sc,
		phys:   phys,
		config: cfg,
		keys:   DefaultMonitorKeyMap(),
		help:   h,
		speed:  1,
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

func (m *MonitorModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.showSidebar = width >= minWidthForSidebar
	m.help.Width = width

	plotW, plotH := m.plotSize()
	if m.screen == nil {
		m.screen = core.NewScreen(plotW, plotH)
	} else {
		m.screen.Resize(plotW, plotH)
	}
	m.table = m.createTable()
	m.refresh()
}

func (m MonitorModel) plotSize() (int, int) {
	w := m.width
	if m.showSidebar {
		w -= sidebarWidth + 4
	}
	return max(w, 0), max(m.height-chromeHeight, 0)
}

// createTable creates the pair list.
func (m MonitorModel) createTable() table.Model {
	colWidth := (sidebarWidth - 6) / 2
	columns := []table.Column{
		{Title: "Body A", Width: colWidth},
		{Title: "Body B", Width: colWidth},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-chromeHeight-2, 1)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// refresh loads the current pair set and detector stats and rebuilds the
// pair list from them.
func (m *MonitorModel) refresh() {
	m.pairs = m.phys.Pairs()
	m.stats = m.phys.Stats()

	pairs := m.pairs.Pairs()
	rows := make([]table.Row, len(pairs))
	for i, p := range pairs {
		rows[i] = table.Row{p.A, p.B}
	}
	m.table.SetRows(rows)
}

// Init starts the frame clock.
func (m MonitorModel) Init() tea.Cmd {
	return tickCmd(m.config.TickInterval)
}

// Update handles messages and updates the model state.
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil

		case key.Matches(msg, m.keys.Step):
			if m.paused {
				m.advance()
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Faster):
			m.speed = min(m.speed*2, maxSpeed)
			return m, nil

		case key.Matches(msg, m.keys.Slower):
			m.speed = max(m.speed/2, minSpeed)
			return m, nil

		case key.Matches(msg, m.keys.Reverse):
			m.reverse()
			return m, nil

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if !m.paused {
			m.advance()
		}
		m.refresh()
		return m, tickCmd(m.config.TickInterval)
	}

	return m, nil
}

// advance steps the scene by one frame of simulated time.
func (m *MonitorModel) advance() {
	dt := m.config.TickInterval.Seconds() * m.speed
	m.scene.Step(dt)
	m.simTime += dt
	m.frame++
}

// reverse flips the velocity of every body.
func (m *MonitorModel) reverse() {
	for _, b := range m.scene.Snapshot().Bodies {
		m.scene.SetVelocity(b.Name, b.Velocity.Mul(-1))
	}
}

// View renders the monitor.
func (m MonitorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(titleStyle.Render(m.config.Title))
	b.WriteString("\n")

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n")

	m.screen.Clear()
	PlotScene(m.screen, core.Area{W: m.screen.Width(), H: m.screen.Height()}, m.scene.Snapshot(), m.pairs)
	plot := RenderScreen(m.screen)

	if m.showSidebar {
		sidebarStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(sidebarWidth).
			Padding(0, 1)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, plot, "  ", sidebarStyle.Render(m.renderPairs())))
	} else {
		b.WriteString(plot)
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// statusLine summarises the clock and the detector.
func (m MonitorModel) statusLine() string {
	mode := "sync"
	if m.stats.Threaded {
		mode = fmt.Sprintf("cycle %d", m.pairs.Cycle)
		if m.stats.Worker.Failed {
			mode = "detector FAILED"
		}
	}

	state := fmt.Sprintf("x%g", m.speed)
	if m.paused {
		state = "paused"
	}

	return fmt.Sprintf("t=%.2fs  frame %d  %s  bodies %d  pairs %d  %s",
		m.simTime, m.frame, state, m.scene.Len(), m.pairs.Len(), mode)
}

// renderPairs renders the pair table or an empty message.
func (m MonitorModel) renderPairs() string {
	if len(m.table.Rows()) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
		return emptyStyle.Render("No contacts.")
	}
	return m.table.View()
}

// Paused reports whether the clock is stopped.
func (m MonitorModel) Paused() bool {
	return m.paused
}

// Frame returns the number of frames simulated so far.
func (m MonitorModel) Frame() uint64 {
	return m.frame
}

// Speed returns the simulation speed multiplier.
func (m MonitorModel) Speed() float64 {
	return m.speed
}

// IsQuitting returns true if the user asked to quit.
func (m MonitorModel) IsQuitting() bool {
	return m.quitting
}

// Run starts the Bubble Tea program with the given monitor.
func Run(model MonitorModel) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
