// Package tui is the terminal front-end: the control panel and a live
// readout of the simulation, without 3D rendering.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/lifecycle"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/viewer"
)

const (
	frameInterval = 16 * time.Millisecond
	historyLen    = 120
	barWidth      = 24
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

// Focusable rows above the actuator list.
const (
	rowScene = iota
	rowKeyframe
	rowNoiseRate
	rowNoiseStd
	fixedRows
)

type tickMsg time.Time

type loadedMsg struct {
	pending *lifecycle.Pending
	err     error
}

// Model is the bubbletea model of the terminal viewer.
type Model struct {
	app *viewer.App
	ctx context.Context

	cursor  int
	history []float64
	queued  string
	last    time.Time
	width   int
	height  int
}

// New builds a terminal viewer over engine. Panel reloads are turned into
// commands that prepare the scene off the UI goroutine.
func New(ctx context.Context, cfg *config.Config, engine physics.Engine, fetch func(context.Context, string) error) (*Model, error) {
	m := &Model{ctx: ctx, width: 80, height: 24}
	app, err := viewer.New(cfg, viewer.Options{
		Engine: engine,
		Fetch:  fetch,
		Reload: func(file string) error {
			m.queued = file
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	m.app = app
	app.Ctrl.OnModelChanged(func(lifecycle.Context) {
		m.history = m.history[:0]
		m.cursor = min(m.cursor, m.rows()-1)
	})
	return m, nil
}

// App returns the viewer state.
func (m *Model) App() *viewer.App {
	return m.app
}

// Init loads the initial scene and starts the frame clock.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.reload(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// reload starts the panel's reload and returns the command that prepares
// the queued scene.
func (m *Model) reload() tea.Cmd {
	m.report(m.app.Panel.Reload())
	return m.loadQueued()
}

func (m *Model) loadQueued() tea.Cmd {
	file := m.queued
	if file == "" {
		return nil
	}
	m.queued = ""
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		p, err := app.Prepare(ctx, file)
		return loadedMsg{pending: p, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case loadedMsg:
		if msg.err != nil {
			m.app.Panel.SetStatus(msg.err.Error())
			return m, nil
		}
		m.app.Ctrl.Commit(msg.pending)
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			m.app.Frame(now.Sub(m.last).Seconds())
			m.sample()
		}
		m.last = now
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
		return nil
	case "down", "j":
		m.cursor = min(m.cursor+1, m.rows()-1)
		return nil
	case "left", "h":
		m.adjust(-1)
		return m.loadQueued()
	case "right", "l":
		m.adjust(1)
		return m.loadQueued()
	}

	if chord, ok := chordFor(msg); ok && m.app.Panel.Keys.Dispatch(chord) {
		return m.loadQueued()
	}
	return nil
}

func (m *Model) rows() int {
	return fixedRows + len(m.app.Panel.Actuators)
}

// adjust moves the focused row one step in dir.
func (m *Model) adjust(dir int) {
	p := m.app.Panel
	switch m.cursor {
	case rowScene:
		if len(p.Scenes) == 0 {
			return
		}
		i := 0
		for j, o := range p.Scenes {
			if o.File == p.Params.Scene {
				i = j
			}
		}
		i = (i + dir + len(p.Scenes)) % len(p.Scenes)
		m.report(p.SelectScene(p.Scenes[i].Name))
	case rowKeyframe:
		if !p.Keyframe.Disabled {
			m.report(p.SetKeyframe(p.Params.KeyframeNumber + dir))
		}
	case rowNoiseRate:
		p.SetNoiseRate(p.Params.CtrlNoiseRate + float64(dir)*p.NoiseRate.Step*5)
	case rowNoiseStd:
		p.SetNoiseStd(p.Params.CtrlNoiseStd + float64(dir)*p.NoiseStd.Step*5)
	default:
		i := m.cursor - fixedRows
		if i < len(p.Actuators) {
			b := p.Actuators[i]
			m.report(p.SetActuator(i, b.Value+float64(dir)*(b.Max-b.Min)/20))
		}
	}
}

// sample records the focused actuator's control, or the first control
// when no actuator row is focused.
func (m *Model) sample() {
	cur, err := m.app.Ctrl.Current()
	if err != nil {
		return
	}
	ctrl := cur.Sim.Ctrl()
	if len(ctrl) == 0 {
		return
	}
	idx := 0
	if i := m.cursor - fixedRows; i >= 0 && i < len(m.app.Panel.Actuators) {
		idx = m.app.Panel.Actuators[i].Index
	}
	m.history = append(m.history, ctrl[idx])
	if len(m.history) > historyLen {
		m.history = m.history[len(m.history)-historyLen:]
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.app.Panel.SetStatus(err.Error())
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	p := m.app.Panel
	var b strings.Builder

	b.WriteString(titleStyle.Render("physview"))
	for _, ind := range p.Indicators() {
		b.WriteString("  " + focusStyle.Render("["+ind+"]"))
	}
	b.WriteString("\n" + statusStyle.Render(m.app.Status()) + "\n\n")

	var rows []string
	rows = append(rows, m.row(rowScene, "Scene", p.Scenes.Name(p.Params.Scene)))
	kf := "none"
	if !p.Keyframe.Disabled {
		kf = fmt.Sprintf("%d / %.0f", p.Params.KeyframeNumber, p.Keyframe.Max)
	}
	rows = append(rows,
		m.row(rowKeyframe, "Keyframe", kf),
		m.row(rowNoiseRate, "Noise rate", fmt.Sprintf("%.2f", p.Params.CtrlNoiseRate)),
		m.row(rowNoiseStd, "Noise std", fmt.Sprintf("%.2f", p.Params.CtrlNoiseStd)),
	)
	for i, a := range p.Actuators {
		rows = append(rows, m.row(fixedRows+i, a.Name, bar(a.Value, a.Min, a.Max)+fmt.Sprintf(" %6.2f", a.Value)))
	}
	if len(p.Actuators) == 0 {
		rows = append(rows, dimStyle.Render("  no controllable actuators"))
	}
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")) + "\n")

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(6),
			asciigraph.Width(min(max(m.width-12, 20), historyLen)),
			asciigraph.Caption("control"),
		)
		b.WriteString(graph + "\n")
	}

	if cur, err := m.app.Ctrl.Current(); err == nil {
		md := cur.Model
		b.WriteString(dimStyle.Render(fmt.Sprintf("bodies %d  joints %d  geoms %d  actuators %d  tendons %d",
			md.NBody, md.NJnt, md.NGeom, md.NU, md.NTendon)) + "\n")
	}

	if p.Params.Help {
		var help []string
		for _, r := range p.HelpRows() {
			help = append(help, labelStyle.Render(r.Keys)+valueStyle.Render(r.Action))
		}
		help = append(help, labelStyle.Render("arrows / hjkl")+valueStyle.Render("Select and adjust"))
		help = append(help, labelStyle.Render("q")+valueStyle.Render("Quit"))
		b.WriteString(boxStyle.Render(strings.Join(help, "\n")) + "\n")
	} else {
		b.WriteString(dimStyle.Render("F1 help  q quit") + "\n")
	}
	return b.String()
}

func (m *Model) row(i int, label, value string) string {
	marker := "  "
	style := valueStyle
	if i == m.cursor {
		marker = focusStyle.Render("> ")
		style = focusStyle
	}
	return marker + labelStyle.Render(truncate(label, 15)) + style.Render(value)
}

// bar renders v within [lo, hi] as a horizontal gauge.
func bar(v, lo, hi float64) string {
	if hi <= lo {
		return strings.Repeat("-", barWidth)
	}
	n := int((min(max(v, lo), hi) - lo) / (hi - lo) * barWidth)
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

// Run starts the terminal viewer and blocks until it quits.
func Run(ctx context.Context, cfg *config.Config, ws *viewer.Workspace) error {
	m, err := New(ctx, cfg, ws.Engine(), ws.Fetch)
	if err != nil {
		return err
	}
	defer m.app.Close()

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
