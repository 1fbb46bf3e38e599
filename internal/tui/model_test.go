package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/lifecycle"
	"github.com/Faultbox/physview/internal/panel"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/physics/physicstest"
)

func newModel(t *testing.T) (*Model, *physicstest.Engine) {
	t.Helper()
	cfg := config.Default()
	cfg.Scenes = []config.SceneEntry{{Name: "Arm", File: "arm.xml"}, {Name: "Two", File: "two.xml"}}
	cfg.Viewer.InitialScene = "arm.xml"
	e := physicstest.NewEngine(map[string]func() *physics.Model{
		"/working/arm.xml": physicstest.Arm,
		"/working/two.xml": physicstest.TwoBodies,
	})
	m, err := New(context.Background(), cfg, e, nil)
	require.NoError(t, err)
	t.Cleanup(m.App().Close)
	return m, e
}

// run executes cmd and feeds its message back into m.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func loaded(t *testing.T, m *Model) lifecycle.Context {
	t.Helper()
	run(t, m, m.reload())
	cur, err := m.App().Ctrl.Current()
	require.NoError(t, err)
	return cur
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialLoad(t *testing.T) {
	m, _ := newModel(t)
	cur := loaded(t, m)
	assert.Equal(t, "/working/arm.xml", cur.File)
	assert.Len(t, m.App().Panel.Actuators, 2)

	view := m.View()
	assert.Contains(t, view, "Arm")
	assert.Contains(t, view, "shoulder_motor")
	assert.Contains(t, view, "bodies 3")
}

func TestLoadFailureShowsStatus(t *testing.T) {
	m, _ := newModel(t)
	loaded(t, m)

	m.App().Panel.Params.Scene = "missing.xml"
	run(t, m, m.reload())

	cur, err := m.App().Ctrl.Current()
	require.NoError(t, err)
	assert.Equal(t, "/working/arm.xml", cur.File)
	assert.Contains(t, m.View(), "missing.xml")
}

func TestTickAdvancesSimulation(t *testing.T) {
	m, _ := newModel(t)
	cur := loaded(t, m)

	t0 := time.Unix(100, 0)
	m.Update(tickMsg(t0))
	assert.Zero(t, cur.Sim.Time(), "first tick only starts the clock")

	m.Update(tickMsg(t0.Add(10 * time.Millisecond)))
	assert.InDelta(t, 0.01, cur.Sim.Time(), 1e-9)
	assert.Len(t, m.history, 1)
}

func TestSpacePauses(t *testing.T) {
	m, _ := newModel(t)
	cur := loaded(t, m)

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, m.App().Panel.Params.Paused)
	assert.Contains(t, m.View(), panel.PauseIndicator)

	t0 := time.Unix(100, 0)
	m.Update(tickMsg(t0))
	m.Update(tickMsg(t0.Add(time.Second)))
	assert.Zero(t, cur.Sim.Time())
}

func TestCtrlLReloads(t *testing.T) {
	m, e := newModel(t)
	loaded(t, m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	run(t, m, cmd)
	assert.Equal(t, 2, e.Loads)
}

func TestSceneRowCyclesScenes(t *testing.T) {
	m, _ := newModel(t)
	loaded(t, m)

	_, cmd := m.Update(key("l"))
	run(t, m, cmd)

	cur, err := m.App().Ctrl.Current()
	require.NoError(t, err)
	assert.Equal(t, "/working/two.xml", cur.File)
	assert.Empty(t, m.App().Panel.Actuators)
	assert.Contains(t, m.View(), "no controllable actuators")
}

func TestActuatorRow(t *testing.T) {
	m, _ := newModel(t)
	cur := loaded(t, m)

	for range fixedRows {
		m.Update(key("j"))
	}
	require.Equal(t, fixedRows, m.cursor)

	m.Update(key("l"))
	assert.InDelta(t, 0.1, cur.Sim.Ctrl()[0], 1e-9)

	// Past the last actuator the cursor stops.
	for range 10 {
		m.Update(key("j"))
	}
	assert.Equal(t, fixedRows+1, m.cursor)
	m.Update(key("h"))
	assert.InDelta(t, -0.125, cur.Sim.Ctrl()[2], 1e-9)
}

func TestNoiseRows(t *testing.T) {
	m, _ := newModel(t)
	loaded(t, m)

	m.cursor = rowNoiseStd
	m.Update(key("l"))
	assert.InDelta(t, 0.05, m.App().Panel.Params.CtrlNoiseStd, 1e-9)
	m.Update(key("h"))
	m.Update(key("h"))
	assert.Zero(t, m.App().Panel.Params.CtrlNoiseStd)
}

func TestKeyframeRow(t *testing.T) {
	m, _ := newModel(t)
	cur := loaded(t, m)

	m.cursor = rowKeyframe
	m.Update(key("l"))
	assert.Equal(t, 0, m.App().Panel.Params.KeyframeNumber)
	assert.Equal(t, []float64{0.3, -0.6}, cur.Sim.Qpos()[:2])
}

func TestHelpToggle(t *testing.T) {
	m, _ := newModel(t)
	loaded(t, m)

	assert.NotContains(t, m.View(), "Reload XML")
	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Contains(t, m.View(), "Reload XML")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestChordFor(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want panel.Chord
		ok   bool
	}{
		{"f1", tea.KeyMsg{Type: tea.KeyF1}, panel.Chord{Key: "F1"}, true},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, panel.Chord{Key: "Space"}, true},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, panel.Chord{Key: "Backspace"}, true},
		{"ctrl+a", tea.KeyMsg{Type: tea.KeyCtrlA}, panel.Chord{Key: "A", Ctrl: true}, true},
		{"letter", key("x"), panel.Chord{Key: "X"}, true},
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, panel.Chord{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chordFor(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, barWidth, len([]rune(bar(0.5, 0, 1))))
	assert.Equal(t, barWidth, len([]rune(bar(5, 0, 1))))
	assert.Equal(t, barWidth, len([]rune(bar(0, 1, 1))))
}
