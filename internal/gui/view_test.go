package gui

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/engine/ui2d"
	"github.com/Faultbox/physview/internal/panel"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/physics/physicstest"
	"github.com/Faultbox/physview/internal/viewer"
)

type recorder struct {
	texts []string
}

func (r *recorder) DrawRect(x, y, w, h float32, c ui2d.Color) {}
func (r *recorder) DrawRectOutline(x, y, w, h, t float32, c ui2d.Color) {}
func (r *recorder) DrawPanel(x, y, w, h float32, bg, border ui2d.Color) {}
func (r *recorder) DrawText(x, y float32, s string, _ float32, c ui2d.Color) {
	r.texts = append(r.texts, s)
}
func (r *recorder) MeasureText(s string, scale float32) (float32, float32) {
	return float32(len(s)*7) * scale, 13 * scale
}
func (r *recorder) GetScreenSize() (int, int) { return 1280, 720 }
func (r *recorder) Flush() {}

func (r *recorder) drew(s string) bool {
	for _, t := range r.texts {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

func newView(t *testing.T) (*View, *recorder, *physicstest.Engine) {
	t.Helper()
	cfg := config.Default()
	cfg.Scenes = []config.SceneEntry{{Name: "Arm", File: "arm.xml"}}
	cfg.Viewer.InitialScene = "arm.xml"
	e := physicstest.NewEngine(map[string]func() *physics.Model{
		"/working/arm.xml": physicstest.Arm,
	})
	app, err := viewer.New(cfg, viewer.Options{Engine: e, Logger: zap.NewNop()})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	require.NoError(t, app.Load(context.Background(), "arm.xml"))

	rec := &recorder{}
	return NewView(ui2d.NewContextWithPainter(rec), app), rec, e
}

// frame draws one frame with the mouse at (x, y).
func frame(v *View, rec *recorder, x, y float32, down bool) {
	rec.texts = rec.texts[:0]
	in := v.ui.Input()
	in.MouseX, in.MouseY, in.MouseLeftDown = x, y, down
	v.ui.Begin()
	v.Draw()
	v.ui.End()
}

func TestViewDrawsPanel(t *testing.T) {
	v, rec, _ := newView(t)
	frame(v, rec, 0, 0, false)

	assert.True(t, rec.drew("Arm"), "scene selector")
	assert.True(t, rec.drew("Actuators"))
	assert.True(t, rec.drew("shoulder_motor"))
	assert.True(t, rec.drew("elbow_motor"))
	assert.False(t, rec.drew("free_motor"), "unlimited actuators have no slider")
	assert.True(t, rec.drew("t=0.00s"), "status line")
	assert.False(t, rec.drew("F1"), "help hidden")
}

func TestViewHelpAndPause(t *testing.T) {
	v, rec, _ := newView(t)
	v.app.Panel.Params.Help = true
	v.app.Panel.TogglePause()
	frame(v, rec, 0, 0, false)

	assert.True(t, rec.drew("F1"))
	assert.True(t, rec.drew("Ctrl+L"))
	assert.True(t, rec.drew(panel.PauseIndicator))
}

func TestViewResetButton(t *testing.T) {
	v, rec, e := newView(t)
	sim := e.LastSim()
	_, _, before := sim.Counts()

	// The Reset button fills the rest of the second row.
	frame(v, rec, 0, 0, false)
	frame(v, rec, 250, 75, true)
	frame(v, rec, 250, 75, false)

	_, _, after := sim.Counts()
	assert.Equal(t, before+1, after)
}

func TestViewReportsErrors(t *testing.T) {
	v, _, _ := newView(t)
	v.report(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), v.app.Panel.Status())
	v.report(nil)
	assert.Equal(t, assert.AnError.Error(), v.app.Panel.Status())
}

func TestVisibleActuators(t *testing.T) {
	assert.Equal(t, 1, visibleActuators(100))
	assert.Greater(t, visibleActuators(1080), visibleActuators(720))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 15))
	assert.Equal(t, "abcd~", truncate("abcdefgh", 5))
}

func TestSceneIndex(t *testing.T) {
	s := panel.Scenes{{Name: "A", File: "a.xml"}, {Name: "B", File: "b.xml"}}
	assert.Equal(t, 1, sceneIndex(s, "b.xml"))
	assert.Equal(t, -1, sceneIndex(s, "local/1/c.xml"))
}
