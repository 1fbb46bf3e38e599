package gui

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/physview/internal/engine/ui2d"
	"github.com/Faultbox/physview/internal/panel"
	"github.com/Faultbox/physview/internal/viewer"
)

// Panel window layout.
const (
	panelX      = 10
	panelY      = 10
	panelW      = 300
	labelColumn = 110
	rowH        = 20
	rowStep     = rowH + 4
	// Rows above the actuator list: title, scene, buttons, toggles,
	// separators, keyframe, noise and the actuator header.
	fixedRows = 11
)

// View draws the control panel, the help overlay and the status line.
type View struct {
	ui  *ui2d.Context
	app *viewer.App

	// OpenFile runs when the Open button is pressed.
	OpenFile func() error

	scroll int
}

// NewView returns a view of app drawn with ui.
func NewView(ui *ui2d.Context, app *viewer.App) *View {
	return &View{ui: ui, app: app}
}

// Draw lays out one frame of UI.
func (v *View) Draw() {
	_, screenH := v.ui.GetScreenSize()
	v.drawPanel(screenH)
	if v.app.Panel.Params.Help {
		v.drawHelp()
	}
	v.drawStatus(screenH)
}

// visibleActuators returns how many actuator rows fit on a screen.
func visibleActuators(screenH float32) int {
	avail := screenH - 2*panelY - fixedRows*rowStep - 40
	return max(int(avail/rowStep), 1)
}

func (v *View) drawPanel(screenH float32) {
	p := v.app.Panel
	c := v.ui

	n := len(p.Actuators)
	shown := min(n, visibleActuators(screenH))
	v.scroll = min(max(v.scroll, 0), n-shown)
	height := float32(fixedRows+shown)*rowStep + 40

	if !c.BeginWindow("panel", panelX, panelY, panelW, height, "physview") {
		return
	}
	defer c.EndWindow()

	if c.Hovered() && shown < n {
		v.scroll -= int(c.Input().ScrollY)
		v.scroll = min(max(v.scroll, 0), n-shown)
	}

	c.Row(rowH)
	c.LabelFixed("Scene", labelColumn, ui2d.ColorTextDim)
	names := p.Scenes.Names()
	sel := sceneIndex(p.Scenes, p.Params.Scene)
	if next, changed := c.Dropdown("scene", 0, names, sel); changed {
		v.report(p.SelectScene(names[next]))
	}

	c.Row(rowH)
	if v.OpenFile != nil && p.ReloadEnabled() {
		if c.Button("open", 88, "Open...") {
			v.report(v.OpenFile())
		}
	} else {
		c.ButtonDisabled("open", 88, "Open...")
	}
	if p.ReloadEnabled() {
		if c.Button("reload", 88, "Reload") {
			v.report(p.Reload())
		}
	} else {
		c.ButtonDisabled("reload", 88, "Reload")
	}
	if c.Button("reset", 0, "Reset") {
		v.report(p.Reset())
	}

	c.Row(rowH)
	if paused := c.Checkbox("pause", "Paused", p.Params.Paused); paused != p.Params.Paused {
		p.TogglePause()
	}
	p.Params.Help = c.Checkbox("help", "Help", p.Params.Help)
	if c.Button("camera", 0, "Reset camera") {
		p.ResetCamera()
	}

	c.Separator()
	c.Row(rowH)
	c.LabelFixed("Keyframe", labelColumn, ui2d.ColorText)
	kf := p.Keyframe
	if k, changed := c.Slider("keyframe", 0, float64(p.Params.KeyframeNumber), kf.Min, kf.Max, kf.Step, kf.Disabled); changed {
		v.report(p.SetKeyframe(int(k)))
	}

	c.Row(rowH)
	c.LabelFixed("Noise rate", labelColumn, ui2d.ColorText)
	if r, changed := c.Slider("noise_rate", 0, p.Params.CtrlNoiseRate, p.NoiseRate.Min, p.NoiseRate.Max, p.NoiseRate.Step, false); changed {
		p.SetNoiseRate(r)
	}
	c.Row(rowH)
	c.LabelFixed("Noise std", labelColumn, ui2d.ColorText)
	if s, changed := c.Slider("noise_std", 0, p.Params.CtrlNoiseStd, p.NoiseStd.Min, p.NoiseStd.Max, p.NoiseStd.Step, false); changed {
		p.SetNoiseStd(s)
	}

	c.Separator()
	c.Row(rowH)
	if n == 0 {
		c.LabelColored("No controllable actuators", ui2d.ColorTextDim)
		return
	}
	header := "Actuators"
	if shown < n {
		header = fmt.Sprintf("Actuators %d-%d of %d", v.scroll+1, v.scroll+shown, n)
	}
	c.LabelColored(header, ui2d.ColorTextDim)

	for i := v.scroll; i < v.scroll+shown; i++ {
		b := p.Actuators[i]
		c.Row(rowH)
		c.LabelFixed(truncate(b.Name, 15), labelColumn, ui2d.ColorText)
		if val, changed := c.Slider("act"+strconv.Itoa(i), 0, b.Value, b.Min, b.Max, 0, false); changed {
			v.report(p.SetActuator(i, val))
		}
	}
}

func (v *View) drawHelp() {
	rows := v.app.Panel.HelpRows()
	w, h := v.ui.GetScreenSize()
	winW := float32(320)
	winH := float32(len(rows))*rowStep + 40
	if !v.ui.BeginWindow("help", (w-winW)/2, (h-winH)/2, winW, winH, "Help") {
		return
	}
	for _, r := range rows {
		v.ui.Row(rowH)
		v.ui.LabelFixed(r.Keys, 110, ui2d.ColorHighlight)
		v.ui.Label(r.Action)
	}
	v.ui.EndWindow()
}

func (v *View) drawStatus(screenH float32) {
	x := float32(panelX)
	y := screenH - 20
	for _, ind := range v.app.Panel.Indicators() {
		v.ui.Text(x, y, ind, ui2d.ColorHighlight)
		w, _ := v.ui.MeasureText(ind)
		x += w + 12
	}
	v.ui.Text(x, y, v.app.Status(), ui2d.ColorText)
}

func (v *View) report(err error) {
	if err != nil {
		v.app.Panel.SetStatus(err.Error())
	}
}

func sceneIndex(s panel.Scenes, file string) int {
	for i, o := range s {
		if o.File == file {
			return i
		}
	}
	return -1
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
