// Package panel is the toolkit-independent model of the control panel:
// simulation parameters, the scene selector, keyboard actions, keyframe
// and actuator sliders. The GL and terminal front-ends render it and feed
// it input.
package panel

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/lifecycle"
	"github.com/Faultbox/physview/internal/logger"
)

// Noise slider bounds.
const (
	NoiseMin  = 0.0
	NoiseMax  = 2.0
	NoiseStep = 0.01
)

// PauseIndicator is the overlay label shown while paused.
const PauseIndicator = "Paused"

// Params are the user-editable simulation parameters.
type Params struct {
	Scene          string
	Paused         bool
	Help           bool
	KeyframeNumber int
	CtrlNoiseRate  float64
	CtrlNoiseStd   float64
}

// Slider describes the bounds of a slider widget.
type Slider struct {
	Min      float64
	Max      float64
	Step     float64
	Disabled bool
}

// Clamp limits v to the slider bounds.
func (s Slider) Clamp(v float64) float64 {
	return min(max(v, s.Min), s.Max)
}

// Camera is the free camera restored by "Reset free camera".
type Camera interface {
	Reset()
}

// Options configures a Panel.
type Options struct {
	Scenes Scenes
	Params Params
	Camera Camera

	// Reload loads a scene file. Front-ends decide whether it blocks.
	Reload func(file string) error

	Logger *zap.Logger
}

// Panel holds the control panel state.
type Panel struct {
	Params    Params
	Scenes    Scenes
	Keys      *KeyTable
	Actuators []ActuatorBinding

	Keyframe  Slider
	NoiseRate Slider
	NoiseStd  Slider

	ctrl       *lifecycle.Controller
	camera     Camera
	reload     func(string) error
	indicators []string
	status     string
	log        *zap.Logger
}

// New returns a panel with the standard key bindings.
func New(opts Options) *Panel {
	p := &Panel{
		Params:    opts.Params,
		Scenes:    opts.Scenes,
		Keys:      &KeyTable{},
		Keyframe:  Slider{Step: 1, Disabled: true},
		NoiseRate: Slider{Min: NoiseMin, Max: NoiseMax, Step: NoiseStep},
		NoiseStd:  Slider{Min: NoiseMin, Max: NoiseMax, Step: NoiseStep},
		camera:    opts.Camera,
		reload:    opts.Reload,
		log:       opts.Logger,
	}
	if p.Scenes == nil {
		p.Scenes = DefaultScenes()
	}
	if p.log == nil {
		p.log = logger.Named("panel")
	}
	if p.Params.Paused {
		p.indicators = append(p.indicators, PauseIndicator)
	}

	p.Keys.onError = func(a Action, err error) {
		p.SetStatus(fmt.Sprintf("%s: %v", a.Name, err))
	}
	p.Keys.Register("Help", Chord{Key: KeyF1}, func() error {
		p.Params.Help = !p.Params.Help
		return nil
	})
	p.Keys.Register("Play / Pause", Chord{Key: KeySpace}, func() error {
		p.TogglePause()
		return nil
	})
	p.Keys.Register("Reload XML", Chord{Key: "L", Ctrl: true}, p.Reload)
	p.Keys.Register("Reset simulation", Chord{Key: KeyBackspace}, p.Reset)
	p.Keys.Register("Reset free camera", Chord{Key: "A", Ctrl: true}, func() error {
		p.ResetCamera()
		return nil
	})
	return p
}

// Attach registers the panel's model-changed observers on ctrl.
func (p *Panel) Attach(ctrl *lifecycle.Controller) {
	p.ctrl = ctrl
	ctrl.OnModelChanged(func(lifecycle.Context) { p.ResetCamera() })
	ctrl.OnModelChanged(func(c lifecycle.Context) {
		p.Actuators = BindActuators(c.Model, c.Sim.Ctrl())
	})
	ctrl.OnModelChanged(func(c lifecycle.Context) {
		nkey := c.Model.NKey
		p.Keyframe.Max = float64(max(nkey-1, 0))
		p.Keyframe.Disabled = nkey == 0
		p.Params.KeyframeNumber = int(p.Keyframe.Clamp(float64(p.Params.KeyframeNumber)))
		p.log.Info("new model loaded", zap.String("file", c.File), zap.Int("nkey", nkey))
	})
}

func (p *Panel) current() (lifecycle.Context, error) {
	if p.ctrl == nil {
		return lifecycle.Context{}, lifecycle.ErrNotLoaded
	}
	return p.ctrl.Current()
}

// TogglePause flips the paused flag and its overlay indicator.
func (p *Panel) TogglePause() {
	p.Params.Paused = !p.Params.Paused
	if p.Params.Paused {
		p.indicators = append(p.indicators, PauseIndicator)
		return
	}
	for i, s := range p.indicators {
		if s == PauseIndicator {
			p.indicators = append(p.indicators[:i], p.indicators[i+1:]...)
			break
		}
	}
}

// Indicators returns the overlay labels currently shown.
func (p *Panel) Indicators() []string {
	return p.indicators
}

// Reset restores the simulation's initial state.
func (p *Panel) Reset() error {
	c, err := p.current()
	if err != nil {
		return err
	}
	c.Sim.ResetData()
	c.Sim.Forward()
	for i := range p.Actuators {
		p.Actuators[i].Value = 0
	}
	return nil
}

// SetKeyframe selects keyframe k and copies its qpos into the simulation.
func (p *Panel) SetKeyframe(k int) error {
	if p.Keyframe.Disabled {
		return errors.New("model has no keyframes")
	}
	c, err := p.current()
	if err != nil {
		return err
	}
	k = int(p.Keyframe.Clamp(float64(k)))
	p.Params.KeyframeNumber = k

	m := c.Model
	if k < m.NKey {
		nq := m.NQ
		copy(c.Sim.Qpos()[:nq], m.KeyQpos[k*nq:(k+1)*nq])
		c.Sim.Forward()
	}
	return nil
}

// SetActuator sets the control of binding i.
func (p *Panel) SetActuator(i int, v float64) error {
	if i < 0 || i >= len(p.Actuators) {
		return fmt.Errorf("actuator binding %d out of range", i)
	}
	c, err := p.current()
	if err != nil {
		return err
	}
	p.Actuators[i].Set(c.Sim.Ctrl(), v)
	return nil
}

// MirrorControls copies ctrl into the actuator bindings.
func (p *Panel) MirrorControls(ctrl []float64) {
	for i := range p.Actuators {
		if idx := p.Actuators[i].Index; idx < len(ctrl) {
			p.Actuators[i].Value = ctrl[idx]
		}
	}
}

// SetNoiseRate sets the control noise rate.
func (p *Panel) SetNoiseRate(v float64) {
	p.Params.CtrlNoiseRate = p.NoiseRate.Clamp(v)
}

// SetNoiseStd sets the control noise scale.
func (p *Panel) SetNoiseStd(v float64) {
	p.Params.CtrlNoiseStd = p.NoiseStd.Clamp(v)
}

// ReloadEnabled reports whether reload widgets should accept input.
func (p *Panel) ReloadEnabled() bool {
	return p.ctrl == nil || !p.ctrl.Loading()
}

// Reload reloads the selected scene.
func (p *Panel) Reload() error {
	if !p.ReloadEnabled() {
		return lifecycle.ErrReloadInFlight
	}
	if p.reload == nil {
		return errors.New("reload is not available")
	}
	if err := p.reload(p.Params.Scene); err != nil {
		return err
	}
	p.SetStatus("")
	return nil
}

// SelectScene switches to the selector entry name and reloads.
func (p *Panel) SelectScene(name string) error {
	file, ok := p.Scenes.File(name)
	if !ok {
		return fmt.Errorf("unknown scene %q", name)
	}
	return p.OpenFile(file)
}

// OpenFile switches to an arbitrary scene file and reloads. The selection
// is left alone while another reload is in flight.
func (p *Panel) OpenFile(file string) error {
	if !p.ReloadEnabled() {
		return lifecycle.ErrReloadInFlight
	}
	p.Params.Scene = file
	return p.Reload()
}

// ResetCamera restores the free camera's default pose.
func (p *Panel) ResetCamera() {
	if p.camera != nil {
		p.camera.Reset()
	}
}

// HelpRows lists the key bindings.
func (p *Panel) HelpRows() []HelpRow {
	return p.Keys.HelpRows()
}

// Status returns the front-end status line.
func (p *Panel) Status() string {
	return p.status
}

// SetStatus replaces the status line. Non-empty messages are logged.
func (p *Panel) SetStatus(msg string) {
	p.status = msg
	if msg != "" {
		p.log.Warn("status", zap.String("msg", msg))
	}
}
