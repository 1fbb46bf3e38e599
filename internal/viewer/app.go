// Package viewer holds the application state shared by the front-ends:
// configuration, the scene lifecycle, the control panel, the free camera
// and the per-frame simulation driver.
package viewer

import (
	"context"
	"fmt"
	gomath "math"
	"math/rand/v2"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/config"
	"github.com/Faultbox/physview/internal/engine/camera"
	"github.com/Faultbox/physview/internal/lifecycle"
	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/internal/panel"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/scenesync"
	"github.com/Faultbox/physview/pkg/math"
)

// Options wires an App to its collaborators.
type Options struct {
	Engine physics.Engine

	// Fetch runs before each load, see lifecycle.Options.
	Fetch func(ctx context.Context, file string) error

	// Reload overrides how the panel reloads a scene. The default loads
	// synchronously on the caller's goroutine, or through LoadAsync when
	// Async is set.
	Reload func(file string) error
	Async  bool

	Logger *zap.Logger
}

// App is the viewer's application state.
type App struct {
	Config *config.Config
	Ctrl   *lifecycle.Controller
	Panel  *panel.Panel
	Camera *camera.OrbitCamera

	rng      *rand.Rand
	simTime  float64
	wallTime float64
	maxSteps int
	log      *zap.Logger

	results chan loadResult
	busy    bool
}

// New builds the application state. Nothing is loaded until Load.
func New(cfg *config.Config, opts Options) (*App, error) {
	hierarchy, err := scenesync.ParseHierarchy(cfg.Viewer.Hierarchy)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("viewer")
	}

	cc := cfg.Viewer.Camera
	cam := camera.NewOrbitCamera(camera.Pose{
		Position: math.Vec3{X: cc.Position[0], Y: cc.Position[1], Z: cc.Position[2]},
		Target:   math.Vec3{X: cc.Target[0], Y: cc.Target[1], Z: cc.Target[2]},
	})
	if cc.FovY > 0 {
		cam.FovY = cc.FovY * gomath.Pi / 180
	}

	a := &App{
		Config:   cfg,
		Camera:   cam,
		rng:      rand.New(rand.NewPCG(uint64(cfg.Simulation.Seed), 0)),
		maxSteps: max(cfg.Viewer.MaxStepsPerFrame, 1),
		log:      log,
		results:  make(chan loadResult, 1),
	}
	a.Ctrl = lifecycle.New(opts.Engine, lifecycle.Options{
		Hierarchy: hierarchy,
		Fetch:     opts.Fetch,
		Logger:    log.Named("lifecycle"),
	})

	reload := opts.Reload
	switch {
	case reload != nil:
	case opts.Async:
		reload = func(file string) error { return a.LoadAsync(context.Background(), file) }
	default:
		reload = func(file string) error { return a.Load(context.Background(), file) }
	}
	a.Panel = panel.New(panel.Options{
		Scenes: panel.ScenesFromConfig(cfg.Scenes),
		Params: panel.Params{
			Scene:         cfg.Viewer.InitialScene,
			CtrlNoiseRate: cfg.Simulation.CtrlNoiseRate,
			CtrlNoiseStd:  cfg.Simulation.CtrlNoiseStd,
		},
		Camera: cam,
		Reload: reload,
		Logger: log.Named("panel"),
	})
	a.Panel.Attach(a.Ctrl)
	a.Ctrl.OnModelChanged(func(lifecycle.Context) {
		a.simTime, a.wallTime = 0, 0
	})
	return a, nil
}

// ScenePath maps a selector file to its path in the engine's filesystem.
func (a *App) ScenePath(file string) string {
	return path.Join("/", a.Config.Assets.WorkingDir, file)
}

// Load loads a scene file synchronously.
func (a *App) Load(ctx context.Context, file string) error {
	return a.Ctrl.Reload(ctx, a.ScenePath(file))
}

// Prepare loads a scene file without making it current, see
// lifecycle.Controller.Prepare.
func (a *App) Prepare(ctx context.Context, file string) (*lifecycle.Pending, error) {
	return a.Ctrl.Prepare(ctx, a.ScenePath(file))
}

// Frame advances the simulation by dt seconds of wall time and syncs the
// scene graph. It returns the number of physics steps taken.
func (a *App) Frame(dt float64) int {
	cur, err := a.Ctrl.Current()
	if err != nil {
		return 0
	}
	steps := 0
	if !a.Panel.Params.Paused {
		steps = a.advance(cur, dt)
	}
	scenesync.Sync(cur.Scene, cur.Sim)
	return steps
}

// advance steps until simulated time catches up with wall time. Backlog
// beyond the per-frame cap is dropped.
func (a *App) advance(cur lifecycle.Context, dt float64) int {
	ts := cur.Model.Opt.Timestep
	if ts <= 0 {
		return 0
	}
	a.wallTime += dt

	decay, scale := NoiseCoefficients(ts, a.Panel.Params.CtrlNoiseRate, a.Panel.Params.CtrlNoiseStd)
	ctrl := cur.Sim.Ctrl()

	steps := 0
	for a.simTime < a.wallTime && steps < a.maxSteps {
		if scale > 0 {
			for i := range ctrl {
				ctrl[i] = decay*ctrl[i] + scale*a.rng.NormFloat64()
			}
		}
		cur.Sim.Step()
		a.simTime += ts
		steps++
	}
	if a.simTime < a.wallTime {
		a.log.Debug("simulation behind wall time",
			zap.Float64("lag", a.wallTime-a.simTime),
			zap.Int("steps", steps),
		)
		a.simTime = a.wallTime
	}
	if scale > 0 {
		a.Panel.MirrorControls(ctrl)
	}
	return steps
}

// NoiseCoefficients returns the per-step decay and innovation scale of the
// control noise process. scale is zero when std is not positive.
func NoiseCoefficients(timestep, rate, std float64) (decay, scale float64) {
	decay = gomath.Exp(-timestep / gomath.Max(1e-10, rate))
	if std <= 0 {
		return decay, 0
	}
	return decay, std * gomath.Sqrt(1-decay*decay)
}

// Status returns the status line for the front-ends.
func (a *App) Status() string {
	if a.busy || a.Ctrl.Loading() {
		return "Loading..."
	}
	if s := a.Panel.Status(); s != "" {
		return s
	}
	cur, err := a.Ctrl.Current()
	if err != nil {
		return "No scene loaded"
	}
	file := strings.TrimPrefix(cur.File, a.ScenePath("")+"/")
	return fmt.Sprintf("%s  t=%.2fs", a.Panel.Scenes.Name(file), cur.Sim.Time())
}

// Close releases the loaded scene.
func (a *App) Close() {
	a.Ctrl.Close()
}
