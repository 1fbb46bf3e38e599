// Package lifecycle owns the loaded scene: the model, its simulation and
// its scene graph are created together, swapped in together and released
// together.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/scenesync"
)

var (
	// ErrReloadInFlight is returned when a reload starts while another one
	// has not finished.
	ErrReloadInFlight = errors.New("reload already in flight")
	// ErrNotLoaded is returned by Current before the first successful load.
	ErrNotLoaded = errors.New("no scene loaded")
)

// Context is one loaded scene.
type Context struct {
	File  string
	Model *physics.Model
	Sim   physics.Simulation
	Scene *scenesync.Scene
}

// Observer is called after a new scene became current.
type Observer func(Context)

// Options configures a Controller.
type Options struct {
	Hierarchy scenesync.Hierarchy

	// Stage is the node the scene root is inserted under. A fresh group
	// is created when nil.
	Stage *scene.Node

	// Fetch, when set, runs before the model is compiled. It typically
	// copies the scene's files into the engine's filesystem.
	Fetch func(ctx context.Context, file string) error

	Logger *zap.Logger
}

// Controller loads scenes and swaps them in atomically. A failed load
// leaves the current scene untouched.
type Controller struct {
	engine physics.Engine
	opts   Options
	stage  *scene.Node
	log    *zap.Logger

	loading atomic.Bool

	mu        sync.Mutex
	cur       *Context
	observers []Observer
}

// New returns a controller with nothing loaded.
func New(engine physics.Engine, opts Options) *Controller {
	c := &Controller{engine: engine, opts: opts, stage: opts.Stage, log: opts.Logger}
	if c.stage == nil {
		c.stage = scene.NewGroup("Stage")
	}
	if c.log == nil {
		c.log = logger.Named("lifecycle")
	}
	return c
}

// Stage returns the node holding the current scene root.
func (c *Controller) Stage() *scene.Node {
	return c.stage
}

// OnModelChanged registers fn. Observers run in registration order after
// each successful reload.
func (c *Controller) OnModelChanged(fn Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Loading reports whether a reload is in flight.
func (c *Controller) Loading() bool {
	return c.loading.Load()
}

// Current returns the live scene.
func (c *Controller) Current() (Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return Context{}, ErrNotLoaded
	}
	return *c.cur, nil
}

// Reload loads file and makes it current. It must be called from the
// goroutine that drives the simulation.
func (c *Controller) Reload(ctx context.Context, file string) error {
	p, err := c.Prepare(ctx, file)
	if err != nil {
		return err
	}
	c.Commit(p)
	return nil
}

// Pending is a loaded scene waiting to be committed.
type Pending struct {
	next Context
	done bool
}

// Prepare loads file without touching the current scene. It may run on
// any goroutine. On success the reload stays in flight until the result
// is passed to Commit or Discard.
func (c *Controller) Prepare(ctx context.Context, file string) (*Pending, error) {
	if !c.loading.CompareAndSwap(false, true) {
		return nil, ErrReloadInFlight
	}

	start := time.Now()
	next, err := c.load(ctx, file)
	if err != nil {
		c.loading.Store(false)
		c.log.Error("reload failed", zap.String("file", file), zap.Error(err))
		return nil, fmt.Errorf("reloading %s: %w", file, err)
	}
	c.log.Info("scene loaded",
		zap.String("file", file),
		zap.Duration("took", time.Since(start)),
	)
	return &Pending{next: next}, nil
}

// Commit releases the previous scene, inserts the new one and notifies
// the observers. It must be called from the goroutine that drives the
// simulation.
func (c *Controller) Commit(p *Pending) {
	if p == nil || p.done {
		return
	}
	p.done = true
	defer c.loading.Store(false)

	c.mu.Lock()
	if prev := c.cur; prev != nil {
		prev.Sim.Free()
		c.stage.Remove(prev.Scene.Root)
		c.cur = nil
	}
	next := p.next
	c.stage.Add(next.Scene.Root)
	c.cur = &next
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	next.Sim.Forward()
	for _, fn := range observers {
		fn(next)
	}
}

// Discard drops a prepared scene without making it current.
func (c *Controller) Discard(p *Pending) {
	if p == nil || p.done {
		return
	}
	p.done = true
	p.next.Sim.Free()
	c.loading.Store(false)
}

func (c *Controller) load(ctx context.Context, file string) (next Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				e = fmt.Errorf("%v", r)
			}
			err = fmt.Errorf("loading scene: %w", e)
		}
	}()

	if c.opts.Fetch != nil {
		if err := c.opts.Fetch(ctx, file); err != nil {
			return Context{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Context{}, err
	}

	m, err := c.engine.LoadModel(file)
	if err != nil {
		return Context{}, err
	}
	sim, err := c.engine.NewSimulation(m)
	if err != nil {
		return Context{}, err
	}
	s, err := scenesync.Build(m, scenesync.Options{Hierarchy: c.opts.Hierarchy})
	if err != nil {
		sim.Free()
		return Context{}, err
	}
	return Context{File: file, Model: m, Sim: sim, Scene: s}, nil
}

// Close releases the current scene.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return
	}
	c.cur.Sim.Free()
	c.stage.Remove(c.cur.Scene.Root)
	c.cur = nil
}
