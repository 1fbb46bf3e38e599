// Package physicstest provides model fixtures and a recording simulation
// for tests of packages built on top of the physics boundary.
package physicstest

import (
	"fmt"
	"sync"

	"github.com/Faultbox/physview/internal/physics"
)

// TwoBodies returns the smallest scene with a body other than the world:
// a ground plane on body 0 and a sphere on body 1, no lights.
func TwoBodies() *physics.Model {
	b := physics.NewBuilder()
	ball := b.Body("ball", 0, [3]float64{0, 0, 1}, [4]float64{1, 0, 0, 0})
	b.Joint(physics.JointSpec{Name: "ball_free", Type: physics.JointFree, Body: ball})

	plane := physics.NewGeomSpec(physics.GeomPlane, 0)
	plane.Name = "floor"
	plane.Size = [3]float64{5, 5, 0.1}
	b.Geom(plane)

	sphere := physics.NewGeomSpec(physics.GeomSphere, ball)
	sphere.Name = "ball_geom"
	sphere.Size = [3]float64{0.1, 0, 0}
	b.Geom(sphere)

	return mustBuild(b)
}

// Arm returns a two-link hinge arm with two control-limited actuators, one
// unlimited actuator, a keyframe, a light, a spatial tendon over three
// sites and a textured mesh geom.
func Arm() *physics.Model {
	b := physics.NewBuilder()

	tex := b.Texture("grid", 2, 2, []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	})
	mat := physics.NewMaterialSpec("grid")
	mat.Texture = tex
	gridMat := b.Material(mat)

	upper := b.Body("upper_arm", 0, [3]float64{0, 0, 1}, [4]float64{1, 0, 0, 0})
	shoulder := b.Joint(physics.JointSpec{Name: "shoulder", Type: physics.JointHinge, Body: upper, Axis: [3]float64{0, 1, 0}, Damping: 0.1})
	lower := b.Body("lower_arm", upper, [3]float64{0, 0, -0.5}, [4]float64{1, 0, 0, 0})
	elbow := b.Joint(physics.JointSpec{Name: "elbow", Type: physics.JointHinge, Body: lower, Axis: [3]float64{0, 1, 0}, Damping: 0.1})

	floor := physics.NewGeomSpec(physics.GeomPlane, 0)
	floor.Size = [3]float64{10, 10, 0.1}
	floor.Material = gridMat
	b.Geom(floor)

	capsule := physics.NewGeomSpec(physics.GeomCapsule, upper)
	capsule.Size = [3]float64{0.05, 0.25, 0}
	capsule.Pos = [3]float64{0, 0, -0.25}
	b.Geom(capsule)

	mesh := b.Mesh("tri", []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, []float32{0, 0, 1, 0, 0, 1}, []int32{0, 1, 2})
	meshGeom := physics.NewGeomSpec(physics.GeomMesh, lower)
	meshGeom.Mesh = mesh
	b.Geom(meshGeom)

	s0 := b.Site("anchor", 0, [3]float64{0.2, 0, 1})
	s1 := b.Site("mid", upper, [3]float64{0.05, 0, -0.25})
	s2 := b.Site("tip", lower, [3]float64{0.05, 0, -0.25})
	b.Tendon("cable", 0.01, [4]float32{0.8, 0.3, 0.3, 1}, []int{s0, s1, s2})

	b.Light(physics.LightSpec{Body: 0, Pos: [3]float64{0, 0, 3}, Dir: [3]float64{0, 0, -1}, Attenuation: [3]float32{1, 0, 0}, Diffuse: [3]float32{1, 1, 1}, CastShadow: true})

	b.Actuator(physics.ActuatorSpec{Name: "shoulder_motor", Joint: shoulder, Gear: 1, CtrlLimited: true, CtrlRange: [2]float64{-1, 1}})
	b.Actuator(physics.ActuatorSpec{Name: "free_motor", Joint: elbow, Gear: 1})
	b.Actuator(physics.ActuatorSpec{Name: "elbow_motor", Joint: elbow, Gear: 1, CtrlLimited: true, CtrlRange: [2]float64{-2, 0.5}})

	b.Key("bent", 0, []float64{0.3, -0.6})

	return mustBuild(b)
}

func mustBuild(b *physics.Builder) *physics.Model {
	m, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("physicstest: fixture does not validate: %v", err))
	}
	return m
}

// Sim is a Simulation backed by plain slices. Step advances time only;
// tests write the pose outputs directly.
type Sim struct {
	mu sync.Mutex

	M *physics.Model

	T        float64
	QposBuf  []float64
	QvelBuf  []float64
	CtrlBuf  []float64
	XPosBuf  []float64
	XQuatBuf []float64
	LightPos []float64
	LightDir []float64
	Wrap     []float64
	WrapAdr  []int
	WrapNum  []int
	Steps    int
	Forwards int
	Resets   int
	Freed    bool
	StepHook func(*Sim)
}

// NewSim allocates state for m with identity body orientations.
func NewSim(m *physics.Model) *Sim {
	s := &Sim{
		M:        m,
		QposBuf:  append([]float64(nil), m.Qpos0...),
		QvelBuf:  make([]float64, m.NV),
		CtrlBuf:  make([]float64, m.NU),
		XPosBuf:  make([]float64, 3*m.NBody),
		XQuatBuf: make([]float64, 4*m.NBody),
		LightPos: append([]float64(nil), m.LightPos...),
		LightDir: append([]float64(nil), m.LightDir...),
		Wrap:     make([]float64, 3*m.NWrap),
		WrapAdr:  append([]int(nil), m.TendonWrapAdr...),
		WrapNum:  append([]int(nil), m.TendonWrapNum...),
	}
	for b := 0; b < m.NBody; b++ {
		s.XQuatBuf[4*b] = 1
	}
	return s
}

// Counts returns how often Step, Forward and ResetData ran.
func (s *Sim) Counts() (steps, forwards, resets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Steps, s.Forwards, s.Resets
}

func (s *Sim) Model() *physics.Model { return s.M }

func (s *Sim) Step() {
	s.mu.Lock()
	s.Steps++
	s.T += s.M.Opt.Timestep
	hook := s.StepHook
	s.mu.Unlock()
	if hook != nil {
		hook(s)
	}
}

func (s *Sim) Forward() {
	s.mu.Lock()
	s.Forwards++
	s.mu.Unlock()
}

func (s *Sim) ResetData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Resets++
	copy(s.QposBuf, s.M.Qpos0)
	clear(s.QvelBuf)
	clear(s.CtrlBuf)
	s.T = 0
}

func (s *Sim) Free() {
	s.mu.Lock()
	s.Freed = true
	s.mu.Unlock()
}

// IsFreed reports whether Free was called.
func (s *Sim) IsFreed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Freed
}

func (s *Sim) Time() float64        { return s.T }
func (s *Sim) Qpos() []float64      { return s.QposBuf }
func (s *Sim) Qvel() []float64      { return s.QvelBuf }
func (s *Sim) Ctrl() []float64      { return s.CtrlBuf }
func (s *Sim) XPos() []float64      { return s.XPosBuf }
func (s *Sim) XQuat() []float64     { return s.XQuatBuf }
func (s *Sim) LightXPos() []float64 { return s.LightPos }
func (s *Sim) LightXDir() []float64 { return s.LightDir }
func (s *Sim) WrapXPos() []float64  { return s.Wrap }
func (s *Sim) TenWrapAdr() []int    { return s.WrapAdr }
func (s *Sim) TenWrapNum() []int    { return s.WrapNum }

// Engine serves fixed models by path.
type Engine struct {
	mu     sync.Mutex
	Models map[string]func() *physics.Model
	Sims   []*Sim
	Loads  int
	// Block, when set, is received from before LoadModel returns.
	Block chan struct{}
}

// NewEngine returns an engine serving the given models.
func NewEngine(models map[string]func() *physics.Model) *Engine {
	return &Engine{Models: models}
}

func (e *Engine) LoadModel(path string) (*physics.Model, error) {
	e.mu.Lock()
	e.Loads++
	build, ok := e.Models[path]
	block := e.Block
	e.mu.Unlock()

	if block != nil {
		<-block
	}
	if !ok {
		return nil, fmt.Errorf("loading %s: file not found", path)
	}
	return build(), nil
}

func (e *Engine) NewSimulation(m *physics.Model) (physics.Simulation, error) {
	s := NewSim(m)
	e.mu.Lock()
	e.Sims = append(e.Sims, s)
	e.mu.Unlock()
	return s, nil
}

// LastSim returns the most recently created simulation.
func (e *Engine) LastSim() *Sim {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Sims) == 0 {
		return nil
	}
	return e.Sims[len(e.Sims)-1]
}
