package kinematic

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/physview/internal/physics"
)

// Simulation is the state of one model.
type Simulation struct {
	m *physics.Model

	time float64
	qpos []float64
	qvel []float64
	ctrl []float64
	qfrc []float64

	xpos      []float64
	xquat     []float64
	siteXPos  []float64
	lightXPos []float64
	lightXDir []float64
	wrapXPos  []float64
	wrapAdr   []int
	wrapNum   []int
}

var _ physics.Simulation = (*Simulation)(nil)

func newSimulation(m *physics.Model) *Simulation {
	return &Simulation{
		m:         m,
		qpos:      append([]float64(nil), m.Qpos0...),
		qvel:      make([]float64, m.NV),
		ctrl:      make([]float64, m.NU),
		qfrc:      make([]float64, m.NV),
		xpos:      make([]float64, 3*m.NBody),
		xquat:     make([]float64, 4*m.NBody),
		siteXPos:  make([]float64, 3*m.NSite),
		lightXPos: make([]float64, 3*m.NLight),
		lightXDir: make([]float64, 3*m.NLight),
		wrapXPos:  make([]float64, 3*m.NWrap),
		wrapAdr:   append([]int(nil), m.TendonWrapAdr...),
		wrapNum:   append([]int(nil), m.TendonWrapNum...),
	}
}

func (s *Simulation) Model() *physics.Model { return s.m }
func (s *Simulation) Time() float64         { return s.time }
func (s *Simulation) Qpos() []float64       { return s.qpos }
func (s *Simulation) Qvel() []float64       { return s.qvel }
func (s *Simulation) Ctrl() []float64       { return s.ctrl }
func (s *Simulation) XPos() []float64       { return s.xpos }
func (s *Simulation) XQuat() []float64      { return s.xquat }
func (s *Simulation) LightXPos() []float64  { return s.lightXPos }
func (s *Simulation) LightXDir() []float64  { return s.lightXDir }
func (s *Simulation) WrapXPos() []float64   { return s.wrapXPos }
func (s *Simulation) TenWrapAdr() []int     { return s.wrapAdr }
func (s *Simulation) TenWrapNum() []int     { return s.wrapNum }

// SiteXPos returns the world positions of all sites after Forward.
func (s *Simulation) SiteXPos() []float64 { return s.siteXPos }

// ResetData restores qpos0 and clears velocities, controls and time.
func (s *Simulation) ResetData() {
	copy(s.qpos, s.m.Qpos0)
	clear(s.qvel)
	clear(s.ctrl)
	clear(s.qfrc)
	s.time = 0
}

// Free drops the state buffers. Accessors return nil afterwards.
func (s *Simulation) Free() {
	*s = Simulation{m: s.m}
}

// Forward computes body, site, light and tendon wrap poses from qpos.
func (s *Simulation) Forward() {
	m := s.m
	if s.xpos == nil {
		return
	}
	s.xquat[0] = 1
	for b := 1; b < m.NBody; b++ {
		p := m.BodyParentID[b]
		ppos := vec3(s.xpos, p)
		pquat := quat(s.xquat, p)

		pos := ppos.Add(pquat.Rotate(vec3(m.BodyPos, b)))
		rot := pquat.Mul(quat(m.BodyQuat, b))

		for j := m.BodyJntAdr[b]; j >= 0 && j < m.BodyJntAdr[b]+m.BodyJntNum[b]; j++ {
			pos, rot = s.applyJoint(j, pos, rot)
		}

		rot = rot.Normalize()
		putVec3(s.xpos, b, pos)
		putQuat(s.xquat, b, rot)
	}

	for i := 0; i < m.NSite; i++ {
		b := m.SiteBodyID[i]
		putVec3(s.siteXPos, i, vec3(s.xpos, b).Add(quat(s.xquat, b).Rotate(vec3(m.SitePos, i))))
	}
	for i := 0; i < m.NLight; i++ {
		b := m.LightBodyID[i]
		q := quat(s.xquat, b)
		putVec3(s.lightXPos, i, vec3(s.xpos, b).Add(q.Rotate(vec3(m.LightPos, i))))
		putVec3(s.lightXDir, i, q.Rotate(vec3(m.LightDir, i)))
	}
	for i, site := range m.WrapSiteID {
		copy(s.wrapXPos[3*i:3*i+3], s.siteXPos[3*site:3*site+3])
	}
}

// applyJoint moves a body frame by the displacement of joint j.
func (s *Simulation) applyJoint(j int, pos mgl64.Vec3, rot mgl64.Quat) (mgl64.Vec3, mgl64.Quat) {
	m := s.m
	adr := m.JntQposAdr[j]
	axis := vec3(m.JntAxis, j)
	anchor := vec3(m.JntPos, j)

	switch m.JntType[j] {
	case physics.JointFree:
		return vec3(s.qpos[adr:], 0), quat(s.qpos[adr+3:], 0).Normalize()
	case physics.JointSlide:
		return pos.Add(rot.Rotate(axis).Mul(s.qpos[adr] - m.Qpos0[adr])), rot
	case physics.JointHinge:
		return rotateAbout(pos, rot, anchor, mgl64.QuatRotate(s.qpos[adr]-m.Qpos0[adr], axis))
	case physics.JointBall:
		return rotateAbout(pos, rot, anchor, quat(s.qpos[adr:], 0).Normalize())
	}
	return pos, rot
}

// rotateAbout applies the local rotation r around the local point anchor.
func rotateAbout(pos mgl64.Vec3, rot mgl64.Quat, anchor mgl64.Vec3, r mgl64.Quat) (mgl64.Vec3, mgl64.Quat) {
	world := pos.Add(rot.Rotate(anchor))
	rot = rot.Mul(r)
	return world.Sub(rot.Rotate(anchor)), rot
}

// Step advances time by one timestep and recomputes the poses.
func (s *Simulation) Step() {
	m := s.m
	if s.qpos == nil {
		return
	}
	dt := m.Opt.Timestep

	clear(s.qfrc)
	for u := 0; u < m.NU; u++ {
		c := s.ctrl[u]
		if m.ActuatorCtrlLimited[u] {
			c = min(max(c, m.ActuatorCtrlRange[2*u]), m.ActuatorCtrlRange[2*u+1])
		}
		j := m.ActuatorTrnID[u]
		s.qfrc[m.JntDofAdr[j]] += m.ActuatorGear[u] * c
	}

	for j := 0; j < m.NJnt; j++ {
		switch m.JntType[j] {
		case physics.JointHinge, physics.JointSlide:
			s.stepScalar(j, dt)
		case physics.JointBall:
			s.stepBall(j, dt)
		case physics.JointFree:
			s.stepFree(j, dt)
		}
	}

	s.time += dt
	s.Forward()
}

func (s *Simulation) stepScalar(j int, dt float64) {
	m := s.m
	q, v := m.JntQposAdr[j], m.JntDofAdr[j]
	acc := s.qfrc[v] - m.JntDamping[j]*s.qvel[v] - m.JntStiff[j]*(s.qpos[q]-m.Qpos0[q])
	s.qvel[v] += dt * acc
	s.qpos[q] += dt * s.qvel[v]

	if !m.JntLimited[j] {
		return
	}
	lo, hi := m.JntRange[2*j], m.JntRange[2*j+1]
	if s.qpos[q] < lo {
		s.qpos[q] = lo
		s.qvel[v] = max(s.qvel[v], 0)
	} else if s.qpos[q] > hi {
		s.qpos[q] = hi
		s.qvel[v] = min(s.qvel[v], 0)
	}
}

// stepBall integrates the local angular velocity of a ball joint.
func (s *Simulation) stepBall(j int, dt float64) {
	m := s.m
	q, v := m.JntQposAdr[j], m.JntDofAdr[j]
	damp := m.JntDamping[j]
	for i := 0; i < 3; i++ {
		s.qvel[v+i] += dt * (s.qfrc[v+i] - damp*s.qvel[v+i])
	}
	putQuat(s.qpos[q:], 0, integrateQuat(quat(s.qpos[q:], 0), vec3(s.qvel[v:], 0), dt, false))
}

// stepFree integrates world-frame linear and angular velocity. Free
// bodies drift at constant velocity without contacts to stop them, so
// gravity is not applied.
func (s *Simulation) stepFree(j int, dt float64) {
	m := s.m
	q, v := m.JntQposAdr[j], m.JntDofAdr[j]
	damp := m.JntDamping[j]
	for i := 0; i < 6; i++ {
		s.qvel[v+i] += dt * (s.qfrc[v+i] - damp*s.qvel[v+i])
	}
	for i := 0; i < 3; i++ {
		s.qpos[q+i] += dt * s.qvel[v+i]
	}
	putQuat(s.qpos[q+3:], 0, integrateQuat(quat(s.qpos[q+3:], 0), vec3(s.qvel[v+3:], 0), dt, true))
}

// integrateQuat rotates q by angular velocity w over dt, in the world
// frame or the local one.
func integrateQuat(q mgl64.Quat, w mgl64.Vec3, dt float64, world bool) mgl64.Quat {
	angle := w.Len() * dt
	if angle < 1e-12 {
		return q
	}
	r := mgl64.QuatRotate(angle, w.Normalize())
	if world {
		return r.Mul(q).Normalize()
	}
	return q.Mul(r).Normalize()
}

func vec3(buf []float64, i int) mgl64.Vec3 {
	return mgl64.Vec3{buf[3*i], buf[3*i+1], buf[3*i+2]}
}

func putVec3(buf []float64, i int, v mgl64.Vec3) {
	buf[3*i], buf[3*i+1], buf[3*i+2] = v[0], v[1], v[2]
}

// quat reads a (w, x, y, z) quaternion.
func quat(buf []float64, i int) mgl64.Quat {
	return mgl64.Quat{W: buf[4*i], V: mgl64.Vec3{buf[4*i+1], buf[4*i+2], buf[4*i+3]}}
}

func putQuat(buf []float64, i int, q mgl64.Quat) {
	if gomath.IsNaN(q.W) {
		q = mgl64.QuatIdent()
	}
	buf[4*i], buf[4*i+1], buf[4*i+2], buf[4*i+3] = q.W, q.V[0], q.V[1], q.V[2]
}
