// Package kinematic is a small reference engine behind the physics
// boundary. It compiles MJCF scenes, computes forward kinematics and
// integrates joint-space dynamics with unit inertia: actuator forces,
// damping, stiffness and joint limits. There is no collision detection,
// mass matrix or gravity on articulated joints.
package kinematic

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/physics/mjcf"
)

// Engine loads scenes from a filesystem, normally the virtual working
// directory.
type Engine struct {
	fsys fs.FS
	log  *zap.Logger
}

// NewEngine returns an engine resolving scene paths in fsys.
func NewEngine(fsys fs.FS) *Engine {
	return &Engine{fsys: fsys, log: logger.Named("kinematic")}
}

// LoadModel compiles the scene at p. Absolute paths are taken relative to
// the root of the engine's filesystem.
func (e *Engine) LoadModel(p string) (*physics.Model, error) {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	m, err := mjcf.Load(e.fsys, name)
	if err != nil {
		return nil, err
	}
	e.log.Info("model loaded",
		zap.String("file", name),
		zap.Int("nbody", m.NBody),
		zap.Int("ngeom", m.NGeom),
		zap.Int("nu", m.NU),
		zap.Int("nkey", m.NKey),
	)
	return m, nil
}

// NewSimulation allocates state for m and runs forward kinematics once.
func (e *Engine) NewSimulation(m *physics.Model) (physics.Simulation, error) {
	if err := checkTree(m); err != nil {
		return nil, err
	}
	s := newSimulation(m)
	s.Forward()
	return s, nil
}

// checkTree verifies the arrays only the engine reads.
func checkTree(m *physics.Model) error {
	for b := 1; b < m.NBody; b++ {
		if p := m.BodyParentID[b]; p < 0 || p >= b {
			return fmt.Errorf("%w: body %d has parent %d", physics.ErrInconsistentModel, b, p)
		}
	}
	if len(m.BodyPos) != 3*m.NBody || len(m.BodyQuat) != 4*m.NBody ||
		len(m.BodyJntAdr) != m.NBody || len(m.BodyJntNum) != m.NBody {
		return fmt.Errorf("%w: body frame arrays", physics.ErrInconsistentModel)
	}
	if len(m.JntType) != m.NJnt || len(m.Qpos0) != m.NQ {
		return fmt.Errorf("%w: joint arrays", physics.ErrInconsistentModel)
	}
	for j := 0; j < m.NJnt; j++ {
		if m.JntQposAdr[j]+m.JntType[j].QposWidth() > m.NQ || m.JntDofAdr[j]+m.JntType[j].DofWidth() > m.NV {
			return fmt.Errorf("%w: joint %d state exceeds nq/nv", physics.ErrInconsistentModel, j)
		}
	}
	for u := 0; u < m.NU; u++ {
		if j := m.ActuatorTrnID[u]; j < 0 || j >= m.NJnt {
			return fmt.Errorf("%w: actuator %d drives joint %d", physics.ErrInconsistentModel, u, j)
		}
	}
	for i := 0; i < m.NSite; i++ {
		if b := m.SiteBodyID[i]; b < 0 || b >= m.NBody {
			return fmt.Errorf("%w: site %d references body %d", physics.ErrInconsistentModel, i, b)
		}
	}
	for i, site := range m.WrapSiteID {
		if site < 0 || site >= m.NSite {
			return fmt.Errorf("%w: wrap %d references site %d", physics.ErrInconsistentModel, i, site)
		}
	}
	return nil
}
