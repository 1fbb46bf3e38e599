package scenesync

import (
	"github.com/Faultbox/physview/internal/engine/coords"
	"github.com/Faultbox/physview/internal/physics"
)

// Sync copies the simulation's current body poses, light frames and
// tendon paths into the scene. It allocates nothing.
func Sync(s *Scene, sim physics.Simulation) {
	syncBodies(s, sim)
	syncLights(s, sim)
	syncTendons(s, sim)
}

func syncBodies(s *Scene, sim physics.Simulation) {
	xpos, xquat := sim.XPos(), sim.XQuat()
	parents := s.Model.BodyParentID

	for b, grp := range s.Bodies {
		if grp == nil {
			continue
		}
		t := &grp.Transform
		parent := parents[b]
		if s.Hierarchy != HierarchyParentChain || b == 0 || parent < 0 {
			coords.SetPosition(&t.Position, xpos, b, true)
			coords.SetQuaternion(&t.Rotation, xquat, b, true)
			continue
		}

		// Express the body pose relative to its parent's world pose.
		inv := coords.Quaternion(xquat, parent).Conjugate()
		delta := coords.Position(xpos, b).Sub(coords.Position(xpos, parent))
		t.Position = inv.Rotate(delta)
		t.Rotation = inv.Mul(coords.Quaternion(xquat, b))
	}
}

func syncLights(s *Scene, sim physics.Simulation) {
	lpos, ldir := sim.LightXPos(), sim.LightXDir()
	for l, node := range s.Lights {
		coords.SetPosition(&node.Transform.Position, lpos, l, true)
		node.Light.Target = node.Transform.Position.Add(coords.Position(ldir, l))
	}
}
