package scenesync

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/internal/physics"
)

// Hierarchy selects how body groups are nested.
type Hierarchy int

const (
	// HierarchyFlat hangs every body directly under the world body's
	// group. Body poses are written in world coordinates.
	HierarchyFlat Hierarchy = iota
	// HierarchyParentChain nests each body under its kinematic parent.
	// Body poses are written relative to the parent.
	HierarchyParentChain
)

func (h Hierarchy) String() string {
	if h == HierarchyParentChain {
		return "parent_chain"
	}
	return "flat"
}

// ParseHierarchy maps a config value to a Hierarchy.
func ParseHierarchy(s string) (Hierarchy, error) {
	switch s {
	case "", "flat":
		return HierarchyFlat, nil
	case "parent_chain":
		return HierarchyParentChain, nil
	}
	return HierarchyFlat, fmt.Errorf("unknown hierarchy mode %q", s)
}

// AttachBodies attaches every body group under root. Missing groups are
// synthesized first, so afterwards bodies has no nil entries.
//
// In flat mode the world body and, when the world has no geometry, every
// body attach to root; the rest attach to the world body's group. In
// parent-chain mode each body attaches under its parent body's group.
func AttachBodies(bodies []*scene.Node, root *scene.Node, m *physics.Model, mode Hierarchy, log *zap.Logger) {
	if len(bodies) == 0 {
		return
	}
	hasWorld := bodies[0] != nil

	for b := range bodies {
		if bodies[b] == nil {
			bodies[b] = newBodyGroup(m, b)
			if b != 0 {
				log.Info("body without geometry, adding empty group",
					zap.Int("body", b), zap.String("name", bodies[b].Name))
			}
		}
	}

	for b, grp := range bodies {
		switch {
		case b == 0:
			root.Add(grp)
		case mode == HierarchyParentChain:
			parent := m.BodyParentID[b]
			if parent < 0 || parent >= b {
				root.Add(grp)
				continue
			}
			bodies[parent].Add(grp)
		case !hasWorld:
			root.Add(grp)
		default:
			bodies[0].Add(grp)
		}
	}
}
