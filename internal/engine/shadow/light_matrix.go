package shadow

import (
	gomath "math"

	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/pkg/math"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// EmptyAABB returns a box that contains nothing. Extending it by a point
// yields a box around that point.
func EmptyAABB() AABB {
	inf := float32(gomath.Inf(1))
	return AABB{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// Empty reports whether the box contains no point.
func (b AABB) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// Extend grows the box to contain p.
func (b AABB) Extend(p [3]float32) AABB {
	for i := range 3 {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

// Center returns the center point of the AABB.
func (b AABB) Center() math.Vec3 {
	return math.Vec3{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	dx := (b.Max[0] - b.Min[0]) / 2
	dy := (b.Max[1] - b.Min[1]) / 2
	dz := (b.Max[2] - b.Min[2]) / 2
	return float32(gomath.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}

// SceneBounds returns the world-space bounds of the shadow casting meshes
// below root. Reflectors are left out: a floor would otherwise stretch the
// shadow map over its whole extent.
func SceneBounds(root *scene.Node) AABB {
	box := EmptyAABB()
	root.Walk(func(n *scene.Node, _ int) bool {
		if !n.Visible {
			return false
		}
		if n.Kind != scene.KindMesh || !n.CastShadow || n.Geometry == nil || n.Geometry.VertexCount() == 0 {
			return true
		}
		local := EmptyAABB()
		pos := n.Geometry.Positions
		for i := 0; i+2 < len(pos); i += 3 {
			local = local.Extend([3]float32{pos[i], pos[i+1], pos[i+2]})
		}
		world := n.WorldMatrix()
		for c := range 8 {
			corner := [3]float32{local.Min[0], local.Min[1], local.Min[2]}
			for axis := range 3 {
				if c&(1<<axis) != 0 {
					corner[axis] = local.Max[axis]
				}
			}
			box = box.Extend(world.TransformPoint(corner))
		}
		return true
	})
	return box
}

// LightMatrix computes the view-projection of a directional light's
// shadow pass. lightDir points towards the light.
func LightMatrix(lightDir math.Vec3, bounds AABB) math.Mat4 {
	center := bounds.Center()
	radius := max(bounds.Radius(), 0.5)

	// Far enough to encompass the whole box.
	lightDistance := radius * 2.0
	lightPos := center.Add(lightDir.Normalize().Scale(lightDistance))

	up := math.Vec3{X: 0, Y: 1, Z: 0}
	if abs32(lightDir.Normalize().Y) > 0.99 {
		up = math.Vec3{X: 0, Y: 0, Z: 1}
	}
	view := math.LookAt(lightPos, center, up)

	padding := radius * 0.1
	halfSize := radius + padding
	far := lightDistance + radius + padding
	proj := math.Ortho(-halfSize, halfSize, -halfSize, halfSize, 0.1, far)

	return proj.Mul(view)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
