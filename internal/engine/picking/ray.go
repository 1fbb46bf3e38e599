// Package picking casts rays from the screen into the scene graph to find
// the body under the cursor.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/physview/internal/engine/camera"
	"github.com/Faultbox/physview/internal/engine/geometry"
	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, viewProj math.Mat4) Ray {
	inv := mgl32.Mat4(viewProj).Inv()

	// Normalized device coords (-1 to 1), Y flipped
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := unproject(inv, ndcX, ndcY, -1)
	far := unproject(inv, ndcX, ndcY, 1)

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// CameraRay casts a ray through a pixel of a viewport seen by cam.
func CameraRay(cam *camera.OrbitCamera, screenX, screenY, viewportW, viewportH float32) Ray {
	aspect := viewportW / max(viewportH, 1)
	viewProj := cam.ProjectionMatrix(aspect).Mul(cam.ViewMatrix())
	return ScreenToRay(screenX, screenY, viewportW, viewportH, viewProj)
}

func unproject(inv mgl32.Mat4, x, y, z float32) math.Vec3 {
	p := inv.Mul4x1(mgl32.Vec4{x, y, z, 1})
	if p.W() != 0 {
		p = p.Mul(1 / p.W())
	}
	return math.Vec3{X: p.X(), Y: p.Y(), Z: p.Z()}
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{
		Min: math.Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: math.Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// BoundsOf returns the local bounds of a geometry. ok is false for an
// empty geometry.
func BoundsOf(g *scene.Geometry) (AABB, bool) {
	if g == nil || len(g.Positions) < 3 {
		return AABB{}, false
	}
	b := geometry.ComputeBounds(g.Positions)
	return AABB{
		Min: math.Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]},
		Max: math.Vec3{X: b.Max[0], Y: b.Max[1], Z: b.Max[2]},
	}, true
}

// Transform returns the box enclosing b after applying m.
func (b AABB) Transform(m math.Mat4) AABB {
	var out AABB
	for i := range 8 {
		corner := b.Min
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		w := m.TransformVec3(corner)
		if i == 0 {
			out = AABB{Min: w, Max: w}
			continue
		}
		out = out.extend(w)
	}
	return out
}

func (b AABB) extend(p math.Vec3) AABB {
	return AABB{
		Min: math.Vec3{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)},
		Max: math.Vec3{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)},
	}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := range 3 {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Hit is the result of a successful Pick.
type Hit struct {
	Node     *scene.Node
	Body     int
	Distance float32
}

// Pick returns the nearest visible mesh owned by a moving body that the
// ray crosses. The world body and mirror surfaces are never picked.
func Pick(root *scene.Node, ray Ray) (Hit, bool) {
	var best Hit
	found := false
	root.Walk(func(n *scene.Node, _ int) bool {
		if !n.Visible {
			return false
		}
		if n.Kind != scene.KindMesh || n.BodyID <= 0 {
			return true
		}
		local, ok := BoundsOf(n.Geometry)
		if !ok {
			return true
		}
		t, hit := ray.IntersectAABB(local.Transform(n.WorldMatrix()))
		if hit && (!found || t < best.Distance) {
			best = Hit{Node: n, Body: n.BodyID, Distance: t}
			found = true
		}
		return true
	})
	return best, found
}
