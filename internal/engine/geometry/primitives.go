// Package geometry tessellates primitive shapes into scene geometry.
// Shapes are centered on the origin with their axis along +Y.
package geometry

import (
	gomath "math"

	"github.com/Faultbox/physview/internal/engine/scene"
)

// Tessellation defaults.
const (
	RadialSegments = 32
	RingSegments   = 16
	CapSegments    = 8
)

type builder struct {
	g *scene.Geometry
}

func newBuilder(shape string) *builder {
	return &builder{g: &scene.Geometry{Shape: shape}}
}

func (b *builder) vertex(px, py, pz, nx, ny, nz, u, v float32) uint32 {
	idx := uint32(len(b.g.Positions) / 3)
	b.g.Positions = append(b.g.Positions, px, py, pz)
	b.g.Normals = append(b.g.Normals, nx, ny, nz)
	b.g.UVs = append(b.g.UVs, u, v)
	return idx
}

func (b *builder) tri(a, c, d uint32) {
	b.g.Indices = append(b.g.Indices, a, c, d)
}

func sincos(a float64) (float32, float32) {
	s, c := gomath.Sincos(a)
	return float32(s), float32(c)
}

// Sphere returns a UV sphere.
func Sphere(radius float32) *scene.Geometry {
	return SphereSegments(radius, RadialSegments, RingSegments)
}

// SphereSegments returns a UV sphere with the given tessellation.
func SphereSegments(radius float32, widthSegments, heightSegments int) *scene.Geometry {
	b := newBuilder("sphere")
	offsets := make([]float32, heightSegments+1)
	phis := make([]float64, heightSegments+1)
	for iy := range phis {
		phis[iy] = float64(iy) / float64(heightSegments) * gomath.Pi
	}
	b.lathe(radius, widthSegments, phis, offsets)
	return b.g
}

// Capsule returns a cylinder of the given length capped by hemispheres;
// the total height is length + 2*radius.
func Capsule(radius, length float32) *scene.Geometry {
	b := newBuilder("capsule")
	var phis []float64
	var offsets []float32
	for i := 0; i <= CapSegments; i++ {
		phis = append(phis, float64(i)/float64(CapSegments)*gomath.Pi/2)
		offsets = append(offsets, length/2)
	}
	for i := 0; i <= CapSegments; i++ {
		phis = append(phis, gomath.Pi/2+float64(i)/float64(CapSegments)*gomath.Pi/2)
		offsets = append(offsets, -length/2)
	}
	b.lathe(radius, RadialSegments, phis, offsets)
	return b.g
}

// lathe sweeps rings at polar angles phis, each shifted along Y by its
// offset, around the Y axis. The first and last rings are poles.
func (b *builder) lathe(radius float32, segments int, phis []float64, offsets []float32) {
	base := uint32(len(b.g.Positions) / 3)
	rows := len(phis)
	for iy, phi := range phis {
		sp, cp := sincos(phi)
		v := float32(iy) / float32(rows-1)
		for ix := 0; ix <= segments; ix++ {
			u := float32(ix) / float32(segments)
			st, ct := sincos(float64(u) * 2 * gomath.Pi)
			nx, ny, nz := -ct*sp, cp, st*sp
			b.vertex(radius*nx, radius*ny+offsets[iy], radius*nz, nx, ny, nz, u, 1-v)
		}
	}
	stride := uint32(segments + 1)
	for iy := 0; iy < rows-1; iy++ {
		for ix := 0; ix < segments; ix++ {
			a := base + uint32(iy)*stride + uint32(ix) + 1
			c := base + uint32(iy)*stride + uint32(ix)
			d := base + uint32(iy+1)*stride + uint32(ix)
			e := base + uint32(iy+1)*stride + uint32(ix) + 1
			if iy != 0 {
				b.tri(a, c, e)
			}
			if iy != rows-2 {
				b.tri(c, d, e)
			}
		}
	}
}

// Cylinder returns a closed cylinder, or cone when the radii differ.
func Cylinder(radiusTop, radiusBottom, height float32) *scene.Geometry {
	b := newBuilder("cylinder")
	half := height / 2
	slope := (radiusBottom - radiusTop) / height

	for row := 0; row <= 1; row++ {
		v := float32(row)
		r := v*(radiusBottom-radiusTop) + radiusTop
		for ix := 0; ix <= RadialSegments; ix++ {
			u := float32(ix) / RadialSegments
			st, ct := sincos(float64(u) * 2 * gomath.Pi)
			nl := float32(gomath.Sqrt(float64(1 + slope*slope)))
			b.vertex(r*st, half-v*height, r*ct, st/nl, slope/nl, ct/nl, u, 1-v)
		}
	}
	stride := uint32(RadialSegments + 1)
	for ix := uint32(0); ix < RadialSegments; ix++ {
		a, d := ix, ix+1
		c, e := stride+ix, stride+ix+1
		b.tri(a, c, d)
		b.tri(c, e, d)
	}

	b.cap(radiusTop, half, 1)
	b.cap(radiusBottom, -half, -1)
	return b.g
}

func (b *builder) cap(radius, y, sign float32) {
	if radius <= 0 {
		return
	}
	center := b.vertex(0, y, 0, 0, sign, 0, 0.5, 0.5)
	first := center + 1
	for ix := 0; ix <= RadialSegments; ix++ {
		u := float32(ix) / RadialSegments
		st, ct := sincos(float64(u) * 2 * gomath.Pi)
		b.vertex(radius*st, y, radius*ct, 0, sign, 0, st*0.5+0.5, ct*0.5*sign+0.5)
	}
	for ix := uint32(0); ix < RadialSegments; ix++ {
		if sign > 0 {
			b.tri(first+ix, first+ix+1, center)
		} else {
			b.tri(first+ix+1, first+ix, center)
		}
	}
}

// Box returns an axis-aligned box with the given full extents.
func Box(width, height, depth float32) *scene.Geometry {
	b := newBuilder("box")
	hx, hy, hz := width/2, height/2, depth/2

	// Each face: normal, and the two in-plane axes (u, v) scaled to the
	// half extents, chosen so that u x v points along the normal.
	faces := []struct {
		n, u, v [3]float32
	}{
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -hz}, [3]float32{0, hy, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, hz}, [3]float32{0, hy, 0}},
		{[3]float32{0, 1, 0}, [3]float32{hx, 0, 0}, [3]float32{0, 0, -hz}},
		{[3]float32{0, -1, 0}, [3]float32{hx, 0, 0}, [3]float32{0, 0, hz}},
		{[3]float32{0, 0, 1}, [3]float32{hx, 0, 0}, [3]float32{0, hy, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-hx, 0, 0}, [3]float32{0, hy, 0}},
	}
	for _, f := range faces {
		center := [3]float32{f.n[0] * hx, f.n[1] * hy, f.n[2] * hz}
		var corner [4]uint32
		for i, s := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := [3]float32{
				center[0] + s[0]*f.u[0] + s[1]*f.v[0],
				center[1] + s[0]*f.u[1] + s[1]*f.v[1],
				center[2] + s[0]*f.u[2] + s[1]*f.v[2],
			}
			corner[i] = b.vertex(p[0], p[1], p[2], f.n[0], f.n[1], f.n[2], (s[0]+1)/2, (s[1]+1)/2)
		}
		b.tri(corner[0], corner[1], corner[2])
		b.tri(corner[0], corner[2], corner[3])
	}
	return b.g
}

// Plane returns a width x height quad in the XY plane facing +Z.
func Plane(width, height float32) *scene.Geometry {
	b := newBuilder("plane")
	hw, hh := width/2, height/2
	a := b.vertex(-hw, -hh, 0, 0, 0, 1, 0, 0)
	c := b.vertex(hw, -hh, 0, 0, 0, 1, 1, 0)
	d := b.vertex(hw, hh, 0, 0, 0, 1, 1, 1)
	e := b.vertex(-hw, hh, 0, 0, 0, 1, 0, 1)
	b.tri(a, c, d)
	b.tri(a, d, e)
	return b.g
}
