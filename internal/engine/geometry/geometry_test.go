package geometry

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/physview/internal/engine/scene"
)

func checkIndexed(t *testing.T, g *scene.Geometry) {
	t.Helper()
	require.Equal(t, len(g.Positions), len(g.Normals), "normals per vertex")
	require.Equal(t, 2*g.VertexCount(), len(g.UVs), "uvs per vertex")
	require.Zero(t, len(g.Indices)%3)
	for _, idx := range g.Indices {
		require.Less(t, int(idx), g.VertexCount())
	}
	for i := 0; i < len(g.Normals); i += 3 {
		l := gomath.Sqrt(float64(g.Normals[i]*g.Normals[i] + g.Normals[i+1]*g.Normals[i+1] + g.Normals[i+2]*g.Normals[i+2]))
		require.InDelta(t, 1, l, 1e-4, "normal %d not unit", i/3)
	}
}

// Triangles must wind counter-clockwise seen from outside: the face normal
// points away from the center for convex shapes.
func checkOutward(t *testing.T, g *scene.Geometry) {
	t.Helper()
	p := func(i uint32) [3]float32 { return [3]float32{g.Positions[3*i], g.Positions[3*i+1], g.Positions[3*i+2]} }
	for k := 0; k < len(g.Indices); k += 3 {
		a, b, c := p(g.Indices[k]), p(g.Indices[k+1]), p(g.Indices[k+2])
		e1 := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		e2 := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		n := [3]float32{e1[1]*e2[2] - e1[2]*e2[1], e1[2]*e2[0] - e1[0]*e2[2], e1[0]*e2[1] - e1[1]*e2[0]}
		centroid := [3]float32{(a[0] + b[0] + c[0]) / 3, (a[1] + b[1] + c[1]) / 3, (a[2] + b[2] + c[2]) / 3}
		dot := n[0]*centroid[0] + n[1]*centroid[1] + n[2]*centroid[2]
		require.GreaterOrEqual(t, dot, float32(-1e-6), "triangle %d winds inward", k/3)
	}
}

func TestSphere(t *testing.T) {
	g := Sphere(2)
	checkIndexed(t, g)
	checkOutward(t, g)
	for i := 0; i < len(g.Positions); i += 3 {
		r := gomath.Sqrt(float64(g.Positions[i]*g.Positions[i] + g.Positions[i+1]*g.Positions[i+1] + g.Positions[i+2]*g.Positions[i+2]))
		assert.InDelta(t, 2, r, 1e-4)
	}
	assert.Equal(t, "sphere", g.Shape)
}

func TestCapsuleExtent(t *testing.T) {
	g := Capsule(0.5, 2)
	checkIndexed(t, g)
	checkOutward(t, g)
	b := ComputeBounds(g.Positions)
	assert.InDelta(t, 1.5, b.Max[1], 1e-5)
	assert.InDelta(t, -1.5, b.Min[1], 1e-5)
	assert.InDelta(t, 0.5, b.Max[0], 1e-3)
}

func TestCylinder(t *testing.T) {
	g := Cylinder(1, 1, 3)
	checkIndexed(t, g)
	checkOutward(t, g)
	b := ComputeBounds(g.Positions)
	assert.InDelta(t, 1.5, b.Max[1], 1e-6)
	assert.InDelta(t, -1.5, b.Min[1], 1e-6)
}

func TestBox(t *testing.T) {
	g := Box(2, 4, 6)
	checkIndexed(t, g)
	checkOutward(t, g)
	assert.Equal(t, 24, g.VertexCount())
	assert.Equal(t, 12, g.TriangleCount())
	b := ComputeBounds(g.Positions)
	assert.Equal(t, [3]float32{-1, -2, -3}, b.Min)
	assert.Equal(t, [3]float32{1, 2, 3}, b.Max)
}

func TestPlane(t *testing.T) {
	g := Plane(100, 100)
	checkIndexed(t, g)
	assert.Equal(t, 2, g.TriangleCount())
	b := ComputeBounds(g.Positions)
	assert.Equal(t, [3]float32{-50, -50, 0}, b.Min)
}

func TestComputeNormals(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 5, 5, 5}
	normals := ComputeNormals(positions, []int32{0, 1, 2})
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1}, normals)
}

func TestComputeBoundsEmpty(t *testing.T) {
	assert.Equal(t, Bounds{}, ComputeBounds(nil))
	assert.Equal(t, [3]float32{0.5, 1, 1.5}, Bounds{Max: [3]float32{1, 2, 3}}.Center())
}
