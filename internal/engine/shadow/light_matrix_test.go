package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/physview/internal/engine/geometry"
	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/pkg/math"
)

func TestEmptyAABB(t *testing.T) {
	b := EmptyAABB()
	assert.True(t, b.Empty())

	b = b.Extend([3]float32{1, 2, 3})
	assert.False(t, b.Empty())
	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, b.Center())
	assert.Zero(t, b.Radius())
}

func TestSceneBounds(t *testing.T) {
	root := scene.NewGroup("root")
	body := scene.NewGroup("body")
	body.Transform = scene.IdentityTransform()
	body.Transform.Position = math.Vec3{X: 10}
	root.Add(body)

	box := scene.NewMesh(geometry.Box(1, 1, 1), scene.NewMaterial())
	box.CastShadow = true
	body.Add(box)

	hidden := scene.NewMesh(geometry.Box(100, 100, 100), scene.NewMaterial())
	hidden.CastShadow = true
	hidden.Visible = false
	root.Add(hidden)

	floor := scene.NewReflector(geometry.Plane(50, 50), scene.NewMaterial(), scene.ReflectorOptions{})
	root.Add(floor)

	b := SceneBounds(root)
	assert.InDelta(t, 9.5, b.Min[0], 1e-5)
	assert.InDelta(t, 10.5, b.Max[0], 1e-5)
	assert.InDelta(t, -0.5, b.Min[1], 1e-5)
	assert.InDelta(t, 0.5, b.Max[2], 1e-5)
}

func TestSceneBoundsNothingCasts(t *testing.T) {
	root := scene.NewGroup("root")
	root.Add(scene.NewMesh(geometry.Box(1, 1, 1), scene.NewMaterial()))
	assert.True(t, SceneBounds(root).Empty())
}

func TestLightMatrixMapsCenterInsideClipSpace(t *testing.T) {
	bounds := AABB{Min: [3]float32{-1, 0, -1}, Max: [3]float32{1, 2, 1}}
	for _, dir := range []math.Vec3{{Y: 1}, {X: 1, Y: 1}, {Z: -1}} {
		m := LightMatrix(dir, bounds)
		for _, p := range [][3]float32{bounds.Min, bounds.Max, bounds.Center().Array()} {
			c := m.TransformPoint(p)
			for i := range 3 {
				assert.LessOrEqual(t, c[i], float32(1.0001), "dir %v point %v", dir, p)
				assert.GreaterOrEqual(t, c[i], float32(-1.0001), "dir %v point %v", dir, p)
			}
		}
	}
}
