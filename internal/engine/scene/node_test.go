package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/physview/pkg/math"
)

func TestAddReparents(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	child := NewGroup("child")

	a.Add(child)
	require.Equal(t, a, child.Parent())

	b.Add(child)
	assert.Equal(t, b, child.Parent())
	assert.Empty(t, a.Children())
	assert.Len(t, b.Children(), 1)

	// Adding to the same parent twice keeps a single entry.
	b.Add(child)
	assert.Len(t, b.Children(), 1)
}

func TestRemove(t *testing.T) {
	root := NewGroup("root")
	child := NewGroup("child")
	root.Add(child)

	assert.True(t, root.Remove(child))
	assert.Nil(t, child.Parent())
	assert.False(t, root.Remove(child))
}

func TestFindAndCount(t *testing.T) {
	root := NewGroup("root")
	body := NewGroup("torso")
	root.Add(body)
	body.Add(NewMesh(&Geometry{Shape: "sphere"}, NewMaterial()))
	body.Add(NewMesh(&Geometry{Shape: "box"}, NewMaterial()))
	root.Add(NewLightNode(NewLight(LightDirectional)))

	assert.Equal(t, body, root.Find("torso"))
	assert.Nil(t, root.Find("missing"))
	assert.Equal(t, 2, root.Count(KindMesh))
	assert.Equal(t, 1, root.Count(KindLight))
	assert.Equal(t, 2, root.Count(KindGroup))
}

func TestWalkSkipsSubtree(t *testing.T) {
	root := NewGroup("root")
	skip := NewGroup("skip")
	root.Add(skip)
	skip.Add(NewGroup("hidden"))
	root.Add(NewGroup("visible"))

	var seen []string
	root.Walk(func(n *Node, _ int) bool {
		seen = append(seen, n.Name)
		return n.Name != "skip"
	})
	assert.Equal(t, []string{"root", "skip", "visible"}, seen)
}

func TestWorldMatrix(t *testing.T) {
	root := NewGroup("root")
	root.Transform.Position = math.Vec3{X: 1}
	child := NewGroup("child")
	child.Transform.Position = math.Vec3{Y: 2}
	child.Transform.Scale = math.Vec3{X: 2, Y: 2, Z: 2}
	root.Add(child)

	p := child.WorldMatrix().TransformVec3(math.Vec3{Z: 1})
	assert.InDelta(t, 1, p.X, 1e-6)
	assert.InDelta(t, 2, p.Y, 1e-6)
	assert.InDelta(t, 2, p.Z, 1e-6)
}

func TestDump(t *testing.T) {
	root := NewGroup("MuJoCo Root")
	body := NewGroup("ball")
	body.BodyID = 1
	root.Add(body)
	body.Add(NewMesh(&Geometry{Shape: "sphere", Positions: make([]float32, 9)}, NewMaterial()))

	var sb strings.Builder
	require.NoError(t, root.Dump(&sb))
	assert.Equal(t, "group \"MuJoCo Root\"\n  group \"ball\" body=1\n    mesh geometry=sphere(3 verts)\n", sb.String())
}

func TestInstancesClamp(t *testing.T) {
	in := NewInstances(2)
	assert.True(t, in.Set(1, math.Vec3{X: 1}, math.QuatIdentity(), math.One))
	assert.False(t, in.Set(2, math.Vec3{}, math.QuatIdentity(), math.One))
	assert.False(t, in.Set(-1, math.Vec3{}, math.QuatIdentity(), math.One))

	in.SetCount(5)
	assert.Equal(t, 2, in.Count)
	in.SetCount(-3)
	assert.Equal(t, 0, in.Count)
	assert.Equal(t, float32(1), in.At(1).Position.X)
}

func TestMaterialMatches(t *testing.T) {
	tex := &Texture{Index: 0}
	m := NewMaterial()
	m.Texture = tex
	m.Roughness = 0.2

	assert.True(t, m.Matches([3]float32{1, 1, 1}, 1, tex))
	assert.False(t, m.Matches([3]float32{1, 1, 1}, 0.5, tex))
	assert.False(t, m.Matches([3]float32{1, 1, 1}, 1, &Texture{Index: 0}))
	assert.False(t, m.Matches([3]float32{1, 0, 1}, 1, tex))
}
