package scenesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/physics/physicstest"
)

// chain builds world -> a -> b -> c where only c carries geometry.
func chain(t *testing.T, worldGeom bool) *physics.Model {
	t.Helper()
	b := physics.NewBuilder()
	a := b.Body("a", 0, [3]float64{0, 0, 1}, [4]float64{1, 0, 0, 0})
	mid := b.Body("b", a, [3]float64{0, 0, 1}, [4]float64{1, 0, 0, 0})
	c := b.Body("c", mid, [3]float64{0, 0, 1}, [4]float64{1, 0, 0, 0})
	b.Geom(physics.NewGeomSpec(physics.GeomSphere, c))
	if worldGeom {
		b.Geom(physics.NewGeomSpec(physics.GeomPlane, 0))
	}
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func TestParseHierarchy(t *testing.T) {
	for in, want := range map[string]Hierarchy{
		"":             HierarchyFlat,
		"flat":         HierarchyFlat,
		"parent_chain": HierarchyParentChain,
	} {
		got, err := ParseHierarchy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseHierarchy("tree")
	assert.Error(t, err)
}

func TestMissingBodiesSynthesized(t *testing.T) {
	m := chain(t, true)
	core, logs := observer.New(zap.InfoLevel)
	s, err := Build(m, Options{Logger: zap.New(core)})
	require.NoError(t, err)

	for b, grp := range s.Bodies {
		require.NotNil(t, grp, "body %d", b)
		assert.Equal(t, b, grp.BodyID)
		assert.Equal(t, m.BodyName(b), grp.Name)
	}
	assert.Equal(t, 2, logs.FilterMessage("body without geometry, adding empty group").Len())
}

func TestFlatHierarchy(t *testing.T) {
	s := build(t, chain(t, true))

	world := s.Bodies[0]
	assert.Equal(t, s.Root, world.Parent())
	for b := 1; b < len(s.Bodies); b++ {
		// Every body is one hop below the world body, never deeper.
		assert.Equal(t, world, s.Bodies[b].Parent(), "body %d", b)
	}
}

func TestFlatHierarchyWithoutWorldGeometry(t *testing.T) {
	s := build(t, chain(t, false))

	for b, grp := range s.Bodies {
		assert.Equal(t, s.Root, grp.Parent(), "body %d", b)
	}
}

func TestParentChainHierarchy(t *testing.T) {
	m := chain(t, false)
	s, err := Build(m, Options{Hierarchy: HierarchyParentChain, Logger: zap.NewNop()})
	require.NoError(t, err)

	assert.Equal(t, s.Root, s.Bodies[0].Parent())
	for b := 1; b < m.NBody; b++ {
		assert.Equal(t, s.Bodies[m.BodyParentID[b]], s.Bodies[b].Parent(), "body %d", b)
	}
}

func TestAttachBodiesReachable(t *testing.T) {
	m := physicstest.Arm()
	for _, mode := range []Hierarchy{HierarchyFlat, HierarchyParentChain} {
		s, err := Build(m, Options{Hierarchy: mode, Logger: zap.NewNop()})
		require.NoError(t, err)

		reached := map[*scene.Node]bool{}
		s.Root.Walk(func(n *scene.Node, _ int) bool {
			reached[n] = true
			return true
		})
		for b, grp := range s.Bodies {
			assert.True(t, reached[grp], "mode %d body %d unreachable", mode, b)
		}
	}
}

func TestAttachBodiesEmpty(t *testing.T) {
	root := scene.NewGroup(RootName)
	AttachBodies(nil, root, nil, HierarchyFlat, zap.NewNop())
	assert.Empty(t, root.Children())
}
