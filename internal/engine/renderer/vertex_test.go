package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/physview/internal/engine/scene"
)

func TestInterleave(t *testing.T) {
	g := &scene.Geometry{
		Positions: []float32{1, 2, 3, 4, 5, 6},
		Normals:   []float32{0, 0, 1, 0, 1, 0},
		UVs:       []float32{0.5, 0.25, 1, 1},
	}
	assert.Equal(t, []float32{
		1, 2, 3, 0, 0, 1, 0.5, 0.25,
		4, 5, 6, 0, 1, 0, 1, 1,
	}, Interleave(g))
}

func TestInterleaveMissingAttributes(t *testing.T) {
	g := &scene.Geometry{Positions: []float32{1, 2, 3}}
	assert.Equal(t, []float32{1, 2, 3, 0, 0, 0, 0, 0}, Interleave(g))
}

func TestShininess(t *testing.T) {
	assert.Equal(t, float32(2), shininess(1))
	assert.Equal(t, float32(2048), shininess(0))
	assert.Equal(t, shininess(0), shininess(-3))
}
