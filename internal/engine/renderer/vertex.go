package renderer

import "github.com/Faultbox/physview/internal/engine/scene"

// VertexStride is the number of floats per interleaved vertex.
const VertexStride = 8

// Interleave packs g into position, normal, uv vertices. Missing normals
// and uvs are zero.
func Interleave(g *scene.Geometry) []float32 {
	n := g.VertexCount()
	out := make([]float32, n*VertexStride)
	for i := range n {
		v := out[i*VertexStride : (i+1)*VertexStride]
		copy(v[0:3], g.Positions[3*i:3*i+3])
		if len(g.Normals) >= 3*i+3 {
			copy(v[3:6], g.Normals[3*i:3*i+3])
		}
		if len(g.UVs) >= 2*i+2 {
			copy(v[6:8], g.UVs[2*i:2*i+2])
		}
	}
	return out
}
