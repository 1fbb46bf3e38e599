package formats

import gomath "math"

// Mesh is an indexed triangle mesh as read from a mesh file. Vertices and
// Normals are packed xyz, UVs packed uv, Faces three indices per triangle.
// Normals and UVs are nil when the file carries none.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	UVs      []float32
	Faces    []int32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces) / 3
}

// Scale multiplies every vertex component-wise by s.
func (m *Mesh) Scale(s [3]float32) {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		m.Vertices[i] *= s[0]
		m.Vertices[i+1] *= s[1]
		m.Vertices[i+2] *= s[2]
	}
	if m.Normals == nil || (s[0] == s[1] && s[1] == s[2] && s[0] > 0) {
		return
	}
	// Non-uniform scale: normals transform by the inverse scale.
	for i := 0; i+2 < len(m.Normals); i += 3 {
		nx, ny, nz := m.Normals[i]/s[0], m.Normals[i+1]/s[1], m.Normals[i+2]/s[2]
		l := float32(gomath.Sqrt(float64(nx*nx + ny*ny + nz*nz)))
		if l > 0 {
			nx, ny, nz = nx/l, ny/l, nz/l
		}
		m.Normals[i], m.Normals[i+1], m.Normals[i+2] = nx, ny, nz
	}
}
