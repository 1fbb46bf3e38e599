package scene

// Geometry is an indexed triangle list. Positions and Normals hold xyz
// triples, UVs hold uv pairs and may be empty.
type Geometry struct {
	Shape     string
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// ReflectorOptions configures a mirror surface.
type ReflectorOptions struct {
	ClipBias      float32
	TextureWidth  int
	TextureHeight int
}
