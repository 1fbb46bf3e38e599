package scenesync

import (
	"github.com/Faultbox/physview/internal/engine/coords"
	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/internal/physics"
)

// CacheStats counts cache lookups.
type CacheStats struct {
	MeshHits, MeshMisses       int
	TextureHits, TextureMisses int
	Materials                  int
}

// Cache deduplicates geometry by mesh index and textures by texture index
// for the lifetime of one built scene. It never evicts.
type Cache struct {
	meshes   map[int]*scene.Geometry
	textures map[int]*scene.Texture
	stats    CacheStats
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		meshes:   make(map[int]*scene.Geometry),
		textures: make(map[int]*scene.Texture),
	}
}

// Mesh returns the geometry cached for meshIndex, calling build on the
// first request.
func (c *Cache) Mesh(meshIndex int, build func() *scene.Geometry) *scene.Geometry {
	if g, ok := c.meshes[meshIndex]; ok {
		c.stats.MeshHits++
		return g
	}
	c.stats.MeshMisses++
	g := build()
	c.meshes[meshIndex] = g
	return g
}

// Texture returns the texture cached for texIndex, calling build on the
// first request.
func (c *Cache) Texture(texIndex int, build func() *scene.Texture) *scene.Texture {
	if t, ok := c.textures[texIndex]; ok {
		c.stats.TextureHits++
		return t
	}
	c.stats.TextureMisses++
	t := build()
	c.textures[texIndex] = t
	return t
}

// Stats returns the lookup counters.
func (c *Cache) Stats() CacheStats {
	return c.stats
}

// SameMaterial reports whether two materials agree on color, opacity and
// texture identity.
func SameMaterial(a, b *scene.Material) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Matches(b.Color, b.Opacity, b.Texture)
}

// BuildMeshGeometry copies mesh meshIndex out of the model's packed
// buffers, converting vertices and normals to the render frame.
func BuildMeshGeometry(m *physics.Model, meshIndex int) *scene.Geometry {
	vertAdr, vertNum, faceAdr, faceNum := m.MeshRange(meshIndex)

	g := &scene.Geometry{Shape: "mesh"}
	g.Positions = append([]float32(nil), m.MeshVert[3*vertAdr:3*(vertAdr+vertNum)]...)
	g.Normals = append([]float32(nil), m.MeshNormal[3*vertAdr:3*(vertAdr+vertNum)]...)
	coords.SwizzleInPlace(g.Positions)
	coords.SwizzleInPlace(g.Normals)

	if uvAdr := m.MeshTexcoordAdr[meshIndex]; uvAdr >= 0 {
		g.UVs = append([]float32(nil), m.MeshTexcoord[2*uvAdr:2*(uvAdr+vertNum)]...)
	}

	faces := m.MeshFace[3*faceAdr : 3*(faceAdr+faceNum)]
	g.Indices = make([]uint32, len(faces))
	for i, f := range faces {
		g.Indices[i] = uint32(f)
	}
	return g
}
