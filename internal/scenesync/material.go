package scenesync

import (
	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/internal/physics"
)

// GroundTexture is the texture index given a tiled repeat. Scene files
// conventionally declare the floor grid as their third texture.
const GroundTexture = 2

// GroundRepeat is the tiling applied to GroundTexture.
const GroundRepeat = 50

// BuildTexture expands texture texIndex from packed RGB to opaque RGBA.
func BuildTexture(m *physics.Model, texIndex int) *scene.Texture {
	w, h, adr := m.TexWidth[texIndex], m.TexHeight[texIndex], m.TexAdr[texIndex]
	n := w * h
	rgb := m.TexRGB[adr : adr+3*n]
	pixels := make([]byte, 4*n)
	for p := 0; p < n; p++ {
		pixels[4*p] = rgb[3*p]
		pixels[4*p+1] = rgb[3*p+1]
		pixels[4*p+2] = rgb[3*p+2]
		pixels[4*p+3] = 255
	}

	repeat := float32(1)
	if texIndex == GroundTexture {
		repeat = GroundRepeat
	}
	return &scene.Texture{
		Index:  texIndex,
		Width:  w,
		Height: h,
		Pixels: pixels,
		WrapS:  scene.WrapRepeat,
		WrapT:  scene.WrapRepeat,
		Repeat: [2]float32{repeat, repeat},
	}
}

// materialChain hands out materials for consecutive geoms, reusing the
// previous material while color, opacity and texture stay the same.
type materialChain struct {
	m       *physics.Model
	cache   *Cache
	current *scene.Material
}

func newMaterialChain(m *physics.Model, cache *Cache) *materialChain {
	return &materialChain{m: m, cache: cache, current: scene.NewMaterial()}
}

// forGeom returns the material for geom g.
func (c *materialChain) forGeom(g int) *scene.Material {
	m := c.m
	rgba := m.GeomRGBA[4*g : 4*g+4]
	var tex *scene.Texture

	matID := m.GeomMatID[g]
	if matID != physics.NoRef {
		rgba = m.MatRGBA[4*matID : 4*matID+4]
		if texID := m.MatTexID[matID]; texID != physics.NoRef {
			tex = c.cache.Texture(texID, func() *scene.Texture {
				return BuildTexture(m, texID)
			})
		}
	}

	color := [3]float32{rgba[0], rgba[1], rgba[2]}
	if c.current.Matches(color, rgba[3], tex) {
		return c.current
	}

	mat := scene.NewMaterial()
	mat.Color = color
	mat.Opacity = rgba[3]
	mat.Transparent = rgba[3] < 1
	mat.Texture = tex
	if matID != physics.NoRef {
		mat.SpecularIntensity = m.MatSpecular[matID] * 0.5
		mat.Reflectivity = m.MatReflectance[matID]
		mat.Roughness = 1 - m.MatShininess[matID]
		mat.Metalness = 0.1
	}
	c.current = mat
	c.cache.stats.Materials++
	return mat
}
