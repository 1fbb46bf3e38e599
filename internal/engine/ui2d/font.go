package ui2d

import (
	"image"
	"image/color"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Printable ASCII is baked into the atlas; other runes draw as '?'.
const (
	firstGlyph  = ' '
	lastGlyph   = '~'
	atlasCols   = 16
	replacement = '?'
)

// Atlas is a grid of fixed-size glyph cells rendered from basicfont.
type Atlas struct {
	Image  *image.RGBA
	GlyphW int
	GlyphH int
}

// NewAtlas renders the printable ASCII range of basicfont.Face7x13 into
// white glyphs on a transparent background.
func NewAtlas() *Atlas {
	face := basicfont.Face7x13
	gw, gh := face.Advance, face.Height
	n := int(lastGlyph-firstGlyph) + 1
	rows := (n + atlasCols - 1) / atlasCols

	img := image.NewRGBA(image.Rect(0, 0, atlasCols*gw, rows*gh))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	for r := firstGlyph; r <= lastGlyph; r++ {
		i := int(r - firstGlyph)
		x, y := (i%atlasCols)*gw, (i/atlasCols)*gh
		d.Dot = fixed.P(x, y+face.Ascent)
		d.DrawString(string(r))
	}
	return &Atlas{Image: img, GlyphW: gw, GlyphH: gh}
}

// UV returns the texture coordinates of r's cell.
func (a *Atlas) UV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = replacement
	}
	i := int(r - firstGlyph)
	b := a.Image.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	x, y := float32((i%atlasCols)*a.GlyphW), float32((i/atlasCols)*a.GlyphH)
	return x / w, y / h, (x + float32(a.GlyphW)) / w, (y + float32(a.GlyphH)) / h
}

// Measure returns the size of text at scale, honoring newlines.
func (a *Atlas) Measure(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		longest = max(longest, cur)
	}
	return float32(longest*a.GlyphW) * scale, float32(lines*a.GlyphH) * scale
}

// Font is an Atlas uploaded to a GL texture.
type Font struct {
	*Atlas
	texture uint32
}

// NewFont uploads a fresh atlas. Requires a current GL context.
func NewFont() *Font {
	a := NewAtlas()
	f := &Font{Atlas: a}
	b := a.Image.Bounds()

	gl.GenTextures(1, &f.texture)
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(a.Image.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return f
}

// TextureID returns the GL texture holding the atlas.
func (f *Font) TextureID() uint32 {
	return f.texture
}

// Close deletes the texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
