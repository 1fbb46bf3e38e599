// Package ui2d is the immediate-mode 2D layer the GL front-end draws its
// control panel with.
package ui2d

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/physview/internal/engine/shader"
)

const flatVertexShader = `
#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 uProjection;

out vec4 vColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vColor = aColor;
}
`

const flatFragmentShader = `
#version 410 core

in vec4 vColor;
out vec4 FragColor;

void main() {
	FragColor = vColor;
}
`

const texturedVertexShader = `
#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
layout (location = 2) in vec4 aColor;

uniform mat4 uProjection;

out vec2 vUV;
out vec4 vColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
	vUV = aUV;
	vColor = aColor;
}
`

// Glyph cells carry coverage in alpha; the vertex color tints them.
const glyphFragmentShader = `
#version 410 core

uniform sampler2D uTexture;

in vec2 vUV;
in vec4 vColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vColor.rgb, vColor.a * texture(uTexture, vUV).a);
}
`

// The scene target is linear; convert to sRGB on the way out.
const sceneFragmentShader = `
#version 410 core

uniform sampler2D uTexture;

in vec2 vUV;
in vec4 vColor;
out vec4 FragColor;

void main() {
	vec4 c = texture(uTexture, vUV);
	FragColor = vec4(clamp(pow(c.rgb, vec3(1.0 / 2.2)), 0.0, 1.0), 1.0);
}
`

// batch is one shader program fed by a vertex list rebuilt every frame.
type batch struct {
	program    uint32
	vao, vbo   uint32
	stride     int32
	projection int32
	sampler    int32
	verts      []float32
}

// newBatch links a program and lays out its vertex attributes. sizes
// gives the float count of each attribute, in location order.
func newBatch(vertexSrc, fragmentSrc string, sizes ...int32) (*batch, error) {
	program, err := shader.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	b := &batch{
		program:    program,
		projection: shader.GetUniform(program, "uProjection"),
		sampler:    shader.GetUniform(program, "uTexture"),
		verts:      make([]float32, 0, 4096),
	}
	for _, n := range sizes {
		b.stride += n
	}

	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	var offset int32
	for loc, n := range sizes {
		gl.VertexAttribPointerWithOffset(uint32(loc), n, gl.FLOAT, false, b.stride*4, uintptr(offset*4))
		gl.EnableVertexAttribArray(uint32(loc))
		offset += n
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b, nil
}

// draw uploads the queued vertices and draws them. texture 0 leaves the
// sampler unbound.
func (b *batch) draw(proj *mgl32.Mat4, texture uint32) {
	if len(b.verts) == 0 {
		return
	}
	gl.UseProgram(b.program)
	gl.UniformMatrix4fv(b.projection, 1, false, &proj[0])
	if texture != 0 {
		gl.Uniform1i(b.sampler, 0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, texture)
	}
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(b.verts)*4, gl.Ptr(b.verts), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(b.verts))/b.stride)
}

func (b *batch) close() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteProgram(b.program)
}

// quad appends two triangles covering (x, y, w, h). uv holds u0, v0, u1,
// v1 and is written only for textured batches.
func (b *batch) quad(x, y, w, h float32, uv [4]float32, textured bool, c Color) {
	corners := [6][4]float32{
		{x, y, uv[0], uv[1]},
		{x + w, y, uv[2], uv[1]},
		{x + w, y + h, uv[2], uv[3]},
		{x, y, uv[0], uv[1]},
		{x + w, y + h, uv[2], uv[3]},
		{x, y + h, uv[0], uv[3]},
	}
	for _, v := range corners {
		b.verts = append(b.verts, v[0], v[1])
		if textured {
			b.verts = append(b.verts, v[2], v[3])
		}
		b.verts = append(b.verts, c.R, c.G, c.B, c.A)
	}
}

// Renderer batches flat quads and text and draws them over the scene.
type Renderer struct {
	width, height int

	flat   *batch
	glyphs *batch
	scene  *batch
	font   *Font
}

// New creates the renderer. Requires a current GL context.
func New(width, height int) (*Renderer, error) {
	r := &Renderer{width: width, height: height}

	var err error
	if r.flat, err = newBatch(flatVertexShader, flatFragmentShader, 2, 4); err != nil {
		return nil, fmt.Errorf("flat program: %w", err)
	}
	if r.glyphs, err = newBatch(texturedVertexShader, glyphFragmentShader, 2, 2, 4); err != nil {
		r.Close()
		return nil, fmt.Errorf("glyph program: %w", err)
	}
	if r.scene, err = newBatch(texturedVertexShader, sceneFragmentShader, 2, 2, 4); err != nil {
		r.Close()
		return nil, fmt.Errorf("scene program: %w", err)
	}
	r.font = NewFont()
	return r, nil
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
}

// GetScreenSize returns the current screen dimensions.
func (r *Renderer) GetScreenSize() (int, int) {
	return r.width, r.height
}

func (r *Renderer) projection() mgl32.Mat4 {
	return mgl32.Ortho2D(0, float32(r.width), float32(r.height), 0)
}

// Begin starts a new UI frame.
func (r *Renderer) Begin() {
	r.flat.verts = r.flat.verts[:0]
	r.glyphs.verts = r.glyphs.verts[:0]
}

// End draws everything queued since Begin, text over quads.
func (r *Renderer) End() {
	restore := overlayState(true)
	defer restore()

	proj := r.projection()
	r.flat.draw(&proj, 0)
	r.glyphs.draw(&proj, r.font.TextureID())
}

// Flush draws everything queued so far. Later draws appear on top.
func (r *Renderer) Flush() {
	r.End()
	r.Begin()
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	if r.font != nil {
		r.font.Close()
	}
	for _, b := range []*batch{r.flat, r.glyphs, r.scene} {
		if b != nil {
			b.close()
		}
	}
}

// overlayState disables depth and culling for 2D drawing and returns a
// function restoring the previous state.
func overlayState(blend bool) func() {
	var prevBlend, prevDepth, prevCull int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)
	gl.GetIntegerv(gl.CULL_FACE, &prevCull)

	if blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	return func() {
		gl.BindVertexArray(0)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.UseProgram(0)
		setCap(gl.BLEND, prevBlend)
		setCap(gl.DEPTH_TEST, prevDepth)
		setCap(gl.CULL_FACE, prevCull)
	}
}

func setCap(c uint32, on int32) {
	if on == gl.TRUE {
		gl.Enable(c)
	} else {
		gl.Disable(c)
	}
}

// DrawRect draws a filled rectangle.
func (r *Renderer) DrawRect(x, y, width, height float32, color Color) {
	r.flat.quad(x, y, width, height, [4]float32{}, false, color)
}

// DrawRectOutline draws a rectangle outline.
func (r *Renderer) DrawRectOutline(x, y, width, height, thickness float32, color Color) {
	r.DrawRect(x, y, width, thickness, color)
	r.DrawRect(x, y+height-thickness, width, thickness, color)
	r.DrawRect(x, y+thickness, thickness, height-2*thickness, color)
	r.DrawRect(x+width-thickness, y+thickness, thickness, height-2*thickness, color)
}

// DrawPanel draws a filled rectangle with a one pixel border.
func (r *Renderer) DrawPanel(x, y, width, height float32, bg, border Color) {
	r.DrawRect(x, y, width, height, bg)
	r.DrawRectOutline(x, y, width, height, 1, border)
}

// DrawText draws text with its top-left corner at (x, y).
func (r *Renderer) DrawText(x, y float32, text string, scale float32, color Color) {
	cw := float32(r.font.GlyphW) * scale
	ch := float32(r.font.GlyphH) * scale

	penX := x
	for _, c := range text {
		switch c {
		case '\n':
			penX = x
			y += ch
			continue
		case ' ':
		default:
			u0, v0, u1, v1 := r.font.UV(c)
			r.glyphs.quad(penX, y, cw, ch, [4]float32{u0, v0, u1, v1}, true, color)
		}
		penX += cw
	}
}

// MeasureText returns the width and height of rendered text.
func (r *Renderer) MeasureText(text string, scale float32) (float32, float32) {
	return r.font.Measure(text, scale)
}

// DrawSceneTexture draws the rendered scene into (x, y, w, h) right away.
// Call it before the panel so the panel lands on top.
func (r *Renderer) DrawSceneTexture(x, y, w, h float32, textureID uint32) {
	if textureID == 0 {
		return
	}
	restore := overlayState(false)
	defer restore()

	gl.BindTexture(gl.TEXTURE_2D, textureID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// Render targets are bottom-up; flip V.
	r.scene.verts = r.scene.verts[:0]
	r.scene.quad(x, y, w, h, [4]float32{0, 1, 1, 0}, true, ColorWhite)
	proj := r.projection()
	r.scene.draw(&proj, textureID)
}
