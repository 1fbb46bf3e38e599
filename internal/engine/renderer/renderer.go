// Package renderer draws the scene graph with OpenGL into an offscreen
// target the UI layer composites.
package renderer

import (
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/engine/camera"
	"github.com/Faultbox/physview/internal/engine/framebuffer"
	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/internal/engine/shader"
	"github.com/Faultbox/physview/internal/engine/shadow"
	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// Background is the clear color.
	Background [3]float32
	// Ambient light applied to every surface.
	Ambient [3]float32
	// Samples is the MSAA sample count, 0 or 1 for none.
	Samples int
}

// DefaultConfig returns a neutral gray background with dim ambient light.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		Background: [3]float32{0.15, 0.16, 0.18},
		Ambient:    [3]float32{0.2, 0.2, 0.2},
		Samples:    4,
	}
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

type sceneUniforms struct {
	model         int32
	view          int32
	projection    int32
	normal        int32
	lightSpace    int32
	repeat        int32
	color         int32
	hasTexture    int32
	texture       int32
	specular      int32
	shininess     int32
	eye           int32
	ambient       int32
	lightCount    int32
	lightType     int32
	lightPos      int32
	lightDir      int32
	lightColor    int32
	lightCone     int32
	lightRange    int32
	shadowLight   int32
	receiveShadow int32
	shadowMap     int32
}

// Renderer handles all OpenGL rendering of the 3D scene.
type Renderer struct {
	config Config

	program      uint32
	depthProgram uint32
	u            sceneUniforms
	depthModel   int32
	depthLight   int32

	target    *framebuffer.Framebuffer
	shadowMap *shadow.Map

	meshes   map[*scene.Geometry]*gpuMesh
	textures map[*scene.Texture]uint32

	list DrawList
	log  *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		meshes:   make(map[*scene.Geometry]*gpuMesh),
		textures: make(map[*scene.Texture]uint32),
		log:      logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	if r.program, err = shader.CompileProgram(sceneVertexShader, sceneFragmentShader); err != nil {
		return nil, fmt.Errorf("scene shader: %w", err)
	}
	if r.depthProgram, err = shader.CompileProgram(depthVertexShader, depthFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("depth shader: %w", err)
	}
	r.lookupUniforms()

	if r.target, err = framebuffer.New(int32(cfg.Width), int32(cfg.Height), int32(cfg.Samples)); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) lookupUniforms() {
	p := r.program
	r.u = sceneUniforms{
		model:         shader.GetUniform(p, "uModel"),
		view:          shader.GetUniform(p, "uView"),
		projection:    shader.GetUniform(p, "uProjection"),
		normal:        shader.GetUniform(p, "uNormalMatrix"),
		lightSpace:    shader.GetUniform(p, "uLightSpace"),
		repeat:        shader.GetUniform(p, "uRepeat"),
		color:         shader.GetUniform(p, "uColor"),
		hasTexture:    shader.GetUniform(p, "uHasTexture"),
		texture:       shader.GetUniform(p, "uTexture"),
		specular:      shader.GetUniform(p, "uSpecular"),
		shininess:     shader.GetUniform(p, "uShininess"),
		eye:           shader.GetUniform(p, "uEye"),
		ambient:       shader.GetUniform(p, "uAmbient"),
		lightCount:    shader.GetUniform(p, "uLightCount"),
		lightType:     shader.GetUniform(p, "uLightType[0]"),
		lightPos:      shader.GetUniform(p, "uLightPos[0]"),
		lightDir:      shader.GetUniform(p, "uLightDir[0]"),
		lightColor:    shader.GetUniform(p, "uLightColor[0]"),
		lightCone:     shader.GetUniform(p, "uLightCone[0]"),
		lightRange:    shader.GetUniform(p, "uLightRange[0]"),
		shadowLight:   shader.GetUniform(p, "uShadowLight"),
		receiveShadow: shader.GetUniform(p, "uReceiveShadow"),
		shadowMap:     shader.GetUniform(p, "uShadowMap"),
	}
	r.depthModel = shader.GetUniform(r.depthProgram, "uModel")
	r.depthLight = shader.GetUniform(r.depthProgram, "uLightSpace")
}

// Close releases all GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.Release()
	if r.target != nil {
		r.target.Destroy()
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
	if r.depthProgram != 0 {
		gl.DeleteProgram(r.depthProgram)
	}
}

// Release drops the uploaded meshes and textures. They are uploaded again
// on first use, so call it when the scene is replaced.
func (r *Renderer) Release() {
	for g, m := range r.meshes {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		delete(r.meshes, g)
	}
	for t, id := range r.textures {
		gl.DeleteTextures(1, &id)
		delete(r.textures, t)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	if err := r.target.Resize(int32(width), int32(height)); err != nil {
		r.log.Error("resizing scene target", zap.Error(err))
		return
	}
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Target returns the offscreen framebuffer the scene is drawn into.
func (r *Renderer) Target() *framebuffer.Framebuffer {
	return r.target
}

// Stats returns the draw counts of the last frame.
func (r *Renderer) Stats() (draws, lights int) {
	return len(r.list.Opaque) + len(r.list.Transparent), len(r.list.Lights)
}

// Render draws root as seen by cam and returns the color texture.
func (r *Renderer) Render(root *scene.Node, cam *camera.OrbitCamera) uint32 {
	r.list.Collect(root)
	eye := cam.Position()
	r.list.SortTransparent(eye)
	if r.list.DroppedLights > 0 {
		r.log.Debug("lights beyond shader limit dropped", zap.Int("dropped", r.list.DroppedLights))
	}

	lightSpace := math.Identity()
	shadowLight := r.list.ShadowLight()
	if shadowLight >= 0 {
		var ok bool
		if lightSpace, ok = r.shadowPass(root, r.list.Lights[shadowLight]); !ok {
			shadowLight = -1
		}
	}

	restore := r.target.BindWithViewport()

	bg := r.config.Background
	r.target.Clear(bg[0], bg[1], bg[2], 1)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)

	aspect := float32(max(r.config.Width, 1)) / float32(max(r.config.Height, 1))
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(aspect)

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.u.view, 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.u.projection, 1, false, proj.Ptr())
	gl.UniformMatrix4fv(r.u.lightSpace, 1, false, lightSpace.Ptr())
	gl.Uniform3f(r.u.eye, eye.X, eye.Y, eye.Z)
	gl.Uniform3f(r.u.ambient, r.config.Ambient[0], r.config.Ambient[1], r.config.Ambient[2])
	r.uploadLights()

	gl.Uniform1i(r.u.texture, 0)
	gl.Uniform1i(r.u.shadowMap, 1)
	gl.Uniform1i(r.u.shadowLight, int32(shadowLight))
	if shadowLight >= 0 {
		r.shadowMap.BindTexture(gl.TEXTURE1)
	}

	for i := range r.list.Opaque {
		r.draw(&r.list.Opaque[i])
	}

	if len(r.list.Transparent) > 0 {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		for i := range r.list.Transparent {
			r.draw(&r.list.Transparent[i])
		}
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}

	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
	restore()
	r.target.Resolve()
	return r.target.ColorTexture()
}

func (r *Renderer) uploadLights() {
	n := len(r.list.Lights)
	gl.Uniform1i(r.u.lightCount, int32(n))
	if n == 0 {
		return
	}
	types := make([]int32, n)
	pos := make([]float32, 0, 3*n)
	dir := make([]float32, 0, 3*n)
	color := make([]float32, 0, 3*n)
	cone := make([]float32, 0, 2*n)
	rng := make([]float32, 0, 2*n)
	for i, l := range r.list.Lights {
		types[i] = int32(l.Type)
		pos = append(pos, l.Position.X, l.Position.Y, l.Position.Z)
		dir = append(dir, l.Direction.X, l.Direction.Y, l.Direction.Z)
		color = append(color, l.Color[:]...)
		cone = append(cone, l.CosInner, l.CosOuter)
		rng = append(rng, l.Distance, l.Decay)
	}
	gl.Uniform1iv(r.u.lightType, int32(n), &types[0])
	gl.Uniform3fv(r.u.lightPos, int32(n), &pos[0])
	gl.Uniform3fv(r.u.lightDir, int32(n), &dir[0])
	gl.Uniform3fv(r.u.lightColor, int32(n), &color[0])
	gl.Uniform2fv(r.u.lightCone, int32(n), &cone[0])
	gl.Uniform2fv(r.u.lightRange, int32(n), &rng[0])
}

// shadowPass renders the depth of every shadow caster from light and
// returns the light's view-projection.
func (r *Renderer) shadowPass(root *scene.Node, light LightDraw) (math.Mat4, bool) {
	bounds := shadow.SceneBounds(root)
	if bounds.Empty() {
		return math.Identity(), false
	}
	res := int32(light.ShadowMapSize)
	if res <= 0 {
		res = shadow.DefaultResolution
	}
	if r.shadowMap == nil {
		sm, err := shadow.NewMap(res)
		if err != nil {
			r.log.Warn("shadows disabled", zap.Error(err))
			return math.Identity(), false
		}
		r.shadowMap = sm
	}
	r.shadowMap.Resize(res)

	lightSpace := shadow.LightMatrix(light.Direction.Scale(-1), bounds)

	restore := r.shadowMap.Bind()
	gl.UseProgram(r.depthProgram)
	gl.UniformMatrix4fv(r.depthLight, 1, false, lightSpace.Ptr())
	for _, list := range [][]Draw{r.list.Opaque, r.list.Transparent} {
		for i := range list {
			d := &list[i]
			if !d.CastShadow {
				continue
			}
			m := r.mesh(d.Geometry)
			gl.UniformMatrix4fv(r.depthModel, 1, false, d.Model.Ptr())
			gl.BindVertexArray(m.vao)
			gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
		}
	}
	gl.BindVertexArray(0)
	restore()
	return lightSpace, true
}

func (r *Renderer) draw(d *Draw) {
	mat := d.Material
	m := r.mesh(d.Geometry)

	normal := d.Model.NormalMatrix()
	gl.UniformMatrix4fv(r.u.model, 1, false, d.Model.Ptr())
	gl.UniformMatrix3fv(r.u.normal, 1, false, &normal[0])
	gl.Uniform4f(r.u.color, mat.Color[0], mat.Color[1], mat.Color[2], mat.Opacity)
	gl.Uniform1f(r.u.specular, mat.SpecularIntensity*0.5)
	gl.Uniform1f(r.u.shininess, shininess(mat.Roughness))
	gl.Uniform1i(r.u.receiveShadow, boolInt(d.ReceiveShadow))

	if tex := mat.Texture; tex != nil {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.texture(tex))
		rep := tex.Repeat
		if rep == [2]float32{} {
			rep = [2]float32{1, 1}
		}
		gl.Uniform2f(r.u.repeat, rep[0], rep[1])
		gl.Uniform1i(r.u.hasTexture, 1)
	} else {
		gl.Uniform2f(r.u.repeat, 1, 1)
		gl.Uniform1i(r.u.hasTexture, 0)
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
}

// shininess maps roughness in [0,1] to a Blinn-Phong exponent.
func shininess(roughness float32) float32 {
	r := min(max(roughness, 0), 1)
	return float32(gomath.Pow(2, float64(10*(1-r)+1)))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// mesh uploads g on first use.
func (r *Renderer) mesh(g *scene.Geometry) *gpuMesh {
	if m, ok := r.meshes[g]; ok {
		return m
	}
	vertices := Interleave(g)
	m := &gpuMesh{count: int32(len(g.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)

	// pos(3) + normal(3) + uv(2)
	stride := int32(VertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.meshes[g] = m
	return m
}

// texture uploads t on first use.
func (r *Renderer) texture(t *scene.Texture) uint32 {
	if id, ok := r.textures[t]; ok {
		return id
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(t.Width), int32(t.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(t.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(t.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(t.WrapT))
	r.textures[t] = id
	return id
}

func wrapMode(w scene.Wrap) int32 {
	if w == scene.WrapRepeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}
