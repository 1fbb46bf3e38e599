package mjcf

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/engine/geometry"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/pkg/formats"
)

// Size of builtin textures that give no width or height.
const defaultTextureSize = 64

// assets compiles textures and meshes first, then materials, so materials
// may reference textures declared after them.
func (c *compiler) assets(sections []*element) error {
	var materials []*element
	for _, sec := range sections {
		for _, e := range sec.children {
			var err error
			switch e.name {
			case "texture":
				err = c.texture(e)
			case "mesh":
				err = c.mesh(e)
			case "hfield":
				err = c.hfield(e)
			case "material":
				materials = append(materials, e)
			default:
				c.log.Debug("asset ignored", zap.String("kind", e.name), zap.Int("line", e.line))
			}
			if err != nil {
				return err
			}
		}
	}
	for _, e := range materials {
		if err := c.material(e); err != nil {
			return err
		}
	}
	return nil
}

// assetName returns the explicit name or the file stem.
func assetName(s scope) string {
	if name, ok := s.e.attr("name"); ok {
		return name
	}
	file := path.Base(s.str("file", ""))
	return strings.TrimSuffix(file, path.Ext(file))
}

func (c *compiler) readAsset(dir, file string) ([]byte, error) {
	p := path.Join(c.dir, dir, file)
	data, err := fs.ReadFile(c.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

func (c *compiler) texture(e *element) error {
	s, err := c.scopeFor(e, "texture", nil)
	if err != nil {
		return err
	}
	name := assetName(s)

	var width, height int
	var rgb []byte
	if file, ok := s.get("file"); ok {
		data, err := c.readAsset(c.textureDir, file)
		if err != nil {
			return err
		}
		img, err := formats.ParseImage(data)
		if err != nil {
			return fmt.Errorf("%s: %w", e, err)
		}
		width, height, rgb = img.Width, img.Height, img.RGB
	} else {
		if width, err = s.int("width", defaultTextureSize); err != nil {
			return err
		}
		if height, err = s.int("height", width); err != nil {
			return err
		}
		if width <= 0 || height <= 0 {
			return fmt.Errorf("%s: texture size %dx%d", e, width, height)
		}
		rgb1, err := s.vec3("rgb1", [3]float64{0.8, 0.8, 0.8})
		if err != nil {
			return err
		}
		rgb2, err := s.vec3("rgb2", [3]float64{0.5, 0.5, 0.5})
		if err != nil {
			return err
		}
		builtin := s.str("builtin", "none")
		if rgb, err = builtinTexture(builtin, width, height, rgb1, rgb2); err != nil {
			return fmt.Errorf("%s: %w", e, err)
		}
	}

	id := c.b.Texture(name, width, height, rgb)
	if name != "" {
		c.textures[name] = id
	}
	return nil
}

// builtinTexture renders a procedural texture as packed RGB.
func builtinTexture(kind string, width, height int, rgb1, rgb2 [3]float64) ([]byte, error) {
	toByte := func(c [3]float64) [3]byte {
		var out [3]byte
		for i, v := range c {
			out[i] = byte(max(0, min(255, v*255+0.5)))
		}
		return out
	}
	c1, c2 := toByte(rgb1), toByte(rgb2)

	out := make([]byte, 0, 3*width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var px [3]byte
			switch kind {
			case "checker":
				if (2*x/width+2*y/height)%2 == 0 {
					px = c1
				} else {
					px = c2
				}
			case "gradient":
				t := float64(y) / float64(max(1, height-1))
				for i := range px {
					px[i] = byte(float64(c1[i])*(1-t) + float64(c2[i])*t + 0.5)
				}
			case "flat", "none":
				px = c1
			default:
				return nil, fmt.Errorf("%w: builtin texture %q", ErrUnsupported, kind)
			}
			out = append(out, px[:]...)
		}
	}
	return out, nil
}

func (c *compiler) material(e *element) error {
	s, err := c.scopeFor(e, "material", nil)
	if err != nil {
		return err
	}
	spec := physics.NewMaterialSpec(s.str("name", ""))
	if tex, ok := s.get("texture"); ok {
		id, found := c.textures[tex]
		if !found {
			return s.errorf("texture", "unknown texture %q", tex)
		}
		spec.Texture = id
	}
	if spec.RGBA, err = s.rgba("rgba", spec.RGBA); err != nil {
		return err
	}
	for key, dst := range map[string]*float32{
		"specular":    &spec.Specular,
		"shininess":   &spec.Shininess,
		"reflectance": &spec.Reflectance,
	} {
		v, err := s.float(key, float64(*dst))
		if err != nil {
			return err
		}
		*dst = float32(v)
	}

	id := c.b.Material(spec)
	if spec.Name != "" {
		if _, dup := c.materials[spec.Name]; dup {
			return fmt.Errorf("%s: repeated material name %q", e, spec.Name)
		}
		c.materials[spec.Name] = id
	}
	return nil
}

func (c *compiler) mesh(e *element) error {
	s, err := c.scopeFor(e, "mesh", nil)
	if err != nil {
		return err
	}
	name := assetName(s)

	var mesh *formats.Mesh
	if file, ok := s.get("file"); ok {
		parse, ok := formats.MeshParser(file)
		if !ok {
			return fmt.Errorf("%w: mesh format %q at %s", ErrUnsupported, path.Ext(file), e)
		}
		data, err := c.readAsset(c.meshDir, file)
		if err != nil {
			return err
		}
		if mesh, err = parse(data); err != nil {
			return fmt.Errorf("%s: %w", e, err)
		}
	} else {
		if mesh, err = inlineMesh(s); err != nil {
			return err
		}
	}

	scale, err := s.vec3("scale", [3]float64{1, 1, 1})
	if err != nil {
		return err
	}
	mesh.Scale([3]float32{float32(scale[0]), float32(scale[1]), float32(scale[2])})
	if mesh.Normals == nil {
		mesh.Normals = geometry.ComputeNormals(mesh.Vertices, mesh.Faces)
	}

	id := c.b.Mesh(name, mesh.Vertices, mesh.Normals, mesh.UVs, mesh.Faces)
	if name != "" {
		if _, dup := c.meshes[name]; dup {
			return fmt.Errorf("%s: repeated mesh name %q", e, name)
		}
		c.meshes[name] = id
	}
	return nil
}

// inlineMesh reads the vertex and face attributes of a mesh asset.
func inlineMesh(s scope) (*formats.Mesh, error) {
	verts, err := s.floats("vertex", nil, 9, 1<<30)
	if err != nil {
		return nil, err
	}
	if len(verts) == 0 {
		return nil, fmt.Errorf("%s: mesh needs a file or vertex data", s.e)
	}
	if len(verts)%3 != 0 {
		return nil, s.errorf("vertex", "%d values is not a multiple of 3", len(verts))
	}
	faces, err := s.floats("face", nil, 3, 1<<30)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 || len(faces)%3 != 0 {
		return nil, s.errorf("face", "want a non-empty multiple of 3 indices")
	}

	m := &formats.Mesh{
		Vertices: make([]float32, len(verts)),
		Faces:    make([]int32, len(faces)),
	}
	for i, v := range verts {
		m.Vertices[i] = float32(v)
	}
	n := len(verts) / 3
	for i, f := range faces {
		if f < 0 || int(f) >= n || f != float64(int(f)) {
			return nil, s.errorf("face", "bad vertex index %v", f)
		}
		m.Faces[i] = int32(f)
	}
	return m, nil
}

// hfield records the extent of a height field. The viewer draws height
// field geoms as placeholders, so the elevation data is not loaded.
func (c *compiler) hfield(e *element) error {
	s := scope{e: e}
	size, err := s.floats("size", nil, 4, 4)
	if err != nil {
		return err
	}
	if len(size) == 0 {
		return fmt.Errorf("%s: hfield without size", e)
	}
	c.hfields[s.str("name", "")] = [3]float64{size[0], size[1], size[2]}
	return nil
}
