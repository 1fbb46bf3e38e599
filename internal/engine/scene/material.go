package scene

// Wrap is a texture addressing mode.
type Wrap int

const (
	WrapClamp Wrap = iota
	WrapRepeat
)

// Texture is an RGBA8 image.
type Texture struct {
	// Index is the model texture this image was built from.
	Index  int
	Width  int
	Height int
	Pixels []byte
	WrapS  Wrap
	WrapT  Wrap
	Repeat [2]float32
}

// Material is a physically based surface description.
type Material struct {
	Color             [3]float32
	Opacity           float32
	Transparent       bool
	Texture           *Texture
	SpecularIntensity float32
	Reflectivity      float32
	Roughness         float32
	Metalness         float32
}

// NewMaterial returns an opaque white dielectric.
func NewMaterial() *Material {
	return &Material{
		Color:             [3]float32{1, 1, 1},
		Opacity:           1,
		SpecularIntensity: 1,
		Reflectivity:      0.5,
		Roughness:         1,
	}
}

// Matches reports whether m has the given color, opacity and texture
// identity. Other parameters do not take part.
func (m *Material) Matches(color [3]float32, opacity float32, tex *Texture) bool {
	return m.Color == color && m.Opacity == opacity && m.Texture == tex
}
