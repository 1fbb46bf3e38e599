package scene

import "github.com/Faultbox/physview/pkg/math"

// LightType selects the light model.
type LightType int

const (
	LightDirectional LightType = iota
	LightSpot
)

func (t LightType) String() string {
	if t == LightSpot {
		return "spot"
	}
	return "directional"
}

// Light is a directional or spot light. The light shines from its node's
// position towards Target, given in world coordinates.
type Light struct {
	Type      LightType
	Color     [3]float32
	Intensity float32
	Target    math.Vec3

	// Spot parameters.
	Angle    float32
	Penumbra float32
	Decay    float32
	Distance float32

	CastShadow    bool
	ShadowMapSize int
	ShadowNear    float32
	ShadowFar     float32
}

// NewLight returns a white light of the given type aimed at the origin.
func NewLight(typ LightType) *Light {
	return &Light{
		Type:          typ,
		Color:         [3]float32{1, 1, 1},
		Intensity:     1,
		Angle:         3.14159265 / 3,
		ShadowMapSize: 512,
		ShadowNear:    0.5,
		ShadowFar:     500,
	}
}
