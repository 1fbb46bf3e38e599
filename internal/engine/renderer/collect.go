package renderer

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/pkg/math"
)

// MaxLights is the number of lights the shader evaluates. Further lights
// are dropped.
const MaxLights = 8

// Draw is one mesh to render.
type Draw struct {
	Geometry      *scene.Geometry
	Material      *scene.Material
	Model         math.Mat4
	CastShadow    bool
	ReceiveShadow bool
}

// LightDraw is a light resolved to world space.
type LightDraw struct {
	Type      scene.LightType
	Position  math.Vec3
	Direction math.Vec3
	Color     [3]float32
	// CosInner and CosOuter bound the spot cone falloff.
	CosInner      float32
	CosOuter      float32
	Distance      float32
	Decay         float32
	CastShadow    bool
	ShadowMapSize int
}

// DrawList is the flattened content of a scene graph for one frame.
type DrawList struct {
	Opaque      []Draw
	Transparent []Draw
	Lights      []LightDraw
	// DroppedLights counts lights beyond MaxLights.
	DroppedLights int
}

// Reset empties the list, keeping its storage.
func (l *DrawList) Reset() {
	l.Opaque = l.Opaque[:0]
	l.Transparent = l.Transparent[:0]
	l.Lights = l.Lights[:0]
	l.DroppedLights = 0
}

// Collect flattens the visible part of root into l.
func (l *DrawList) Collect(root *scene.Node) {
	l.Reset()
	l.collect(root, math.Identity())
}

func (l *DrawList) collect(n *scene.Node, parent math.Mat4) {
	if !n.Visible {
		return
	}
	world := parent.Mul(n.Transform.Matrix())

	switch n.Kind {
	case scene.KindMesh, scene.KindReflector:
		l.add(Draw{
			Geometry:      n.Geometry,
			Material:      n.Material,
			Model:         world,
			CastShadow:    n.CastShadow,
			ReceiveShadow: n.ReceiveShadow && n.Kind != scene.KindReflector,
		})
	case scene.KindInstanced:
		for i := 0; i < n.Instances.Count; i++ {
			l.add(Draw{
				Geometry:      n.Geometry,
				Material:      n.Material,
				Model:         world.Mul(n.Instances.At(i).Matrix()),
				CastShadow:    n.CastShadow,
				ReceiveShadow: n.ReceiveShadow,
			})
		}
	case scene.KindLight:
		l.addLight(n.Light, world)
	}

	for _, child := range n.Children() {
		l.collect(child, world)
	}
}

func (l *DrawList) add(d Draw) {
	if d.Geometry == nil || d.Geometry.TriangleCount() == 0 {
		return
	}
	if d.Material == nil {
		d.Material = scene.NewMaterial()
	}
	if d.Material.Transparent || d.Material.Opacity < 1 {
		l.Transparent = append(l.Transparent, d)
		return
	}
	l.Opaque = append(l.Opaque, d)
}

func (l *DrawList) addLight(light *scene.Light, world math.Mat4) {
	if light == nil {
		return
	}
	if len(l.Lights) == MaxLights {
		l.DroppedLights++
		return
	}
	pos := math.Vec3{X: world[12], Y: world[13], Z: world[14]}
	dir := light.Target.Sub(pos).Normalize()
	if dir == (math.Vec3{}) {
		dir = math.Vec3{Y: -1}
	}
	color := light.Color
	for i := range color {
		color[i] *= light.Intensity
	}
	outer := float64(light.Angle)
	inner := outer * float64(1-light.Penumbra)
	l.Lights = append(l.Lights, LightDraw{
		Type:          light.Type,
		Position:      pos,
		Direction:     dir,
		Color:         color,
		CosInner:      float32(gomath.Cos(inner)),
		CosOuter:      float32(gomath.Cos(outer)),
		Distance:      light.Distance,
		Decay:         light.Decay,
		CastShadow:    light.CastShadow,
		ShadowMapSize: light.ShadowMapSize,
	})
}

// ShadowLight returns the index of the first shadow casting directional
// light, or -1.
func (l *DrawList) ShadowLight() int {
	for i, light := range l.Lights {
		if light.CastShadow && light.Type == scene.LightDirectional {
			return i
		}
	}
	return -1
}

// SortTransparent orders transparent draws back to front as seen from eye.
func (l *DrawList) SortTransparent(eye math.Vec3) {
	dist := func(d Draw) float32 {
		return eye.Distance(math.Vec3{X: d.Model[12], Y: d.Model[13], Z: d.Model[14]})
	}
	sort.SliceStable(l.Transparent, func(i, j int) bool {
		return dist(l.Transparent[i]) > dist(l.Transparent[j])
	})
}
