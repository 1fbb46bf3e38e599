// Package scenesync maps a compiled physics model onto a scene graph and
// keeps the graph in step with the running simulation.
package scenesync

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/engine/coords"
	"github.com/Faultbox/physview/internal/engine/geometry"
	"github.com/Faultbox/physview/internal/engine/scene"
	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/pkg/math"
)

// RootName names the root node of every built scene.
const RootName = "MuJoCo Root"

// PoolCapacity is the instance capacity of each tendon pool.
const PoolCapacity = 1023

// Geoms in this group or above are not drawn.
const hiddenGroup = 3

// Scene is a built scene graph plus the index tables the frame driver
// needs to update it.
type Scene struct {
	Model *physics.Model
	Root  *scene.Node

	// Bodies holds one group per body index.
	Bodies []*scene.Node
	// Lights holds one node per model light, in model order.
	Lights []*scene.Node

	Cylinders *scene.Node
	Spheres   *scene.Node

	Cache     *Cache
	Hierarchy Hierarchy
}

// Options tunes Build.
type Options struct {
	Hierarchy Hierarchy
	// Logger defaults to the global logger named "scenesync".
	Logger *zap.Logger
}

// Build constructs the scene graph for m. The model is validated first; a
// model that fails validation or references missing data yields an error
// wrapping physics.ErrInconsistentModel and no scene.
func Build(m *physics.Model, opts Options) (s *Scene, err error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("scenesync")
	}

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			s, err = nil, fmt.Errorf("building scene: %w", e)
		}
	}()

	b := &sceneBuilder{
		m:   m,
		log: log,
		s: &Scene{
			Model:     m,
			Root:      scene.NewGroup(RootName),
			Bodies:    make([]*scene.Node, m.NBody),
			Cache:     NewCache(),
			Hierarchy: opts.Hierarchy,
		},
	}
	b.materials = newMaterialChain(m, b.s.Cache)

	for g := 0; g < m.NGeom; g++ {
		b.addGeom(g)
	}
	b.addTendonPools()
	b.addLights()
	AttachBodies(b.s.Bodies, b.s.Root, m, opts.Hierarchy, log)

	stats := b.s.Cache.Stats()
	log.Debug("scene built",
		zap.Int("bodies", m.NBody),
		zap.Int("geoms", m.NGeom),
		zap.Int("materials", stats.Materials),
		zap.Int("meshes", stats.MeshMisses),
		zap.Int("textures", stats.TextureMisses),
	)
	return b.s, nil
}

type sceneBuilder struct {
	m         *physics.Model
	s         *Scene
	log       *zap.Logger
	materials *materialChain
}

// bodyGroup returns the group of body b, creating it on first use.
func (b *sceneBuilder) bodyGroup(body int) *scene.Node {
	if grp := b.s.Bodies[body]; grp != nil {
		return grp
	}
	grp := newBodyGroup(b.m, body)
	b.s.Bodies[body] = grp
	return grp
}

func newBodyGroup(m *physics.Model, body int) *scene.Node {
	grp := scene.NewGroup(m.BodyName(body))
	grp.BodyID = body
	return grp
}

func (b *sceneBuilder) addGeom(g int) {
	m := b.m
	if m.GeomGroup[g] >= hiddenGroup {
		return
	}

	body := m.GeomBodyID[g]
	typ := m.GeomType[g]
	size := m.GeomSize[3*g : 3*g+3]
	sx, sy, sz := float32(size[0]), float32(size[1]), float32(size[2])
	grp := b.bodyGroup(body)

	material := b.materials.forGeom(g)

	var node *scene.Node
	switch typ {
	case physics.GeomPlane:
		node = scene.NewReflector(geometry.Plane(100, 100), material, scene.ReflectorOptions{
			ClipBias:      0.003,
			TextureWidth:  1024,
			TextureHeight: 1024,
		})
		node.Transform.Rotation = math.QuatFromAxisAngle(math.Vec3{X: 1}, -gomath.Pi/2)
	case physics.GeomSphere:
		node = scene.NewMesh(geometry.Sphere(sx), material)
	case physics.GeomCapsule:
		node = scene.NewMesh(geometry.Capsule(sx, sy*2), material)
	case physics.GeomEllipsoid:
		node = scene.NewMesh(geometry.Sphere(1), material)
	case physics.GeomCylinder:
		node = scene.NewMesh(geometry.Cylinder(sx, sx, sy*2), material)
	case physics.GeomBox:
		node = scene.NewMesh(geometry.Box(sx*2, sz*2, sy*2), material)
	case physics.GeomMesh:
		meshID := m.GeomDataID[g]
		node = scene.NewMesh(b.s.Cache.Mesh(meshID, func() *scene.Geometry {
			return BuildMeshGeometry(m, meshID)
		}), material)
		grp.HasCustomMesh = true
	default:
		b.log.Debug("unsupported geom type, drawing placeholder sphere",
			zap.Int("geom", g), zap.Stringer("type", typ))
		node = scene.NewMesh(geometry.Sphere(sx*0.5), material)
	}

	node.Name = m.Name(m.NameGeomAdr[g])
	node.BodyID = body
	node.CastShadow = g != 0
	node.ReceiveShadow = typ != physics.GeomMesh && typ != physics.GeomPlane

	coords.SetPosition(&node.Transform.Position, m.GeomPos, g, true)
	if typ != physics.GeomPlane {
		coords.SetQuaternion(&node.Transform.Rotation, m.GeomQuat, g, true)
	}
	if typ == physics.GeomEllipsoid {
		node.Transform.Scale = math.Vec3{X: sx, Y: sz, Z: sy}
	}

	grp.Add(node)
}

// TendonColor is the color of tendon segments and joints.
var TendonColor = [3]float32{0.8, 0.3, 0.3}

func (b *sceneBuilder) addTendonPools() {
	mat := scene.NewMaterial()
	mat.Color = TendonColor

	b.s.Cylinders = scene.NewInstanced(geometry.Cylinder(1, 1, 1), mat, PoolCapacity)
	b.s.Cylinders.Name = "tendon cylinders"
	b.s.Spheres = scene.NewInstanced(geometry.SphereSegments(1, 10, 10), mat, PoolCapacity)
	b.s.Spheres.Name = "tendon spheres"

	for _, pool := range []*scene.Node{b.s.Cylinders, b.s.Spheres} {
		pool.CastShadow = true
		pool.ReceiveShadow = true
		pool.Instances.SetCount(0)
		b.s.Root.Add(pool)
	}
}

// Shadow settings shared by model lights.
const (
	shadowMapSize = 1024
	shadowNear    = 1
	shadowFar     = 10
)

func (b *sceneBuilder) addLights() {
	m := b.m
	parent := b.s.Root
	if world := b.s.Bodies[0]; world != nil {
		parent = world
	}

	for l := 0; l < m.NLight; l++ {
		typ := scene.LightSpot
		if m.LightDirectional[l] {
			typ = scene.LightDirectional
		}
		light := scene.NewLight(typ)
		light.Decay = m.LightAttenuation[3*l] * 100
		light.Penumbra = 0.5
		light.CastShadow = true
		light.ShadowMapSize = shadowMapSize
		light.ShadowNear = shadowNear
		light.ShadowFar = shadowFar
		if len(m.LightDiffuse) >= 3*(l+1) {
			copy(light.Color[:], m.LightDiffuse[3*l:3*l+3])
		}

		node := scene.NewLightNode(light)
		node.Name = fmt.Sprintf("light %d", l)
		node.BodyID = m.LightBodyID[l]
		coords.SetPosition(&node.Transform.Position, m.LightPos, l, true)
		light.Target = node.Transform.Position.Add(coords.Position(m.LightDir, l))

		parent.Add(node)
		b.s.Lights = append(b.s.Lights, node)
	}

	if m.NLight == 0 {
		node := scene.NewLightNode(scene.NewLight(scene.LightDirectional))
		node.Name = "default light"
		node.Transform.Position = math.Vec3{Y: 1}
		b.s.Root.Add(node)
	}
}
