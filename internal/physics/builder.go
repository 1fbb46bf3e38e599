package physics

import (
	"fmt"

	"github.com/Faultbox/physview/pkg/encoding"
)

// NoRef marks an absent material, mesh or texture reference.
const NoRef = -1

// GeomSpec describes one geom for Builder.Geom.
type GeomSpec struct {
	Name     string
	Type     GeomType
	Body     int
	Group    int
	Size     [3]float64
	Pos      [3]float64
	Quat     [4]float64
	RGBA     [4]float32
	Material int
	Mesh     int
}

// NewGeomSpec returns a spec with identity orientation, the engine's
// default grey and no material or mesh.
func NewGeomSpec(typ GeomType, body int) GeomSpec {
	return GeomSpec{
		Type:     typ,
		Body:     body,
		Quat:     [4]float64{1, 0, 0, 0},
		RGBA:     [4]float32{0.5, 0.5, 0.5, 1},
		Material: NoRef,
		Mesh:     NoRef,
	}
}

// MaterialSpec describes one material.
type MaterialSpec struct {
	Name        string
	RGBA        [4]float32
	Texture     int
	Specular    float32
	Shininess   float32
	Reflectance float32
}

// NewMaterialSpec returns a white, untextured material with the engine's
// default specular and shininess.
func NewMaterialSpec(name string) MaterialSpec {
	return MaterialSpec{Name: name, RGBA: [4]float32{1, 1, 1, 1}, Texture: NoRef, Specular: 0.5, Shininess: 0.5}
}

// JointSpec describes one joint.
type JointSpec struct {
	Name      string
	Type      JointType
	Body      int
	Pos       [3]float64
	Axis      [3]float64
	Damping   float64
	Stiffness float64
	Range     [2]float64
	Limited   bool
	// Ref is the initial value of hinge and slide joints.
	Ref float64
}

// LightSpec describes one light.
type LightSpec struct {
	Body        int
	Directional bool
	CastShadow  bool
	Pos         [3]float64
	Dir         [3]float64
	Attenuation [3]float32
	Diffuse     [3]float32
}

// ActuatorSpec describes one joint actuator.
type ActuatorSpec struct {
	Name        string
	Joint       int
	Gear        float64
	CtrlLimited bool
	CtrlRange   [2]float64
}

type keySpec struct {
	name string
	time float64
	qpos []float64
}

// Builder assembles a consistent Model element by element. Body 0, the
// world, exists from the start.
type Builder struct {
	m    *Model
	keys []keySpec
}

// NewBuilder returns a builder holding only the world body.
func NewBuilder() *Builder {
	b := &Builder{m: &Model{Opt: Options{Timestep: 0.002, Gravity: [3]float64{0, 0, -9.81}}}}
	b.Body("world", -1, [3]float64{}, [4]float64{1, 0, 0, 0})
	return b
}

// Options sets the global options.
func (b *Builder) Options(opt Options) {
	b.m.Opt = opt
}

func (b *Builder) name(s string) int {
	var adr int
	b.m.Names, adr = encoding.AppendName(b.m.Names, s)
	return adr
}

// Body adds a body and returns its index.
func (b *Builder) Body(name string, parent int, pos [3]float64, quat [4]float64) int {
	m := b.m
	m.BodyParentID = append(m.BodyParentID, parent)
	m.BodyPos = append(m.BodyPos, pos[:]...)
	m.BodyQuat = append(m.BodyQuat, quat[:]...)
	m.BodyJntAdr = append(m.BodyJntAdr, -1)
	m.BodyJntNum = append(m.BodyJntNum, 0)
	m.NameBodyAdr = append(m.NameBodyAdr, b.name(name))
	m.NBody++
	return m.NBody - 1
}

// Joint adds a joint to a body. Joints of one body must be added
// consecutively.
func (b *Builder) Joint(j JointSpec) int {
	m := b.m
	id := m.NJnt
	if m.BodyJntNum[j.Body] == 0 {
		m.BodyJntAdr[j.Body] = id
	}
	m.BodyJntNum[j.Body]++

	m.JntType = append(m.JntType, j.Type)
	m.JntBodyID = append(m.JntBodyID, j.Body)
	m.JntQposAdr = append(m.JntQposAdr, m.NQ)
	m.JntDofAdr = append(m.JntDofAdr, m.NV)
	m.JntPos = append(m.JntPos, j.Pos[:]...)
	m.JntAxis = append(m.JntAxis, j.Axis[:]...)
	m.JntDamping = append(m.JntDamping, j.Damping)
	m.JntStiff = append(m.JntStiff, j.Stiffness)
	m.JntRange = append(m.JntRange, j.Range[:]...)
	m.JntLimited = append(m.JntLimited, j.Limited)
	m.NameJntAdr = append(m.NameJntAdr, b.name(j.Name))

	switch j.Type {
	case JointFree:
		p := m.BodyPos[3*j.Body : 3*j.Body+3]
		q := m.BodyQuat[4*j.Body : 4*j.Body+4]
		m.Qpos0 = append(m.Qpos0, p[0], p[1], p[2], q[0], q[1], q[2], q[3])
	case JointBall:
		m.Qpos0 = append(m.Qpos0, 1, 0, 0, 0)
	default:
		m.Qpos0 = append(m.Qpos0, j.Ref)
	}
	m.NQ += j.Type.QposWidth()
	m.NV += j.Type.DofWidth()
	m.NJnt++
	return id
}

// Geom adds a geom and returns its index.
func (b *Builder) Geom(g GeomSpec) int {
	m := b.m
	m.GeomType = append(m.GeomType, g.Type)
	m.GeomBodyID = append(m.GeomBodyID, g.Body)
	m.GeomGroup = append(m.GeomGroup, g.Group)
	m.GeomSize = append(m.GeomSize, g.Size[:]...)
	m.GeomPos = append(m.GeomPos, g.Pos[:]...)
	m.GeomQuat = append(m.GeomQuat, g.Quat[:]...)
	m.GeomRGBA = append(m.GeomRGBA, g.RGBA[:]...)
	m.GeomMatID = append(m.GeomMatID, g.Material)
	m.GeomDataID = append(m.GeomDataID, g.Mesh)
	m.NameGeomAdr = append(m.NameGeomAdr, b.name(g.Name))
	m.NGeom++
	return m.NGeom - 1
}

// Site adds a site and returns its index.
func (b *Builder) Site(name string, body int, pos [3]float64) int {
	m := b.m
	m.SiteBodyID = append(m.SiteBodyID, body)
	m.SitePos = append(m.SitePos, pos[:]...)
	m.SiteQuat = append(m.SiteQuat, 1, 0, 0, 0)
	m.NameSiteAdr = append(m.NameSiteAdr, b.name(name))
	m.NSite++
	return m.NSite - 1
}

// Material adds a material and returns its index.
func (b *Builder) Material(s MaterialSpec) int {
	m := b.m
	m.MatRGBA = append(m.MatRGBA, s.RGBA[:]...)
	m.MatTexID = append(m.MatTexID, s.Texture)
	m.MatSpecular = append(m.MatSpecular, s.Specular)
	m.MatShininess = append(m.MatShininess, s.Shininess)
	m.MatReflectance = append(m.MatReflectance, s.Reflectance)
	m.NameMatAdr = append(m.NameMatAdr, b.name(s.Name))
	m.NMat++
	return m.NMat - 1
}

// Texture adds a packed RGB texture and returns its index.
func (b *Builder) Texture(name string, width, height int, rgb []byte) int {
	m := b.m
	m.TexWidth = append(m.TexWidth, width)
	m.TexHeight = append(m.TexHeight, height)
	m.TexAdr = append(m.TexAdr, len(m.TexRGB))
	m.TexRGB = append(m.TexRGB, rgb...)
	m.NameTexAdr = append(m.NameTexAdr, b.name(name))
	m.NTex++
	return m.NTex - 1
}

// Mesh adds a triangle mesh and returns its index. normals must match
// vertices in length; uvs may be nil.
func (b *Builder) Mesh(name string, vertices, normals, uvs []float32, faces []int32) int {
	m := b.m
	m.MeshVertAdr = append(m.MeshVertAdr, len(m.MeshVert)/3)
	m.MeshVertNum = append(m.MeshVertNum, len(vertices)/3)
	if uvs != nil {
		m.MeshTexcoordAdr = append(m.MeshTexcoordAdr, len(m.MeshTexcoord)/2)
		m.MeshTexcoord = append(m.MeshTexcoord, uvs...)
	} else {
		m.MeshTexcoordAdr = append(m.MeshTexcoordAdr, -1)
	}
	m.MeshFaceAdr = append(m.MeshFaceAdr, len(m.MeshFace)/3)
	m.MeshFaceNum = append(m.MeshFaceNum, len(faces)/3)
	m.MeshVert = append(m.MeshVert, vertices...)
	m.MeshNormal = append(m.MeshNormal, normals...)
	m.MeshFace = append(m.MeshFace, faces...)
	m.NameMeshAdr = append(m.NameMeshAdr, b.name(name))
	m.NMesh++
	return m.NMesh - 1
}

// Light adds a light and returns its index.
func (b *Builder) Light(l LightSpec) int {
	m := b.m
	m.LightDirectional = append(m.LightDirectional, l.Directional)
	m.LightCastShadow = append(m.LightCastShadow, l.CastShadow)
	m.LightBodyID = append(m.LightBodyID, l.Body)
	m.LightPos = append(m.LightPos, l.Pos[:]...)
	m.LightDir = append(m.LightDir, l.Dir[:]...)
	m.LightAttenuation = append(m.LightAttenuation, l.Attenuation[:]...)
	m.LightDiffuse = append(m.LightDiffuse, l.Diffuse[:]...)
	m.NLight++
	return m.NLight - 1
}

// Actuator adds a joint actuator and returns its index.
func (b *Builder) Actuator(a ActuatorSpec) int {
	m := b.m
	m.ActuatorTrnID = append(m.ActuatorTrnID, a.Joint)
	m.ActuatorGear = append(m.ActuatorGear, a.Gear)
	m.ActuatorCtrlLimited = append(m.ActuatorCtrlLimited, a.CtrlLimited)
	m.ActuatorCtrlRange = append(m.ActuatorCtrlRange, a.CtrlRange[:]...)
	m.NameActuatorAdr = append(m.NameActuatorAdr, b.name(a.Name))
	m.NU++
	return m.NU - 1
}

// Key adds a keyframe. qpos shorter than nq is completed from qpos0 when
// the model is built.
func (b *Builder) Key(name string, time float64, qpos []float64) int {
	b.keys = append(b.keys, keySpec{name: name, time: time, qpos: qpos})
	return len(b.keys) - 1
}

// Tendon adds a spatial tendon routed through sites and returns its index.
func (b *Builder) Tendon(name string, width float64, rgba [4]float32, sites []int) int {
	m := b.m
	m.TendonWidth = append(m.TendonWidth, width)
	m.TendonWrapAdr = append(m.TendonWrapAdr, m.NWrap)
	m.TendonWrapNum = append(m.TendonWrapNum, len(sites))
	m.TendonRGBA = append(m.TendonRGBA, rgba[:]...)
	m.WrapSiteID = append(m.WrapSiteID, sites...)
	m.NameTendonAdr = append(m.NameTendonAdr, b.name(name))
	m.NWrap += len(sites)
	m.NTendon++
	return m.NTendon - 1
}

// Build finalizes and validates the model. The builder must not be used
// afterwards.
func (b *Builder) Build() (*Model, error) {
	m := b.m
	for _, k := range b.keys {
		if len(k.qpos) > m.NQ {
			return nil, fmt.Errorf("%w: key %q has %d qpos values, model has nq=%d", ErrInconsistentModel, k.name, len(k.qpos), m.NQ)
		}
		row := make([]float64, m.NQ)
		copy(row, m.Qpos0)
		copy(row, k.qpos)
		m.KeyQpos = append(m.KeyQpos, row...)
		m.KeyTime = append(m.KeyTime, k.time)
		m.NameKeyAdr = append(m.NameKeyAdr, b.name(k.name))
		m.NKey++
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
