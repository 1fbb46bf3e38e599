// Package physics defines the boundary to the simulation engine: the
// compiled model as flat per-element arrays, and the live simulation state
// the viewer reads every frame.
package physics

import (
	"errors"
	"fmt"

	"github.com/Faultbox/physview/pkg/encoding"
)

// ErrInconsistentModel reports a model whose arrays or cross references
// do not agree with its counts.
var ErrInconsistentModel = errors.New("inconsistent model")

// GeomType is the shape tag of a geom.
type GeomType int

// Geom shape tags, in engine order.
const (
	GeomPlane GeomType = iota
	GeomHField
	GeomSphere
	GeomCapsule
	GeomEllipsoid
	GeomCylinder
	GeomBox
	GeomMesh
)

var geomTypeNames = [...]string{"plane", "hfield", "sphere", "capsule", "ellipsoid", "cylinder", "box", "mesh"}

func (t GeomType) String() string {
	if t >= 0 && int(t) < len(geomTypeNames) {
		return geomTypeNames[t]
	}
	return fmt.Sprintf("geom(%d)", int(t))
}

// ParseGeomType maps a shape name to its tag.
func ParseGeomType(name string) (GeomType, bool) {
	for i, n := range geomTypeNames {
		if n == name {
			return GeomType(i), true
		}
	}
	return 0, false
}

// JointType is the kind of a joint.
type JointType int

// Joint kinds with their qpos/qvel widths: free 7/6, ball 4/3, slide 1/1,
// hinge 1/1.
const (
	JointFree JointType = iota
	JointBall
	JointSlide
	JointHinge
)

var jointTypeNames = [...]string{"free", "ball", "slide", "hinge"}

func (t JointType) String() string {
	if t >= 0 && int(t) < len(jointTypeNames) {
		return jointTypeNames[t]
	}
	return fmt.Sprintf("joint(%d)", int(t))
}

// QposWidth returns the number of qpos entries of the joint.
func (t JointType) QposWidth() int {
	switch t {
	case JointFree:
		return 7
	case JointBall:
		return 4
	default:
		return 1
	}
}

// DofWidth returns the number of qvel entries of the joint.
func (t JointType) DofWidth() int {
	switch t {
	case JointFree:
		return 6
	case JointBall:
		return 3
	default:
		return 1
	}
}

// Options holds global simulation options.
type Options struct {
	Timestep float64
	Gravity  [3]float64
}

// Model is a compiled physics model. All per-element arrays are row-major
// with the stride noted on each field. It is read-only once loaded.
type Model struct {
	NBody, NJnt, NGeom, NSite, NMat, NTex, NMesh int
	NLight, NU, NKey, NQ, NV, NTendon, NWrap     int

	Opt Options

	// Names is the packed, null-terminated name table.
	Names []byte

	// Bodies.
	BodyParentID []int
	BodyPos      []float64 // 3
	BodyQuat     []float64 // 4
	BodyJntAdr   []int
	BodyJntNum   []int
	NameBodyAdr  []int

	// Joints.
	JntType    []JointType
	JntBodyID  []int
	JntQposAdr []int
	JntDofAdr  []int
	JntPos     []float64 // 3
	JntAxis    []float64 // 3
	JntDamping []float64
	JntStiff   []float64
	JntRange   []float64 // 2
	JntLimited []bool
	NameJntAdr []int
	Qpos0      []float64 // NQ

	// Geoms.
	GeomType    []GeomType
	GeomBodyID  []int
	GeomGroup   []int
	GeomSize    []float64 // 3
	GeomPos     []float64 // 3
	GeomQuat    []float64 // 4
	GeomRGBA    []float32 // 4
	GeomMatID   []int
	GeomDataID  []int
	NameGeomAdr []int

	// Sites.
	SiteBodyID  []int
	SitePos     []float64 // 3
	SiteQuat    []float64 // 4
	NameSiteAdr []int

	// Materials.
	MatRGBA        []float32 // 4
	MatTexID       []int
	MatSpecular    []float32
	MatShininess   []float32
	MatReflectance []float32
	NameMatAdr     []int

	// Textures, packed RGB.
	TexWidth   []int
	TexHeight  []int
	TexAdr     []int
	TexRGB     []byte
	NameTexAdr []int

	// Meshes, packed buffers.
	MeshVertAdr     []int
	MeshVertNum     []int
	MeshTexcoordAdr []int // -1 when the mesh has no UVs
	MeshFaceAdr     []int
	MeshFaceNum     []int
	MeshVert        []float32 // 3
	MeshNormal      []float32 // 3
	MeshTexcoord    []float32 // 2
	MeshFace        []int32   // 3
	NameMeshAdr     []int

	// Lights.
	LightDirectional []bool
	LightCastShadow  []bool
	LightBodyID      []int
	LightPos         []float64 // 3
	LightDir         []float64 // 3
	LightAttenuation []float32 // 3
	LightDiffuse     []float32 // 3

	// Actuators.
	ActuatorTrnID       []int
	ActuatorGear        []float64
	ActuatorCtrlLimited []bool
	ActuatorCtrlRange   []float64 // 2
	NameActuatorAdr     []int

	// Keyframes.
	KeyTime    []float64
	KeyQpos    []float64 // NQ
	NameKeyAdr []int

	// Tendons. Each tendon owns TendonWrapNum consecutive wrap sites starting
	// at TendonWrapAdr.
	TendonWidth   []float64
	TendonWrapAdr []int
	TendonWrapNum []int
	TendonRGBA    []float32 // 4
	WrapSiteID    []int
	NameTendonAdr []int
}

// Name returns the name stored at adr in the name table.
func (m *Model) Name(adr int) string {
	return encoding.NameAt(m.Names, adr)
}

// BodyName returns the name of body b.
func (m *Model) BodyName(b int) string {
	if b < 0 || b >= len(m.NameBodyAdr) {
		return ""
	}
	return m.Name(m.NameBodyAdr[b])
}

// ActuatorName returns the name of actuator i.
func (m *Model) ActuatorName(i int) string {
	if i < 0 || i >= len(m.NameActuatorAdr) {
		return ""
	}
	return m.Name(m.NameActuatorAdr[i])
}

// KeyName returns the name of keyframe k.
func (m *Model) KeyName(k int) string {
	if k < 0 || k >= len(m.NameKeyAdr) {
		return ""
	}
	return m.Name(m.NameKeyAdr[k])
}
