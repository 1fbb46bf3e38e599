package physics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/internal/physics/physicstest"
)

func TestGeomTypeNames(t *testing.T) {
	for typ := physics.GeomPlane; typ <= physics.GeomMesh; typ++ {
		parsed, ok := physics.ParseGeomType(typ.String())
		require.True(t, ok, typ.String())
		assert.Equal(t, typ, parsed)
	}
	_, ok := physics.ParseGeomType("torus")
	assert.False(t, ok)
	assert.Equal(t, "geom(42)", physics.GeomType(42).String())
}

func TestBuilderTwoBodies(t *testing.T) {
	m := physicstest.TwoBodies()

	assert.Equal(t, 2, m.NBody)
	assert.Equal(t, 2, m.NGeom)
	assert.Equal(t, 0, m.NLight)
	assert.Equal(t, 7, m.NQ)
	assert.Equal(t, 6, m.NV)
	assert.Equal(t, "world", m.BodyName(0))
	assert.Equal(t, "ball", m.BodyName(1))
	assert.Equal(t, "", m.BodyName(5))

	// Free joint qpos0 starts at the body pose.
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0, 0}, m.Qpos0)
}

func TestBuilderArm(t *testing.T) {
	m := physicstest.Arm()

	assert.Equal(t, 3, m.NU)
	assert.Equal(t, "elbow_motor", m.ActuatorName(2))
	assert.Equal(t, 1, m.NKey)
	assert.Equal(t, "bent", m.KeyName(0))
	assert.Equal(t, []float64{0.3, -0.6}, m.KeyQpos)
	assert.Equal(t, 1, m.NTendon)
	assert.Equal(t, 3, m.NWrap)
	assert.Equal(t, []int{0}, m.TendonWrapAdr)

	vadr, vnum, fadr, fnum := m.MeshRange(0)
	assert.Equal(t, []int{0, 3, 0, 1}, []int{vadr, vnum, fadr, fnum})
}

func TestKeyPaddedFromQpos0(t *testing.T) {
	b := physics.NewBuilder()
	body := b.Body("slider", 0, [3]float64{}, [4]float64{1, 0, 0, 0})
	b.Joint(physics.JointSpec{Name: "a", Type: physics.JointSlide, Body: body, Ref: 0.25})
	b.Joint(physics.JointSpec{Name: "b", Type: physics.JointSlide, Body: body, Ref: 0.5})
	b.Key("half", 0, []float64{1})

	m, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5}, m.KeyQpos)
}

func TestKeyTooLong(t *testing.T) {
	b := physics.NewBuilder()
	b.Key("bad", 0, []float64{1, 2, 3})
	_, err := b.Build()
	assert.ErrorIs(t, err, physics.ErrInconsistentModel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *physics.Model)
	}{
		{"geom body out of range", func(m *physics.Model) { m.GeomBodyID[1] = 9 }},
		{"material out of range", func(m *physics.Model) { m.GeomMatID[0] = 3 }},
		{"mesh geom without mesh", func(m *physics.Model) { m.GeomType[1] = physics.GeomMesh }},
		{"short geom_size", func(m *physics.Model) { m.GeomSize = m.GeomSize[:3] }},
		{"short name_geomadr", func(m *physics.Model) { m.NameGeomAdr = m.NameGeomAdr[:1] }},
		{"short light_bodyid", func(m *physics.Model) {
			m.NLight = 1
			m.LightDirectional = []bool{true}
			m.LightCastShadow = []bool{false}
			m.LightAttenuation = []float32{1, 0, 0}
			m.LightDiffuse = []float32{1, 1, 1}
			m.LightPos = []float64{0, 0, 1}
			m.LightDir = []float64{0, 0, -1}
		}},
		{"short light_dir", func(m *physics.Model) {
			m.NLight = 1
			m.LightDirectional = []bool{true}
			m.LightCastShadow = []bool{false}
			m.LightAttenuation = []float32{1, 0, 0}
			m.LightDiffuse = []float32{1, 1, 1}
			m.LightBodyID = []int{0}
			m.LightPos = []float64{0, 0, 1}
		}},
		{"texture past buffer", func(m *physics.Model) {
			m.NTex = 1
			m.TexWidth = []int{4}
			m.TexHeight = []int{4}
			m.TexAdr = []int{0}
			m.TexRGB = make([]byte, 10)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := physicstest.TwoBodies()
			require.NoError(t, m.Validate())
			tt.mutate(m)
			assert.ErrorIs(t, m.Validate(), physics.ErrInconsistentModel)
		})
	}
}

func TestBuildRejectsShortLightArrays(t *testing.T) {
	b := physics.NewBuilder()
	b.Light(physics.LightSpec{Body: 0, Pos: [3]float64{0, 0, 3}, Dir: [3]float64{0, 0, -1}})
	m, err := b.Build()
	require.NoError(t, err)

	m.LightBodyID = nil
	assert.NotPanics(t, func() { err = m.Validate() })
	assert.ErrorIs(t, err, physics.ErrInconsistentModel)
	assert.ErrorContains(t, err, "light_bodyid")
}

func TestValidateMeshFaceIndex(t *testing.T) {
	m := physicstest.Arm()
	m.MeshFace[2] = 7
	assert.ErrorIs(t, m.Validate(), physics.ErrInconsistentModel)
}

func TestMeshRangePanics(t *testing.T) {
	m := physicstest.TwoBodies()
	assert.PanicsWithError(t, "inconsistent model: mesh index 0 out of range [0,0)", func() {
		m.MeshRange(0)
	})
}

func TestJointWidths(t *testing.T) {
	assert.Equal(t, 7, physics.JointFree.QposWidth())
	assert.Equal(t, 6, physics.JointFree.DofWidth())
	assert.Equal(t, 4, physics.JointBall.QposWidth())
	assert.Equal(t, 3, physics.JointBall.DofWidth())
	assert.Equal(t, 1, physics.JointHinge.QposWidth())
	assert.Equal(t, 1, physics.JointSlide.DofWidth())
}
