package mjcf

import (
	"errors"
	gomath "math"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/physview/internal/physics"
)

func compile(t *testing.T, files map[string]string) *physics.Model {
	t.Helper()
	m, err := Load(mapFS(files), "scene.xml")
	require.NoError(t, err)
	return m
}

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return fsys
}

func bodyID(t *testing.T, m *physics.Model, name string) int {
	t.Helper()
	for b := 0; b < m.NBody; b++ {
		if m.BodyName(b) == name {
			return b
		}
	}
	t.Fatalf("no body %q", name)
	return -1
}

const pendulum = `
<mujoco model="pendulum">
  <option timestep="0.01" gravity="0 0 -10"/>
  <worldbody>
    <light pos="0 0 3" dir="0 0 -1" directional="true"/>
    <geom name="floor" type="plane" size="5 5 0.1" rgba="0.2 0.3 0.4 1"/>
    <body name="arm" pos="0 0 1">
      <joint name="hinge" type="hinge" axis="0 2 0" range="-90 90" damping="0.5"/>
      <geom type="capsule" fromto="0 0 0 0 0 -0.5" size="0.05"/>
      <site name="tip" pos="0 0 -0.5"/>
      <body name="weight" pos="0 0 -0.5">
        <geom type="sphere" size="0.1"/>
      </body>
    </body>
  </worldbody>
  <actuator>
    <motor name="torque" joint="hinge" gear="2" ctrlrange="-1 1"/>
  </actuator>
  <keyframe>
    <key name="up" qpos="3.14"/>
    <key name="rest"/>
  </keyframe>
</mujoco>`

func TestCompilePendulum(t *testing.T) {
	m := compile(t, map[string]string{"scene.xml": pendulum})

	assert.Equal(t, 0.01, m.Opt.Timestep)
	assert.Equal(t, [3]float64{0, 0, -10}, m.Opt.Gravity)

	require.Equal(t, 3, m.NBody)
	arm := bodyID(t, m, "arm")
	weight := bodyID(t, m, "weight")
	assert.Equal(t, 0, m.BodyParentID[arm])
	assert.Equal(t, arm, m.BodyParentID[weight])
	assert.Equal(t, []float64{0, 0, 1}, m.BodyPos[3*arm:3*arm+3])

	require.Equal(t, 1, m.NJnt)
	assert.Equal(t, physics.JointHinge, m.JntType[0])
	assert.Equal(t, []float64{0, 1, 0}, m.JntAxis[0:3], "axis is normalized")
	assert.True(t, m.JntLimited[0], "range implies limited")
	assert.InDelta(t, -gomath.Pi/2, m.JntRange[0], 1e-9)
	assert.InDelta(t, gomath.Pi/2, m.JntRange[1], 1e-9)
	assert.Equal(t, 0.5, m.JntDamping[0])
	assert.Equal(t, 1, m.NQ)

	require.Equal(t, 3, m.NGeom)
	assert.Equal(t, physics.GeomPlane, m.GeomType[0])
	assert.Equal(t, []float32{0.2, 0.3, 0.4, 1}, m.GeomRGBA[0:4])
	assert.Equal(t, physics.NoRef, m.GeomMatID[0])

	require.Equal(t, 1, m.NLight)
	assert.True(t, m.LightDirectional[0])
	assert.Equal(t, []float32{1, 0, 0}, m.LightAttenuation[0:3])

	require.Equal(t, 1, m.NU)
	assert.Equal(t, "torque", m.ActuatorName(0))
	assert.Equal(t, 2.0, m.ActuatorGear[0])
	assert.True(t, m.ActuatorCtrlLimited[0])
	assert.Equal(t, []float64{-1, 1}, m.ActuatorCtrlRange[0:2])

	require.Equal(t, 2, m.NKey)
	assert.Equal(t, "up", m.KeyName(0))
	assert.Equal(t, 3.14, m.KeyQpos[0])
	assert.Equal(t, 0.0, m.KeyQpos[1], "missing qpos falls back to qpos0")
}

func TestFromTo(t *testing.T) {
	m := compile(t, map[string]string{"scene.xml": `
<mujoco>
  <worldbody>
    <geom type="capsule" fromto="0 0 0 0 0 1" size="0.05"/>
    <geom type="cylinder" fromto="0 0 0 2 0 0" size="0.1"/>
  </worldbody>
</mujoco>`})

	require.Equal(t, 2, m.NGeom)
	assert.InDeltaSlice(t, []float64{0, 0, 0.5}, m.GeomPos[0:3], 1e-9)
	assert.InDeltaSlice(t, []float64{0.05, 0.5, 0}, m.GeomSize[0:3], 1e-9)
	assert.InDeltaSlice(t, []float64{1, 0, 0, 0}, m.GeomQuat[0:4], 1e-9)

	h := gomath.Sqrt2 / 2
	assert.InDeltaSlice(t, []float64{1, 0, 0}, m.GeomPos[3:6], 1e-9)
	assert.InDeltaSlice(t, []float64{h, 0, h, 0}, m.GeomQuat[4:8], 1e-9)
	assert.InDelta(t, 1.0, m.GeomSize[4], 1e-9)
}

func TestOrientation(t *testing.T) {
	h := gomath.Sqrt2 / 2
	tests := []struct {
		name string
		attr string
		want []float64
	}{
		{"quat", `quat="2 0 0 0"`, []float64{1, 0, 0, 0}},
		{"axisangle", `axisangle="0 0 1 90"`, []float64{h, 0, 0, h}},
		{"euler", `euler="0 0 90"`, []float64{h, 0, 0, h}},
		{"zaxis", `zaxis="1 0 0"`, []float64{h, 0, h, 0}},
		{"xyaxes", `xyaxes="0 1 0 -1 0 0"`, []float64{h, 0, 0, h}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := compile(t, map[string]string{"scene.xml": `<mujoco><worldbody><body name="b" ` + tt.attr + `/></worldbody></mujoco>`})
			b := bodyID(t, m, "b")
			assert.InDeltaSlice(t, tt.want, m.BodyQuat[4*b:4*b+4], 1e-6)
		})
	}
}

func TestRadians(t *testing.T) {
	m := compile(t, map[string]string{"scene.xml": `
<mujoco>
  <compiler angle="radian"/>
  <worldbody>
    <body><joint range="-1 1"/></body>
  </worldbody>
</mujoco>`})
	assert.Equal(t, []float64{-1, 1}, m.JntRange[0:2])
}

func TestDefaults(t *testing.T) {
	m := compile(t, map[string]string{"scene.xml": `
<mujoco>
  <default>
    <geom rgba="1 0 0 1" type="box" size="1 1 1"/>
    <joint damping="2"/>
    <default class="blue">
      <geom rgba="0 0 1 1"/>
      <default class="small">
        <geom size="0.1 0.1 0.1"/>
      </default>
    </default>
  </default>
  <worldbody>
    <geom/>
    <geom class="blue"/>
    <body childclass="small">
      <joint/>
      <geom/>
      <geom rgba="0 1 0 1"/>
    </body>
  </worldbody>
</mujoco>`})

	require.Equal(t, 4, m.NGeom)
	assert.Equal(t, []float32{1, 0, 0, 1}, m.GeomRGBA[0:4])
	assert.Equal(t, physics.GeomBox, m.GeomType[1])
	assert.Equal(t, []float32{0, 0, 1, 1}, m.GeomRGBA[4:8])
	assert.Equal(t, []float64{1, 1, 1}, m.GeomSize[3:6])
	assert.Equal(t, []float64{0.1, 0.1, 0.1}, m.GeomSize[6:9], "childclass applies")
	assert.Equal(t, []float32{0, 0, 1, 1}, m.GeomRGBA[8:12], "inherited from parent class")
	assert.Equal(t, []float32{0, 1, 0, 1}, m.GeomRGBA[12:16], "explicit attribute wins")
	assert.Equal(t, 2.0, m.JntDamping[0])
}

func TestInclude(t *testing.T) {
	m := compile(t, map[string]string{
		"scene.xml": `
<mujoco>
  <include file="parts/robot.xml"/>
  <worldbody>
    <geom type="plane" size="1 1 1"/>
  </worldbody>
</mujoco>`,
		"parts/robot.xml": `
<mujoco>
  <worldbody>
    <body name="robot"><geom size="0.1"/></body>
  </worldbody>
</mujoco>`,
	})
	assert.Equal(t, 2, m.NBody)
	assert.Equal(t, 2, m.NGeom)
	bodyID(t, m, "robot")
}

func TestIncludeCycle(t *testing.T) {
	_, err := Load(mapFS(map[string]string{
		"scene.xml": `<mujoco><include file="scene.xml"/></mujoco>`,
	}), "scene.xml")
	assert.Error(t, err)
}

func TestTexturesAndMaterials(t *testing.T) {
	m := compile(t, map[string]string{"scene.xml": `
<mujoco>
  <asset>
    <material name="grid" texture="checks" specular="0.2"/>
    <texture name="checks" builtin="checker" width="4" height="4" rgb1="1 0 0" rgb2="0 0 1"/>
    <texture name="sky" builtin="gradient" width="2" height="2" rgb1="1 1 1" rgb2="0 0 0"/>
  </asset>
  <worldbody>
    <geom type="plane" size="1 1 1" material="grid"/>
  </worldbody>
</mujoco>`})

	require.Equal(t, 2, m.NTex)
	assert.Equal(t, 4, m.TexWidth[0])
	assert.Equal(t, 4*4*3, m.TexAdr[1])
	assert.Equal(t, []byte{255, 0, 0}, m.TexRGB[0:3])
	assert.Equal(t, []byte{0, 0, 255}, m.TexRGB[6:9], "second checker column")

	sky := m.TexRGB[m.TexAdr[1]:]
	assert.Equal(t, []byte{255, 255, 255}, sky[0:3])
	assert.Equal(t, []byte{0, 0, 0}, sky[6:9], "last row is rgb2")

	require.Equal(t, 1, m.NMat)
	assert.Equal(t, 0, m.MatTexID[0])
	assert.InDelta(t, 0.2, m.MatSpecular[0], 1e-6)
	assert.InDelta(t, 0.5, m.MatShininess[0], 1e-6)
	assert.Equal(t, []float32{1, 1, 1, 1}, m.MatRGBA[0:4])
	assert.Equal(t, 0, m.GeomMatID[0])
}

func TestMeshes(t *testing.T) {
	m := compile(t, map[string]string{
		"scene.xml": `
<mujoco>
  <compiler meshdir="meshes"/>
  <asset>
    <mesh file="tri.obj" scale="2 2 2"/>
    <mesh name="inline" vertex="0 0 0  1 0 0  0 1 0  0 0 1" face="0 2 1  0 1 3"/>
  </asset>
  <worldbody>
    <geom type="mesh" mesh="tri"/>
    <geom mesh="inline"/>
  </worldbody>
</mujoco>`,
		"meshes/tri.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
	})

	require.Equal(t, 2, m.NMesh)
	assert.Equal(t, 3, m.MeshVertNum[0])
	assert.Equal(t, float32(2), m.MeshVert[3], "scale applied")
	assert.InDeltaSlice(t, []float32{0, 0, 1}, m.MeshNormal[0:3], 1e-6, "normals computed")
	assert.Equal(t, -1, m.MeshTexcoordAdr[0])

	assert.Equal(t, 4, m.MeshVertNum[1])
	assert.Equal(t, 2, m.MeshFaceNum[1])
	assert.Equal(t, 1, m.MeshFaceAdr[1], "faces follow the first mesh")
	assert.Equal(t, physics.GeomMesh, m.GeomType[1], "mesh attribute implies mesh type")
	assert.Equal(t, 1, m.GeomDataID[1])
}

func TestTendons(t *testing.T) {
	m := compile(t, map[string]string{"scene.xml": `
<mujoco>
  <worldbody>
    <site name="a" pos="0 0 1"/>
    <body pos="1 0 0">
      <site name="b"/>
      <site name="c" pos="0 0 -1"/>
    </body>
  </worldbody>
  <tendon>
    <spatial name="rope" rgba="1 1 0 1">
      <site site="a"/>
      <site site="b"/>
      <site site="c"/>
    </spatial>
    <fixed name="ignored"/>
  </tendon>
</mujoco>`})

	require.Equal(t, 1, m.NTendon)
	assert.Equal(t, 0.003, m.TendonWidth[0])
	assert.Equal(t, 3, m.TendonWrapNum[0])
	assert.Equal(t, []int{0, 1, 2}, m.WrapSiteID)
	assert.Equal(t, []float32{1, 1, 0, 1}, m.TendonRGBA[0:4])
}

func TestFreeJoint(t *testing.T) {
	m := compile(t, map[string]string{"scene.xml": `
<mujoco>
  <worldbody>
    <body pos="0 0 2"><freejoint/><geom size="0.1"/></body>
  </worldbody>
</mujoco>`})
	assert.Equal(t, physics.JointFree, m.JntType[0])
	assert.Equal(t, 7, m.NQ)
	assert.Equal(t, 6, m.NV)
	assert.Equal(t, []float64{0, 0, 2, 1, 0, 0, 0}, m.Qpos0)
}

func TestIgnoredSections(t *testing.T) {
	compile(t, map[string]string{"scene.xml": `
<mujoco>
  <visual><global offwidth="800"/></visual>
  <statistic extent="2"/>
  <contact><exclude body1="a" body2="b"/></contact>
  <worldbody>
    <body><inertial mass="1" pos="0 0 0"/><camera name="c"/><geom size="1"/></body>
  </worldbody>
</mujoco>`})
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name        string
		scene       string
		unsupported bool
	}{
		{"not mujoco", `<robot/>`, false},
		{"malformed", `<mujoco><worldbody>`, false},
		{"composite", `<mujoco><worldbody><composite type="grid"/></worldbody></mujoco>`, true},
		{"geom type", `<mujoco><worldbody><geom type="sdf"/></worldbody></mujoco>`, true},
		{"mesh format", `<mujoco><asset><mesh file="a.msh"/></asset></mujoco>`, true},
		{"unknown material", `<mujoco><worldbody><geom material="x"/></worldbody></mujoco>`, false},
		{"unknown class", `<mujoco><worldbody><geom class="x"/></worldbody></mujoco>`, false},
		{"conflicting orientation", `<mujoco><worldbody><body quat="1 0 0 0" euler="0 0 0"/></worldbody></mujoco>`, false},
		{"nested free joint", `<mujoco><worldbody><body><body><freejoint/></body></body></worldbody></mujoco>`, false},
		{"joint in world", `<mujoco><worldbody><joint/></worldbody></mujoco>`, false},
		{"short tendon", `<mujoco><worldbody><site name="a"/></worldbody><tendon><spatial><site site="a"/></spatial></tendon></mujoco>`, false},
		{"unknown actuator joint", `<mujoco><actuator><motor joint="x"/></actuator></mujoco>`, false},
		{"long key", `<mujoco><keyframe><key qpos="1"/></keyframe></mujoco>`, false},
		{"bad number", `<mujoco><worldbody><geom size="big"/></worldbody></mujoco>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(mapFS(map[string]string{"scene.xml": tt.scene}), "scene.xml")
			require.Error(t, err)
			assert.Equal(t, tt.unsupported, errors.Is(err, ErrUnsupported), "%v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "scene.xml")
	assert.Error(t, err)
}
