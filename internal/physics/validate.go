package physics

import "fmt"

// Validate checks array lengths against the counts and every cross
// reference the scene builder follows. Errors wrap ErrInconsistentModel.
func (m *Model) Validate() error {
	lengths := []struct {
		name   string
		got    int
		count  int
		stride int
	}{
		{"body_parentid", len(m.BodyParentID), m.NBody, 1},
		{"name_bodyadr", len(m.NameBodyAdr), m.NBody, 1},
		{"geom_type", len(m.GeomType), m.NGeom, 1},
		{"geom_bodyid", len(m.GeomBodyID), m.NGeom, 1},
		{"geom_group", len(m.GeomGroup), m.NGeom, 1},
		{"geom_size", len(m.GeomSize), m.NGeom, 3},
		{"geom_pos", len(m.GeomPos), m.NGeom, 3},
		{"geom_quat", len(m.GeomQuat), m.NGeom, 4},
		{"geom_rgba", len(m.GeomRGBA), m.NGeom, 4},
		{"geom_matid", len(m.GeomMatID), m.NGeom, 1},
		{"geom_dataid", len(m.GeomDataID), m.NGeom, 1},
		{"name_geomadr", len(m.NameGeomAdr), m.NGeom, 1},
		{"mat_rgba", len(m.MatRGBA), m.NMat, 4},
		{"mat_texid", len(m.MatTexID), m.NMat, 1},
		{"mat_specular", len(m.MatSpecular), m.NMat, 1},
		{"mat_shininess", len(m.MatShininess), m.NMat, 1},
		{"mat_reflectance", len(m.MatReflectance), m.NMat, 1},
		{"tex_width", len(m.TexWidth), m.NTex, 1},
		{"tex_height", len(m.TexHeight), m.NTex, 1},
		{"tex_adr", len(m.TexAdr), m.NTex, 1},
		{"mesh_vertadr", len(m.MeshVertAdr), m.NMesh, 1},
		{"mesh_vertnum", len(m.MeshVertNum), m.NMesh, 1},
		{"mesh_texcoordadr", len(m.MeshTexcoordAdr), m.NMesh, 1},
		{"mesh_faceadr", len(m.MeshFaceAdr), m.NMesh, 1},
		{"mesh_facenum", len(m.MeshFaceNum), m.NMesh, 1},
		{"light_directional", len(m.LightDirectional), m.NLight, 1},
		{"light_castshadow", len(m.LightCastShadow), m.NLight, 1},
		{"light_bodyid", len(m.LightBodyID), m.NLight, 1},
		{"light_pos", len(m.LightPos), m.NLight, 3},
		{"light_dir", len(m.LightDir), m.NLight, 3},
		{"light_diffuse", len(m.LightDiffuse), m.NLight, 3},
		{"light_attenuation", len(m.LightAttenuation), m.NLight, 3},
		{"actuator_ctrllimited", len(m.ActuatorCtrlLimited), m.NU, 1},
		{"actuator_ctrlrange", len(m.ActuatorCtrlRange), m.NU, 2},
		{"name_actuatoradr", len(m.NameActuatorAdr), m.NU, 1},
		{"key_qpos", len(m.KeyQpos), m.NKey, m.NQ},
		{"tendon_width", len(m.TendonWidth), m.NTendon, 1},
	}
	for _, l := range lengths {
		if l.got != l.count*l.stride {
			return fmt.Errorf("%w: %s has %d entries, want %d", ErrInconsistentModel, l.name, l.got, l.count*l.stride)
		}
	}

	if len(m.MeshVert) != len(m.MeshNormal) {
		return fmt.Errorf("%w: mesh_vert and mesh_normal differ in length", ErrInconsistentModel)
	}

	for g := 0; g < m.NGeom; g++ {
		if b := m.GeomBodyID[g]; b < 0 || b >= m.NBody {
			return fmt.Errorf("%w: geom %d references body %d", ErrInconsistentModel, g, b)
		}
		if mat := m.GeomMatID[g]; mat < -1 || mat >= m.NMat {
			return fmt.Errorf("%w: geom %d references material %d", ErrInconsistentModel, g, mat)
		}
		if m.GeomType[g] == GeomMesh {
			if mesh := m.GeomDataID[g]; mesh < 0 || mesh >= m.NMesh {
				return fmt.Errorf("%w: mesh geom %d references mesh %d", ErrInconsistentModel, g, mesh)
			}
		}
	}

	for i := 0; i < m.NMat; i++ {
		if tex := m.MatTexID[i]; tex < -1 || tex >= m.NTex {
			return fmt.Errorf("%w: material %d references texture %d", ErrInconsistentModel, i, tex)
		}
	}

	for i := 0; i < m.NTex; i++ {
		end := m.TexAdr[i] + 3*m.TexWidth[i]*m.TexHeight[i]
		if m.TexAdr[i] < 0 || end > len(m.TexRGB) {
			return fmt.Errorf("%w: texture %d spans [%d,%d) of %d bytes", ErrInconsistentModel, i, m.TexAdr[i], end, len(m.TexRGB))
		}
	}

	for i := 0; i < m.NMesh; i++ {
		if err := m.checkMesh(i); err != nil {
			return err
		}
	}

	for i := 0; i < m.NLight; i++ {
		if b := m.LightBodyID[i]; b < 0 || b >= m.NBody {
			return fmt.Errorf("%w: light %d references body %d", ErrInconsistentModel, i, b)
		}
	}

	return nil
}

// checkMesh verifies that mesh i's sub-ranges lie inside the packed buffers.
func (m *Model) checkMesh(i int) error {
	vEnd := 3 * (m.MeshVertAdr[i] + m.MeshVertNum[i])
	if m.MeshVertAdr[i] < 0 || vEnd > len(m.MeshVert) {
		return fmt.Errorf("%w: mesh %d vertices exceed buffer", ErrInconsistentModel, i)
	}
	if adr := m.MeshTexcoordAdr[i]; adr >= 0 && 2*(adr+m.MeshVertNum[i]) > len(m.MeshTexcoord) {
		return fmt.Errorf("%w: mesh %d texcoords exceed buffer", ErrInconsistentModel, i)
	}
	fEnd := 3 * (m.MeshFaceAdr[i] + m.MeshFaceNum[i])
	if m.MeshFaceAdr[i] < 0 || fEnd > len(m.MeshFace) {
		return fmt.Errorf("%w: mesh %d faces exceed buffer", ErrInconsistentModel, i)
	}
	for _, idx := range m.MeshFace[3*m.MeshFaceAdr[i] : fEnd] {
		if idx < 0 || int(idx) >= m.MeshVertNum[i] {
			return fmt.Errorf("%w: mesh %d face index %d out of range", ErrInconsistentModel, i, idx)
		}
	}
	return nil
}

// MeshRange returns the vertex and face sub-ranges of mesh i. It panics
// with a wrapped ErrInconsistentModel when i is out of range.
func (m *Model) MeshRange(i int) (vertAdr, vertNum, faceAdr, faceNum int) {
	if i < 0 || i >= m.NMesh {
		panic(fmt.Errorf("%w: mesh index %d out of range [0,%d)", ErrInconsistentModel, i, m.NMesh))
	}
	return m.MeshVertAdr[i], m.MeshVertNum[i], m.MeshFaceAdr[i], m.MeshFaceNum[i]
}
