package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestSTL creates a binary STL with the given triangles.
func createTestSTL(tris [][9]float32) []byte {
	buf := new(bytes.Buffer)
	buf.Write(make([]byte, 80))
	binary.Write(buf, binary.LittleEndian, uint32(len(tris)))
	for _, t := range tris {
		binary.Write(buf, binary.LittleEndian, [3]float32{0, 0, 1})
		binary.Write(buf, binary.LittleEndian, t)
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func TestParseSTL_Binary(t *testing.T) {
	data := createTestSTL([][9]float32{
		{0, 0, 0, 1, 0, 0, 0, 1, 0},
		{1, 0, 0, 1, 1, 0, 0, 1, 0},
	})

	m, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", m.TriangleCount())
	}
	if m.VertexCount() != 6 {
		t.Errorf("expected 6 vertices, got %d", m.VertexCount())
	}
	if m.Vertices[3] != 1 || m.Normals[2] != 1 {
		t.Errorf("unexpected vertex data %v / normals %v", m.Vertices[:6], m.Normals[:3])
	}
	if m.UVs != nil {
		t.Error("STL has no texture coordinates")
	}
}

func TestParseSTL_BinaryHeaderStartingWithSolid(t *testing.T) {
	data := createTestSTL([][9]float32{{0, 0, 0, 1, 0, 0, 0, 1, 0}})
	copy(data, "solid exported by a CAD tool")

	m, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if m.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", m.TriangleCount())
	}
}

func TestParseSTL_Truncated(t *testing.T) {
	data := createTestSTL([][9]float32{{0, 0, 0, 1, 0, 0, 0, 1, 0}})
	_, err := ParseSTL(data[:len(data)-10])
	if !errors.Is(err, ErrTruncatedSTLData) {
		t.Errorf("expected ErrTruncatedSTLData, got %v", err)
	}
	if _, err := ParseSTL([]byte{1, 2, 3}); !errors.Is(err, ErrTruncatedSTLData) {
		t.Errorf("expected ErrTruncatedSTLData for tiny input, got %v", err)
	}
}

func TestParseSTL_ASCII(t *testing.T) {
	data := []byte(`solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`)
	m, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if m.TriangleCount() != 1 {
		t.Fatalf("expected 1 triangle, got %d", m.TriangleCount())
	}
	if m.Vertices[6] != 0 || m.Vertices[7] != 1 {
		t.Errorf("unexpected third vertex %v", m.Vertices[6:9])
	}

	bad := []byte("solid x\nfacet normal 0 0 1\nvertex 0 0 0\nendfacet\nendsolid\n")
	if _, err := ParseSTL(bad); !errors.Is(err, ErrInvalidSTL) {
		t.Errorf("expected ErrInvalidSTL, got %v", err)
	}
}

func TestParseOBJ(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		vertices  int
		triangles int
		uvs       bool
		normals   bool
	}{
		{
			name:      "positions only",
			src:       "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
			vertices:  3,
			triangles: 1,
		},
		{
			name:      "quad is fan triangulated",
			src:       "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n",
			vertices:  4,
			triangles: 2,
		},
		{
			name: "shared corners collapse",
			src: `# cube corner
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
vt 0 0
vt 1 0
vt 0 1
vt 1 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
f 2/2/1 4/4/1 3/3/1
`,
			vertices:  4,
			triangles: 2,
			uvs:       true,
			normals:   true,
		},
		{
			name:      "negative indices",
			src:       "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf -3//-1 -2//-1 -1//-1\n",
			vertices:  3,
			triangles: 1,
			normals:   true,
		},
		{
			name:      "mixed corners drop uvs",
			src:       "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2 3\n",
			vertices:  3,
			triangles: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseOBJ([]byte(tt.src))
			if err != nil {
				t.Fatalf("ParseOBJ failed: %v", err)
			}
			if m.VertexCount() != tt.vertices {
				t.Errorf("expected %d vertices, got %d", tt.vertices, m.VertexCount())
			}
			if m.TriangleCount() != tt.triangles {
				t.Errorf("expected %d triangles, got %d", tt.triangles, m.TriangleCount())
			}
			if (m.UVs != nil) != tt.uvs {
				t.Errorf("uvs present = %v, want %v", m.UVs != nil, tt.uvs)
			}
			if (m.Normals != nil) != tt.normals {
				t.Errorf("normals present = %v, want %v", m.Normals != nil, tt.normals)
			}
			for _, f := range m.Faces {
				if int(f) >= m.VertexCount() {
					t.Fatalf("face index %d out of range", f)
				}
			}
		})
	}
}

func TestParseOBJ_Invalid(t *testing.T) {
	for _, src := range []string{
		"v 0 0\n",
		"v 0 0 0\nf 1 2 3\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2\n",
		"v a b c\n",
	} {
		if _, err := ParseOBJ([]byte(src)); !errors.Is(err, ErrInvalidOBJ) {
			t.Errorf("%q: expected ErrInvalidOBJ, got %v", src, err)
		}
	}
}

func TestMeshScale(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{1, 1, 1},
		Normals:  []float32{1, 0, 0},
	}
	m.Scale([3]float32{2, 3, 4})
	if m.Vertices[0] != 2 || m.Vertices[1] != 3 || m.Vertices[2] != 4 {
		t.Errorf("unexpected scaled vertex %v", m.Vertices)
	}
	if m.Normals[0] != 1 {
		t.Errorf("axis aligned normal should stay unit, got %v", m.Normals)
	}
}

func TestParseImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 128})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := ParseImage(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseImage failed: %v", err)
	}
	if out.Width != 2 || out.Height != 1 {
		t.Errorf("expected 2x1, got %dx%d", out.Width, out.Height)
	}
	want := []byte{255, 0, 0, 0, 0, 255}
	if !bytes.Equal(out.RGB, want) {
		t.Errorf("expected %v, got %v", want, out.RGB)
	}

	if _, err := ParseImage([]byte("not an image")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestMeshParser(t *testing.T) {
	tests := []struct {
		file string
		ok   bool
	}{
		{"arm.obj", true},
		{"meshes/Hand.STL", true},
		{"cloth.msh", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			parse, ok := MeshParser(tt.file)
			if ok != tt.ok {
				t.Fatalf("MeshParser(%q) ok = %v, want %v", tt.file, ok, tt.ok)
			}
			if ok && parse == nil {
				t.Error("expected a parser")
			}
		})
	}
}
