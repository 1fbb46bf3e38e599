package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidOBJ reports a malformed Wavefront OBJ file.
var ErrInvalidOBJ = errors.New("invalid OBJ data")

// objCorner is one face corner: 1-based position, texcoord and normal
// indices after resolving negative references, 0 when absent.
type objCorner [3]int

// ParseOBJ parses the geometry of a Wavefront OBJ file. Polygons are fan
// triangulated; each distinct position/texcoord/normal triple becomes one
// vertex. Materials, groups and smoothing directives are ignored.
func ParseOBJ(data []byte) (*Mesh, error) {
	var (
		positions []float32
		texcoords []float32
		normals   []float32
		corners   []objCorner
	)
	index := make(map[objCorner]int32)
	m := &Mesh{}
	hasUV, hasNormal := true, true

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrInvalidOBJ, line)
			}
			v, err := parseFloats3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			positions = append(positions, v[:]...)
		case "vt":
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: texcoord needs u", ErrInvalidOBJ, line)
			}
			u, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			v := 0.0
			if len(fields) > 2 {
				if v, err = strconv.ParseFloat(fields[2], 32); err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
				}
			}
			texcoords = append(texcoords, float32(u), float32(v))
		case "vn":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: normal needs 3 components", ErrInvalidOBJ, line)
			}
			n, err := parseFloats3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			normals = append(normals, n[:]...)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs 3 corners", ErrInvalidOBJ, line)
			}
			corners = corners[:0]
			for _, f := range fields[1:] {
				c, err := parseCorner(f, len(positions)/3, len(texcoords)/2, len(normals)/3)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
				}
				hasUV = hasUV && c[1] != 0
				hasNormal = hasNormal && c[2] != 0
				corners = append(corners, c)
			}
			for k := 1; k+1 < len(corners); k++ {
				for _, c := range [3]objCorner{corners[0], corners[k], corners[k+1]} {
					idx, ok := index[c]
					if !ok {
						idx = int32(len(index))
						index[c] = idx
					}
					m.Faces = append(m.Faces, idx)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	n := len(index)
	m.Vertices = make([]float32, 3*n)
	if hasUV && n > 0 {
		m.UVs = make([]float32, 2*n)
	}
	if hasNormal && n > 0 {
		m.Normals = make([]float32, 3*n)
	}
	for c, idx := range index {
		p := c[0] - 1
		copy(m.Vertices[3*idx:3*idx+3], positions[3*p:3*p+3])
		if m.UVs != nil {
			t := c[1] - 1
			copy(m.UVs[2*idx:2*idx+2], texcoords[2*t:2*t+2])
		}
		if m.Normals != nil {
			nn := c[2] - 1
			copy(m.Normals[3*idx:3*idx+3], normals[3*nn:3*nn+3])
		}
	}
	return m, nil
}

// parseCorner decodes "p", "p/t", "p//n" or "p/t/n".
func parseCorner(s string, np, nt, nn int) (objCorner, error) {
	var c objCorner
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return c, fmt.Errorf("bad face corner %q", s)
	}
	limits := [3]int{np, nt, nn}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return c, fmt.Errorf("face corner %q has no position", s)
			}
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return c, fmt.Errorf("bad face corner %q", s)
		}
		if v < 0 {
			v = limits[i] + 1 + v
		}
		if v < 1 || v > limits[i] {
			return c, fmt.Errorf("face corner %q out of range", s)
		}
		c[i] = v
	}
	return c, nil
}
