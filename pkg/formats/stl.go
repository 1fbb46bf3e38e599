package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrInvalidSTL       = errors.New("invalid STL data")
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// ParseSTL parses a binary or ASCII STL file. Every facet gets its own
// three vertices, each carrying the facet normal.
func ParseSTL(data []byte) (*Mesh, error) {
	if isASCIISTL(data) {
		return parseASCIISTL(data)
	}
	return parseBinarySTL(data)
}

// isASCIISTL tells ASCII files from binary ones whose header happens to
// start with "solid" by checking the binary size invariant first.
func isASCIISTL(data []byte) bool {
	if len(data) >= stlHeaderSize+4 {
		count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
		if uint64(len(data)) == stlHeaderSize+4+uint64(count)*stlTriangleSize {
			return false
		}
	}
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func parseBinarySTL(data []byte) (*Mesh, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, ErrTruncatedSTLData
	}
	count := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	body := data[stlHeaderSize+4:]
	if len(body) < count*stlTriangleSize {
		return nil, fmt.Errorf("%w: %d triangles need %d bytes, have %d",
			ErrTruncatedSTLData, count, count*stlTriangleSize, len(body))
	}

	m := &Mesh{
		Vertices: make([]float32, 0, 9*count),
		Normals:  make([]float32, 0, 9*count),
		Faces:    make([]int32, 0, 3*count),
	}
	readF := func(b []byte) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
	for t := 0; t < count; t++ {
		rec := body[t*stlTriangleSize:]
		n := [3]float32{readF(rec[0:]), readF(rec[4:]), readF(rec[8:])}
		for v := 0; v < 3; v++ {
			off := 12 + 12*v
			m.Vertices = append(m.Vertices, readF(rec[off:]), readF(rec[off+4:]), readF(rec[off+8:]))
			m.Normals = append(m.Normals, n[0], n[1], n[2])
			m.Faces = append(m.Faces, int32(3*t+v))
		}
	}
	return m, nil
}

func parseASCIISTL(data []byte) (*Mesh, error) {
	m := &Mesh{}
	var normal [3]float32
	inFacet := 0

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("%w: line %d: malformed facet", ErrInvalidSTL, line)
			}
			v, err := parseFloats3(fields[2:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, line, err)
			}
			normal = v
			inFacet = 0
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: malformed vertex", ErrInvalidSTL, line)
			}
			v, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, line, err)
			}
			m.Faces = append(m.Faces, int32(m.VertexCount()))
			m.Vertices = append(m.Vertices, v[:]...)
			m.Normals = append(m.Normals, normal[:]...)
			inFacet++
		case "endfacet":
			if inFacet != 3 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrInvalidSTL, line, inFacet)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseFloats3(fields []string) ([3]float32, error) {
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
