package geometry

import gomath "math"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// ComputeBounds returns the box enclosing a packed xyz buffer. An empty
// buffer yields a zero box.
func ComputeBounds(positions []float32) Bounds {
	if len(positions) < 3 {
		return Bounds{}
	}
	b := Bounds{
		Min: [3]float32{positions[0], positions[1], positions[2]},
		Max: [3]float32{positions[0], positions[1], positions[2]},
	}
	for i := 3; i+2 < len(positions); i += 3 {
		for k := 0; k < 3; k++ {
			b.Min[k] = min(b.Min[k], positions[i+k])
			b.Max[k] = max(b.Max[k], positions[i+k])
		}
	}
	return b
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{(b.Min[0] + b.Max[0]) / 2, (b.Min[1] + b.Max[1]) / 2, (b.Min[2] + b.Max[2]) / 2}
}

// ComputeNormals returns area-weighted smooth vertex normals for an
// indexed triangle list. Degenerate triangles contribute nothing and
// vertices without faces get (0, 0, 1).
func ComputeNormals[I ~int32 | ~uint32](positions []float32, indices []I) []float32 {
	normals := make([]float32, len(positions))
	vertex := func(i I) [3]float32 {
		return [3]float32{positions[3*i], positions[3*i+1], positions[3*i+2]}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		v0, v1, v2 := vertex(i0), vertex(i1), vertex(i2)
		e1 := [3]float32{v1[0] - v0[0], v1[1] - v0[1], v1[2] - v0[2]}
		e2 := [3]float32{v2[0] - v0[0], v2[1] - v0[1], v2[2] - v0[2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, i := range [3]I{i0, i1, i2} {
			normals[3*i] += n[0]
			normals[3*i+1] += n[1]
			normals[3*i+2] += n[2]
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		l := float32(gomath.Sqrt(float64(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])))
		if l < 1e-12 {
			normals[i], normals[i+1], normals[i+2] = 0, 0, 1
			continue
		}
		normals[i] /= l
		normals[i+1] /= l
		normals[i+2] /= l
	}
	return normals
}
