// Package coords converts between the physics frame (Z up) and the render
// frame (Y up).
//
// Positions map (x, y, z) to (x, z, -y). Quaternions stored as
// (w, x, y, z) map to render (x, y, z, w) = (-q1, -q3, q2, -q0), which is
// the same rotation expressed in the render frame.
package coords

import "github.com/Faultbox/physview/pkg/math"

// Float is the element type of engine buffers.
type Float interface {
	~float32 | ~float64
}

// Position reads position i of a packed xyz buffer, swizzled into the
// render frame.
func Position[T Float](buf []T, i int) math.Vec3 {
	b := buf[3*i : 3*i+3]
	return math.Vec3{X: float32(b[0]), Y: float32(b[2]), Z: -float32(b[1])}
}

// PositionRaw reads position i of a packed xyz buffer without conversion.
func PositionRaw[T Float](buf []T, i int) math.Vec3 {
	b := buf[3*i : 3*i+3]
	return math.Vec3{X: float32(b[0]), Y: float32(b[1]), Z: float32(b[2])}
}

// Quaternion reads quaternion i of a packed wxyz buffer, swizzled into the
// render frame.
func Quaternion[T Float](buf []T, i int) math.Quat {
	b := buf[4*i : 4*i+4]
	return math.Quat{X: -float32(b[1]), Y: -float32(b[3]), Z: float32(b[2]), W: -float32(b[0])}
}

// QuaternionRaw reads quaternion i in buffer order, x=q0 through w=q3.
func QuaternionRaw[T Float](buf []T, i int) math.Quat {
	b := buf[4*i : 4*i+4]
	return math.Quat{X: float32(b[0]), Y: float32(b[1]), Z: float32(b[2]), W: float32(b[3])}
}

// SetPosition writes position i into dst, converting when swizzle is set.
func SetPosition[T Float](dst *math.Vec3, buf []T, i int, swizzle bool) {
	if swizzle {
		*dst = Position(buf, i)
	} else {
		*dst = PositionRaw(buf, i)
	}
}

// SetQuaternion writes quaternion i into dst, converting when swizzle is set.
func SetQuaternion[T Float](dst *math.Quat, buf []T, i int, swizzle bool) {
	if swizzle {
		*dst = Quaternion(buf, i)
	} else {
		*dst = QuaternionRaw(buf, i)
	}
}

// ToSource maps a render-frame position back to the physics frame.
func ToSource(v math.Vec3) math.Vec3 {
	return math.Vec3{X: v.X, Y: -v.Z, Z: v.Y}
}

// QuaternionToSource inverts Quaternion, returning (w, x, y, z).
func QuaternionToSource(q math.Quat) [4]float32 {
	return [4]float32{-q.W, -q.X, q.Z, -q.Y}
}

// SwizzleInPlace converts every xyz triple of a packed buffer to the
// render frame.
func SwizzleInPlace[T Float](buf []T) {
	for i := 0; i+2 < len(buf); i += 3 {
		y, z := buf[i+1], buf[i+2]
		buf[i+1] = z
		buf[i+2] = -y
	}
}
