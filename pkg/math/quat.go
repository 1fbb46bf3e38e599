package math

import "github.com/go-gl/mathgl/mgl32"

// Quat is a rotation quaternion with W as the scalar part. Scene files
// list quaternions as w, x, y, z; the coords package reorders them.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the rotation that does nothing.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns the rotation of angle radians about a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	return fromGL(mgl32.QuatRotate(angle, axis.gl()))
}

func (q Quat) gl() mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

func fromGL(g mgl32.Quat) Quat {
	return Quat{X: g.V[0], Y: g.V[1], Z: g.V[2], W: g.W}
}

// Normalize returns q scaled to unit length. Near-zero quaternions become
// the identity.
func (q Quat) Normalize() Quat {
	if q.gl().Len() < 1e-4 {
		return QuatIdentity()
	}
	return fromGL(q.gl().Normalize())
}

// Dot returns the four-component dot product.
func (q Quat) Dot(other Quat) float32 {
	return q.gl().Dot(other.gl())
}

// ToMat4 returns the rotation matrix of the normalized quaternion.
func (q Quat) ToMat4() Mat4 {
	return Mat4(q.Normalize().gl().Mat4())
}

// Mul returns the rotation q applied after other.
func (q Quat) Mul(other Quat) Quat {
	return fromGL(q.gl().Mul(other.gl()))
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Rotate rotates v by q.
func (q Quat) Rotate(v Vec3) Vec3 {
	r := q.gl().Rotate(v.gl())
	return Vec3{r[0], r[1], r[2]}
}

// ApproxEqual reports whether q and other are within eps per component.
func (q Quat) ApproxEqual(other Quat, eps float32) bool {
	return absf(q.X-other.X) <= eps && absf(q.Y-other.Y) <= eps &&
		absf(q.Z-other.Z) <= eps && absf(q.W-other.W) <= eps
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
