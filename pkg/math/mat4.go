package math

import "github.com/go-gl/mathgl/mgl32"

// Mat4 is a 4x4 matrix stored column-major, the layout OpenGL uploads.
// Element (row r, column c) lives at index c*4+r, so the translation of an
// affine transform is at 12, 13 and 14. Mat4 converts freely to and from
// mgl32.Mat4, which does the heavy lifting.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Perspective returns a right-handed projection with depth mapped to
// [-1, 1]. fovY is in radians.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	return Mat4(mgl32.Perspective(fovY, aspect, near, far))
}

// Ortho returns an orthographic projection of the given box.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	return Mat4(mgl32.Ortho(left, right, bottom, top, near, far))
}

// LookAt returns the view matrix of an eye looking at center.
func LookAt(eye, center, up Vec3) Mat4 {
	return Mat4(mgl32.LookAtV(eye.gl(), center.gl(), up.gl()))
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4(mgl32.Translate3D(x, y, z))
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4(mgl32.Scale3D(x, y, z))
}

// Mul returns m * other; other is applied first.
func (m Mat4) Mul(other Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(other)))
}

// TransformPoint applies m to p with w=1, dividing through by the
// resulting w when it is not 1.
func (m Mat4) TransformPoint(p [3]float32) [3]float32 {
	v := mgl32.Mat4(m).Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
	if w := v.W(); w != 0 && w != 1 {
		v = v.Mul(1 / w)
	}
	return [3]float32{v.X(), v.Y(), v.Z()}
}

// TransformVec3 is TransformPoint for a Vec3.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	p := m.TransformPoint(v.Array())
	return Vec3{p[0], p[1], p[2]}
}

// Ptr returns a pointer to the first element for glUniformMatrix4fv.
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

// Inverse returns the inverse of m, or the identity when m is singular.
func (m Mat4) Inverse() Mat4 {
	g := mgl32.Mat4(m)
	if g.Det() == 0 {
		return Identity()
	}
	return Mat4(g.Inv())
}

// Compose builds the transform that scales, then rotates, then translates.
func Compose(position Vec3, rotation Quat, scale Vec3) Mat4 {
	r := rotation.ToMat4()
	return Mat4{
		r[0] * scale.X, r[1] * scale.X, r[2] * scale.X, 0,
		r[4] * scale.Y, r[5] * scale.Y, r[6] * scale.Y, 0,
		r[8] * scale.Z, r[9] * scale.Z, r[10] * scale.Z, 0,
		position.X, position.Y, position.Z, 1,
	}
}

// NormalMatrix returns the inverse-transpose of the upper 3x3, column-major.
// A singular basis yields the identity.
func (m Mat4) NormalMatrix() [9]float32 {
	basis := mgl32.Mat4(m).Mat3()
	if basis.Det() == 0 {
		return [9]float32(mgl32.Ident3())
	}
	return [9]float32(basis.Inv().Transpose())
}

func (v Vec3) gl() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}
