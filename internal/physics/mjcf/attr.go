package mjcf

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// scope resolves the attributes of one element: its own value first, then
// the defaults of its class.
type scope struct {
	e    *element
	cls  *class
	kind string
	// fallback is a second defaults kind consulted after kind.
	fallback string
}

func (s scope) get(key string) (string, bool) {
	if v, ok := s.e.attr(key); ok {
		return v, true
	}
	if s.cls == nil {
		return "", false
	}
	if v, ok := s.cls.lookup(s.kind, key); ok {
		return v, true
	}
	if s.fallback != "" {
		return s.cls.lookup(s.fallback, key)
	}
	return "", false
}

func (s scope) has(key string) bool {
	_, ok := s.get(key)
	return ok
}

func (s scope) errorf(key string, format string, args ...any) error {
	return fmt.Errorf("%s: attribute %q: %s", s.e, key, fmt.Sprintf(format, args...))
}

func (s scope) str(key, def string) string {
	if v, ok := s.get(key); ok {
		return v
	}
	return def
}

func (s scope) float(key string, def float64) (float64, error) {
	v, ok := s.get(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, s.errorf(key, "%v", err)
	}
	return f, nil
}

// floats parses a whitespace-separated vector with between minN and maxN
// values. Missing trailing values keep def.
func (s scope) floats(key string, def []float64, minN, maxN int) ([]float64, error) {
	out := append([]float64(nil), def...)
	v, ok := s.get(key)
	if !ok {
		return out, nil
	}
	fields := strings.Fields(v)
	if len(fields) < minN || len(fields) > maxN {
		return nil, s.errorf(key, "want %d to %d values, got %d", minN, maxN, len(fields))
	}
	for len(out) < len(fields) {
		out = append(out, 0)
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, s.errorf(key, "%v", err)
		}
		out[i] = x
	}
	return out, nil
}

func (s scope) vec3(key string, def [3]float64) ([3]float64, error) {
	v, err := s.floats(key, def[:], 3, 3)
	if err != nil {
		return def, err
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

func (s scope) rgba(key string, def [4]float32) ([4]float32, error) {
	v, err := s.floats(key, []float64{float64(def[0]), float64(def[1]), float64(def[2]), float64(def[3])}, 4, 4)
	if err != nil {
		return def, err
	}
	return [4]float32{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}, nil
}

func (s scope) int(key string, def int) (int, error) {
	v, ok := s.get(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, s.errorf(key, "%v", err)
	}
	return n, nil
}

func (s scope) bool(key string, def bool) (bool, error) {
	v, ok := s.get(key)
	if !ok {
		return def, nil
	}
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, s.errorf(key, "want true or false, got %q", v)
}

// limited resolves a true/false/auto limit flag. auto enables the limit
// when the range attribute is present.
func (s scope) limited(key, rangeKey string) (bool, error) {
	switch v := s.str(key, "auto"); v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "auto":
		return s.has(rangeKey), nil
	default:
		return false, s.errorf(key, "want true, false or auto, got %q", v)
	}
}

// orientation reads the alternative orientation attributes of a frame.
// At most one may be present; none yields the identity.
func (c *compiler) orientation(s scope) ([4]float64, error) {
	identity := [4]float64{1, 0, 0, 0}
	var found []string
	for _, k := range []string{"quat", "axisangle", "euler", "zaxis", "xyaxes"} {
		if _, ok := s.e.attr(k); ok {
			found = append(found, k)
		}
	}
	if len(found) > 1 {
		return identity, fmt.Errorf("%s: conflicting orientation attributes %v", s.e, found)
	}
	if len(found) == 0 {
		return identity, nil
	}

	var q mgl64.Quat
	switch key := found[0]; key {
	case "quat":
		v, err := s.floats(key, nil, 4, 4)
		if err != nil {
			return identity, err
		}
		q = mgl64.Quat{W: v[0], V: mgl64.Vec3{v[1], v[2], v[3]}}
	case "axisangle":
		v, err := s.floats(key, nil, 4, 4)
		if err != nil {
			return identity, err
		}
		axis := mgl64.Vec3{v[0], v[1], v[2]}
		if axis.Len() < 1e-12 {
			return identity, s.errorf(key, "zero axis")
		}
		q = mgl64.QuatRotate(c.angle(v[3]), axis.Normalize())
	case "euler":
		v, err := s.floats(key, nil, 3, 3)
		if err != nil {
			return identity, err
		}
		q = mgl64.QuatIdent()
		for i, ch := range c.eulerSeq {
			var axis mgl64.Vec3
			switch ch {
			case 'x', 'X':
				axis = mgl64.Vec3{1, 0, 0}
			case 'y', 'Y':
				axis = mgl64.Vec3{0, 1, 0}
			default:
				axis = mgl64.Vec3{0, 0, 1}
			}
			r := mgl64.QuatRotate(c.angle(v[i]), axis)
			if ch >= 'a' {
				q = q.Mul(r)
			} else {
				q = r.Mul(q)
			}
		}
	case "zaxis":
		v, err := s.vec3(key, [3]float64{})
		if err != nil {
			return identity, err
		}
		z := mgl64.Vec3{v[0], v[1], v[2]}
		if z.Len() < 1e-12 {
			return identity, s.errorf(key, "zero axis")
		}
		q = mgl64.QuatBetweenVectors(mgl64.Vec3{0, 0, 1}, z.Normalize())
	case "xyaxes":
		v, err := s.floats(key, nil, 6, 6)
		if err != nil {
			return identity, err
		}
		x := mgl64.Vec3{v[0], v[1], v[2]}
		y := mgl64.Vec3{v[3], v[4], v[5]}
		if x.Len() < 1e-12 {
			return identity, s.errorf(key, "zero x axis")
		}
		x = x.Normalize()
		y = y.Sub(x.Mul(x.Dot(y)))
		if y.Len() < 1e-12 {
			return identity, s.errorf(key, "y axis parallel to x axis")
		}
		y = y.Normalize()
		z := x.Cross(y)
		rot := mgl64.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
		q = mgl64.Mat4ToQuat(rot)
	}

	if q.Len() < 1e-12 {
		return identity, fmt.Errorf("%s: zero quaternion", s.e)
	}
	q = q.Normalize()
	return [4]float64{q.W, q.V[0], q.V[1], q.V[2]}, nil
}

// angle converts a model angle to radians.
func (c *compiler) angle(a float64) float64 {
	if c.degrees {
		return a * gomath.Pi / 180
	}
	return a
}
