package scene

import "github.com/Faultbox/physview/pkg/math"

// Instances is a fixed-capacity pool of per-instance transforms. Only the
// first Count entries are drawn.
type Instances struct {
	Count      int
	transforms []Transform
}

// NewInstances allocates a pool of capacity identity transforms.
func NewInstances(capacity int) *Instances {
	in := &Instances{transforms: make([]Transform, capacity)}
	for i := range in.transforms {
		in.transforms[i] = IdentityTransform()
	}
	return in
}

// Capacity returns the maximum number of instances.
func (in *Instances) Capacity() int {
	return len(in.transforms)
}

// Set writes instance i. Writes past the capacity are dropped and reported
// as false.
func (in *Instances) Set(i int, position math.Vec3, rotation math.Quat, scale math.Vec3) bool {
	if i < 0 || i >= len(in.transforms) {
		return false
	}
	t := &in.transforms[i]
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	return true
}

// SetCount sets the drawn count, clamped to [0, capacity].
func (in *Instances) SetCount(n int) {
	in.Count = max(0, min(n, len(in.transforms)))
}

// At returns instance i.
func (in *Instances) At(i int) Transform {
	return in.transforms[i]
}
