// Package camera provides the free camera of the viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/physview/pkg/math"
)

// Pose is a camera position looking at a target.
type Pose struct {
	Position math.Vec3
	Target   math.Vec3
}

// DefaultHome is the pose restored by Reset when no other home is set.
var DefaultHome = Pose{
	Position: math.Vec3{X: 2.0, Y: 1.7, Z: 1.7},
	Target:   math.Vec3{X: 0, Y: 0.7, Z: 0},
}

// OrbitCamera orbits a center point on a sphere. It is the viewer's free
// camera: drag rotates, scroll zooms, keys pan the center.
type OrbitCamera struct {
	Center   math.Vec3
	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians about +Y, zero looks down -Z

	MinDistance, MaxDistance float32
	MinPitch, MaxPitch       float32

	DragSpeed float32 // radians per pixel
	ZoomSpeed float32 // fraction of Distance per wheel step

	FovY      float32 // radians
	NearPlane float32
	FarPlane  float32

	// Home is the pose restored by Reset.
	Home Pose
}

// NewOrbitCamera creates a camera at home.
func NewOrbitCamera(home Pose) *OrbitCamera {
	c := &OrbitCamera{
		MinDistance: 0.1,
		MaxDistance: 100,
		MinPitch:    -1.5,
		MaxPitch:    1.5,
		DragSpeed:   0.005,
		ZoomSpeed:   0.1,
		FovY:        float32(45 * gomath.Pi / 180),
		NearPlane:   0.01,
		FarPlane:    1000,
		Home:        home,
	}
	c.Reset()
	return c
}

// Reset moves the camera back to its home pose.
func (c *OrbitCamera) Reset() {
	c.SetPose(c.Home)
}

// SetPose places the camera at p.Position looking at p.Target. A pose
// whose position equals its target looks down -Z from one unit away.
func (c *OrbitCamera) SetPose(p Pose) {
	c.Center = p.Target

	d := p.Position.Sub(p.Target)
	dist := d.Length()
	if dist < 1e-6 {
		d, dist = math.Vec3{Z: 1}, 1
	}
	c.Distance = clamp(dist, c.MinDistance, c.MaxDistance)
	c.Pitch = float32(gomath.Asin(float64(d.Y / dist)))
	c.Yaw = float32(gomath.Atan2(float64(d.X), float64(d.Z)))
}

// Target returns the orbit center.
func (c *OrbitCamera) Target() math.Vec3 {
	return c.Center
}

// offset is the unit vector from the center towards the eye.
func (c *OrbitCamera) offset() math.Vec3 {
	sp, cp := gomath.Sincos(float64(c.Pitch))
	sy, cy := gomath.Sincos(float64(c.Yaw))
	return math.Vec3{X: float32(cp * sy), Y: float32(sp), Z: float32(cp * cy)}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	return c.Center.Add(c.offset().Scale(c.Distance))
}

// ViewMatrix returns the world-to-eye transform, +Y up.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for a viewport of
// the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.NearPlane, c.FarPlane)
}

// HandleDrag orbits by a mouse drag of (dx, dy) pixels.
func (c *OrbitCamera) HandleDrag(dx, dy float32) {
	c.Yaw -= dx * c.DragSpeed
	c.Pitch = clamp(c.Pitch+dy*c.DragSpeed, c.MinPitch, c.MaxPitch)
}

// HandleZoom moves towards the center by wheel steps; positive zooms in.
func (c *OrbitCamera) HandleZoom(steps float32) {
	c.Distance = clamp(c.Distance*(1-steps*c.ZoomSpeed), c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center in the horizontal plane of the view.
// Steps scale with distance so a pan feels the same at any zoom.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01
	sy, cy := gomath.Sincos(float64(c.Yaw))
	ahead := math.Vec3{X: float32(-sy), Z: float32(-cy)}
	side := math.Vec3{X: float32(cy), Z: float32(-sy)}

	move := ahead.Scale(forward).Add(side.Scale(right)).Add(math.Vec3{Y: up})
	c.Center = c.Center.Add(move.Scale(speed))
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
