package scenesync

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/physview/internal/engine/coords"
	"github.com/Faultbox/physview/internal/physics"
	"github.com/Faultbox/physview/pkg/math"
)

// Wrap points closer than this to the origin are unresolved and skipped.
const minWrapDistance = 0.01

var up = mgl32.Vec3{0, 1, 0}

// syncTendons draws each tendon as spheres at its wrap points joined by
// cylinders. Segments beyond the pool capacity are dropped.
func syncTendons(s *Scene, sim physics.Simulation) {
	if s.Cylinders == nil || s.Spheres == nil {
		return
	}
	m := s.Model
	wrapXPos := sim.WrapXPos()
	wrapAdr, wrapNum := sim.TenWrapAdr(), sim.TenWrapNum()
	cylinders, spheres := s.Cylinders.Instances, s.Spheres.Instances

	numWraps := 0
	for t := 0; t < m.NTendon; t++ {
		r := float32(m.TendonWidth[t])
		radius := math.Vec3{X: r, Y: r, Z: r}
		start := wrapAdr[t]
		for w := start; w < start+wrapNum[t]-1; w++ {
			p0 := coords.Position(wrapXPos, w)
			p1 := coords.Position(wrapXPos, w+1)
			validStart := p0.Length() > minWrapDistance
			validEnd := p1.Length() > minWrapDistance

			if validStart {
				spheres.Set(numWraps, p0, math.QuatIdentity(), radius)
			}
			if validEnd {
				spheres.Set(numWraps+1, p1, math.QuatIdentity(), radius)
			}
			if validStart && validEnd {
				dir := p1.Sub(p0)
				length := dir.Length()
				d := dir.Normalize()
				q := mgl32.QuatBetweenVectors(up, mgl32.Vec3{d.X, d.Y, d.Z})
				rot := math.Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
				cylinders.Set(numWraps, p0.Lerp(p1, 0.5), rot, math.Vec3{X: r, Y: length, Z: r})
				numWraps++
			}
		}
	}

	cylinders.SetCount(numWraps)
	if numWraps > 0 {
		spheres.SetCount(numWraps + 1)
	} else {
		spheres.SetCount(0)
	}
}

// TendonSegments reports how many segments the last sync produced.
func TendonSegments(s *Scene) int {
	if s.Cylinders == nil {
		return 0
	}
	return s.Cylinders.Instances.Count
}
