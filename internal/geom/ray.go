// Package geom provides the raycast primitives of the combat core:
// slab-method ray-AABB intersection, stepped block occlusion checks and
// eye/direction resolvers.
package geom

import (
	"math"

	"github.com/udisondev/voxelpvp/internal/model"
)

// minInsideT is the parametric distance reported for rays starting inside
// the target box. Keeps downstream distance math away from zero.
const minInsideT = 1e-3

// RayHit is the result of a successful ray-AABB intersection.
type RayHit struct {
	// Point is the intersection point in world space.
	Point model.Vec3

	// T is the parametric distance along the normalized ray direction.
	T float64
}

// RayAABB intersects a ray with a bounding box using the slab method.
// dir must be normalized; T is then the distance in blocks.
// A ray starting inside the box reports T = minInsideT, never zero.
func RayAABB(origin, dir model.Vec3, box model.AABB) (RayHit, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	for axis := range 3 {
		o, d := component(origin, axis), component(dir, axis)
		lo, hi := component(box.Min, axis), component(box.Max, axis)

		if d == 0 {
			// Ray parallel to this slab: must already be within it.
			if o < lo || o > hi {
				return RayHit{}, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return RayHit{}, false
		}
	}

	if tMax < 0 {
		// Box entirely behind the ray.
		return RayHit{}, false
	}

	t := tMin
	if t < minInsideT {
		t = minInsideT
	}

	return RayHit{
		Point: origin.Add(dir.Mul(t)),
		T:     t,
	}, true
}

func component(v model.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
