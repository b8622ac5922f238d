package geom

import "github.com/udisondev/voxelpvp/internal/model"

// blockStep is the sampling increment of the block raycast, in blocks.
const blockStep = 0.1

// SolidFunc reports whether the block containing the given world point is
// solid. Supplied by the world layer; the combat core never stores chunks.
type SolidFunc func(p model.Vec3) bool

// FirstSolidBlock steps along the ray from origin in direction dir (must be
// normalized) and returns the distance to the first solid block sample,
// up to maxDist. Used only to reject swings aimed at geometry in front of
// the apparent target.
func FirstSolidBlock(origin, dir model.Vec3, maxDist float64, solid SolidFunc) (float64, bool) {
	if solid == nil || maxDist <= 0 {
		return 0, false
	}
	for d := blockStep; d <= maxDist; d += blockStep {
		if solid(origin.Add(dir.Mul(d))) {
			return d, true
		}
	}
	return 0, false
}

// Occluded reports whether a solid block lies on the ray strictly closer
// than dist.
func Occluded(origin, dir model.Vec3, dist float64, solid SolidFunc) bool {
	d, hit := FirstSolidBlock(origin, dir, dist, solid)
	return hit && d < dist
}
