package model

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB creates a bounding box from two corners.
// Components are not reordered; callers supply Min ≤ Max.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// BoxAt returns the bounding box of an entity standing at feet position pos
// with the given width and height. The box is centered on X/Z.
func BoxAt(pos Vec3, width, height float64) AABB {
	half := width / 2
	return AABB{
		Min: Vec3{pos.X - half, pos.Y, pos.Z - half},
		Max: Vec3{pos.X + half, pos.Y + height, pos.Z + half},
	}
}

// Expand grows the box by d on every axis in both directions.
// Negative d shrinks it.
func (b AABB) Expand(d float64) AABB {
	return AABB{
		Min: Vec3{b.Min.X - d, b.Min.Y - d, b.Min.Z - d},
		Max: Vec3{b.Max.X + d, b.Max.Y + d, b.Max.Z + d},
	}
}

// Center returns the geometric center of the box.
func (b AABB) Center() Vec3 {
	return Vec3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// Contains reports whether p lies inside or on the boundary of the box.
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ClosestPoint returns the point inside the box closest to p.
func (b AABB) ClosestPoint(p Vec3) Vec3 {
	return Vec3{
		X: clampf(p.X, b.Min.X, b.Max.X),
		Y: clampf(p.Y, b.Min.Y, b.Max.Y),
		Z: clampf(p.Z, b.Min.Z, b.Max.Z),
	}
}

// DistanceTo returns the distance from p to the box surface (0 if inside).
func (b AABB) DistanceTo(p Vec3) float64 {
	return b.ClosestPoint(p).Sub(p).Length()
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
