package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/voxelpvp/internal/model"
)

func TestRayAABB(t *testing.T) {
	box := model.NewAABB(model.NewVec3(2, 0, -1), model.NewVec3(3, 2, 1))

	tests := []struct {
		name   string
		origin model.Vec3
		dir    model.Vec3
		hit    bool
		wantT  float64
	}{
		{
			name:   "straight on +x",
			origin: model.NewVec3(0, 1, 0),
			dir:    model.NewVec3(1, 0, 0),
			hit:    true,
			wantT:  2,
		},
		{
			name:   "miss above",
			origin: model.NewVec3(0, 5, 0),
			dir:    model.NewVec3(1, 0, 0),
			hit:    false,
		},
		{
			name:   "box behind ray",
			origin: model.NewVec3(5, 1, 0),
			dir:    model.NewVec3(1, 0, 0),
			hit:    false,
		},
		{
			name:   "parallel slab outside",
			origin: model.NewVec3(0, 5, 0),
			dir:    model.NewVec3(0, 0, 1),
			hit:    false,
		},
		{
			name:   "diagonal",
			origin: model.NewVec3(0, 1, -3),
			dir:    model.NewVec3(1, 0, 1).Normalize(),
			hit:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := RayAABB(tt.origin, tt.dir, box)
			require.Equal(t, tt.hit, ok)
			if tt.hit && tt.wantT > 0 {
				assert.InDelta(t, tt.wantT, hit.T, 1e-9)
			}
		})
	}
}

func TestRayAABB_OriginInside(t *testing.T) {
	box := model.NewAABB(model.NewVec3(-1, -1, -1), model.NewVec3(1, 1, 1))
	hit, ok := RayAABB(model.NewVec3(0, 0, 0), model.NewVec3(1, 0, 0), box)
	require.True(t, ok)

	// A ray starting inside reports a tiny positive t, never zero, so
	// downstream distance math stays stable.
	assert.Equal(t, 1e-3, hit.T)
}

func TestRayAABB_HitPointOnSurface(t *testing.T) {
	box := model.NewAABB(model.NewVec3(4, 0, -1), model.NewVec3(5, 2, 1))
	hit, ok := RayAABB(model.NewVec3(0, 1, 0), model.NewVec3(1, 0, 0), box)
	require.True(t, ok)
	assert.InDelta(t, 4.0, hit.Point.X, 1e-9)
	assert.InDelta(t, 1.0, hit.Point.Y, 1e-9)
}

func TestFirstSolidBlock(t *testing.T) {
	// Wall at x ≥ 2.
	wall := func(p model.Vec3) bool { return p.X >= 2 }

	d, hit := FirstSolidBlock(model.NewVec3(0, 0, 0), model.NewVec3(1, 0, 0), 5, wall)
	require.True(t, hit)
	assert.InDelta(t, 2.0, d, 0.11) // step resolution is 0.1

	_, hit = FirstSolidBlock(model.NewVec3(0, 0, 0), model.NewVec3(-1, 0, 0), 5, wall)
	assert.False(t, hit)

	_, hit = FirstSolidBlock(model.NewVec3(0, 0, 0), model.NewVec3(1, 0, 0), 1.5, wall)
	assert.False(t, hit, "wall beyond reach")

	_, hit = FirstSolidBlock(model.NewVec3(0, 0, 0), model.NewVec3(1, 0, 0), 5, nil)
	assert.False(t, hit, "nil predicate disables occlusion")
}

func TestOccluded(t *testing.T) {
	wall := func(p model.Vec3) bool { return p.X >= 2 }
	origin := model.NewVec3(0, 0, 0)
	dir := model.NewVec3(1, 0, 0)

	assert.True(t, Occluded(origin, dir, 3, wall))
	assert.False(t, Occluded(origin, dir, 1, wall), "target closer than wall")
}

func TestDirectionFromRotation(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		want       model.Vec3
	}{
		{"north (+z)", 0, 0, model.NewVec3(0, 0, 1)},
		{"west (-x)", 90, 0, model.NewVec3(-1, 0, 0)},
		{"south (-z)", 180, 0, model.NewVec3(0, 0, -1)},
		{"straight down", 0, 90, model.NewVec3(0, -1, 0)},
		{"straight up", 0, -90, model.NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectionFromRotation(tt.yaw, tt.pitch)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
			assert.InDelta(t, 1.0, got.Length(), 1e-9, "always normalized")
		})
	}
}

func TestEyePosition(t *testing.T) {
	feet := model.NewVec3(10, 64, -5)
	assert.Equal(t, 64+1.62, EyePosition(feet, false, 1.62, 1.27).Y)
	assert.Equal(t, 64+1.27, EyePosition(feet, true, 1.62, 1.27).Y)
}

func TestAngleBetween(t *testing.T) {
	a := model.NewVec3(1, 0, 0)
	assert.InDelta(t, 90, AngleBetween(a, model.NewVec3(0, 0, 1)), 1e-9)
	assert.InDelta(t, 180, AngleBetween(a, model.NewVec3(-1, 0, 0)), 1e-9)
	assert.InDelta(t, 0, AngleBetween(a, model.NewVec3(2, 0, 0)), 1e-9)
	assert.Equal(t, 0.0, AngleBetween(a, model.Vec3{}), "zero vector")

	diag := AngleBetween(a, model.NewVec3(1, 0, 1))
	assert.InDelta(t, 45, diag, 1e-9)
	assert.False(t, math.IsNaN(diag))
}
