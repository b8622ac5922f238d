package geom

import (
	"math"

	"github.com/udisondev/voxelpvp/internal/model"
)

// EyePosition returns the point a player's attack ray originates from:
// feet plus the pose-dependent eye offset.
func EyePosition(feet model.Vec3, sneaking bool, standingEye, sneakingEye float64) model.Vec3 {
	h := standingEye
	if sneaking {
		h = sneakingEye
	}
	return feet.Add(model.Vec3{Y: h})
}

// DirectionFromRotation converts yaw/pitch (degrees) to a normalized look
// vector using the block-world convention:
//
//	(-sin(yaw)·cos(pitch), -sin(pitch), cos(yaw)·cos(pitch))
func DirectionFromRotation(yaw, pitch float64) model.Vec3 {
	yawRad := yaw * math.Pi / 180
	pitchRad := pitch * math.Pi / 180
	cosPitch := math.Cos(pitchRad)
	return model.Vec3{
		X: -math.Sin(yawRad) * cosPitch,
		Y: -math.Sin(pitchRad),
		Z: math.Cos(yawRad) * cosPitch,
	}
}

// AngleBetween returns the angle in degrees between two vectors.
// Zero-length inputs yield 0.
func AngleBetween(a, b model.Vec3) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}
