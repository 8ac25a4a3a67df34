package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a position plus an orientation. Branch construction chains
// transforms: a child segment starts exactly where its parent ended.
type Transform struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// At returns an unrotated transform at the given position.
func At(pos mgl64.Vec3) Transform {
	return Transform{Pos: pos, Rot: mgl64.QuatIdent()}
}

// Up is the local growth axis. An identity-rotation branch grows straight up.
var Up = mgl64.Vec3{0, 1, 0}

// Forward returns the world-space growth direction of the transform.
func (t Transform) Forward() mgl64.Vec3 {
	return t.Rot.Rotate(Up)
}

// Advance moves the transform along its forward axis.
func (t Transform) Advance(distance float64) Transform {
	t.Pos = t.Pos.Add(t.Forward().Mul(distance))
	return t
}

// Pitched applies a rotation of angle radians around the local X axis.
func (t Transform) Pitched(angle float64) Transform {
	t.Rot = t.Rot.Mul(mgl64.QuatRotate(angle, mgl64.Vec3{1, 0, 0}))
	return t
}

// Rolled applies a rotation of angle radians around the local Z axis.
func (t Transform) Rolled(angle float64) Transform {
	t.Rot = t.Rot.Mul(mgl64.QuatRotate(angle, mgl64.Vec3{0, 0, 1}))
	return t
}

// Yawed applies a rotation of angle radians around the local growth axis.
func (t Transform) Yawed(angle float64) Transform {
	t.Rot = t.Rot.Mul(mgl64.QuatRotate(angle, Up))
	return t
}

// TiltedToward nudges the orientation so the forward axis sweeps toward the
// target direction by the given fraction. A zero-length target or fraction
// leaves the transform unchanged. This is what gives branches a consistent
// curve instead of a random walk.
func (t Transform) TiltedToward(target mgl64.Vec3, fraction float64) Transform {
	if fraction <= 0 || target.Len() == 0 {
		return t
	}
	forward := t.Forward()
	goal := target.Normalize()
	dot := mgl64.Clamp(forward.Dot(goal), -1, 1)
	angle := math.Acos(dot)
	if angle < 1e-9 {
		return t
	}
	axis := forward.Cross(goal)
	if axis.Len() < 1e-9 {
		// Anti-parallel: pick an arbitrary perpendicular axis.
		axis = forward.Cross(mgl64.Vec3{1, 0, 0})
		if axis.Len() < 1e-9 {
			axis = forward.Cross(mgl64.Vec3{0, 0, 1})
		}
	}
	step := mgl64.QuatRotate(angle*mgl64.Clamp(fraction, 0, 1), axis.Normalize())
	t.Rot = step.Mul(t.Rot)
	return t
}

// HorizontalDistance is the XZ-plane distance between two points.
func HorizontalDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}
