// pkg/physics/vector.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// WrapDegrees maps an angle in degrees into [0, 360)
func WrapDegrees(deg float64) float64 {
	w := math.Mod(deg, 360)
	if w < 0 {
		w += 360
	}
	// math.Mod of a tiny negative value can round back up to 360
	if w >= 360 {
		w = 0
	}
	return w
}

// ToLocal rotates a world-frame vector into a frame yawed by deg degrees
// about the Y axis. Y passes through untouched.
func ToLocal(v mgl64.Vec3, deg float64) mgl64.Vec3 {
	s, c := math.Sincos(mgl64.DegToRad(deg))
	return mgl64.Vec3{
		c*v.X() - s*v.Z(),
		v.Y(),
		s*v.X() + c*v.Z(),
	}
}

// FromLocal is the inverse of ToLocal for the same angle.
func FromLocal(v mgl64.Vec3, deg float64) mgl64.Vec3 {
	s, c := math.Sincos(mgl64.DegToRad(deg))
	return mgl64.Vec3{
		c*v.X() + s*v.Z(),
		v.Y(),
		-s*v.X() + c*v.Z(),
	}
}

// Forward returns the world-frame unit vector the craft's nose points at
// when facing deg degrees. Forward in the body frame is -Z.
func Forward(deg float64) mgl64.Vec3 {
	return FromLocal(mgl64.Vec3{0, 0, -1}, deg)
}

// HeadingTo returns the facing, in degrees, that points the nose from
// one position at another on the XZ plane.
func HeadingTo(from, to mgl64.Vec3) float64 {
	d := to.Sub(from)
	return WrapDegrees(mgl64.RadToDeg(math.Atan2(-d.X(), -d.Z())))
}

// AngleDifference returns the signed smallest rotation from a to b, in (-180, 180].
func AngleDifference(a, b float64) float64 {
	diff := math.Mod(b-a, 360)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return diff
}

// PlanarDistance is the distance between two points ignoring height.
func PlanarDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}
