// pkg/physics/body.go
package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tuning holds the per-step constants of the craft's motion model.
// All values assume one fixed simulation step; see Rescale for
// running the model at a different step.
type Tuning struct {
	SteerRate      float64
	SteerReturn    float64
	Accel          float64
	Friction       mgl64.Vec3
	Grip           float64
	HubRadiusFront float64
	HubRadiusRear  float64
}

// DefaultTuning returns the stock arcade handling.
func DefaultTuning() Tuning {
	return Tuning{
		SteerRate:      3.4,
		SteerReturn:    0.93,
		Accel:          0.0011,
		Friction:       mgl64.Vec3{0.9, 1.0, 0.991},
		Grip:           0.45,
		HubRadiusFront: 0.25,
		HubRadiusRear:  0.35,
	}
}

// TerminalSpeed is the body-frame longitudinal speed reached under
// sustained throttle: accel*f/(1-f). A frictionless axis has no limit.
func (t Tuning) TerminalSpeed() float64 {
	f := t.Friction.Z()
	if f >= 1 {
		return math.Inf(1)
	}
	return t.Accel * f / (1 - f)
}

// MaxSteering is the steering deflection reached while one steer
// input is held.
func (t Tuning) MaxSteering() float64 {
	if t.SteerReturn >= 1 {
		return math.Inf(1)
	}
	return t.SteerRate * t.SteerReturn / (1 - t.SteerReturn)
}

// Motion identifies one of the four control flags.
type Motion int

// Motion values
const (
	Throttle Motion = iota
	Brake
	SteerLeft
	SteerRight
)

// String returns the motion name. Unknown values are a programming error.
func (m Motion) String() string {
	switch m {
	case Throttle:
		return "throttle"
	case Brake:
		return "brake"
	case SteerLeft:
		return "steer_left"
	case SteerRight:
		return "steer_right"
	default:
		panic(fmt.Sprintf("physics: unknown motion %d", int(m)))
	}
}

// ControlState is the set of held control flags.
type ControlState struct {
	Throttle   bool
	Brake      bool
	SteerLeft  bool
	SteerRight bool
}

// With returns a copy of c with the flag for m set to active.
func (c ControlState) With(m Motion, active bool) ControlState {
	switch m {
	case Throttle:
		c.Throttle = active
	case Brake:
		c.Brake = active
	case SteerLeft:
		c.SteerLeft = active
	case SteerRight:
		c.SteerRight = active
	default:
		panic(fmt.Sprintf("physics: unknown motion %d", int(m)))
	}
	return c
}

// Pose is the craft's placement. HubFront and HubRear are cosmetic
// rotation phases for the renderer.
type Pose struct {
	Position mgl64.Vec3
	Facing   float64
	Steering float64
	HubFront float64
	HubRear  float64
}

// Body integrates a single craft.
type Body struct {
	tuning   Tuning
	pose     Pose
	velocity mgl64.Vec3
	control  ControlState
	steps    uint64
}

// NewBody creates a body at rest at the origin.
func NewBody(tuning Tuning) *Body {
	return &Body{tuning: tuning}
}

// Place puts the craft at a spawn pose with the given world velocity.
func (b *Body) Place(position mgl64.Vec3, facing float64, velocity mgl64.Vec3) {
	b.pose = Pose{Position: position, Facing: WrapDegrees(facing)}
	b.velocity = velocity
}

// ApplyControl records the latest control flags, replacing the previous set.
func (b *Body) ApplyControl(c ControlState) {
	b.control = c
}

// SetMotion sets a single control flag.
func (b *Body) SetMotion(m Motion, active bool) {
	b.control = b.control.With(m, active)
}

// Control returns the held flags.
func (b *Body) Control() ControlState {
	return b.control
}

// Pose returns the current pose.
func (b *Body) Pose() Pose {
	return b.pose
}

// Velocity returns the world-frame velocity.
func (b *Body) Velocity() mgl64.Vec3 {
	return b.velocity
}

// BodyVelocity returns the velocity expressed in the craft's frame.
func (b *Body) BodyVelocity() mgl64.Vec3 {
	return ToLocal(b.velocity, b.pose.Facing)
}

// Speed returns the magnitude of the velocity.
func (b *Body) Speed() float64 {
	return b.velocity.Len()
}

// Steps returns how many steps have been integrated.
func (b *Body) Steps() uint64 {
	return b.steps
}

// Tuning returns the constants the body integrates with.
func (b *Body) Tuning() Tuning {
	return b.tuning
}

// Step advances pose and velocity by one fixed step.
func (b *Body) Step() {
	t := &b.tuning
	facing := b.pose.Facing

	v := ToLocal(b.velocity, facing)
	vx, vy, vz := v.X(), v.Y(), v.Z()

	if b.control.SteerLeft {
		b.pose.Steering += t.SteerRate
	}
	if b.control.SteerRight {
		b.pose.Steering -= t.SteerRate
	}
	b.pose.Steering *= t.SteerReturn

	// forward is -Z
	if b.control.Throttle {
		vz -= t.Accel
	}
	if b.control.Brake {
		vz += t.Accel
	}

	vx *= t.Friction.X()
	vy *= t.Friction.Y()
	vz *= t.Friction.Z()

	b.pose.Facing = WrapDegrees(facing - (vz*t.Grip)*b.pose.Steering)

	b.pose.HubFront = WrapDegrees(b.pose.HubFront + hubRate(vz, t.HubRadiusFront))
	b.pose.HubRear = WrapDegrees(b.pose.HubRear + hubRate(vz, t.HubRadiusRear))

	// back to world with the pre-step facing
	b.velocity = FromLocal(mgl64.Vec3{vx, vy, vz}, facing)
	b.pose.Position = b.pose.Position.Add(b.velocity)
	b.steps++
}

func hubRate(vz, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	return 360 * vz / (2 * math.Pi * radius)
}
