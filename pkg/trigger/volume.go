// Package trigger detects the craft passing through checkpoints, obstacles
// and the goal gate. All three kinds share one plane-crossing test and
// differ only in whether a hit latches.
package trigger

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/entity"
	"github.com/opd-ai/go-ringrace/pkg/physics"
)

// Kind is the role of a volume in the race.
type Kind int

// Volume kinds
const (
	Checkpoint Kind = iota
	Obstacle
	Goal
)

// String returns the kind name. Unknown values are a programming error.
func (k Kind) String() string {
	switch k {
	case Checkpoint:
		return "checkpoint"
	case Obstacle:
		return "obstacle"
	case Goal:
		return "goal"
	default:
		panic(fmt.Sprintf("trigger: unknown kind %d", int(k)))
	}
}

// Latching reports whether a volume of this kind stays triggered after
// its first hit.
func (k Kind) Latching() bool {
	switch k {
	case Checkpoint, Goal:
		return true
	case Obstacle:
		return false
	default:
		panic(fmt.Sprintf("trigger: unknown kind %d", int(k)))
	}
}

// Shape constants for each kind.
const (
	RingRadius      = 2.5
	RingInnerRadius = 0.3
	RingHeight      = 1.5

	CubeSide   = 2.5
	CubeHeight = 2.5

	GoalSide   = 2.5
	GoalHeight = 6.0
	GoalYaw    = 30.0
)

// Volume is a placed trigger. Position, Yaw and Size are fixed after
// construction.
type Volume struct {
	ID       entity.ID
	Kind     Kind
	Position mgl64.Vec3
	Yaw      float64
	Size     float64
	// Flight adds the vertical band to the crossing test.
	Flight bool

	triggered bool
	lastDepth float64
}

// New creates a volume of any kind. Most callers want NewCheckpoint,
// NewObstacle or NewGoal.
func New(kind Kind, position mgl64.Vec3, yaw, size float64, flight bool) *Volume {
	_ = kind.String() // rejects unknown kinds
	return &Volume{
		ID:        entity.GenerateID(),
		Kind:      kind,
		Position:  position,
		Yaw:       yaw,
		Size:      size,
		Flight:    flight,
		lastDepth: math.Inf(1),
	}
}

// NewCheckpoint creates a ring. On the ground the ring height is fixed.
func NewCheckpoint(position mgl64.Vec3, yaw float64, flight bool) *Volume {
	if !flight {
		position[1] = RingHeight
	}
	return New(Checkpoint, position, yaw, RingRadius, flight)
}

// NewObstacle creates a penalty cube. On the ground the cube height is fixed.
func NewObstacle(position mgl64.Vec3, yaw float64, flight bool) *Volume {
	if !flight {
		position[1] = CubeHeight
	}
	return New(Obstacle, position, yaw, CubeSide, flight)
}

// NewGoal creates the final gate.
func NewGoal(position mgl64.Vec3, yaw float64, flight bool) *Volume {
	if !flight {
		position[1] = GoalHeight
	}
	return New(Goal, position, yaw, GoalSide, flight)
}

// GoalPlacement returns where the final gate stands on a floor that spans
// [-floorSize, floorSize] on both axes: near the far edge, turned 30 degrees.
func GoalPlacement(floorSize float64) (mgl64.Vec3, float64) {
	return mgl64.Vec3{0, GoalHeight, -(floorSize - 1)}, GoalYaw
}

// CheckCrossing samples the craft position and reports whether it passed
// through the volume's plane since the previous sample.
func (v *Volume) CheckCrossing(craft mgl64.Vec3) bool {
	return crossing(v, craft)
}

// Triggered reports whether a latching volume has fired.
func (v *Volume) Triggered() bool {
	return v.triggered
}

// LastDepth returns the previous local depth sample, +Inf before the first.
func (v *Volume) LastDepth() float64 {
	return v.lastDepth
}

// Sampled reports whether the volume has a previous depth sample.
func (v *Volume) Sampled() bool {
	return !math.IsInf(v.lastDepth, 1)
}

// Local expresses a world point in the volume's frame.
func (v *Volume) Local(p mgl64.Vec3) mgl64.Vec3 {
	return physics.ToLocal(p.Sub(v.Position), v.Yaw)
}

// Reset clears the latch and the depth history.
func (v *Volume) Reset() {
	v.triggered = false
	v.lastDepth = math.Inf(1)
}

func crossing(v *Volume, craft mgl64.Vec3) bool {
	latching := v.Kind.Latching()
	if latching && v.triggered {
		return true
	}

	local := v.Local(craft)
	z := local.Z()
	prev := v.lastDepth
	v.lastDepth = z

	// no previous sample to compare against
	if math.IsInf(prev, 1) {
		return false
	}

	gate := 2 * v.Size
	if math.Abs(local.X()) >= gate {
		return false
	}
	if v.Flight && math.Abs(local.Y()) >= gate {
		return false
	}

	crossed := (z >= 0 && prev < 0) || (z <= 0 && prev > 0)
	if crossed && latching {
		v.triggered = true
	}
	return crossed
}
