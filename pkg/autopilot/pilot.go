// Package autopilot drives a race session through its course without a
// human at the keys.
package autopilot

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/physics"
)

// Controls receives key edges, like a keyboard front-end would send
type Controls interface {
	OnControlInput(key engine.Key, pressed bool)
}

// keyFor maps each control flag to the key that drives it
var keyFor = map[physics.Motion]engine.Key{
	physics.Throttle:   engine.KeyW,
	physics.Brake:      engine.KeyS,
	physics.SteerLeft:  engine.KeyA,
	physics.SteerRight: engine.KeyD,
}

// DefaultDeadband is the heading error, in degrees, left uncorrected
const DefaultDeadband = 2.0

// Pilot steers toward the active checkpoint, then the goal
type Pilot struct {
	controls   Controls
	tuning     physics.Tuning
	turnRadius float64
	deadband   float64
	held       physics.ControlState
}

// New creates a pilot for a craft with the given handling
func New(controls Controls, tuning physics.Tuning) *Pilot {
	return &Pilot{
		controls:   controls,
		tuning:     tuning,
		turnRadius: TurnRadius(tuning),
		deadband:   DefaultDeadband,
	}
}

// TurnRadius is the radius of the circle driven at full steering lock.
// Turn rate grows with speed as fast as distance does, so the radius is
// the same at any speed.
func TurnRadius(t physics.Tuning) float64 {
	perUnit := t.Grip * mgl64.DegToRad(t.MaxSteering())
	if perUnit <= 0 || math.IsInf(perUnit, 1) {
		return 0
	}
	return 1 / perUnit
}

// Target returns the point the craft should head for next
func Target(snap engine.Snapshot) (mgl64.Vec3, bool) {
	for _, cp := range snap.Checkpoints {
		if cp.Active {
			return cp.Position, true
		}
	}
	if snap.Goal.Active {
		return snap.Goal.Position, true
	}
	return mgl64.Vec3{}, false
}

// Decide picks the controls to hold for this snapshot
func (p *Pilot) Decide(snap engine.Snapshot) physics.ControlState {
	var c physics.ControlState
	if snap.State != "game" {
		return c
	}
	target, ok := Target(snap)
	if !ok {
		return c
	}

	pos := snap.Pose.Position
	desired := physics.HeadingTo(pos, target)
	diff := physics.AngleDifference(p.settledFacing(snap), desired)
	dist := physics.PlanarDistance(pos, target)

	c.Throttle = true

	// a target inside the turning circle can't be reached by turning
	// harder, so run straight until it falls outside
	if dist < 2*p.turnRadius && math.Abs(diff) > 60 {
		return c
	}

	// facing grows to the left
	if math.Abs(diff) > p.deadband {
		if diff > 0 {
			c.SteerLeft = true
		} else {
			c.SteerRight = true
		}
	}
	return c
}

// settledFacing is where the facing ends up if steering is released now
// and left to return to center
func (p *Pilot) settledFacing(snap engine.Snapshot) float64 {
	r := p.tuning.SteerReturn
	if r <= 0 || r >= 1 {
		return snap.Pose.Facing
	}
	residual := snap.Pose.Steering * r / (1 - r)
	return snap.Pose.Facing + snap.Speed*p.tuning.Grip*residual
}

// Update decides and sends the key edges that differ from what is held
func (p *Pilot) Update(snap engine.Snapshot) {
	next := p.Decide(snap)
	p.send(physics.Throttle, p.held.Throttle, next.Throttle)
	p.send(physics.Brake, p.held.Brake, next.Brake)
	p.send(physics.SteerLeft, p.held.SteerLeft, next.SteerLeft)
	p.send(physics.SteerRight, p.held.SteerRight, next.SteerRight)
	p.held = next
}

// Held returns the controls the pilot is holding
func (p *Pilot) Held() physics.ControlState {
	return p.held
}

func (p *Pilot) send(m physics.Motion, was, now bool) {
	if was != now {
		p.controls.OnControlInput(keyFor[m], now)
	}
}
