// pkg/physics/timestep.go
package physics

import (
	"math"
	"time"
)

// DefaultStep is the step the stock tuning was balanced for.
const DefaultStep = 10 * time.Millisecond

// Stepper converts variable frame times into a whole number of fixed
// simulation steps. Leftover time carries into the next frame.
type Stepper struct {
	step     time.Duration
	maxSteps int
	acc      time.Duration
}

// NewStepper creates a stepper. maxSteps caps the catch-up work done in a
// single frame; time beyond the cap is dropped.
func NewStepper(step time.Duration, maxSteps int) *Stepper {
	if step <= 0 {
		step = DefaultStep
	}
	if maxSteps <= 0 {
		maxSteps = 1
	}
	return &Stepper{step: step, maxSteps: maxSteps}
}

// Advance adds elapsed frame time and returns how many steps to run.
func (s *Stepper) Advance(elapsed time.Duration) int {
	if elapsed > 0 {
		s.acc += elapsed
	}
	n := int(s.acc / s.step)
	if n > s.maxSteps {
		n = s.maxSteps
		s.acc = 0
		return n
	}
	s.acc -= time.Duration(n) * s.step
	return n
}

// Alpha is the fraction of a step left in the accumulator, for
// interpolating the presented pose.
func (s *Stepper) Alpha() float64 {
	return float64(s.acc) / float64(s.step)
}

// Step returns the fixed step length.
func (s *Stepper) Step() time.Duration {
	return s.step
}

// DecayRate converts a per-step multiplicative factor into a continuous
// exponential rate, in 1/seconds.
func DecayRate(factor float64, step time.Duration) float64 {
	if factor <= 0 {
		return math.Inf(1)
	}
	return -math.Log(factor) / step.Seconds()
}

// DecayFactor is the inverse of DecayRate for an arbitrary interval.
func DecayFactor(rate float64, dt time.Duration) float64 {
	return math.Exp(-rate * dt.Seconds())
}

// Rescale returns the tuning for running at step to instead of from.
// Multiplicative factors f become f^(to/from) so their decay per second is
// unchanged. Velocities are in distance per step, so the per-step
// acceleration scales with (to/from)^2. Steering is an angle, so its
// per-step increment scales linearly. Hub radii are geometric and stay.
func (t Tuning) Rescale(from, to time.Duration) Tuning {
	if from <= 0 || to <= 0 || from == to {
		return t
	}
	k := float64(to) / float64(from)
	out := t
	out.SteerReturn = DecayFactor(DecayRate(t.SteerReturn, from), to)
	out.SteerRate = t.SteerRate * k
	out.Accel = t.Accel * k * k
	for i := 0; i < 3; i++ {
		out.Friction[i] = DecayFactor(DecayRate(t.Friction[i], from), to)
	}
	// grip couples speed (per step) and steering to a per-step turn,
	// so it is unchanged: k from speed, 1/k from the per-step turn
	return out
}
