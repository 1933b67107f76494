package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func TestStep_TerminalSpeedUnderThrottle(t *testing.T) {
	tuning := DefaultTuning()
	body := NewBody(tuning)
	body.SetMotion(Throttle, true)

	prev := 0.0
	for i := 0; i < 6000; i++ {
		body.Step()
		speed := -body.BodyVelocity().Z()
		if speed < prev-epsilon {
			t.Fatalf("Expected monotonic speed increase, step %d went from %f to %f", i, prev, speed)
		}
		prev = speed
	}

	want := tuning.TerminalSpeed()
	if math.Abs(prev-want) > 1e-9 {
		t.Errorf("Expected terminal speed %f, got %f", want, prev)
	}
}

func TestStep_TerminalSpeedUnderBrake(t *testing.T) {
	tuning := DefaultTuning()
	body := NewBody(tuning)
	body.SetMotion(Brake, true)

	for i := 0; i < 6000; i++ {
		body.Step()
	}

	// braking drives the craft backwards, toward +Z in the body frame
	got := body.BodyVelocity().Z()
	if math.Abs(got-tuning.TerminalSpeed()) > 1e-9 {
		t.Errorf("Expected reverse terminal speed %f, got %f", tuning.TerminalSpeed(), got)
	}
}

func TestStep_ThrottleAndBrakeCancel(t *testing.T) {
	body := NewBody(DefaultTuning())
	body.ApplyControl(ControlState{Throttle: true, Brake: true})

	for i := 0; i < 100; i++ {
		body.Step()
	}

	if body.Speed() != 0 {
		t.Errorf("Expected craft to stay at rest, got speed %f", body.Speed())
	}
	if body.Pose().Position != (mgl64.Vec3{}) {
		t.Errorf("Expected craft to stay at origin, got %v", body.Pose().Position)
	}
}

func TestStep_SteeringReturnsToCenter(t *testing.T) {
	tests := []struct {
		name   string
		motion Motion
		sign   float64
	}{
		{name: "left", motion: SteerLeft, sign: 1},
		{name: "right", motion: SteerRight, sign: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := DefaultTuning()
			body := NewBody(tuning)
			body.SetMotion(tt.motion, true)
			for i := 0; i < 20; i++ {
				body.Step()
			}
			body.SetMotion(tt.motion, false)

			prev := body.Pose().Steering
			if prev*tt.sign <= 0 {
				t.Fatalf("Expected steering with sign %f, got %f", tt.sign, prev)
			}
			for i := 0; i < 200; i++ {
				body.Step()
				cur := body.Pose().Steering
				if math.Abs(cur-prev*tuning.SteerReturn) > epsilon {
					t.Fatalf("Expected geometric decay to %f, got %f", prev*tuning.SteerReturn, cur)
				}
				if cur*tt.sign < 0 {
					t.Fatalf("Steering changed sign at step %d: %f", i, cur)
				}
				prev = cur
			}
		})
	}
}

func TestStep_SteeringBoundedByMaxSteering(t *testing.T) {
	tuning := DefaultTuning()
	body := NewBody(tuning)
	body.SetMotion(SteerLeft, true)

	for i := 0; i < 1000; i++ {
		body.Step()
		if body.Pose().Steering > tuning.MaxSteering()+epsilon {
			t.Fatalf("Steering %f exceeded bound %f", body.Pose().Steering, tuning.MaxSteering())
		}
	}
	if math.Abs(body.Pose().Steering-tuning.MaxSteering()) > 1e-6 {
		t.Errorf("Expected steering to settle at %f, got %f", tuning.MaxSteering(), body.Pose().Steering)
	}
}

func TestStep_CannotPivotWhileStationary(t *testing.T) {
	body := NewBody(DefaultTuning())
	body.Place(mgl64.Vec3{}, 90, mgl64.Vec3{})
	body.SetMotion(SteerLeft, true)

	for i := 0; i < 50; i++ {
		body.Step()
	}

	if body.Pose().Facing != 90 {
		t.Errorf("Expected facing to stay at 90, got %f", body.Pose().Facing)
	}
}

func TestStep_TurnsLeftWhileMovingForward(t *testing.T) {
	body := NewBody(DefaultTuning())
	body.Place(mgl64.Vec3{}, 0, mgl64.Vec3{0, 0, -0.1})
	body.ApplyControl(ControlState{Throttle: true, SteerLeft: true})

	for i := 0; i < 30; i++ {
		body.Step()
	}

	facing := body.Pose().Facing
	if facing <= 0 || facing >= 180 {
		t.Errorf("Expected facing to increase from 0, got %f", facing)
	}
	if body.Pose().Position.X() >= 0 {
		t.Errorf("Expected craft to drift toward -X when turning left, got x=%f", body.Pose().Position.X())
	}
}

func TestStep_FacingStaysWrapped(t *testing.T) {
	body := NewBody(DefaultTuning())
	body.Place(mgl64.Vec3{}, 0, mgl64.Vec3{0, 0, -0.2})
	body.ApplyControl(ControlState{Throttle: true, SteerRight: true})

	for i := 0; i < 5000; i++ {
		body.Step()
		f := body.Pose().Facing
		if f < 0 || f >= 360 {
			t.Fatalf("Facing %f left [0,360) at step %d", f, i)
		}
	}
}

func TestStep_PositionIntegratesVelocity(t *testing.T) {
	tuning := DefaultTuning()
	tuning.Friction = mgl64.Vec3{1, 1, 1}
	tuning.Accel = 0
	body := NewBody(tuning)
	body.Place(mgl64.Vec3{}, 0, mgl64.Vec3{0, 0, -1})

	for i := 1; i <= 5; i++ {
		body.Step()
		if math.Abs(body.Pose().Position.Z()+float64(i)) > epsilon {
			t.Errorf("Expected z=%d after step %d, got %f", -i, i, body.Pose().Position.Z())
		}
	}
	if body.Steps() != 5 {
		t.Errorf("Expected 5 steps, got %d", body.Steps())
	}
}

func TestStep_HubPhasesFollowSpeed(t *testing.T) {
	tuning := DefaultTuning()
	tuning.Friction = mgl64.Vec3{1, 1, 1}
	tuning.Accel = 0
	body := NewBody(tuning)
	body.Place(mgl64.Vec3{}, 0, mgl64.Vec3{0, 0, 0.1})

	body.Step()

	wantFront := 360 * 0.1 / (2 * math.Pi * tuning.HubRadiusFront)
	wantRear := 360 * 0.1 / (2 * math.Pi * tuning.HubRadiusRear)
	if math.Abs(body.Pose().HubFront-wantFront) > epsilon {
		t.Errorf("Expected front hub %f, got %f", wantFront, body.Pose().HubFront)
	}
	if math.Abs(body.Pose().HubRear-wantRear) > epsilon {
		t.Errorf("Expected rear hub %f, got %f", wantRear, body.Pose().HubRear)
	}
}

func TestApplyControl_Overwrites(t *testing.T) {
	body := NewBody(DefaultTuning())
	body.ApplyControl(ControlState{Throttle: true, SteerLeft: true})
	body.ApplyControl(ControlState{Brake: true})

	want := ControlState{Brake: true}
	if body.Control() != want {
		t.Errorf("Expected %+v, got %+v", want, body.Control())
	}
}

func TestSetMotion_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown motion")
		}
	}()
	NewBody(DefaultTuning()).SetMotion(Motion(42), true)
}

func TestMotionString(t *testing.T) {
	tests := map[Motion]string{
		Throttle:   "throttle",
		Brake:      "brake",
		SteerLeft:  "steer_left",
		SteerRight: "steer_right",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}
