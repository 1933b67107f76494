package autopilot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/config"
	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/logging"
	"github.com/opd-ai/go-ringrace/pkg/physics"
)

type keyEdge struct {
	key     engine.Key
	pressed bool
}

type fakeControls struct {
	edges []keyEdge
}

func (f *fakeControls) OnControlInput(key engine.Key, pressed bool) {
	f.edges = append(f.edges, keyEdge{key, pressed})
}

func snapToward(target mgl64.Vec3) engine.Snapshot {
	return engine.Snapshot{
		State: "game",
		Checkpoints: []engine.VolumeView{
			{Kind: "checkpoint", Position: target, Active: true, Visible: true},
		},
	}
}

func TestTurnRadius(t *testing.T) {
	tuning := physics.DefaultTuning()
	r := TurnRadius(tuning)
	if r <= 0 {
		t.Fatalf("Expected a positive radius, got %f", r)
	}
	// one radian of heading per radius of distance at full lock
	if got := r * tuning.Grip * mgl64.DegToRad(tuning.MaxSteering()); got < 0.999999 || got > 1.000001 {
		t.Errorf("Expected radius to invert the turn rate, got product %f", got)
	}

	tuning.Grip = 0
	if TurnRadius(tuning) != 0 {
		t.Error("Expected zero radius without grip")
	}
}

func TestTarget(t *testing.T) {
	tests := []struct {
		name   string
		snap   engine.Snapshot
		want   mgl64.Vec3
		wantOK bool
	}{
		{
			name: "active checkpoint",
			snap: engine.Snapshot{Checkpoints: []engine.VolumeView{
				{Position: mgl64.Vec3{1, 0, 1}, Triggered: true, Visible: true},
				{Position: mgl64.Vec3{2, 0, 2}, Active: true, Visible: true},
			}},
			want: mgl64.Vec3{2, 0, 2}, wantOK: true,
		},
		{
			name: "goal after all checkpoints",
			snap: engine.Snapshot{
				Checkpoints: []engine.VolumeView{{Position: mgl64.Vec3{1, 0, 1}, Triggered: true, Visible: true}},
				Goal:        engine.VolumeView{Position: mgl64.Vec3{0, 6, -99}, Active: true, Visible: true},
			},
			want: mgl64.Vec3{0, 6, -99}, wantOK: true,
		},
		{name: "nothing to chase", snap: engine.Snapshot{}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Target(tt.snap)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestPilot_Decide(t *testing.T) {
	tests := []struct {
		name string
		snap engine.Snapshot
		want physics.ControlState
	}{
		{name: "straight ahead", snap: snapToward(mgl64.Vec3{0, 1.5, -20}), want: physics.ControlState{Throttle: true}},
		{name: "to the left", snap: snapToward(mgl64.Vec3{-20, 1.5, 0}), want: physics.ControlState{Throttle: true, SteerLeft: true}},
		{name: "to the right", snap: snapToward(mgl64.Vec3{20, 1.5, 0}), want: physics.ControlState{Throttle: true, SteerRight: true}},
		{name: "behind inside the turning circle", snap: snapToward(mgl64.Vec3{0, 1.5, 2}), want: physics.ControlState{Throttle: true}},
		{name: "paused", snap: engine.Snapshot{State: "menu"}, want: physics.ControlState{}},
		{name: "no target", snap: engine.Snapshot{State: "game"}, want: physics.ControlState{}},
	}

	p := New(&fakeControls{}, physics.DefaultTuning())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Decide(tt.snap); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPilot_DecideAnticipatesSteering(t *testing.T) {
	p := New(&fakeControls{}, physics.DefaultTuning())
	snap := snapToward(mgl64.Vec3{-20, 1.5, -20})
	snap.Pose.Facing = 40
	snap.Speed = 0.12
	snap.Pose.Steering = 40

	// the held steering will carry the nose past 45 degrees on its own
	if got := p.Decide(snap); got.SteerLeft {
		t.Errorf("Expected no more left steering, got %+v", got)
	}
}

func TestPilot_UpdateSendsEdges(t *testing.T) {
	controls := &fakeControls{}
	p := New(controls, physics.DefaultTuning())

	p.Update(snapToward(mgl64.Vec3{-20, 1.5, 0}))
	p.Update(snapToward(mgl64.Vec3{-20, 1.5, 0}))
	p.Update(snapToward(mgl64.Vec3{0, 1.5, -20}))
	p.Update(engine.Snapshot{State: "end"})

	want := []keyEdge{
		{engine.KeyW, true},
		{engine.KeyA, true},
		{engine.KeyA, false},
		{engine.KeyW, false},
	}
	if len(controls.edges) != len(want) {
		t.Fatalf("Expected %d edges, got %v", len(want), controls.edges)
	}
	for i, w := range want {
		if controls.edges[i] != w {
			t.Errorf("Edge %d: expected %+v, got %+v", i, w, controls.edges[i])
		}
	}
	if p.Held() != (physics.ControlState{}) {
		t.Errorf("Expected nothing held at the end, got %+v", p.Held())
	}
}

type countingObserver struct {
	frames int
	last   engine.Snapshot
}

func (c *countingObserver) Render(snap engine.Snapshot) error {
	c.frames++
	c.last = snap
	return nil
}

func (c *countingObserver) Close() error { return nil }

func newCourse(t *testing.T, points [][2]float64, checkpoints int) (*engine.Session, *engine.ManualClock, *config.RaceConfig) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Race.Checkpoints = checkpoints
	cfg.Race.Obstacles = 0

	clock := &engine.ManualClock{}
	s, err := engine.NewSession(cfg,
		engine.WithClock(clock),
		engine.WithGenerator(&engine.FixedGenerator{Points: points}),
		engine.WithLogger(logging.Discard()),
		engine.WithSessionID("autopilot"),
	)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s, clock, cfg
}

func TestDriver_CompletesCourse(t *testing.T) {
	s, clock, cfg := newCourse(t, [][2]float64{{0, -20}, {15, -35}, {-10, -60}}, 3)
	observer := &countingObserver{}
	d := NewDriver(s, New(s, cfg.Physics.Tuning()), clock, physics.DefaultStep, logging.Discard(), observer)

	snap, err := d.Run(context.Background(), 20000)
	if err != nil {
		t.Fatalf("Run failed: %v (passed %d, deadline %d)", err, snap.Passed, snap.DeadlineMs)
	}
	if snap.Outcome != "finished" {
		t.Errorf("Expected to finish, got outcome %q", snap.Outcome)
	}
	if snap.Passed != 3 {
		t.Errorf("Expected 3 checkpoints passed, got %d", snap.Passed)
	}
	if observer.frames != int(snap.Tick) || observer.last.State != "end" {
		t.Errorf("Expected the observer to see every tick, got %d frames for %d ticks", observer.frames, snap.Tick)
	}
	if clock.NowMs() != int64(snap.Tick)*physics.DefaultStep.Milliseconds() {
		t.Errorf("Expected race time to follow ticks, got %dms for %d ticks", clock.NowMs(), snap.Tick)
	}
}

func TestDriver_TickLimit(t *testing.T) {
	s, clock, cfg := newCourse(t, [][2]float64{{0, -40}}, 1)
	d := NewDriver(s, New(s, cfg.Physics.Tuning()), clock, physics.DefaultStep, logging.Discard())

	snap, err := d.Run(context.Background(), 10)
	if !errors.Is(err, ErrTickLimit) {
		t.Errorf("Expected ErrTickLimit, got %v", err)
	}
	if snap.Tick != 10 {
		t.Errorf("Expected 10 ticks, got %d", snap.Tick)
	}
}

func TestDriver_Cancelled(t *testing.T) {
	s, clock, cfg := newCourse(t, [][2]float64{{0, -40}}, 1)
	d := NewDriver(s, New(s, cfg.Physics.Tuning()), clock, 5*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Run(ctx, 100); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
