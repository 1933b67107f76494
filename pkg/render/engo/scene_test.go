package engo

import (
	"errors"
	"testing"
	"time"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/logging"
	"github.com/opd-ai/go-ringrace/pkg/physics"
)

type countingRenderer struct {
	frames []engine.Snapshot
	err    error
	closed bool
}

func (c *countingRenderer) Render(snap engine.Snapshot) error {
	c.frames = append(c.frames, snap)
	return c.err
}

func (c *countingRenderer) Close() error {
	c.closed = true
	return nil
}

func TestRaceScene_Type(t *testing.T) {
	scene := NewRaceScene(&fakeRace{}, physics.NewStepper(physics.DefaultStep, 10), 10000, logging.Discard())
	if scene.Type() != "RaceScene" {
		t.Errorf("Expected Type() to return %q, got %q", "RaceScene", scene.Type())
	}
	scene.Preload()
}

func TestStepSystem_Update(t *testing.T) {
	race := &fakeRace{}
	renderer := &countingRenderer{}
	observer := &countingRenderer{}
	ss := NewStepSystem(race, physics.NewStepper(10*time.Millisecond, 100), renderer, logging.Discard(), observer)

	ss.Update(0.25)
	if race.ticks != 25 {
		t.Errorf("Expected 25 ticks for a quarter second, got %d", race.ticks)
	}
	if len(renderer.frames) != 1 || renderer.frames[0].Tick != 25 {
		t.Errorf("Expected one frame at tick 25, got %+v", renderer.frames)
	}
	if len(observer.frames) != 1 {
		t.Error("Expected the observer to see the frame")
	}

	ss.Update(0.00390625)
	if race.ticks != 25 {
		t.Errorf("Expected a short frame to run no ticks, got %d", race.ticks)
	}
	if len(renderer.frames) != 2 {
		t.Error("Expected every frame to be drawn")
	}
}

func TestStepSystem_CapsCatchUp(t *testing.T) {
	race := &fakeRace{}
	ss := NewStepSystem(race, physics.NewStepper(10*time.Millisecond, 5), &countingRenderer{}, logging.Discard())

	ss.Update(2)
	if race.ticks != 5 {
		t.Errorf("Expected catch-up capped at 5 ticks, got %d", race.ticks)
	}
}

func TestStepSystem_ObserverErrorsDoNotStopFrames(t *testing.T) {
	race := &fakeRace{}
	failing := &countingRenderer{err: errors.New("disk full")}
	ss := NewStepSystem(race, physics.NewStepper(10*time.Millisecond, 10), &countingRenderer{}, logging.Discard(), failing)

	ss.Update(0.125)
	ss.Update(0.125)
	if len(failing.frames) != 2 {
		t.Errorf("Expected the failing observer to keep receiving frames, got %d", len(failing.frames))
	}
}

func TestRaceScene_ExitClosesObservers(t *testing.T) {
	observer := &countingRenderer{}
	scene := NewRaceScene(&fakeRace{}, physics.NewStepper(physics.DefaultStep, 10), 10000, logging.Discard(), observer)
	scene.Exit()
	if !observer.closed {
		t.Error("Expected observers to be closed on exit")
	}
}
