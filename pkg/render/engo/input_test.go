package engo

import (
	"context"
	"testing"

	"github.com/opd-ai/go-ringrace/pkg/engine"
)

type keyEdge struct {
	key     engine.Key
	pressed bool
}

type fakeRace struct {
	keys     []keyEdge
	pointers []engine.PointerEvent
	ticks    int
}

func (f *fakeRace) OnControlInput(key engine.Key, pressed bool) {
	f.keys = append(f.keys, keyEdge{key, pressed})
}

func (f *fakeRace) OnPointer(ev engine.PointerEvent) { f.pointers = append(f.pointers, ev) }

func (f *fakeRace) OnTick() { f.ticks++ }

func (f *fakeRace) Snapshot() engine.Snapshot {
	return engine.Snapshot{Tick: uint64(f.ticks), State: "game"}
}

func (f *fakeRace) Context() context.Context { return context.Background() }

func TestBindingsCoverEveryKey(t *testing.T) {
	seen := make(map[engine.Key]bool)
	names := make(map[string]bool)
	for _, b := range bindings {
		if names[b.name] {
			t.Errorf("Duplicate binding name %q", b.name)
		}
		names[b.name] = true
		seen[b.key] = true
		if len(b.keys) == 0 {
			t.Errorf("Binding %q has no keys", b.name)
		}
	}

	for k := engine.KeyW; k <= engine.KeyF5; k++ {
		if !seen[k] {
			t.Errorf("No binding for %s", k)
		}
	}
}

func TestInputSystem_DispatchKeys(t *testing.T) {
	race := &fakeRace{}
	is := NewInputSystem(race)

	is.dispatchKeys(map[string]buttonState{
		"throttle":  {justPressed: true},
		"steerLeft": {justReleased: true},
		"camera":    {justPressed: true},
	})

	want := []keyEdge{
		{engine.KeyW, true},
		{engine.KeyA, false},
		{engine.KeyF1, true},
	}
	if len(race.keys) != len(want) {
		t.Fatalf("Expected %d edges, got %v", len(want), race.keys)
	}
	for i, w := range want {
		if race.keys[i] != w {
			t.Errorf("Edge %d: expected %+v, got %+v", i, w, race.keys[i])
		}
	}
}

func TestInputSystem_DispatchPointer(t *testing.T) {
	race := &fakeRace{}
	is := NewInputSystem(race)

	is.dispatchPointer(100, 40, 0)
	is.dispatchPointer(100, 40, 0)
	if len(race.pointers) != 1 {
		t.Fatalf("Expected motion only when the pointer moves, got %v", race.pointers)
	}
	if race.pointers[0] != (engine.PointerEvent{Kind: engine.PointerMotion, X: 100, Y: 40}) {
		t.Errorf("Unexpected motion event %+v", race.pointers[0])
	}

	is.dispatchPointer(100, 40, 1)
	is.dispatchPointer(100, 40, -2)
	if len(race.pointers) != 3 {
		t.Fatalf("Expected two wheel events, got %v", race.pointers)
	}
	if race.pointers[1].Kind != engine.PointerWheel || race.pointers[1].X != -1 {
		t.Errorf("Expected scroll up to zoom in, got %+v", race.pointers[1])
	}
	if race.pointers[2].X != 1 {
		t.Errorf("Expected scroll down to zoom out, got %+v", race.pointers[2])
	}
}
