package engo

import (
	"math"
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/physics"
)

type fakeSink struct {
	added   map[uint64]*common.RenderComponent
	removed int
}

func newFakeSink() *fakeSink {
	return &fakeSink{added: make(map[uint64]*common.RenderComponent)}
}

func (f *fakeSink) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	f.added[basic.ID()] = render
}

func (f *fakeSink) Remove(basic ecs.BasicEntity) {
	if _, ok := f.added[basic.ID()]; ok {
		delete(f.added, basic.ID())
		f.removed++
	}
}

func courseSnapshot() engine.Snapshot {
	return engine.Snapshot{
		State:      "game",
		DeadlineMs: 10000,
		Pose:       physics.Pose{Facing: 90},
		Passed:     1,
		Checkpoints: []engine.VolumeView{
			{ID: 1, Kind: "checkpoint", Position: mgl64.Vec3{0, 1.5, -5}, Size: 2.5, Triggered: true, Visible: true},
			{ID: 2, Kind: "checkpoint", Position: mgl64.Vec3{0, 1.5, -20}, Size: 2.5, Active: true, Visible: true},
			{ID: 3, Kind: "checkpoint", Position: mgl64.Vec3{10, 1.5, -30}, Size: 2.5},
		},
		Obstacles: []engine.VolumeView{
			{ID: 4, Kind: "obstacle", Position: mgl64.Vec3{5, 2.5, -10}, Size: 2.5, Visible: true},
		},
		Goal: engine.VolumeView{ID: 5, Kind: "goal", Position: mgl64.Vec3{0, 6, -99}, Yaw: 30, Size: 2.5},
		View: engine.Presentation{EyeDist: 5},
	}
}

func TestSpriteRenderer_Render(t *testing.T) {
	sink := newFakeSink()
	camera := NewCameraSystem(800, 600)
	renderer := NewSpriteRenderer(sink, camera, 10000)

	if err := renderer.Render(courseSnapshot()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// five volumes and the craft
	if len(renderer.sprites) != 6 {
		t.Fatalf("Expected 6 sprites, got %d", len(renderer.sprites))
	}

	tests := []struct {
		id     uint64
		hidden bool
	}{
		{1, false}, {2, false}, {3, true}, {4, false}, {5, true},
	}
	for _, tt := range tests {
		if got := renderer.sprites[tt.id].Hidden; got != tt.hidden {
			t.Errorf("Volume %d: expected hidden=%v, got %v", tt.id, tt.hidden, got)
		}
	}

	craft := renderer.sprites[craftKey]
	if craft.Rotation != -90 {
		t.Errorf("Expected craft rotation -90, got %f", craft.Rotation)
	}
	cx, cy := craft.Position.X+craft.Width/2, craft.Position.Y+craft.Height/2
	if math.Abs(float64(cx-400)) > 1e-3 || math.Abs(float64(cy-300)) > 1e-3 {
		t.Errorf("Expected the craft centered on screen, got %v", craft.Position)
	}
	if craft.Color != colorCraft {
		t.Errorf("Expected craft color, got %v", craft.Color)
	}

	ring := renderer.sprites[2]
	if ring.Width != camera.Length(5) {
		t.Errorf("Expected ring width %f, got %f", camera.Length(5), ring.Width)
	}
	if ring.Position.Y+ring.Height/2 >= 300 {
		t.Error("Expected the ring ahead to be drawn above the craft")
	}
}

func TestSpriteRenderer_ReusesSprites(t *testing.T) {
	sink := newFakeSink()
	renderer := NewSpriteRenderer(sink, NewCameraSystem(800, 600), 10000)

	snap := courseSnapshot()
	_ = renderer.Render(snap)
	added := len(sink.added)

	snap.Pose.Position = mgl64.Vec3{0, 0, -3}
	snap.Blink = true
	_ = renderer.Render(snap)

	if len(sink.added) != added {
		t.Errorf("Expected sprites to be reused, sink grew from %d to %d", added, len(sink.added))
	}
	if renderer.sprites[craftKey].Color != colorBlink {
		t.Error("Expected the blink color while penalised")
	}
}

func TestSpriteRenderer_Close(t *testing.T) {
	sink := newFakeSink()
	renderer := NewSpriteRenderer(sink, NewCameraSystem(800, 600), 10000)
	_ = renderer.Render(courseSnapshot())

	if err := renderer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if len(sink.added) != 0 {
		t.Errorf("Expected every sprite removed, %d left", len(sink.added))
	}
	if len(renderer.sprites) != 0 {
		t.Error("Expected the sprite map cleared")
	}
}
