// pkg/render/engo/scene.go
package engo

import (
	"context"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/logging"
	"github.com/opd-ai/go-ringrace/pkg/physics"
	"github.com/opd-ai/go-ringrace/pkg/render"
)

// Window size used by Run
const (
	WindowWidth  = 1024
	WindowHeight = 768
)

// Race is the session surface the scene drives
type Race interface {
	Controls
	OnTick()
	Snapshot() engine.Snapshot
	Context() context.Context
}

// RaceScene shows one race session in an engo window
type RaceScene struct {
	race    Race
	stepper *physics.Stepper
	bonusMs int64
	logger  *logging.Logger

	// Rendering components
	renderer *SpriteRenderer
	camera   *CameraSystem
	input    *InputSystem
	step     *StepSystem

	// observers get every snapshot after it is drawn, e.g. a recorder
	observers []render.Renderer
}

// NewRaceScene creates a scene for a session
func NewRaceScene(race Race, stepper *physics.Stepper, bonusMs int64, logger *logging.Logger, observers ...render.Renderer) *RaceScene {
	return &RaceScene{
		race:      race,
		stepper:   stepper,
		bonusMs:   bonusMs,
		logger:    logger,
		observers: observers,
	}
}

// Type returns the scene type (required by Engo)
func (scene *RaceScene) Type() string {
	return "RaceScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *RaceScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *RaceScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	common.SetBackground(colorBackground)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	SetupInputBindings()

	scene.camera = NewCameraSystem(engo.GameWidth(), engo.GameHeight())
	scene.input = NewInputSystem(scene.race)
	scene.renderer = NewSpriteRenderer(renderSystem, scene.camera, scene.bonusMs)
	scene.step = NewStepSystem(scene.race, scene.stepper, scene.renderer, scene.logger, scene.observers...)

	// input before stepping so presses land in this frame's ticks
	world.AddSystem(scene.input)
	world.AddSystem(scene.step)
	world.AddSystem(scene.camera)

	scene.logger.Info(scene.race.Context(), "scene ready",
		"width", engo.GameWidth(),
		"height", engo.GameHeight(),
	)
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *RaceScene) Exit() {
	if scene.renderer != nil {
		_ = scene.renderer.Close()
	}
	for _, o := range scene.observers {
		if err := o.Close(); err != nil {
			scene.logger.Error(scene.race.Context(), "observer close failed", err)
		}
	}
}

// StepSystem runs the fixed-step simulation from engo's variable frame
// time and hands each frame's snapshot to the renderers
type StepSystem struct {
	race      Race
	stepper   *physics.Stepper
	renderer  render.Renderer
	observers []render.Renderer
	logger    *logging.Logger
}

// NewStepSystem creates a step system
func NewStepSystem(race Race, stepper *physics.Stepper, renderer render.Renderer, logger *logging.Logger, observers ...render.Renderer) *StepSystem {
	return &StepSystem{
		race:      race,
		stepper:   stepper,
		renderer:  renderer,
		observers: observers,
		logger:    logger,
	}
}

// Remove satisfies the ecs.System interface
func (ss *StepSystem) Remove(basic ecs.BasicEntity) {}

// Update advances the race by however many whole steps dt covers
func (ss *StepSystem) Update(dt float32) {
	steps := ss.stepper.Advance(time.Duration(float64(dt) * float64(time.Second)))
	for i := 0; i < steps; i++ {
		ss.race.OnTick()
	}

	snap := ss.race.Snapshot()
	if err := ss.renderer.Render(snap); err != nil {
		ss.logger.Error(ss.race.Context(), "render failed", err)
	}
	for _, o := range ss.observers {
		if err := o.Render(snap); err != nil {
			ss.logger.Warn(ss.race.Context(), "observer failed", "error", err.Error())
		}
	}
}

// Run opens a window and blocks until it is closed
func Run(race Race, stepper *physics.Stepper, bonusMs int64, logger *logging.Logger, observers ...render.Renderer) {
	engo.Run(engo.RunOptions{
		Title:  "ringrace",
		Width:  WindowWidth,
		Height: WindowHeight,
	}, NewRaceScene(race, stepper, bonusMs, logger, observers...))
}
