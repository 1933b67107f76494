// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-ringrace/pkg/engine"
)

// Controls is what the input system drives. *engine.Session satisfies it.
type Controls interface {
	OnControlInput(key engine.Key, pressed bool)
	OnPointer(ev engine.PointerEvent)
}

// binding names a virtual button and the keys that press it
type binding struct {
	name string
	key  engine.Key
	keys []engo.Key
}

var bindings = []binding{
	{"throttle", engine.KeyW, []engo.Key{engo.KeyW}},
	{"throttleArrow", engine.KeyUp, []engo.Key{engo.KeyArrowUp}},
	{"brake", engine.KeyS, []engo.Key{engo.KeyS}},
	{"brakeArrow", engine.KeyDown, []engo.Key{engo.KeyArrowDown}},
	{"steerLeft", engine.KeyA, []engo.Key{engo.KeyA}},
	{"steerLeftArrow", engine.KeyLeft, []engo.Key{engo.KeyArrowLeft}},
	{"steerRight", engine.KeyD, []engo.Key{engo.KeyD}},
	{"steerRightArrow", engine.KeyRight, []engo.Key{engo.KeyArrowRight}},
	{"menu", engine.KeyEscape, []engo.Key{engo.KeyEscape}},
	{"resume", engine.KeyReturn, []engo.Key{engo.KeyEnter}},
	{"camera", engine.KeyF1, []engo.Key{engo.KeyF1}},
	{"wireframe", engine.KeyF2, []engo.Key{engo.KeyF2}},
	{"envMap", engine.KeyF3, []engo.Key{engo.KeyF3}},
	{"headlight", engine.KeyF4, []engo.Key{engo.KeyF4}},
	{"shadow", engine.KeyF5, []engo.Key{engo.KeyF5}},
}

// SetupInputBindings registers the race's virtual buttons with engo
func SetupInputBindings() {
	for _, b := range bindings {
		engo.Input.RegisterButton(b.name, b.keys...)
	}
}

// buttonState is the edge state of one virtual button this frame
type buttonState struct {
	justPressed  bool
	justReleased bool
}

// InputSystem forwards key edges and pointer movement to the session
type InputSystem struct {
	controls Controls

	lastX, lastY float32
	pointerSeen  bool
}

// NewInputSystem creates a new input system
func NewInputSystem(controls Controls) *InputSystem {
	return &InputSystem{controls: controls}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update polls engo's input state
func (is *InputSystem) Update(dt float32) {
	states := make(map[string]buttonState, len(bindings))
	for _, b := range bindings {
		btn := engo.Input.Button(b.name)
		states[b.name] = buttonState{justPressed: btn.JustPressed(), justReleased: btn.JustReleased()}
	}
	is.dispatchKeys(states)

	m := engo.Input.Mouse
	is.dispatchPointer(m.X, m.Y, m.ScrollY)
}

// dispatchKeys sends one press or release per edge
func (is *InputSystem) dispatchKeys(states map[string]buttonState) {
	for _, b := range bindings {
		s := states[b.name]
		if s.justPressed {
			is.controls.OnControlInput(b.key, true)
		}
		if s.justReleased {
			is.controls.OnControlInput(b.key, false)
		}
	}
}

// dispatchPointer reports pointer motion when it moves and wheel rolls.
// Scrolling up zooms in.
func (is *InputSystem) dispatchPointer(x, y, scrollY float32) {
	if !is.pointerSeen || x != is.lastX || y != is.lastY {
		is.pointerSeen = true
		is.lastX, is.lastY = x, y
		is.controls.OnPointer(engine.PointerEvent{Kind: engine.PointerMotion, X: int(x), Y: int(y)})
	}

	switch {
	case scrollY > 0:
		is.controls.OnPointer(engine.PointerEvent{Kind: engine.PointerWheel, X: -1})
	case scrollY < 0:
		is.controls.OnPointer(engine.PointerEvent{Kind: engine.PointerWheel, X: 1})
	}
}
