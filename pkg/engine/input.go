// pkg/engine/input.go
package engine

import "github.com/opd-ai/go-ringrace/pkg/physics"

// Key is a front-end independent key code
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEscape
	KeyReturn
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
)

var keyNames = map[Key]string{
	KeyUnknown: "unknown",
	KeyW:       "w",
	KeyA:       "a",
	KeyS:       "s",
	KeyD:       "d",
	KeyUp:      "up",
	KeyDown:    "down",
	KeyLeft:    "left",
	KeyRight:   "right",
	KeyEscape:  "escape",
	KeyReturn:  "return",
	KeyF1:      "f1",
	KeyF2:      "f2",
	KeyF3:      "f3",
	KeyF4:      "f4",
	KeyF5:      "f5",
}

// String returns the key name
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsMotion reports whether k is a driving key
func (k Key) IsMotion() bool {
	_, ok := motionForKey(k)
	return ok
}

// motionForKey maps the driving keys to a control flag
func motionForKey(k Key) (physics.Motion, bool) {
	switch k {
	case KeyW, KeyUp:
		return physics.Throttle, true
	case KeyA, KeyLeft:
		return physics.SteerLeft, true
	case KeyS, KeyDown:
		return physics.Brake, true
	case KeyD, KeyRight:
		return physics.SteerRight, true
	default:
		return 0, false
	}
}

// PointerKind distinguishes pointer motion from wheel rolls
type PointerKind int

const (
	PointerMotion PointerKind = iota
	PointerWheel
)

// PointerEvent is a mouse motion or wheel roll. For wheel events only the
// sign of X matters: negative zooms in, positive zooms out.
type PointerEvent struct {
	Kind PointerKind
	X    int
	Y    int
}
