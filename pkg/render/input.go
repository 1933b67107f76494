package render

import (
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-ringrace/pkg/engine"
)

// DefaultHold is how long a terminal key stays held after its last repeat.
// Terminals report presses only, so a release is inferred once the
// auto-repeat stops.
const DefaultHold = 150 * time.Millisecond

var specialKeys = map[tcell.Key]engine.Key{
	tcell.KeyUp:     engine.KeyUp,
	tcell.KeyDown:   engine.KeyDown,
	tcell.KeyLeft:   engine.KeyLeft,
	tcell.KeyRight:  engine.KeyRight,
	tcell.KeyEscape: engine.KeyEscape,
	tcell.KeyEnter:  engine.KeyReturn,
	tcell.KeyF1:     engine.KeyF1,
	tcell.KeyF2:     engine.KeyF2,
	tcell.KeyF3:     engine.KeyF3,
	tcell.KeyF4:     engine.KeyF4,
	tcell.KeyF5:     engine.KeyF5,
}

var runeKeys = map[rune]engine.Key{
	'w': engine.KeyW,
	'a': engine.KeyA,
	's': engine.KeyS,
	'd': engine.KeyD,
}

// TranslateKey maps a terminal key event to an engine key
func TranslateKey(ev *tcell.EventKey) engine.Key {
	if ev.Key() == tcell.KeyRune {
		if k, ok := runeKeys[unicode.ToLower(ev.Rune())]; ok {
			return k
		}
		return engine.KeyUnknown
	}
	if k, ok := specialKeys[ev.Key()]; ok {
		return k
	}
	return engine.KeyUnknown
}

// HoldTracker turns repeated terminal presses into press and release pairs
type HoldTracker struct {
	hold time.Duration
	last map[engine.Key]time.Time
}

// NewHoldTracker creates a tracker that releases keys after hold
func NewHoldTracker(hold time.Duration) *HoldTracker {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &HoldTracker{
		hold: hold,
		last: make(map[engine.Key]time.Time),
	}
}

// Press records a press and reports whether the key was not already held
func (h *HoldTracker) Press(k engine.Key, now time.Time) bool {
	_, held := h.last[k]
	h.last[k] = now
	return !held
}

// Expired removes and returns keys whose last press is older than the hold
func (h *HoldTracker) Expired(now time.Time) []engine.Key {
	var released []engine.Key
	for k, t := range h.last {
		if now.Sub(t) >= h.hold {
			released = append(released, k)
			delete(h.last, k)
		}
	}
	return released
}

// Held reports whether k is currently held
func (h *HoldTracker) Held(k engine.Key) bool {
	_, ok := h.last[k]
	return ok
}
