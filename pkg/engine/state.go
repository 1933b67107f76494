// pkg/engine/state.go
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// State is the session's top-level mode
type State int

const (
	StateMenu State = iota
	StateGame
	StateEnd
)

// String returns the state name. Unknown values are a programming error.
func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateGame:
		return "game"
	case StateEnd:
		return "end"
	default:
		panic(fmt.Sprintf("engine: unknown state %d", int(s)))
	}
}

// ParseState maps a state name to a State. "splash" names the game state.
func ParseState(name string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "menu":
		return StateMenu, nil
	case "game", "splash":
		return StateGame, nil
	case "end":
		return StateEnd, nil
	default:
		return 0, fmt.Errorf("unknown state %q", name)
	}
}

// Outcome records why a race reached the end state
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeFinished
	OutcomeTimeUp
	OutcomeAborted
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeFinished:
		return "finished"
	case OutcomeTimeUp:
		return "time_up"
	case OutcomeAborted:
		return "aborted"
	default:
		panic(fmt.Sprintf("engine: unknown outcome %d", int(o)))
	}
}

// ErrIllegalTransition is returned when a requested state change is not allowed
var ErrIllegalTransition = errors.New("illegal state transition")

// transitionError explains why from -> to is rejected, or returns ""
// when the move is legal. Same-state requests never reach here.
func transitionError(from, to State) string {
	switch {
	case from == StateGame && to == StateMenu:
		return ""
	case from == StateMenu && to == StateGame:
		return ""
	case from == StateGame && to == StateEnd:
		return ""
	case from == StateMenu && to == StateEnd:
		return "cannot skip from menu directly to end"
	case from == StateEnd:
		return "the race is over"
	default:
		return fmt.Sprintf("no transition from %s to %s", from, to)
	}
}
