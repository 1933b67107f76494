// pkg/engine/snapshot.go
package engine

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/physics"
	"github.com/opd-ai/go-ringrace/pkg/trigger"
)

// VolumeView is a read-only copy of a placed volume
type VolumeView struct {
	ID        uint64     `msgpack:"id"`
	Kind      string     `msgpack:"kind"`
	Position  mgl64.Vec3 `msgpack:"position"`
	Yaw       float64    `msgpack:"yaw"`
	Size      float64    `msgpack:"size"`
	Triggered bool       `msgpack:"triggered"`
	// Active marks the volume the craft is currently expected to cross
	Active bool `msgpack:"active"`
	// Visible is false for checkpoints beyond the next one and for the
	// goal until every checkpoint is done
	Visible bool `msgpack:"visible"`
}

// Snapshot is everything a renderer or recorder needs for one frame
type Snapshot struct {
	SessionID   string       `msgpack:"session_id"`
	Tick        uint64       `msgpack:"tick"`
	State       string       `msgpack:"state"`
	Outcome     string       `msgpack:"outcome"`
	Started     bool         `msgpack:"started"`
	DeadlineMs  int64        `msgpack:"deadline_ms"`
	PenaltyMs   int64        `msgpack:"penalty_ms"`
	Blink       bool         `msgpack:"blink"`
	Pose        physics.Pose `msgpack:"pose"`
	Velocity    mgl64.Vec3   `msgpack:"velocity"`
	Speed       float64      `msgpack:"speed"`
	Passed      int          `msgpack:"passed"`
	Checkpoints []VolumeView `msgpack:"checkpoints"`
	Obstacles   []VolumeView `msgpack:"obstacles"`
	Goal        VolumeView   `msgpack:"goal"`
	View        Presentation `msgpack:"view"`
}

// Snapshot copies the current session state
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:   s.id,
		Tick:        s.ticks,
		State:       s.state.String(),
		Outcome:     s.outcome.String(),
		Started:     s.started,
		DeadlineMs:  s.deadlineMs,
		PenaltyMs:   s.penaltyMs,
		Blink:       s.PenaltyBlink(),
		Pose:        s.body.Pose(),
		Velocity:    s.body.Velocity(),
		Speed:       s.body.Speed(),
		Passed:      s.cursor,
		Checkpoints: make([]VolumeView, 0, len(s.checkpoints)),
		Obstacles:   make([]VolumeView, 0, len(s.obstacles)),
		View:        *s.presentation,
	}

	for i, cp := range s.checkpoints {
		snap.Checkpoints = append(snap.Checkpoints, viewOf(cp, i == s.cursor, i <= s.cursor))
	}
	for _, ob := range s.obstacles {
		snap.Obstacles = append(snap.Obstacles, viewOf(ob, false, true))
	}
	allPassed := s.cursor >= len(s.checkpoints)
	snap.Goal = viewOf(s.goal, allPassed, allPassed)
	return snap
}

func viewOf(v *trigger.Volume, active, visible bool) VolumeView {
	return VolumeView{
		ID:        uint64(v.ID),
		Kind:      v.Kind.String(),
		Position:  v.Position,
		Yaw:       v.Yaw,
		Size:      v.Size,
		Triggered: v.Triggered(),
		Active:    active,
		Visible:   visible,
	}
}
