// pkg/engine/session.go
package engine

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/config"
	"github.com/opd-ai/go-ringrace/pkg/event"
	"github.com/opd-ai/go-ringrace/pkg/logging"
	"github.com/opd-ai/go-ringrace/pkg/physics"
	"github.com/opd-ai/go-ringrace/pkg/trigger"
)

// Session runs one race: the craft, the course and the timers. It is
// driven from a single goroutine and is not safe for concurrent use.
type Session struct {
	id       string
	ctx      context.Context
	settings config.RaceSettings

	state   State
	outcome Outcome

	body        *physics.Body
	checkpoints []*trigger.Volume
	cursor      int
	obstacles   []*trigger.Volume
	goal        *trigger.Volume

	deadlineMs int64
	penaltyMs  int64
	started    bool
	lastTickMs int64
	ticks      uint64

	presentation *Presentation
	clock        Clock
	generator    CoordinateGenerator
	bus          *event.Bus
	logger       *logging.Logger
}

// Option customizes a session's collaborators
type Option func(*Session)

// WithClock sets the time source
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithGenerator sets the course placement source
func WithGenerator(g CoordinateGenerator) Option {
	return func(s *Session) { s.generator = g }
}

// WithEventBus publishes race events on an existing bus
func WithEventBus(b *event.Bus) Option {
	return func(s *Session) { s.bus = b }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithPresentation shares presentation settings with a renderer
func WithPresentation(p *Presentation) Option {
	return func(s *Session) { s.presentation = p }
}

// WithSessionID fixes the session ID instead of generating one
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession creates a race from configuration and lays out the course
func NewSession(cfg *config.RaceConfig, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	initial, err := ParseState(cfg.Race.InitialState)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	s := &Session{
		settings:   cfg.Race,
		state:      initial,
		body:       physics.NewBody(cfg.Physics.Tuning().Rescale(physics.DefaultStep, cfg.Race.Step())),
		deadlineMs: cfg.Race.CheckpointBonusMs,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.applyDefaults(cfg); err != nil {
		return nil, err
	}

	s.ctx = logging.WithSessionID(context.Background(), s.id)
	s.lastTickMs = s.clock.NowMs()
	s.layoutCourse()

	s.logger.Info(s.ctx, "session created",
		"state", s.state.String(),
		"checkpoints", len(s.checkpoints),
		"obstacles", len(s.obstacles),
		"flight_mode", s.settings.FlightMode,
	)
	return s, nil
}

// applyDefaults fills collaborators not supplied as options
func (s *Session) applyDefaults(cfg *config.RaceConfig) error {
	if s.id == "" {
		s.id = logging.GenerateSessionID()
	}
	if s.clock == nil {
		s.clock = NewSystemClock()
	}
	if s.generator == nil {
		s.generator = NewUniformGenerator(cfg.Race.SpawnExtent, cfg.Race.Seed)
	}
	if s.bus == nil {
		s.bus = event.NewEventBus()
	}
	if s.logger == nil {
		s.logger = logging.NewLogger()
	}
	if s.presentation == nil {
		p, err := NewPresentation(cfg.Presentation)
		if err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		s.presentation = p
	}
	return nil
}

// layoutCourse places checkpoints, then obstacles, then the goal
func (s *Session) layoutCourse() {
	flight := s.settings.FlightMode
	for i := 0; i < s.settings.Checkpoints; i++ {
		x, z := s.generator.Next()
		s.checkpoints = append(s.checkpoints, trigger.NewCheckpoint(mgl64.Vec3{x, trigger.RingHeight, z}, 0, flight))
	}
	for i := 0; i < s.settings.Obstacles; i++ {
		x, z := s.generator.Next()
		s.obstacles = append(s.obstacles, trigger.NewObstacle(mgl64.Vec3{x, trigger.CubeHeight, z}, 0, flight))
	}
	pos, yaw := trigger.GoalPlacement(s.settings.FloorSize)
	s.goal = trigger.NewGoal(pos, yaw, flight)
}

// OnTick advances the race by one fixed step. Outside the game state it
// does nothing.
func (s *Session) OnTick() {
	if s.state != StateGame {
		return
	}
	s.ticks++

	s.body.Step()
	pos := s.body.Pose().Position

	if s.started {
		s.updateTimers()
	}

	s.checkActiveCheckpoint(pos)
	s.checkObstacles(pos)

	if s.checkGoal(pos) {
		s.finish(OutcomeFinished)
		return
	}
	if s.started && s.deadlineMs < 0 {
		s.publishRace(event.DeadlineExpired)
		s.finish(OutcomeTimeUp)
	}
}

// updateTimers charges elapsed time to the deadline and decays the penalty
func (s *Session) updateTimers() {
	now := s.clock.NowMs()
	s.deadlineMs -= now - s.lastTickMs
	s.lastTickMs = now
	s.penaltyMs = max(0, s.penaltyMs-s.settings.PenaltyDecayMs)
}

// checkActiveCheckpoint awards the bonus when the next ring is crossed
func (s *Session) checkActiveCheckpoint(pos mgl64.Vec3) {
	cp := s.activeCheckpoint()
	if cp == nil || !cp.CheckCrossing(pos) {
		return
	}
	index := s.cursor
	s.deadlineMs += s.settings.CheckpointBonusMs
	s.cursor++

	s.logger.Info(s.ctx, "checkpoint crossed",
		"index", index,
		"remaining", len(s.checkpoints)-s.cursor,
		"deadline_ms", s.deadlineMs,
	)
	s.bus.Publish(event.NewVolumeEvent(event.CheckpointCrossed, s.raceEvent(event.CheckpointCrossed), uint64(cp.ID), cp.Kind.String(), index))
}

// checkObstacles applies the penalty for the first obstacle crossed this tick
func (s *Session) checkObstacles(pos mgl64.Vec3) {
	for _, ob := range s.obstacles {
		if !ob.CheckCrossing(pos) {
			continue
		}
		s.penaltyMs = s.settings.PenaltyMs
		s.logger.Info(s.ctx, "obstacle hit", "penalty_ms", s.penaltyMs)
		s.bus.Publish(event.NewVolumeEvent(event.ObstacleHit, s.raceEvent(event.ObstacleHit), uint64(ob.ID), ob.Kind.String(), -1))
		return
	}
}

// checkGoal tests the final gate once every checkpoint is behind the craft
func (s *Session) checkGoal(pos mgl64.Vec3) bool {
	if s.cursor < len(s.checkpoints) || !s.goal.CheckCrossing(pos) {
		return false
	}
	s.bus.Publish(event.NewVolumeEvent(event.GoalReached, s.raceEvent(event.GoalReached), uint64(s.goal.ID), s.goal.Kind.String(), -1))
	return true
}

// finish moves the race to the end state
func (s *Session) finish(outcome Outcome) {
	s.outcome = outcome
	s.apply(StateEnd, outcome.String())
}

// OnControlInput handles a key press or release
func (s *Session) OnControlInput(key Key, pressed bool) {
	if motion, ok := motionForKey(key); ok {
		s.handleMotion(motion, pressed)
		return
	}

	if !pressed {
		return
	}
	switch key {
	case KeyEscape:
		if s.state == StateGame {
			_ = s.RequestState(StateMenu)
		}
	case KeyReturn:
		if s.state == StateMenu {
			_ = s.RequestState(StateGame)
		}
	default:
		if setting, value, ok := s.presentation.toggle(key); ok {
			s.logger.Debug(s.ctx, "presentation toggled", "setting", setting, "value", value)
			s.bus.Publish(event.NewToggleEvent(s, setting, value))
		}
	}
}

// handleMotion forwards a driving key to the craft. Presses only count
// during the game; releases always go through so no key sticks.
func (s *Session) handleMotion(motion physics.Motion, pressed bool) {
	if pressed && s.state != StateGame {
		return
	}
	if pressed && !s.started {
		s.start()
	}
	s.body.SetMotion(motion, pressed)
}

// start begins the countdown on the first driving key
func (s *Session) start() {
	s.started = true
	s.lastTickMs = s.clock.NowMs()
	s.deadlineMs = s.settings.CheckpointBonusMs
	s.logger.Info(s.ctx, "race started", "deadline_ms", s.deadlineMs)
	s.publishRace(event.SessionStarted)
}

// OnPointer updates the mouse camera. Ignored outside the game.
func (s *Session) OnPointer(ev PointerEvent) {
	if s.state != StateGame {
		return
	}
	s.presentation.applyPointer(ev)
}

// RequestState asks for a state change. Illegal requests leave the state
// untouched, are logged and published, and return ErrIllegalTransition.
func (s *Session) RequestState(to State) error {
	_ = to.String() // rejects unknown states
	from := s.state
	if from == to {
		return nil
	}

	if reason := transitionError(from, to); reason != "" {
		err := fmt.Errorf("%w: %s -> %s: %s", ErrIllegalTransition, from, to, reason)
		s.logger.Error(s.ctx, "state transition rejected", err, "from", from.String(), "to", to.String())
		s.bus.Publish(event.NewStateEvent(event.TransitionRejected, s.raceEvent(event.TransitionRejected), from.String(), to.String(), s.outcome.String(), reason))
		return err
	}

	if to == StateEnd {
		s.outcome = OutcomeAborted
	}
	s.apply(to, "requested")
	return nil
}

// apply performs a legal transition
func (s *Session) apply(to State, reason string) {
	from := s.state
	s.state = to

	if to == StateGame {
		// time spent in the menu is not charged
		s.lastTickMs = s.clock.NowMs()
	}

	s.logger.Info(s.ctx, "state changed", "from", from.String(), "to", to.String(), "reason", reason)
	s.bus.Publish(event.NewStateEvent(event.StateChanged, s.raceEvent(event.StateChanged), from.String(), to.String(), s.outcome.String(), reason))
}

// activeCheckpoint returns the next ring to cross, or nil when all are done
func (s *Session) activeCheckpoint() *trigger.Volume {
	if s.cursor >= len(s.checkpoints) {
		return nil
	}
	return s.checkpoints[s.cursor]
}

// raceEvent builds the common event payload
func (s *Session) raceEvent(t event.Type) event.RaceEvent {
	return *event.NewRaceEvent(t, s, s.id, s.ticks, s.deadlineMs, s.penaltyMs)
}

// publishRace publishes a payload-free race event
func (s *Session) publishRace(t event.Type) {
	ev := s.raceEvent(t)
	s.bus.Publish(&ev)
}

// ID returns the session ID
func (s *Session) ID() string { return s.id }

// Context returns a context carrying the session ID for logging
func (s *Session) Context() context.Context { return s.ctx }

// State returns the current state
func (s *Session) State() State { return s.state }

// Outcome returns how the race ended, or OutcomeNone while it runs
func (s *Session) Outcome() Outcome { return s.outcome }

// Started reports whether a driving key has been pressed
func (s *Session) Started() bool { return s.started }

// DeadlineMs returns the remaining countdown
func (s *Session) DeadlineMs() int64 { return s.deadlineMs }

// PenaltyMs returns the remaining penalty window
func (s *Session) PenaltyMs() int64 { return s.penaltyMs }

// Ticks returns how many game ticks have run
func (s *Session) Ticks() uint64 { return s.ticks }

// CheckpointsPassed returns the active-checkpoint cursor
func (s *Session) CheckpointsPassed() int { return s.cursor }

// Pose returns the craft's pose
func (s *Session) Pose() physics.Pose { return s.body.Pose() }

// Velocity returns the craft's world velocity
func (s *Session) Velocity() mgl64.Vec3 { return s.body.Velocity() }

// Presentation returns the shared view settings. Renderers must treat it
// as read-only.
func (s *Session) Presentation() *Presentation { return s.presentation }

// EventBus returns the bus race events are published on
func (s *Session) EventBus() *event.Bus { return s.bus }

// PenaltyBlink reports whether the craft should be drawn in its hit
// colour this frame. It alternates every 200ms of penalty.
func (s *Session) PenaltyBlink() bool {
	return s.penaltyMs > 0 && (s.penaltyMs/200)%2 == 1
}
