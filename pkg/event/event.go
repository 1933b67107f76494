// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Race event types
const (
	SessionStarted      Type = "session_started"
	CheckpointCrossed   Type = "checkpoint_crossed"
	ObstacleHit         Type = "obstacle_hit"
	GoalReached         Type = "goal_reached"
	DeadlineExpired     Type = "deadline_expired"
	StateChanged        Type = "state_changed"
	TransitionRejected  Type = "transition_rejected"
	PresentationToggled Type = "presentation_toggled"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription is returned by Subscribe. Cancel removes the handler.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

// SubscribeAll registers one handler for several event types. Cancelling
// the returned subscriptions is the caller's job.
func (b *Bus) SubscribeAll(handler Handler, types ...Type) []*Subscription {
	subs := make([]*Subscription, 0, len(types))
	for _, t := range types {
		subs = append(subs, b.Subscribe(t, handler))
	}
	return subs
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			// copy so a Publish iterating the old slice is unaffected
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			b.handlers[eventType] = append(next, subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// RaceEvent carries the session-level facts every race event shares.
type RaceEvent struct {
	BaseEvent
	SessionID  string
	Tick       uint64
	DeadlineMs int64
	PenaltyMs  int64
}

// NewRaceEvent creates a race event with no extra payload
func NewRaceEvent(eventType Type, source interface{}, sessionID string, tick uint64, deadlineMs, penaltyMs int64) *RaceEvent {
	return &RaceEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		SessionID:  sessionID,
		Tick:       tick,
		DeadlineMs: deadlineMs,
		PenaltyMs:  penaltyMs,
	}
}

// Session returns the ID of the session that published the event
func (e *RaceEvent) Session() string {
	return e.SessionID
}

// SessionOf returns the publishing session's ID, or "" for events that
// do not carry one
func SessionOf(ev Event) string {
	if s, ok := ev.(interface{ Session() string }); ok {
		return s.Session()
	}
	return ""
}

// VolumeEvent reports a checkpoint, obstacle or goal crossing
type VolumeEvent struct {
	RaceEvent
	VolumeID uint64
	Kind     string
	// Index is the checkpoint's position in the course, -1 for other kinds
	Index int
}

// NewVolumeEvent creates a crossing event
func NewVolumeEvent(eventType Type, race RaceEvent, volumeID uint64, kind string, index int) *VolumeEvent {
	race.EventType = eventType
	return &VolumeEvent{
		RaceEvent: race,
		VolumeID:  volumeID,
		Kind:      kind,
		Index:     index,
	}
}

// StateEvent reports an applied or rejected state transition
type StateEvent struct {
	RaceEvent
	From    string
	To      string
	Outcome string
	Reason  string
}

// NewStateEvent creates a state change event
func NewStateEvent(eventType Type, race RaceEvent, from, to, outcome, reason string) *StateEvent {
	race.EventType = eventType
	return &StateEvent{
		RaceEvent: race,
		From:      from,
		To:        to,
		Outcome:   outcome,
		Reason:    reason,
	}
}

// ToggleEvent reports a presentation change requested from the keyboard
type ToggleEvent struct {
	BaseEvent
	Setting string
	Value   string
}

// NewToggleEvent creates a presentation toggle event
func NewToggleEvent(source interface{}, setting, value string) *ToggleEvent {
	return &ToggleEvent{
		BaseEvent: BaseEvent{
			EventType: PresentationToggled,
			Source:    source,
		},
		Setting: setting,
		Value:   value,
	}
}
