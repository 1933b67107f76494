// Package audio plays short tones when race events happen.
package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-ringrace/pkg/event"
	"github.com/opd-ai/go-ringrace/pkg/logging"
)

// DefaultSampleRate is used when the configured rate is not positive
const DefaultSampleRate = beep.SampleRate(44100)

// Player plays a finite streamer. Implementations must not block.
type Player interface {
	Play(s beep.Streamer)
}

// Note is one tone of a cue
type Note struct {
	Freq     float64
	Duration time.Duration
}

// Cue is the tone sequence played for an event type
type Cue []Note

// DefaultCues maps race events to cues
var DefaultCues = map[event.Type]Cue{
	event.SessionStarted:    {{Freq: 440, Duration: 80 * time.Millisecond}},
	event.CheckpointCrossed: {{Freq: 880, Duration: 120 * time.Millisecond}},
	event.ObstacleHit:       {{Freq: 110, Duration: 250 * time.Millisecond}},
	event.GoalReached: {
		{Freq: 523.25, Duration: 120 * time.Millisecond},
		{Freq: 659.25, Duration: 120 * time.Millisecond},
		{Freq: 783.99, Duration: 240 * time.Millisecond},
	},
	event.DeadlineExpired: {
		{Freq: 220, Duration: 300 * time.Millisecond},
		{Freq: 165, Duration: 450 * time.Millisecond},
	},
}

// Streamer builds the cue's tones at the given rate
func (c Cue) Streamer(rate beep.SampleRate) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(c))
	for _, n := range c {
		tone, err := generators.SineTone(rate, n.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.2fHz: %w", n.Freq, err)
		}
		parts = append(parts, beep.Take(rate.N(n.Duration), tone))
	}
	return beep.Seq(parts...), nil
}

// Cues plays a cue for each subscribed race event
type Cues struct {
	player Player
	rate   beep.SampleRate
	cues   map[event.Type]Cue
	logger *logging.Logger

	mu   sync.Mutex
	subs []*event.Subscription
}

// NewCues creates a cue player. A nil cue map uses DefaultCues.
func NewCues(player Player, rate beep.SampleRate, cues map[event.Type]Cue, logger *logging.Logger) *Cues {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if cues == nil {
		cues = DefaultCues
	}
	return &Cues{
		player: player,
		rate:   rate,
		cues:   cues,
		logger: logger,
	}
}

// Attach subscribes to every event type that has a cue
func (c *Cues) Attach(bus *event.Bus) {
	types := make([]event.Type, 0, len(c.cues))
	for t := range c.cues {
		types = append(types, t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, bus.SubscribeAll(c.handle, types...)...)
}

// Detach cancels all subscriptions
func (c *Cues) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.subs {
		s.Cancel()
	}
	c.subs = nil
}

func (c *Cues) handle(ev event.Event) {
	cue, ok := c.cues[ev.GetType()]
	if !ok {
		return
	}

	s, err := cue.Streamer(c.rate)
	if err != nil {
		c.logger.Warn(logging.WithSessionID(context.Background(), event.SessionOf(ev)), "cue skipped", "event", string(ev.GetType()), "error", err.Error())
		return
	}
	c.player.Play(s)
}

// SpeakerPlayer mixes cues onto the system audio device
type SpeakerPlayer struct {
	mixer *beep.Mixer
}

// NewSpeakerPlayer opens the audio device
func NewSpeakerPlayer(rate beep.SampleRate) (*SpeakerPlayer, error) {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	p := &SpeakerPlayer{mixer: &beep.Mixer{}}
	speaker.Play(p.mixer)
	return p, nil
}

// Play implements Player
func (p *SpeakerPlayer) Play(s beep.Streamer) {
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Close silences anything still playing
func (p *SpeakerPlayer) Close() {
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Clear()
}
