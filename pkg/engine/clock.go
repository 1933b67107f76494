// pkg/engine/clock.go
package engine

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-ringrace/pkg/config"
)

// Clock supplies monotonic milliseconds
type Clock interface {
	NowMs() int64
}

// SystemClock reads the wall clock's monotonic reading
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock whose zero is now
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowMs returns milliseconds since the clock was created
func (c *SystemClock) NowMs() int64 {
	return time.Since(c.start).Milliseconds()
}

// ManualClock only moves when told to. Used by tests and the headless
// autopilot, which derive time from the tick count. Sub-millisecond
// advances accumulate.
type ManualClock struct {
	ns atomic.Int64
}

// NowMs returns the current manual time
func (c *ManualClock) NowMs() int64 {
	return time.Duration(c.ns.Load()).Milliseconds()
}

// Advance moves the clock forward
func (c *ManualClock) Advance(d time.Duration) {
	c.ns.Add(int64(d))
}

// Set jumps the clock to an absolute time
func (c *ManualClock) Set(ms int64) {
	c.ns.Store(int64(time.Duration(ms) * time.Millisecond))
}

// SteppedSession runs a session on simulated time. Each OnTick first
// moves the session clock one step, so every catch-up tick a fixed-step
// loop runs in a single frame is charged to the deadline.
type SteppedSession struct {
	*Session
	clock *ManualClock
	step  time.Duration
}

// NewSteppedSession creates a session whose clock advances by the
// configured step per tick. A WithClock option is overridden.
func NewSteppedSession(cfg *config.RaceConfig, opts ...Option) (*SteppedSession, error) {
	clock := &ManualClock{}
	s, err := NewSession(cfg, append(opts, WithClock(clock))...)
	if err != nil {
		return nil, err
	}
	return &SteppedSession{Session: s, clock: clock, step: cfg.Race.Step()}, nil
}

// OnTick advances simulated time by one step, then the race
func (s *SteppedSession) OnTick() {
	s.clock.Advance(s.step)
	s.Session.OnTick()
}

// Clock exposes the simulated clock
func (s *SteppedSession) Clock() *ManualClock {
	return s.clock
}

// CoordinateGenerator places course volumes on the floor
type CoordinateGenerator interface {
	// Next returns an (x, z) pair within the playable floor
	Next() (x, z float64)
}

// UniformGenerator draws independent uniform points in
// [-extent, extent) on both axes.
type UniformGenerator struct {
	extent float64
	rng    *rand.Rand
}

// NewUniformGenerator creates a generator. A zero seed picks a random one.
func NewUniformGenerator(extent float64, seed uint64) *UniformGenerator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &UniformGenerator{
		extent: extent,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Next returns the next uniform point
func (g *UniformGenerator) Next() (float64, float64) {
	x := (g.rng.Float64()*2 - 1) * g.extent
	z := (g.rng.Float64()*2 - 1) * g.extent
	return x, z
}

// FixedGenerator replays a list of points, cycling when exhausted
type FixedGenerator struct {
	Points [][2]float64
	next   int
}

// Next returns the next listed point
func (g *FixedGenerator) Next() (float64, float64) {
	if len(g.Points) == 0 {
		return 0, 0
	}
	p := g.Points[g.next%len(g.Points)]
	g.next++
	return p[0], p[1]
}
