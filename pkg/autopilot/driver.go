package autopilot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/logging"
	"github.com/opd-ai/go-ringrace/pkg/render"
)

// ErrTickLimit is returned when a race is still running after the tick budget
var ErrTickLimit = errors.New("tick limit reached")

// Race is the session surface the driver needs
type Race interface {
	Controls
	OnTick()
	Snapshot() engine.Snapshot
	Context() context.Context
}

// Driver runs a race headless as fast as it can, advancing a manual clock
// by one step per tick so race time matches simulated time
type Driver struct {
	race      Race
	pilot     *Pilot
	clock     *engine.ManualClock
	step      time.Duration
	observers []render.Renderer
	logger    *logging.Logger
}

// NewDriver creates a driver. Observers see every tick's snapshot.
func NewDriver(race Race, pilot *Pilot, clock *engine.ManualClock, step time.Duration, logger *logging.Logger, observers ...render.Renderer) *Driver {
	return &Driver{
		race:      race,
		pilot:     pilot,
		clock:     clock,
		step:      step,
		observers: observers,
		logger:    logger,
	}
}

// Run ticks until the race ends, ctx is done or maxTicks pass. It returns
// the last snapshot.
func (d *Driver) Run(ctx context.Context, maxTicks int) (engine.Snapshot, error) {
	snap := d.race.Snapshot()
	for i := 0; i < maxTicks; i++ {
		if snap.State == "end" {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, fmt.Errorf("race interrupted: %w", ctx.Err())
		default:
		}

		d.pilot.Update(snap)
		d.clock.Advance(d.step)
		d.race.OnTick()

		snap = d.race.Snapshot()
		d.observe(snap)
	}
	if snap.State == "end" {
		return snap, nil
	}
	return snap, fmt.Errorf("%w: %d ticks", ErrTickLimit, maxTicks)
}

func (d *Driver) observe(snap engine.Snapshot) {
	for _, o := range d.observers {
		if err := o.Render(snap); err != nil {
			d.logger.Warn(d.race.Context(), "observer failed", "tick", snap.Tick, "error", err.Error())
		}
	}
}
