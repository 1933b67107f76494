// Package telemetry records race frames to a stream for replay and
// analysis. Writes go through a circuit breaker so a failing sink stops
// costing the frame loop.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-ringrace/pkg/config"
	"github.com/opd-ai/go-ringrace/pkg/logging"
)

// Operation is one attempt to write to the sink
type Operation func() error

// Guard wraps sink writes with a circuit breaker. After MaxFailures
// consecutive failures writes are refused until the timeout elapses, then
// a single probe write decides whether to close again.
type Guard struct {
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// NewGuard creates a guard from telemetry settings
func NewGuard(cfg config.TelemetryConfig, logger *logging.Logger) *Guard {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}

	settings := gobreaker.Settings{
		Name:        "telemetry-sink",
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.BreakerTimeoutMs) * time.Millisecond,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Guard{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Execute runs op through the breaker. While the circuit is open it
// returns an error wrapping gobreaker.ErrOpenState without calling op.
func (g *Guard) Execute(ctx context.Context, op Operation) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, op()
	})
	if err != nil {
		g.logger.Debug(ctx, "telemetry write failed",
			"error", err.Error(),
			"state", g.breaker.State().String(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// State returns the breaker state
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// Counts returns the breaker's failure and success counts
func (g *Guard) Counts() gobreaker.Counts {
	return g.breaker.Counts()
}
