// Package metrics counts race events with OpenTelemetry instruments.
package metrics

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/opd-ai/go-ringrace/pkg/event"
)

const instrumentationName = "github.com/opd-ai/go-ringrace/pkg/metrics"

// Instrument names
const (
	EventsName      = "ringrace.events"
	TransitionsName = "ringrace.transitions"
	RemainingName   = "ringrace.finish.remaining_ms"
)

// counted lists the event types the recorder subscribes to
var counted = []event.Type{
	event.SessionStarted,
	event.CheckpointCrossed,
	event.ObstacleHit,
	event.GoalReached,
	event.DeadlineExpired,
	event.StateChanged,
	event.TransitionRejected,
	event.PresentationToggled,
}

// Recorder turns bus events into metrics. It owns a meter provider with a
// manual reader so totals can be read back at the end of a race.
type Recorder struct {
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader

	events      metric.Int64Counter
	transitions metric.Int64Counter
	remaining   metric.Int64Histogram

	mu   sync.Mutex
	subs []*event.Subscription
}

// New creates a recorder. Extra options, such as a periodic exporter,
// are passed to the meter provider.
func New(opts ...sdkmetric.Option) (*Recorder, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(append([]sdkmetric.Option{sdkmetric.WithReader(reader)}, opts...)...)
	m := provider.Meter(instrumentationName)

	r := &Recorder{provider: provider, reader: reader}

	var err error
	r.events, err = m.Int64Counter(
		EventsName,
		metric.WithDescription("Race events published, by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s counter: %w", EventsName, err)
	}

	r.transitions, err = m.Int64Counter(
		TransitionsName,
		metric.WithDescription("Applied session state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s counter: %w", TransitionsName, err)
	}

	r.remaining, err = m.Int64Histogram(
		RemainingName,
		metric.WithDescription("Time left on the clock when the goal is reached"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s histogram: %w", RemainingName, err)
	}

	return r, nil
}

// Provider exposes the meter provider, e.g. for otel.SetMeterProvider
func (r *Recorder) Provider() *sdkmetric.MeterProvider {
	return r.provider
}

// Attach subscribes to race events on bus
func (r *Recorder) Attach(bus *event.Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, bus.SubscribeAll(r.handle, counted...)...)
}

// Detach cancels all subscriptions
func (r *Recorder) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		s.Cancel()
	}
	r.subs = nil
}

func (r *Recorder) handle(ev event.Event) {
	ctx := context.Background()
	r.events.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(ev.GetType()))))

	switch e := ev.(type) {
	case *event.StateEvent:
		if e.GetType() == event.StateChanged {
			r.transitions.Add(ctx, 1, metric.WithAttributes(
				attribute.String("from", e.From),
				attribute.String("to", e.To),
			))
		}
	case *event.VolumeEvent:
		if e.GetType() == event.GoalReached {
			r.remaining.Record(ctx, e.DeadlineMs)
		}
	}
}

// Totals collects the event counter and returns the count per event type
func (r *Recorder) Totals(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != EventsName {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value("type")
				totals[v.AsString()] += dp.Value
			}
		}
	}
	return totals, nil
}

// Shutdown detaches and flushes the provider
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.Detach()
	return r.provider.Shutdown(ctx)
}
