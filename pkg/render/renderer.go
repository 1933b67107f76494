// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/logging"
)

// Renderer draws session snapshots. Implementations never modify the
// session; they only read the snapshot they are given.
type Renderer interface {
	Render(snap engine.Snapshot) error
	Close() error
}

// NullRenderer draws nothing and logs each frame at debug level.
type NullRenderer struct {
	logger *logging.Logger
	frames uint64
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// Render implements Renderer.
func (d *NullRenderer) Render(snap engine.Snapshot) error {
	d.frames++
	ctx := logging.WithSessionID(context.Background(), snap.SessionID)
	d.logger.Debug(ctx, "frame rendered",
		"tick", snap.Tick,
		"state", snap.State,
		"position", snap.Pose.Position,
		"facing", snap.Pose.Facing,
		"passed", snap.Passed,
		"deadline_ms", snap.DeadlineMs,
	)
	return nil
}

// Frames returns how many frames were rendered.
func (d *NullRenderer) Frames() uint64 {
	return d.frames
}

// Close implements Renderer.
func (d *NullRenderer) Close() error {
	d.logger.Debug(context.Background(), "renderer closed", "frames", d.frames)
	return nil
}

var _ Renderer = (*NullRenderer)(nil)
