package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/opd-ai/go-ringrace/pkg/config"
	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/logging"
	"github.com/opd-ai/go-ringrace/pkg/render"
)

// FormatVersion is written in every frame header
const FormatVersion = 1

// Frame is one recorded snapshot
type Frame struct {
	Version  int             `msgpack:"v"`
	Snapshot engine.Snapshot `msgpack:"snapshot"`
}

// Recorder writes every Nth tick's snapshot to w as a msgpack stream.
// It satisfies render.Renderer so it can ride along with a display.
type Recorder struct {
	w      io.Writer
	every  uint64
	guard  *Guard
	logger *logging.Logger

	mu       sync.Mutex
	last     uint64
	wrote    bool
	frames   int
	dropped  int
	finished bool
}

// NewRecorder creates a recorder. Frames are taken every cfg.FrameEvery
// ticks; a final frame is always written when the race ends.
func NewRecorder(w io.Writer, cfg config.TelemetryConfig, logger *logging.Logger) *Recorder {
	every := uint64(1)
	if cfg.FrameEvery > 1 {
		every = uint64(cfg.FrameEvery)
	}
	return &Recorder{
		w:      w,
		every:  every,
		guard:  NewGuard(cfg, logger),
		logger: logger,
	}
}

// Render implements render.Renderer
func (r *Recorder) Render(snap engine.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.due(snap) {
		return nil
	}
	r.last, r.wrote = snap.Tick, true
	if snap.State == "end" {
		r.finished = true
	}

	data, err := msgpack.Marshal(&Frame{Version: FormatVersion, Snapshot: snap})
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", snap.Tick, err)
	}

	ctx := logging.WithSessionID(context.Background(), snap.SessionID)
	err = r.guard.Execute(ctx, func() error {
		_, werr := r.w.Write(data)
		return werr
	})
	if err != nil {
		r.dropped++
		return err
	}
	r.frames++
	return nil
}

// due reports whether snap should be written. Displays render the same
// tick many times, so a tick is written at most once.
func (r *Recorder) due(snap engine.Snapshot) bool {
	if r.finished {
		return false
	}
	if r.wrote && snap.Tick == r.last {
		return false
	}
	return snap.State == "end" || snap.Tick%r.every == 0
}

// Frames returns how many frames were written
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Dropped returns how many frames failed or were refused by the breaker
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close closes the underlying writer if it is an io.Closer
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info(context.Background(), "telemetry closed",
		"frames", r.frames,
		"dropped", r.dropped,
	)
	if c, ok := r.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ render.Renderer = (*Recorder)(nil)

// ReadFrames decodes a recorded stream until EOF
func ReadFrames(rd io.Reader) ([]Frame, error) {
	dec := msgpack.NewDecoder(rd)
	var frames []Frame
	for {
		var f Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("decode frame %d: %w", len(frames), err)
		}
		if f.Version != FormatVersion {
			return frames, fmt.Errorf("frame %d: unsupported version %d", len(frames), f.Version)
		}
		frames = append(frames, f)
	}
}
