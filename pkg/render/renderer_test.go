// pkg/render/renderer_test.go
package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/logging"
)

func TestNullRenderer_Render_LogsFrame(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewNullRenderer(logging.New(&buf, "debug"))

	snap := engine.Snapshot{SessionID: "race-7", Tick: 12, State: "game", Passed: 2}
	if err := renderer.Render(snap); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"frame rendered", `"tick":12`, `"session_id":"race-7"`, `"passed":2`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected log to contain %s, got: %s", want, output)
		}
	}
	if renderer.Frames() != 1 {
		t.Errorf("Expected 1 frame, got %d", renderer.Frames())
	}
}

func TestNullRenderer_Close_LogsFrameCount(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewNullRenderer(logging.New(&buf, "debug"))
	_ = renderer.Render(engine.Snapshot{})
	_ = renderer.Render(engine.Snapshot{})

	if err := renderer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"frames":2`) {
		t.Errorf("Expected frame count in close log, got: %s", buf.String())
	}
}

func TestNullRenderer_QuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewNullRenderer(logging.New(&buf, "info"))
	_ = renderer.Render(engine.Snapshot{})
	if buf.Len() != 0 {
		t.Errorf("Expected no output at info level, got: %s", buf.String())
	}
}
