// cmd/racer/terminal.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/logging"
	"github.com/opd-ai/go-ringrace/pkg/physics"
	"github.com/opd-ai/go-ringrace/pkg/render"
)

// frameInterval is the terminal redraw rate, about 60 FPS
const frameInterval = 16 * time.Millisecond

// radarScale is world units per terminal row
const radarScale = 1.5

// runTerminal drives the session from the keyboard until q, Ctrl-C or ctx
func runTerminal(ctx context.Context, session *engine.SteppedSession, stepper *physics.Stepper, logger *logging.Logger, observers ...render.Renderer) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	tr := render.NewTerminalRenderer(screen, radarScale)
	defer tr.Close()

	holds := render.NewHoldTracker(render.DefaultHold)

	done := make(chan struct{})
	defer close(done)
	events := pumpEvents(screen, done)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
				key := render.TranslateKey(ev)
				if key == engine.KeyUnknown {
					continue
				}
				// auto-repeat resends driving keys; only the first is a press
				if key.IsMotion() && !holds.Press(key, time.Now()) {
					continue
				}
				session.OnControlInput(key, true)
			case *tcell.EventResize:
				screen.Sync()
			}

		case now := <-ticker.C:
			for _, key := range holds.Expired(now) {
				session.OnControlInput(key, false)
			}

			steps := stepper.Advance(now.Sub(last))
			last = now
			for i := 0; i < steps; i++ {
				session.OnTick()
			}

			snap := session.Snapshot()
			if err := tr.Render(snap); err != nil {
				logger.Error(session.Context(), "render failed", err)
			}
			for _, o := range observers {
				if err := o.Render(snap); err != nil {
					logger.Warn(session.Context(), "observer failed", "error", err.Error())
				}
			}
		}
	}
}

// poller is the blocking half of tcell.Screen
type poller interface {
	PollEvent() tcell.Event
}

// pumpEvents forwards polled events until the screen finishes or done closes
func pumpEvents(p poller, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := p.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}
