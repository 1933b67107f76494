// cmd/racer/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopxl/beep"
	"go.opentelemetry.io/otel"

	"github.com/opd-ai/go-ringrace/pkg/audio"
	"github.com/opd-ai/go-ringrace/pkg/autopilot"
	"github.com/opd-ai/go-ringrace/pkg/config"
	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/event"
	"github.com/opd-ai/go-ringrace/pkg/logging"
	"github.com/opd-ai/go-ringrace/pkg/metrics"
	"github.com/opd-ai/go-ringrace/pkg/physics"
	"github.com/opd-ai/go-ringrace/pkg/render"
	engorender "github.com/opd-ai/go-ringrace/pkg/render/engo"
	"github.com/opd-ai/go-ringrace/pkg/telemetry"
)

// maxCatchUp bounds the ticks run for one long frame
const maxCatchUp = 25

func main() {
	configPath := flag.String("config", "ringrace.json", "Path to configuration file")
	renderer := flag.String("renderer", "terminal", "Front-end: 'terminal', 'engo' or 'headless'")
	maxTicks := flag.Int("max-ticks", 100000, "Tick budget for a headless run")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this path and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(cfg, *writeConfig); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		log.Printf("Configuration written to %s", *writeConfig)
		return
	}

	os.Exit(run(cfg, *renderer, *maxTicks))
}

// loadConfig reads the file if it exists and falls back to defaults
func loadConfig(path string) (*config.RaceConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Configuration file not found, using default configuration")
		path = ""
	}
	return config.LoadConfig(path)
}

// openLogger writes to the configured file. Without one, logs go to
// stderr except under the terminal front-end, which owns the tty.
func openLogger(cfg config.LogConfig, terminal bool) (*logging.Logger, func(), error) {
	if cfg.File == "" {
		if terminal {
			return logging.New(io.Discard, cfg.Level), func() {}, nil
		}
		return logging.New(os.Stderr, cfg.Level), func() {}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(f, cfg.Level), func() { _ = f.Close() }, nil
}

func run(cfg *config.RaceConfig, mode string, maxTicks int) int {
	logger, closeLog, err := openLogger(cfg.Log, mode == "terminal")
	if err != nil {
		log.Printf("Failed to set up logging: %v", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewEventBus()
	opts := []engine.Option{engine.WithEventBus(bus), engine.WithLogger(logger)}

	// race time is simulated time in every mode; headless advances its
	// own clock from the driver, the displays advance it per tick
	clock := &engine.ManualClock{}
	var session *engine.Session
	var stepped *engine.SteppedSession
	if mode == "headless" {
		session, err = engine.NewSession(cfg, append(opts, engine.WithClock(clock))...)
	} else {
		stepped, err = engine.NewSteppedSession(cfg, opts...)
		if stepped != nil {
			session = stepped.Session
		}
	}
	if err != nil {
		logger.Error(ctx, "failed to create session", err)
		return 1
	}
	ctx = logging.WithSessionID(ctx, session.ID())

	recorder, err := metrics.New()
	if err != nil {
		logger.Error(ctx, "failed to create metrics", err)
		return 1
	}
	otel.SetMeterProvider(recorder.Provider())
	recorder.Attach(bus)
	defer reportTotals(ctx, recorder, logger)

	if cfg.Audio.Enabled {
		stopAudio := startAudio(ctx, cfg.Audio, bus, logger)
		defer stopAudio()
	}

	observers, err := openObservers(cfg.Telemetry, logger)
	if err != nil {
		logger.Error(ctx, "failed to open telemetry", err)
		return 1
	}

	step := cfg.Race.Step()
	stepper := physics.NewStepper(step, maxCatchUp)

	switch mode {
	case "engo":
		// the scene closes the observers on exit
		engorender.Run(stepped, stepper, cfg.Race.CheckpointBonusMs, logger, observers...)
	case "terminal":
		defer closeObservers(ctx, observers, logger)
		if err := runTerminal(ctx, stepped, stepper, logger, observers...); err != nil {
			logger.Error(ctx, "terminal front-end failed", err)
			return 1
		}
	case "headless":
		defer closeObservers(ctx, observers, logger)
		observers = append(observers, render.NewNullRenderer(logger))
		pilot := autopilot.New(session, cfg.Physics.Tuning().Rescale(physics.DefaultStep, step))
		driver := autopilot.NewDriver(session, pilot, clock, step, logger, observers...)
		snap, err := driver.Run(ctx, maxTicks)
		if err != nil && !errors.Is(err, autopilot.ErrTickLimit) {
			logger.Error(ctx, "headless race failed", err)
			return 1
		}
		fmt.Printf("outcome=%s rings=%d/%d ticks=%d time_left=%.2fs\n",
			snap.Outcome, snap.Passed, len(snap.Checkpoints), snap.Tick, float64(snap.DeadlineMs)/1000)
	default:
		logger.Error(ctx, "unknown renderer", fmt.Errorf("renderer %q", mode))
		return 2
	}

	snap := session.Snapshot()
	logger.Info(ctx, "race over",
		"state", snap.State,
		"outcome", snap.Outcome,
		"passed", snap.Passed,
		"deadline_ms", snap.DeadlineMs,
		"ticks", snap.Tick,
	)
	return 0
}

// startAudio plays cues on the speaker. Audio is optional, so a missing
// device only disables it.
func startAudio(ctx context.Context, cfg config.AudioConfig, bus *event.Bus, logger *logging.Logger) func() {
	rate := beep.SampleRate(cfg.SampleRate)
	player, err := audio.NewSpeakerPlayer(rate)
	if err != nil {
		logger.Warn(ctx, "audio disabled", "error", err.Error())
		return func() {}
	}
	cues := audio.NewCues(player, rate, nil, logger)
	cues.Attach(bus)
	return func() {
		cues.Detach()
		player.Close()
	}
}

func openObservers(cfg config.TelemetryConfig, logger *logging.Logger) ([]render.Renderer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", cfg.Path, err)
	}
	return []render.Renderer{telemetry.NewRecorder(f, cfg, logger)}, nil
}

func closeObservers(ctx context.Context, observers []render.Renderer, logger *logging.Logger) {
	for _, o := range observers {
		if err := o.Close(); err != nil {
			logger.Error(ctx, "observer close failed", err)
		}
	}
}

func reportTotals(ctx context.Context, recorder *metrics.Recorder, logger *logging.Logger) {
	totals, err := recorder.Totals(ctx)
	if err != nil {
		logger.Error(ctx, "failed to collect metrics", err)
	} else {
		args := make([]any, 0, 2*len(totals))
		for k, v := range totals {
			args = append(args, k, v)
		}
		logger.Info(ctx, "race events", args...)
	}
	if err := recorder.Shutdown(context.Background()); err != nil {
		logger.Error(ctx, "metrics shutdown failed", err)
	}
}
