// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"

	"github.com/opd-ai/go-ringrace/pkg/physics"
)

// EnvPrefix is prepended to environment overrides, e.g.
// RINGRACE_RACE_CHECKPOINTS=8 or RINGRACE_LOG_LEVEL=debug.
const EnvPrefix = "RINGRACE"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// RaceConfig contains configuration for a ring race
type RaceConfig struct {
	Race         RaceSettings       `json:"race" mapstructure:"race"`
	Physics      PhysicsConfig      `json:"physics" mapstructure:"physics"`
	Presentation PresentationConfig `json:"presentation" mapstructure:"presentation"`
	Telemetry    TelemetryConfig    `json:"telemetry" mapstructure:"telemetry"`
	Audio        AudioConfig        `json:"audio" mapstructure:"audio"`
	Log          LogConfig          `json:"log" mapstructure:"log"`
}

// RaceSettings contains the course layout and timer rules
type RaceSettings struct {
	Checkpoints       int     `json:"checkpoints" mapstructure:"checkpoints"`
	Obstacles         int     `json:"obstacles" mapstructure:"obstacles"`
	CheckpointBonusMs int64   `json:"checkpointBonusMs" mapstructure:"checkpointBonusMs"`
	PenaltyMs         int64   `json:"penaltyMs" mapstructure:"penaltyMs"`
	PenaltyDecayMs    int64   `json:"penaltyDecayMs" mapstructure:"penaltyDecayMs"`
	FlightMode        bool    `json:"flightMode" mapstructure:"flightMode"`
	InitialState      string  `json:"initialState" mapstructure:"initialState"`
	FloorSize         float64 `json:"floorSize" mapstructure:"floorSize"`
	SpawnExtent       float64 `json:"spawnExtent" mapstructure:"spawnExtent"`
	Seed              uint64  `json:"seed" mapstructure:"seed"`
	TickRate          int     `json:"tickRate" mapstructure:"tickRate"`
}

// PhysicsConfig contains the craft handling constants, per fixed step
type PhysicsConfig struct {
	SteerRate      float64 `json:"steerRate" mapstructure:"steerRate"`
	SteerReturn    float64 `json:"steerReturn" mapstructure:"steerReturn"`
	Accel          float64 `json:"accel" mapstructure:"accel"`
	FrictionX      float64 `json:"frictionX" mapstructure:"frictionX"`
	FrictionY      float64 `json:"frictionY" mapstructure:"frictionY"`
	FrictionZ      float64 `json:"frictionZ" mapstructure:"frictionZ"`
	Grip           float64 `json:"grip" mapstructure:"grip"`
	HubRadiusFront float64 `json:"hubRadiusFront" mapstructure:"hubRadiusFront"`
	HubRadiusRear  float64 `json:"hubRadiusRear" mapstructure:"hubRadiusRear"`
}

// PresentationConfig contains the initial camera and render toggles
type PresentationConfig struct {
	Camera    string  `json:"camera" mapstructure:"camera"`
	Wireframe bool    `json:"wireframe" mapstructure:"wireframe"`
	EnvMap    bool    `json:"envMap" mapstructure:"envMap"`
	Headlight bool    `json:"headlight" mapstructure:"headlight"`
	Shadow    bool    `json:"shadow" mapstructure:"shadow"`
	ViewAlpha float64 `json:"viewAlpha" mapstructure:"viewAlpha"`
	ViewBeta  float64 `json:"viewBeta" mapstructure:"viewBeta"`
	EyeDist   float64 `json:"eyeDist" mapstructure:"eyeDist"`
}

// TelemetryConfig contains flight recorder settings
type TelemetryConfig struct {
	Enabled            bool   `json:"enabled" mapstructure:"enabled"`
	Path               string `json:"path" mapstructure:"path"`
	FrameEvery         int    `json:"frameEvery" mapstructure:"frameEvery"`
	BreakerMaxFailures uint32 `json:"breakerMaxFailures" mapstructure:"breakerMaxFailures"`
	BreakerTimeoutMs   int64  `json:"breakerTimeoutMs" mapstructure:"breakerTimeoutMs"`
}

// AudioConfig contains sound cue settings
type AudioConfig struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	SampleRate int  `json:"sampleRate" mapstructure:"sampleRate"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file" mapstructure:"file"`
}

// DefaultConfig returns a default race configuration
func DefaultConfig() *RaceConfig {
	tuning := physics.DefaultTuning()
	return &RaceConfig{
		Race: RaceSettings{
			Checkpoints:       10,
			Obstacles:         10,
			CheckpointBonusMs: 10000,
			PenaltyMs:         6000,
			PenaltyDecayMs:    100,
			FlightMode:        false,
			InitialState:      "game",
			FloorSize:         100,
			SpawnExtent:       50,
			Seed:              0,
			TickRate:          100,
		},
		Physics: PhysicsConfig{
			SteerRate:      tuning.SteerRate,
			SteerReturn:    tuning.SteerReturn,
			Accel:          tuning.Accel,
			FrictionX:      tuning.Friction.X(),
			FrictionY:      tuning.Friction.Y(),
			FrictionZ:      tuning.Friction.Z(),
			Grip:           tuning.Grip,
			HubRadiusFront: tuning.HubRadiusFront,
			HubRadiusRear:  tuning.HubRadiusRear,
		},
		Presentation: PresentationConfig{
			Camera:    "back",
			Wireframe: false,
			EnvMap:    true,
			Headlight: false,
			Shadow:    true,
			ViewAlpha: 20,
			ViewBeta:  40,
			EyeDist:   5,
		},
		Telemetry: TelemetryConfig{
			Enabled:            false,
			Path:               "race.telemetry",
			FrameEvery:         10,
			BreakerMaxFailures: 5,
			BreakerTimeoutMs:   30000,
		},
		Audio: AudioConfig{
			Enabled:    false,
			SampleRate: 44100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// MaxTickRate keeps the step at a whole millisecond or more, the
// resolution the deadline is kept in
const MaxTickRate = 1000

// Step is the fixed simulation step implied by TickRate
func (r RaceSettings) Step() time.Duration {
	if r.TickRate <= 0 {
		return physics.DefaultStep
	}
	return time.Second / time.Duration(r.TickRate)
}

// Tuning converts the handling constants for the integrator
func (p PhysicsConfig) Tuning() physics.Tuning {
	return physics.Tuning{
		SteerRate:      p.SteerRate,
		SteerReturn:    p.SteerReturn,
		Accel:          p.Accel,
		Friction:       mgl64.Vec3{p.FrictionX, p.FrictionY, p.FrictionZ},
		Grip:           p.Grip,
		HubRadiusFront: p.HubRadiusFront,
		HubRadiusRear:  p.HubRadiusRear,
	}
}

// LoadConfig reads a JSON config file layered over the defaults, then
// applies RINGRACE_* environment overrides. An empty path skips the file.
func LoadConfig(path string) (*RaceConfig, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config RaceConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *RaceConfig, path string) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks ranges that would otherwise break the simulation
func (c *RaceConfig) Validate() error {
	r := c.Race
	switch {
	case r.Checkpoints < 0:
		return invalid("race.checkpoints must not be negative, got %d", r.Checkpoints)
	case r.Obstacles < 0:
		return invalid("race.obstacles must not be negative, got %d", r.Obstacles)
	case r.CheckpointBonusMs <= 0:
		return invalid("race.checkpointBonusMs must be positive, got %d", r.CheckpointBonusMs)
	case r.PenaltyMs < 0:
		return invalid("race.penaltyMs must not be negative, got %d", r.PenaltyMs)
	case r.PenaltyDecayMs < 0:
		return invalid("race.penaltyDecayMs must not be negative, got %d", r.PenaltyDecayMs)
	case r.FloorSize <= 1:
		return invalid("race.floorSize must exceed 1, got %f", r.FloorSize)
	case r.SpawnExtent <= 0 || r.SpawnExtent > r.FloorSize:
		return invalid("race.spawnExtent must be in (0, floorSize], got %f", r.SpawnExtent)
	case r.TickRate <= 0 || r.TickRate > MaxTickRate:
		return invalid("race.tickRate must be in (0, %d], got %d", MaxTickRate, r.TickRate)
	}
	switch strings.ToLower(strings.TrimSpace(r.InitialState)) {
	case "menu", "game", "splash":
	default:
		return invalid("race.initialState must be menu, game or splash, got %q", r.InitialState)
	}

	p := c.Physics
	for name, f := range map[string]float64{
		"frictionX":   p.FrictionX,
		"frictionY":   p.FrictionY,
		"frictionZ":   p.FrictionZ,
		"steerReturn": p.SteerReturn,
	} {
		if f <= 0 || f > 1 {
			return invalid("physics.%s must be in (0, 1], got %f", name, f)
		}
	}
	if p.Accel < 0 || p.SteerRate < 0 || p.Grip < 0 {
		return invalid("physics accel, steerRate and grip must not be negative")
	}

	if c.Presentation.EyeDist < 1 {
		return invalid("presentation.eyeDist must be at least 1, got %f", c.Presentation.EyeDist)
	}
	if c.Telemetry.Enabled && c.Telemetry.Path == "" {
		return invalid("telemetry.path is required when telemetry is enabled")
	}
	if c.Telemetry.FrameEvery <= 0 {
		return invalid("telemetry.frameEvery must be positive, got %d", c.Telemetry.FrameEvery)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return invalid("audio.sampleRate must be positive, got %d", c.Audio.SampleRate)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// setDefaults registers every key so env overrides reach Unmarshal
func setDefaults(v *viper.Viper, d *RaceConfig) {
	v.SetDefault("race.checkpoints", d.Race.Checkpoints)
	v.SetDefault("race.obstacles", d.Race.Obstacles)
	v.SetDefault("race.checkpointBonusMs", d.Race.CheckpointBonusMs)
	v.SetDefault("race.penaltyMs", d.Race.PenaltyMs)
	v.SetDefault("race.penaltyDecayMs", d.Race.PenaltyDecayMs)
	v.SetDefault("race.flightMode", d.Race.FlightMode)
	v.SetDefault("race.initialState", d.Race.InitialState)
	v.SetDefault("race.floorSize", d.Race.FloorSize)
	v.SetDefault("race.spawnExtent", d.Race.SpawnExtent)
	v.SetDefault("race.seed", d.Race.Seed)
	v.SetDefault("race.tickRate", d.Race.TickRate)

	v.SetDefault("physics.steerRate", d.Physics.SteerRate)
	v.SetDefault("physics.steerReturn", d.Physics.SteerReturn)
	v.SetDefault("physics.accel", d.Physics.Accel)
	v.SetDefault("physics.frictionX", d.Physics.FrictionX)
	v.SetDefault("physics.frictionY", d.Physics.FrictionY)
	v.SetDefault("physics.frictionZ", d.Physics.FrictionZ)
	v.SetDefault("physics.grip", d.Physics.Grip)
	v.SetDefault("physics.hubRadiusFront", d.Physics.HubRadiusFront)
	v.SetDefault("physics.hubRadiusRear", d.Physics.HubRadiusRear)

	v.SetDefault("presentation.camera", d.Presentation.Camera)
	v.SetDefault("presentation.wireframe", d.Presentation.Wireframe)
	v.SetDefault("presentation.envMap", d.Presentation.EnvMap)
	v.SetDefault("presentation.headlight", d.Presentation.Headlight)
	v.SetDefault("presentation.shadow", d.Presentation.Shadow)
	v.SetDefault("presentation.viewAlpha", d.Presentation.ViewAlpha)
	v.SetDefault("presentation.viewBeta", d.Presentation.ViewBeta)
	v.SetDefault("presentation.eyeDist", d.Presentation.EyeDist)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.path", d.Telemetry.Path)
	v.SetDefault("telemetry.frameEvery", d.Telemetry.FrameEvery)
	v.SetDefault("telemetry.breakerMaxFailures", d.Telemetry.BreakerMaxFailures)
	v.SetDefault("telemetry.breakerTimeoutMs", d.Telemetry.BreakerTimeoutMs)

	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.sampleRate", d.Audio.SampleRate)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}
