// Package config loads Crater settings from defaults, an optional config
// file and CRATER_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, so "turn.seconds"
// is read from CRATER_TURN_SECONDS.
const EnvPrefix = "CRATER"

// FieldConfig sizes the battlefield in pixels.
type FieldConfig struct {
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`
}

// TeamConfig is one side of the roster. Teams are numbered in list order,
// so the first entry plays as red and the second as blue.
type TeamConfig struct {
	Control string    `json:"control" mapstructure:"control"` // "human" or "scripted"
	Spawns  []float64 `json:"spawns" mapstructure:"spawns"`   // spawn x positions
}

// TurnConfig overrides the turn machine's timers.
type TurnConfig struct {
	Seconds        float64 `json:"seconds" mapstructure:"seconds"`
	RetreatSeconds float64 `json:"retreatSeconds" mapstructure:"retreatSeconds"`
}

// AudioConfig controls the synthesized sound effects.
type AudioConfig struct {
	Enabled bool    `json:"enabled" mapstructure:"enabled"`
	Volume  float64 `json:"volume" mapstructure:"volume"` // 0..1
}

// StoreConfig points at the match result database. Empty disables it.
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// WindowConfig holds display settings for the ebiten front end.
type WindowConfig struct {
	Scale float64 `json:"scale" mapstructure:"scale"`
}

// Config is the fully resolved configuration.
type Config struct {
	LogLevel string       `json:"logLevel" mapstructure:"logLevel"`
	Seed     int64        `json:"seed" mapstructure:"seed"`
	Field    FieldConfig  `json:"field" mapstructure:"field"`
	Teams    []TeamConfig `json:"teams" mapstructure:"teams"`
	Turn     TurnConfig   `json:"turn" mapstructure:"turn"`
	Audio    AudioConfig  `json:"audio" mapstructure:"audio"`
	Store    StoreConfig  `json:"store" mapstructure:"store"`
	Window   WindowConfig `json:"window" mapstructure:"window"`
}

func setDefaults(v *viper.Viper) {
	tuning := sim.DefaultTuning()

	v.SetDefault("logLevel", "info")
	v.SetDefault("seed", 0)

	v.SetDefault("field.width", sim.DefaultFieldWidth)
	v.SetDefault("field.height", sim.DefaultFieldHeight)

	// An empty roster selects the built-in two-versus-two layout.
	v.SetDefault("teams", []map[string]any{})

	v.SetDefault("turn.seconds", tuning.TurnSeconds)
	v.SetDefault("turn.retreatSeconds", tuning.RetreatSeconds)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.5)

	v.SetDefault("store.path", "")

	v.SetDefault("window.scale", 1.0)
}

// Load resolves the configuration. path may name a JSON, TOML or YAML file
// (picked by extension) or be empty to use defaults and the environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		return fmt.Errorf("invalid field size %dx%d", c.Field.Width, c.Field.Height)
	}
	if c.Turn.Seconds <= 0 {
		return fmt.Errorf("turn.seconds must be positive, got %v", c.Turn.Seconds)
	}
	if c.Turn.RetreatSeconds < 0 {
		return fmt.Errorf("turn.retreatSeconds must not be negative, got %v", c.Turn.RetreatSeconds)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be within [0, 1], got %v", c.Audio.Volume)
	}
	if c.Window.Scale <= 0 {
		return fmt.Errorf("window.scale must be positive, got %v", c.Window.Scale)
	}
	for i, t := range c.Teams {
		if _, err := ParseControl(t.Control); err != nil {
			return fmt.Errorf("team %d (%s): %w", i, sim.Team(i), err)
		}
		if len(t.Spawns) == 0 {
			return fmt.Errorf("team %d (%s): no spawn positions", i, sim.Team(i))
		}
	}
	return nil
}

// ParseControl maps a config string to a control mode.
func ParseControl(s string) (sim.ControlMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human", "":
		return sim.ControlHuman, nil
	case "scripted", "ai", "cpu":
		return sim.ControlScripted, nil
	default:
		return 0, fmt.Errorf("unknown control mode %q", s)
	}
}

// Tuning applies the turn overrides to the default timings.
func (c Config) Tuning() sim.Tuning {
	t := sim.DefaultTuning()
	t.TurnSeconds = c.Turn.Seconds
	t.RetreatSeconds = c.Turn.RetreatSeconds
	return t
}

// MatchOptions converts the configuration into match construction options.
// extra is appended last so callers can add listeners or a logger.
func (c Config) MatchOptions(extra ...sim.MatchOption) []sim.MatchOption {
	opts := []sim.MatchOption{
		sim.WithFieldSize(c.Field.Width, c.Field.Height),
		sim.WithSeed(c.Seed),
		sim.WithTuning(c.Tuning()),
	}
	for i, t := range c.Teams {
		control, _ := ParseControl(t.Control)
		for _, x := range t.Spawns {
			opts = append(opts, sim.WithCombatant(sim.Team(i), control, x, sim.SpawnY))
		}
	}
	return append(opts, extra...)
}

// Scripted returns a copy with every team handed to the AI, for headless
// and spectator runs.
func (c Config) Scripted() Config {
	out := c
	out.Teams = make([]TeamConfig, len(c.Teams))
	for i, t := range c.Teams {
		t.Spawns = append([]float64(nil), t.Spawns...)
		t.Control = "scripted"
		out.Teams[i] = t
	}
	return out
}
