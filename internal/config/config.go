package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name below.
const EnvPrefix = "MATINEE_"

type Config struct {
	InputPath string `env:"INPUT"`
	OutputDir string `env:"OUTPUT_DIR"`
	FPS       int    `env:"FPS"`
	MaxFrames int    `env:"MAX_FRAMES"`
	Workers   int    `env:"WORKERS"`

	Looping       bool    `env:"LOOP"`
	PlayRate      float64 `env:"PLAY_RATE"`
	FixedTimeStep float64 `env:"FIXED_STEP"`

	ConditionEnabled        bool `env:"CONDITION"`
	PlayTriggersWhenJumping bool `env:"TRIGGERS_ON_JUMP"`
	Diagnostics             bool `env:"DIAGNOSTICS"`

	WriteCuts    bool `env:"WRITE_CUTS"`
	ShowStats    bool `env:"STATS"`
	BuildVersion string
}

// Default returns the settings the CLI starts from.
func Default() *Config {
	return &Config{
		InputPath: "input/sequences",
		OutputDir: "output",
		FPS:       30,
		Workers:   4,
		PlayRate:  1,
		WriteCuts: true,
	}
}

// LoadEnv overrides cfg with every MATINEE_* variable that is set. Unset variables leave
// the current values alone.
func LoadEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	case c.PlayRate <= 0:
		return fmt.Errorf("play rate must be positive, got %v", c.PlayRate)
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.FixedTimeStep < 0:
		return fmt.Errorf("fixed time step must not be negative, got %v", c.FixedTimeStep)
	}
	return nil
}
