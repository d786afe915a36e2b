// Package config reads the game's settings from GAMIFY_* environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/milk9111/gamify/input"
)

type Config struct {
	LogLevel        string  `env:"GAMIFY_LOG_LEVEL" envDefault:"info"`
	Development     bool    `env:"GAMIFY_DEV"`
	Scene           string  `env:"GAMIFY_SCENE" envDefault:"flying.yaml"`
	Watch           bool    `env:"GAMIFY_WATCH"`
	TPS             int     `env:"GAMIFY_TPS" envDefault:"60"`
	StickDeadZone   float64 `env:"GAMIFY_STICK_DEAD_ZONE" envDefault:"0.2"`
	TriggerDeadZone float64 `env:"GAMIFY_TRIGGER_DEAD_ZONE" envDefault:"0.05"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment and checks it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TPS <= 0 {
		return fmt.Errorf("config: GAMIFY_TPS must be positive, got %d", c.TPS)
	}
	if c.StickDeadZone < 0 || c.StickDeadZone >= 1 {
		return fmt.Errorf("config: stick dead zone %v outside [0, 1)", c.StickDeadZone)
	}
	if c.TriggerDeadZone < 0 || c.TriggerDeadZone >= 1 {
		return fmt.Errorf("config: trigger dead zone %v outside [0, 1)", c.TriggerDeadZone)
	}
	return nil
}

func (c Config) InputOptions() input.Options {
	return input.Options{
		StickDeadZone:   c.StickDeadZone,
		TriggerDeadZone: c.TriggerDeadZone,
	}
}
