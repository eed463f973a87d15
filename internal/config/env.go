// Package config loads labyrinth settings from the environment and from an
// optional YAML layer-stack file.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Config is the process-wide configuration.
type Config struct {
	Seed                    int64   `env:"LABYRINTH_SEED" envDefault:"0"`
	Width                   int     `env:"LABYRINTH_WIDTH" envDefault:"31"`
	Height                  int     `env:"LABYRINTH_HEIGHT" envDefault:"21"`
	Layers                  int     `env:"LABYRINTH_LAYERS" envDefault:"3"`
	Scale                   float64 `env:"LABYRINTH_SCALE" envDefault:"1"`
	Turbulence              float64 `env:"LABYRINTH_TURBULENCE" envDefault:"2"`
	MaxContinuousPathLength int     `env:"LABYRINTH_MAX_PATH_LENGTH" envDefault:"20"`
	PortalSpawnFactor       int     `env:"LABYRINTH_PORTAL_FACTOR" envDefault:"4"`
	Theme                   string  `env:"LABYRINTH_THEME" envDefault:"stone"`
	Wanderers               int     `env:"LABYRINTH_WANDERERS" envDefault:"4"`

	// MutateEvery is the number of frames between wall mover steps.
	MutateEvery int `env:"LABYRINTH_MUTATE_EVERY" envDefault:"30"`
	SlideFrames int `env:"LABYRINTH_SLIDE_FRAMES" envDefault:"24"`

	LogLevel  string `env:"LABYRINTH_LOG_LEVEL" envDefault:"info"`
	LogFile   string `env:"LABYRINTH_LOG_FILE"`
	StackFile string `env:"LABYRINTH_STACK_FILE"`
	ExportDir string `env:"LABYRINTH_EXPORT_DIR" envDefault:"."`

	SSHAddr     string `env:"LABYRINTH_SSH_ADDR" envDefault:":2222"`
	HostKeyPath string `env:"LABYRINTH_HOST_KEY" envDefault:"labyrinth_host_key"`
}

// Load parses the environment and, when StackFile is set, the stack file.
func Load() (Config, *Stack, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return cfg, nil, err
	}
	if cfg.StackFile == "" {
		st := cfg.DefaultStack()
		return cfg, &st, st.Validate()
	}
	st, err := LoadStack(cfg.StackFile, cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, st, nil
}

// Level returns the slog level named by LogLevel, Info when unrecognised.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// DefaultStack returns Layers identical layer specs built from c.
func (c Config) DefaultStack() Stack {
	st := Stack{Seed: c.Seed, Theme: c.Theme}
	for range max(c.Layers, 1) {
		st.Layers = append(st.Layers, c.layer())
	}
	return st
}

func (c Config) layer() LayerSpec {
	return LayerSpec{
		Width:                   c.Width,
		Height:                  c.Height,
		Scale:                   c.Scale,
		Turbulence:              c.Turbulence,
		MaxContinuousPathLength: c.MaxContinuousPathLength,
		PortalSpawnFactor:       c.PortalSpawnFactor,
	}
}
