package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Volume       float64 `koanf:"volume"`        // linear level, 0..1
	PlaybackRate float64 `koanf:"playback_rate"` // elapsed-time multiplier
	SampleRate   int     `koanf:"sample_rate"`   // output rate in Hz, 0 means default
	PollInterval int     `koanf:"poll_interval"` // tick period in output samples, 0 means default

	// Loop region restored on startup
	Loop LoopConfig `koanf:"loop"`
}

// LoopConfig holds the startup loop region as fractions of the track
// duration.
type LoopConfig struct {
	Enabled bool    `koanf:"enabled"`
	Start   float64 `koanf:"start"`
	End     float64 `koanf:"end"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Volume:       1.0,
		PlaybackRate: 1.0,
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg.withDefaults(), nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/lowtide/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "lowtide", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// withDefaults replaces out-of-range values with safe defaults.
func (c *Config) withDefaults() *Config {
	if c.PlaybackRate <= 0 {
		c.PlaybackRate = 1.0
	}
	if c.Volume < 0 {
		c.Volume = 1.0
	}
	if c.SampleRate < 0 {
		c.SampleRate = 0
	}
	if c.PollInterval < 0 {
		c.PollInterval = 0
	}
	if c.Loop.Start < 0 {
		c.Loop.Start = 0
	}
	if c.Loop.End > 1 {
		c.Loop.End = 1
	}
	return c
}

// HasLoopRegion returns true if a startup loop region is configured.
func (c *Config) HasLoopRegion() bool {
	return c.Loop.Enabled && c.Loop.End > c.Loop.Start
}
