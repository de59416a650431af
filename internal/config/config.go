// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/framescript/internal/media"
)

// Config holds settings that vary per machine rather than per project.
type Config struct {
	// MetaURL is the rendering backend serving /audio/meta and /video/meta.
	// Empty means probe files locally with FFProbe.
	MetaURL  string        `env:"FRAMESCRIPT_META_URL"`
	FFProbe  string        `env:"FRAMESCRIPT_FFPROBE" envDefault:"ffprobe"`
	FFMpeg   string        `env:"FRAMESCRIPT_FFMPEG" envDefault:"ffmpeg"`
	Debounce time.Duration `env:"FRAMESCRIPT_DEBOUNCE" envDefault:"250ms"`
	Dev      bool          `env:"FRAMESCRIPT_DEV"`
	VoiceDir string        `env:"FRAMESCRIPT_VOICE_DIR" envDefault:"project/voices"`
	VoiceMap string        `env:"FRAMESCRIPT_VOICE_MAP" envDefault:"project/voice-map.yaml"`
	Addr     string        `env:"FRAMESCRIPT_ADDR" envDefault:"127.0.0.1:8080"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the Config for the current environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Debounce < 0 {
		return Config{}, fmt.Errorf("parse env: FRAMESCRIPT_DEBOUNCE must not be negative, got %s", cfg.Debounce)
	}
	return cfg, nil
}

// Prober returns the metadata source this Config selects.
func (c Config) Prober() media.Prober {
	if c.MetaURL != "" {
		return media.HTTPProber{BaseURL: c.MetaURL}
	}
	return media.FFProbe{Binary: c.FFProbe}
}
