// File: config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures runtime settings for every scratch-card host.
type Config struct {
	Addr         string        `env:"SCRATCH_ADDR" envDefault:":28416"`
	CardWidth    int           `env:"SCRATCH_CARD_WIDTH" envDefault:"300"`
	CardHeight   int           `env:"SCRATCH_CARD_HEIGHT" envDefault:"150"`
	BrushRadius  int           `env:"SCRATCH_BRUSH_RADIUS" envDefault:"15"`
	WinThreshold float64       `env:"SCRATCH_WIN_THRESHOLD" envDefault:"0.30"`
	SessionTTL   time.Duration `env:"SCRATCH_SESSION_TTL" envDefault:"30m"`
	MaxSessions  int           `env:"SCRATCH_MAX_SESSIONS" envDefault:"10000"`
	PrizesFile   string        `env:"SCRATCH_PRIZES_FILE"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Load parses the environment and validates the result.
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

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var bad []string
	if strings.TrimSpace(c.Addr) == "" {
		bad = append(bad, "SCRATCH_ADDR")
	}
	if c.CardWidth <= 0 {
		bad = append(bad, "SCRATCH_CARD_WIDTH")
	}
	if c.CardHeight <= 0 {
		bad = append(bad, "SCRATCH_CARD_HEIGHT")
	}
	if c.BrushRadius < 0 {
		bad = append(bad, "SCRATCH_BRUSH_RADIUS")
	}
	if c.WinThreshold < 0 || c.WinThreshold >= 1 {
		bad = append(bad, "SCRATCH_WIN_THRESHOLD")
	}
	if c.SessionTTL < 0 {
		bad = append(bad, "SCRATCH_SESSION_TTL")
	}
	if c.MaxSessions < 0 {
		bad = append(bad, "SCRATCH_MAX_SESSIONS")
	}
	if len(bad) > 0 {
		return &ValidationError{fields: bad}
	}
	return nil
}
