package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if ENVSENTRY_CONFIG is set
//  3. env (prefix ENVSENTRY_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx // reserved for provider-backed loaders

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ENVSENTRY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: ENVSENTRY_ADDR, ENVSENTRY_QUEUE_SIZE, ...
	// Map env keys like ENVSENTRY_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ENVSENTRY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "envsentry_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("%w: retention_days must be positive", ErrInvalidConfig)
	}
	if c.MaxHorizonHours < 1 {
		return fmt.Errorf("%w: max_horizon_hours must be positive", ErrInvalidConfig)
	}
	if c.CollectorEnabled && c.ProviderAPIKey == "" {
		return fmt.Errorf("%w: provider_api_key required when collector is enabled", ErrInvalidConfig)
	}
	if c.CollectorEnabled && len(c.Locations) == 0 {
		return fmt.Errorf("%w: locations required when collector is enabled", ErrInvalidConfig)
	}
	return nil
}
