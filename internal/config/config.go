// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the ingest deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RetentionDays controls how long readings are kept.
	RetentionDays int `koanf:"retention_days"`

	// TrimInterval controls how often old readings are trimmed.
	TrimInterval time.Duration `koanf:"trim_interval"`

	// CollectorEnabled toggles the background weather collector.
	CollectorEnabled bool `koanf:"collector_enabled"`

	// CollectorInterval is how often each monitored location is fetched.
	CollectorInterval time.Duration `koanf:"collector_interval"`

	// Locations lists the monitored location names for the collector.
	Locations []string `koanf:"locations"`

	// ProviderBaseURL and ProviderAPIKey configure the upstream weather API.
	ProviderBaseURL string `koanf:"provider_base_url"`
	ProviderAPIKey  string `koanf:"provider_api_key"`

	// PredictionWindowHours is the lookback window for predictions.
	PredictionWindowHours int `koanf:"prediction_window_hours"`

	// PredictionMaxSamples caps how many recent readings feed a prediction.
	PredictionMaxSamples int `koanf:"prediction_max_samples"`

	// MinSamples is the minimum number of readings required to predict.
	MinSamples int `koanf:"min_samples"`

	// MaxHorizonHours caps the prediction horizon.
	MaxHorizonHours int `koanf:"max_horizon_hours"`

	// ConfidenceDecay is the per-hour confidence decay on multi-horizon
	// predictions.
	ConfidenceDecay float64 `koanf:"confidence_decay"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		QueueSize:             10_000,
		WorkerCount:           runtime.NumCPU() * 2,
		DedupeSize:            50_000,
		RetentionDays:         7,
		TrimInterval:          time.Hour,
		CollectorEnabled:      false,
		CollectorInterval:     15 * time.Minute,
		Locations:             nil,
		ProviderBaseURL:       "https://api.weatherapi.com/v1",
		PredictionWindowHours: 24,
		PredictionMaxSamples:  12,
		MinSamples:            3,
		MaxHorizonHours:       24,
		ConfidenceDecay:       0.05,
	}
}
