// Package repository defines the reading store contract and errors.
package repository

import (
	"context"
	"time"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// Store provides append-only, per-location ordered access to readings.
// The store exclusively owns persisted readings; every other entity in
// the system is computed on demand from what it returns.
type Store interface {
	// Append writes one reading. It returns ErrDuplicateReading when a
	// reading already exists at the same (location, timestamp), keeping
	// the first writer, and model.ErrInvalidReading when any numeric
	// field is non-finite or humidity is outside [0,100]. A rejected
	// reading is never partially stored.
	Append(ctx context.Context, r model.Reading) error

	// QueryRange returns the readings for a location within [from, to],
	// oldest first. An empty result is not an error.
	QueryRange(ctx context.Context, location string, from, to time.Time) ([]model.Reading, error)

	// Latest returns the most recent reading for a location.
	// Returns ErrNotFound when the location has no readings.
	Latest(ctx context.Context, location string) (model.Reading, error)

	// TrimOlderThan deletes readings strictly older than cutoff across
	// all locations and returns the number deleted.
	TrimOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the total number of stored readings.
	Count(ctx context.Context) int

	// Locations returns the known location names, sorted.
	Locations(ctx context.Context) []string
}
