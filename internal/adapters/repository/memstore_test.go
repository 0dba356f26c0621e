package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/envsentry/envsentry/internal/domain/model"
)

var baseTS = time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	s := NewMemStore(context.Background())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func reading(location string, offset time.Duration, temp float64) model.Reading {
	return model.Reading{
		LocationName: location,
		Lat:          52.52,
		Lon:          13.405,
		Timestamp:    baseTS.Add(offset),
		TempC:        temp,
		Humidity:     60,
		WindKPH:      10,
		PressureMB:   1013,
	}
}

func mustAppend(t *testing.T, s *MemStore, readings ...model.Reading) {
	t.Helper()
	for _, r := range readings {
		if err := s.Append(context.Background(), r); err != nil {
			t.Fatalf("append %s@%s: %v", r.LocationName, r.Timestamp, err)
		}
	}
}

func TestAppendAndLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAppend(t, s,
		reading("Berlin", 0, 20),
		reading("Berlin", time.Hour, 22),
	)

	latest, err := s.Latest(ctx, "Berlin")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.TempC != 22 {
		t.Errorf("expected latest temp 22, got %v", latest.TempC)
	}
}

func TestAppendRejectsDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := reading("Berlin", 0, 20)
	mustAppend(t, s, first)

	dup := reading("Berlin", 0, 99)
	err := s.Append(ctx, dup)
	if !errors.Is(err, ErrDuplicateReading) {
		t.Fatalf("expected ErrDuplicateReading, got %v", err)
	}

	// First writer wins: the stored value is unchanged.
	latest, err := s.Latest(ctx, "Berlin")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.TempC != 20 {
		t.Errorf("expected original temp 20 preserved, got %v", latest.TempC)
	}
	if s.Count(ctx) != 1 {
		t.Errorf("expected count 1, got %d", s.Count(ctx))
	}
}

func TestAppendTreatsLocationCaseInsensitively(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAppend(t, s, reading("Berlin", 0, 20))

	err := s.Append(ctx, reading("  BERLIN ", 0, 21))
	if !errors.Is(err, ErrDuplicateReading) {
		t.Fatalf("expected ErrDuplicateReading for normalized location, got %v", err)
	}
}

func TestAppendRejectsInvalidReading(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := reading("Berlin", 0, 20)
	bad.Humidity = 150

	if err := s.Append(ctx, bad); !errors.Is(err, model.ErrInvalidReading) {
		t.Fatalf("expected ErrInvalidReading, got %v", err)
	}
	if s.Count(ctx) != 0 {
		t.Errorf("rejected reading must not be stored, count=%d", s.Count(ctx))
	}
}

func TestAppendKeepsOutOfOrderArrivalsSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAppend(t, s,
		reading("Berlin", 2*time.Hour, 24),
		reading("Berlin", 0, 20),
		reading("Berlin", time.Hour, 22),
	)

	got, err := s.QueryRange(ctx, "Berlin", baseTS, baseTS.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Errorf("readings out of order at %d: %v before %v", i, got[i].Timestamp, got[i-1].Timestamp)
		}
	}
	if got[0].TempC != 20 || got[2].TempC != 24 {
		t.Errorf("unexpected ordering: first %v last %v", got[0].TempC, got[2].TempC)
	}
}

func TestQueryRangeBounds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAppend(t, s,
		reading("Berlin", 0, 20),
		reading("Berlin", time.Hour, 21),
		reading("Berlin", 2*time.Hour, 22),
	)

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"full range", baseTS, baseTS.Add(2 * time.Hour), 3},
		{"bounds are inclusive", baseTS.Add(time.Hour), baseTS.Add(time.Hour), 1},
		{"partial window", baseTS.Add(30 * time.Minute), baseTS.Add(90 * time.Minute), 1},
		{"before all data", baseTS.Add(-2 * time.Hour), baseTS.Add(-time.Hour), 0},
		{"after all data", baseTS.Add(3 * time.Hour), baseTS.Add(4 * time.Hour), 0},
		{"inverted range", baseTS.Add(2 * time.Hour), baseTS, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.QueryRange(ctx, "Berlin", tc.from, tc.to)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("expected %d readings, got %d", tc.want, len(got))
			}
		})
	}
}

func TestQueryRangeUnknownLocation(t *testing.T) {
	s := newTestStore(t)

	got, err := s.QueryRange(context.Background(), "Atlantis", baseTS, baseTS.Add(time.Hour))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d readings", len(got))
	}
}

func TestQueryRangeReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAppend(t, s, reading("Berlin", 0, 20))

	got, err := s.QueryRange(ctx, "Berlin", baseTS, baseTS)
	if err != nil || len(got) != 1 {
		t.Fatalf("query: %v (%d readings)", err, len(got))
	}
	got[0].TempC = -999

	latest, err := s.Latest(ctx, "Berlin")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.TempC != 20 {
		t.Errorf("stored reading mutated through query result: %v", latest.TempC)
	}
}

func TestQueryResultsDoNotAliasAirQuality(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := reading("Berlin", 0, 20)
	in.AirQuality = &model.AirQuality{PM25: 12.4, PM10: 20, EPAIndex: 2}
	mustAppend(t, s, in)
	in.AirQuality.PM25 = -999 // caller keeps writing to its own copy

	got, err := s.QueryRange(ctx, "Berlin", baseTS, baseTS)
	if err != nil || len(got) != 1 {
		t.Fatalf("query: %v (%d readings)", err, len(got))
	}
	if got[0].AirQuality == nil || got[0].AirQuality.PM25 != 12.4 {
		t.Fatalf("stored air quality affected by caller mutation: %+v", got[0].AirQuality)
	}
	got[0].AirQuality.PM25 = 500

	latest, err := s.Latest(ctx, "Berlin")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.AirQuality.PM25 != 12.4 {
		t.Errorf("stored air quality mutated through query result: %v", latest.AirQuality.PM25)
	}
	latest.AirQuality.PM25 = 777

	again, err := s.Latest(ctx, "Berlin")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if again.AirQuality.PM25 != 12.4 {
		t.Errorf("stored air quality mutated through latest result: %v", again.AirQuality.PM25)
	}
}

func TestLatestUnknownLocation(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Latest(context.Background(), "Atlantis"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTrimOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAppend(t, s,
		reading("Berlin", 0, 20),
		reading("Berlin", time.Hour, 21),
		reading("Berlin", 2*time.Hour, 22),
		reading("Madrid", 0, 30),
	)

	deleted, err := s.TrimOlderThan(ctx, baseTS.Add(time.Hour))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}
	if s.Count(ctx) != 2 {
		t.Errorf("expected 2 remaining, got %d", s.Count(ctx))
	}

	// A reading exactly at the cutoff survives.
	got, err := s.QueryRange(ctx, "Berlin", baseTS, baseTS.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("query after trim: %v", err)
	}
	if len(got) != 2 || got[0].TempC != 21 {
		t.Errorf("expected readings 21 and 22 to survive, got %+v", got)
	}
}

func TestTrimRemovesEmptiedLocations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAppend(t, s,
		reading("Berlin", 0, 20),
		reading("Madrid", 2*time.Hour, 30),
	)

	deleted, err := s.TrimOlderThan(ctx, baseTS.Add(time.Hour))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	if _, err := s.Latest(ctx, "Berlin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected Berlin gone after trim, got %v", err)
	}
	locations := s.Locations(ctx)
	if len(locations) != 1 || locations[0] != "Madrid" {
		t.Errorf("expected only Madrid, got %v", locations)
	}
}

func TestTrimNothingToDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustAppend(t, s, reading("Berlin", 0, 20))

	deleted, err := s.TrimOlderThan(ctx, baseTS.Add(-time.Hour))
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 deleted, got %d", deleted)
	}
	if s.Count(ctx) != 1 {
		t.Errorf("expected count unchanged, got %d", s.Count(ctx))
	}
}

func TestCountAndLocations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if s.Count(ctx) != 0 {
		t.Fatalf("expected empty store, count=%d", s.Count(ctx))
	}

	mustAppend(t, s,
		reading("Oslo", 0, 10),
		reading("Berlin", 0, 20),
		reading("Berlin", time.Hour, 21),
	)

	if s.Count(ctx) != 3 {
		t.Errorf("expected count 3, got %d", s.Count(ctx))
	}

	locations := s.Locations(ctx)
	if len(locations) != 2 || locations[0] != "Berlin" || locations[1] != "Oslo" {
		t.Errorf("expected sorted [Berlin Oslo], got %v", locations)
	}
}

func TestConcurrentAppendsAndReads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				offset := time.Duration(w*perWriter+i) * time.Minute
				_ = s.Append(ctx, reading("Berlin", offset, 20))
				_, _ = s.QueryRange(ctx, "Berlin", baseTS, baseTS.Add(24*time.Hour))
			}
		}(w)
	}
	wg.Wait()

	if got := s.Count(ctx); got != writers*perWriter {
		t.Errorf("expected %d readings, got %d", writers*perWriter, got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := NewMemStore(context.Background())
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
