package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/envsentry/envsentry/internal/domain/model"
	"github.com/envsentry/envsentry/pkg/metrics"
)

// In-memory Store implementation.
//
// Ordering: per-location slices sorted by timestamp ascending, so a
// range query is two binary searches plus a copy. Writes take the
// exclusive lock; reads share it. Trims never touch a slice a reader
// already holds because every query hands back a copy.

const defaultMetricsUpdateInterval = 5 * time.Second

// MemStore keeps one time-ordered log per location behind a RWMutex.
type MemStore struct {
	mu         sync.RWMutex
	byLocation map[string][]model.Reading

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemStore constructs an in-memory store with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		byLocation:            make(map[string][]model.Reading),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics goroutine.
func (s *MemStore) Close() error {
	select {
	case <-s.stopChan:
		// already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// locationKey normalizes a location name for map lookup. The stored
// reading keeps the original spelling.
func locationKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Append implements Store.Append. Out-of-order arrivals are inserted
// at the right position; the common case (newest last) is O(1) amortized.
func (s *MemStore) Append(ctx context.Context, r model.Reading) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreAppendLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := r.Validate(); err != nil {
		metrics.RecordReadingInvalid()
		metrics.RecordErrorByComponent("repository", "invalid_reading")
		return err
	}

	key := locationKey(r.LocationName)
	ts := r.Timestamp.UTC()
	r = r.Clone()
	r.Timestamp = ts

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.byLocation[key]
	idx := sort.Search(len(log), func(i int) bool {
		return !log[i].Timestamp.Before(ts)
	})
	if idx < len(log) && log[idx].Timestamp.Equal(ts) {
		// First writer wins; identical or near-duplicate rewrites for
		// the same instant become no-ops at the caller.
		metrics.RecordReadingDuplicate()
		return fmt.Errorf("%w: %s at %s", ErrDuplicateReading, r.LocationName, ts.Format(time.RFC3339))
	}

	if idx == len(log) {
		log = append(log, r)
	} else {
		log = append(log, model.Reading{})
		copy(log[idx+1:], log[idx:])
		log[idx] = r
	}
	s.byLocation[key] = log

	metrics.RecordReadingStored()
	return nil
}

// QueryRange implements Store.QueryRange. The result is a copy: trims
// and later writes never mutate a slice a caller already holds.
func (s *MemStore) QueryRange(ctx context.Context, location string, from, to time.Time) ([]model.Reading, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	from, to = from.UTC(), to.UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.byLocation[locationKey(location)]
	lo := sort.Search(len(log), func(i int) bool {
		return !log[i].Timestamp.Before(from)
	})
	hi := sort.Search(len(log), func(i int) bool {
		return log[i].Timestamp.After(to)
	})
	if lo >= hi {
		return nil, nil
	}

	out := make([]model.Reading, hi-lo)
	for i, r := range log[lo:hi] {
		out[i] = r.Clone()
	}
	return out, nil
}

// Latest implements Store.Latest.
func (s *MemStore) Latest(ctx context.Context, location string) (model.Reading, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.byLocation[locationKey(location)]
	if len(log) == 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Reading{}, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	return log[len(log)-1].Clone(), nil
}

// TrimOlderThan implements Store.TrimOlderThan. Locations whose log
// empties out are removed entirely.
func (s *MemStore) TrimOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	cutoff = cutoff.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key, log := range s.byLocation {
		idx := sort.Search(len(log), func(i int) bool {
			return !log[i].Timestamp.Before(cutoff)
		})
		if idx == 0 {
			continue
		}
		deleted += idx
		if idx == len(log) {
			delete(s.byLocation, key)
			continue
		}
		kept := make([]model.Reading, len(log)-idx)
		copy(kept, log[idx:])
		s.byLocation[key] = kept
	}

	if deleted > 0 {
		metrics.RecordStoreTrimDeleted(deleted)
	}
	return deleted, nil
}

// Count implements Store.Count.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, log := range s.byLocation {
		total += len(log)
	}
	return total
}

// Locations implements Store.Locations.
func (s *MemStore) Locations(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.byLocation))
	for _, log := range s.byLocation {
		if len(log) > 0 {
			names = append(names, log[0].LocationName)
		}
	}
	sort.Strings(names)
	return names
}

// startMetricsUpdater publishes store gauges at the configured interval.
func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemStore) updateMetrics() {
	s.mu.RLock()
	total := 0
	perLocation := make(map[string]int, len(s.byLocation))
	for key, log := range s.byLocation {
		total += len(log)
		perLocation[key] = len(log)
	}
	s.mu.RUnlock()

	metrics.UpdateStoreReadingsTotal(total)
	metrics.UpdateStoreLocationCount(len(perLocation))
	for key, n := range perLocation {
		metrics.UpdateStoreReadingsPerLocation(key, n)
	}
}
