// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	readingqueue "github.com/envsentry/envsentry/internal/adapters/mq/queue"
	workerpool "github.com/envsentry/envsentry/internal/adapters/mq/worker"
	repository "github.com/envsentry/envsentry/internal/adapters/repository"
	"github.com/envsentry/envsentry/internal/domain/alert"
	"github.com/envsentry/envsentry/internal/domain/analysis"
	"github.com/envsentry/envsentry/internal/domain/correlation"
	"github.com/envsentry/envsentry/internal/domain/dedupe"
	"github.com/envsentry/envsentry/internal/domain/model"
	"github.com/envsentry/envsentry/internal/domain/risk"
	"github.com/envsentry/envsentry/internal/domain/trend"
	"github.com/envsentry/envsentry/pkg/logger"
	"github.com/envsentry/envsentry/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize         = 10000
	defaultDedupeSize        = 50000
	defaultRetentionDays     = 7
	defaultTrimInterval      = time.Hour
	defaultWindowHours       = 24
	defaultWindowMaxSamples  = 12
	defaultMaxHorizonHours   = 24
	hoursPerDay              = 24
	defaultAlertHorizonHours = 1
	defaultHistoryHours      = 24
	defaultAnalysisHours     = 48
	maxHistoryHours          = 7 * hoursPerDay
)

// Service implements the API dependencies for the monitoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store        repository.Store
	deduper      dedupe.Deduper
	readingQueue readingqueue.Queue
	predictor    *trend.Predictor
	workerPool   *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	retentionDays    int
	trimInterval     time.Duration
	windowHours      int
	windowMaxSamples int
	minSamples       int
	maxHorizonHours  int
	confidenceDecay  float64

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the ingest deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRetention sets how long readings are kept and how often old
// readings are trimmed.
func WithRetention(days int, interval time.Duration) Option {
	return func(s *Service) {
		if days > 0 {
			s.retentionDays = days
		}
		if interval > 0 {
			s.trimInterval = interval
		}
	}
}

// WithPredictionWindow sets the lookback window and the maximum number
// of most-recent samples fed to the predictor.
func WithPredictionWindow(hours, maxSamples int) Option {
	return func(s *Service) {
		if hours > 0 {
			s.windowHours = hours
		}
		if maxSamples > 0 {
			s.windowMaxSamples = maxSamples
		}
	}
}

// WithMinSamples sets the minimum samples required for a prediction.
func WithMinSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSamples = n
		}
	}
}

// WithMaxHorizon sets the maximum accepted prediction horizon in hours.
func WithMaxHorizon(hours int) Option {
	return func(s *Service) {
		if hours > 0 {
			s.maxHorizonHours = hours
		}
	}
}

// WithConfidenceDecay sets the per-hour confidence decay for
// multi-horizon predictions.
func WithConfidenceDecay(perHour float64) Option {
	return func(s *Service) {
		if perHour > 0 {
			s.confidenceDecay = perHour
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        defaultQueueSize,
		dedupeSize:       defaultDedupeSize,
		retentionDays:    defaultRetentionDays,
		trimInterval:     defaultTrimInterval,
		windowHours:      defaultWindowHours,
		windowMaxSamples: defaultWindowMaxSamples,
		maxHorizonHours:  defaultMaxHorizonHours,
		stopCh:           make(chan struct{}),
		logger:           nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting monitoring service...")

	s.store = repository.NewMemStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.readingQueue = readingqueue.NewInMemoryQueue(
		readingqueue.WithCapacity(s.queueSize),
		readingqueue.WithBufferSize(s.queueSize),
	)

	predictorOpts := []trend.Option{}
	if s.minSamples > 0 {
		predictorOpts = append(predictorOpts, trend.WithMinSamples(s.minSamples))
	}
	if s.confidenceDecay > 0 {
		predictorOpts = append(predictorOpts, trend.WithConfidenceDecay(s.confidenceDecay))
	}
	s.predictor = trend.NewPredictor(predictorOpts...)

	s.workerPool = workerpool.NewPool(s.workerCount, s.readingQueue, s.store)
	s.workerPool.Start(ctx)

	s.wg.Add(1)
	go s.retentionLoop(ctx)

	s.started = true
	s.logger.Info(ctx, "monitoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("retentionDays", s.retentionDays),
		logger.Duration("trimInterval", s.trimInterval),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping monitoring service...")

	// Signal retention loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}
	s.wg.Wait()

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if q, ok := s.readingQueue.(*readingqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "monitoring service stopped")
}

// Ingest validates a reading and submits it for asynchronous persistence.
// A reading already seen at the same (location, timestamp) is absorbed
// without error; the first writer wins.
func (s *Service) Ingest(ctx context.Context, r model.Reading) error {
	if err := r.Validate(); err != nil {
		metrics.RecordReadingInvalid()
		return err
	}

	key := r.Key()
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordReadingDuplicate()
		s.logger.Debug(ctx, "duplicate reading absorbed",
			logger.String("key", key),
		)
		return nil
	}

	if !s.readingQueue.Enqueue(ctx, r) {
		// Give the submitter a chance to retry this exact reading.
		s.deduper.Unrecord(ctx, key)
		metrics.RecordErrorByComponent("service", "backpressure")
		return fmt.Errorf("enqueue %s: %w", key, ErrBackpressure)
	}

	return nil
}

// GetRisk assesses the latest reading for a location.
func (s *Service) GetRisk(ctx context.Context, location string) (risk.Assessment, error) {
	latest, err := s.store.Latest(ctx, location)
	if err != nil {
		return risk.Assessment{}, err
	}
	return risk.Score(latest), nil
}

// GetCorrelations runs the cross-metric rules against the latest reading.
func (s *Service) GetCorrelations(ctx context.Context, location string) ([]correlation.Finding, error) {
	latest, err := s.store.Latest(ctx, location)
	if err != nil {
		return nil, err
	}
	return correlation.Detect(latest), nil
}

// GetPrediction extrapolates the recent window for a location.
func (s *Service) GetPrediction(ctx context.Context, location string, horizonHours int) (trend.Prediction, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))
	}()

	if horizonHours < 1 || horizonHours > s.maxHorizonHours {
		return trend.Prediction{}, fmt.Errorf("horizon %d: %w", horizonHours, trend.ErrInvalidHorizon)
	}

	window, err := s.predictionWindow(ctx, location)
	if err != nil {
		return trend.Prediction{}, err
	}

	p, err := s.predictor.Predict(window, horizonHours)
	if err != nil {
		return trend.Prediction{}, err
	}

	metrics.RecordPredictionGenerated()
	return p, nil
}

// GetMultiPrediction returns one prediction per horizon 1..count hours.
func (s *Service) GetMultiPrediction(ctx context.Context, location string, count int) ([]trend.Prediction, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))
	}()

	if count < 1 || count > s.maxHorizonHours {
		return nil, fmt.Errorf("horizon count %d: %w", count, trend.ErrInvalidHorizon)
	}

	window, err := s.predictionWindow(ctx, location)
	if err != nil {
		return nil, err
	}

	horizons := make([]int, count)
	for i := range horizons {
		horizons[i] = i + 1
	}

	predictions, err := s.predictor.PredictMulti(window, horizons)
	if err != nil {
		return nil, err
	}

	metrics.RecordPredictionGenerated()
	return predictions, nil
}

// GetAlerts composes contextual alerts from the current risk picture,
// correlation findings, and the short-horizon prediction. Prediction
// failures degrade to risk- and correlation-only alerts.
func (s *Service) GetAlerts(ctx context.Context, location string) ([]alert.ContextualAlert, error) {
	latest, err := s.store.Latest(ctx, location)
	if err != nil {
		return nil, err
	}

	assessment := risk.Score(latest)
	findings := correlation.Detect(latest)

	var prediction *trend.Prediction
	if p, predErr := s.GetPrediction(ctx, location, defaultAlertHorizonHours); predErr == nil {
		prediction = &p
	} else {
		s.logger.Debug(ctx, "alerts degrade to no prediction",
			logger.String("location", location),
			logger.Error(predErr),
		)
	}

	alerts := alert.Compose(assessment, findings, prediction)
	metrics.RecordAlertsComposed(len(alerts))
	return alerts, nil
}

// GetHistory returns the stored readings for a location over the last
// hours, oldest first. The lookback is capped at seven days.
func (s *Service) GetHistory(ctx context.Context, location string, hours int) ([]model.Reading, error) {
	if hours < 1 {
		hours = defaultHistoryHours
	}
	if hours > maxHistoryHours {
		hours = maxHistoryHours
	}

	now := time.Now().UTC()
	readings, err := s.store.QueryRange(ctx, location, now.Add(-time.Duration(hours)*time.Hour), now)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		// An unknown location is a 404-class error; a known but quiet
		// one legitimately has an empty history.
		if _, latestErr := s.store.Latest(ctx, location); latestErr != nil {
			return nil, latestErr
		}
	}
	return readings, nil
}

// GetAnalysis summarizes historical patterns for a location over the
// last hours. The lookback is capped at seven days.
func (s *Service) GetAnalysis(ctx context.Context, location string, hours int) (analysis.Report, error) {
	if hours < 1 {
		hours = defaultAnalysisHours
	}
	if hours > maxHistoryHours {
		hours = maxHistoryHours
	}

	now := time.Now().UTC()
	window, err := s.store.QueryRange(ctx, location, now.Add(-time.Duration(hours)*time.Hour), now)
	if err != nil {
		return analysis.Report{}, err
	}
	if len(window) == 0 {
		if _, latestErr := s.store.Latest(ctx, location); latestErr != nil {
			return analysis.Report{}, latestErr
		}
		return analysis.Report{}, fmt.Errorf("no readings in the last %dh: %w", hours, analysis.ErrInsufficientData)
	}
	return analysis.Analyze(window)
}

// Cleanup removes readings older than the given number of days and
// returns how many were deleted.
func (s *Service) Cleanup(ctx context.Context, days int) (int, error) {
	if days < 1 {
		days = s.retentionDays
	}
	cutoff := time.Now().UTC().Add(-time.Duration(days) * hoursPerDay * time.Hour)
	return s.store.TrimOlderThan(ctx, cutoff)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueCapacity": s.queueSize,
		"retentionDays": s.retentionDays,
	}

	if s.started {
		locations := s.store.Locations(ctx)
		stats["queueLength"] = s.readingQueue.Len(ctx)
		stats["totalReadings"] = s.store.Count(ctx)
		stats["locationCount"] = len(locations)
		stats["locations"] = locations
	}

	return stats
}

// retentionLoop trims old readings at the configured interval.
func (s *Service) retentionLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.trimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			deleted, err := s.Cleanup(ctx, s.retentionDays)
			if err != nil {
				s.logger.Error(ctx, "retention trim failed", logger.Error(err))
				metrics.RecordErrorByComponent("service", "retention_trim")
				continue
			}
			if deleted > 0 {
				s.logger.Info(ctx, "retention trim completed",
					logger.Int("deleted", deleted),
					logger.Int("retentionDays", s.retentionDays),
				)
			}
		}
	}
}

// predictionWindow returns the most recent samples for a location,
// bounded by the lookback window and the per-prediction sample cap.
func (s *Service) predictionWindow(ctx context.Context, location string) ([]model.Reading, error) {
	now := time.Now().UTC()
	from := now.Add(-time.Duration(s.windowHours) * time.Hour)

	window, err := s.store.QueryRange(ctx, location, from, now)
	if err != nil {
		return nil, err
	}
	if len(window) == 0 {
		// Distinguish "unknown location" from "known but quiet".
		if _, latestErr := s.store.Latest(ctx, location); latestErr != nil {
			return nil, latestErr
		}
		return nil, fmt.Errorf("no readings in the last %dh: %w", s.windowHours, trend.ErrInsufficientData)
	}

	if len(window) > s.windowMaxSamples {
		window = window[len(window)-s.windowMaxSamples:]
	}
	return window, nil
}
