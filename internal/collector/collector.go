// Package collector periodically fetches current conditions for the
// configured locations and feeds them into the ingest pipeline.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/envsentry/envsentry/internal/domain/model"
	"github.com/envsentry/envsentry/pkg/logger"
	"github.com/envsentry/envsentry/pkg/metrics"
)

// Default collector configuration constants.
const (
	defaultInterval    = 15 * time.Minute
	perLocationTimeout = 30 * time.Second
)

// Provider fetches the current reading for a location from an upstream API.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, location string) (model.Reading, error)
}

// Ingestor accepts fetched readings; satisfied by the app service.
type Ingestor interface {
	Ingest(ctx context.Context, r model.Reading) error
}

// Collector schedules periodic fetches for a fixed set of locations.
type Collector struct {
	scheduler *gocron.Scheduler
	provider  Provider
	ingestor  Ingestor
	locations []string
	interval  time.Duration
	logger    logger.Logger
}

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithInterval sets the fetch interval.
func WithInterval(interval time.Duration) Option {
	return func(c *Collector) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithLogger sets a custom logger for the collector.
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Collector for the given locations.
func New(provider Provider, ingestor Ingestor, locations []string, opts ...Option) *Collector {
	c := &Collector{
		scheduler: gocron.NewScheduler(time.UTC),
		provider:  provider,
		ingestor:  ingestor,
		locations: locations,
		interval:  defaultInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("collector")
	}

	return c
}

// Start schedules the periodic job and starts the underlying scheduler.
func (c *Collector) Start(ctx context.Context) error {
	if len(c.locations) == 0 {
		c.logger.Warn(ctx, "no locations configured; collector idle")
		return nil
	}

	_, err := c.scheduler.Every(c.interval).Do(func() {
		c.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	c.scheduler.StartAsync()
	c.logger.Info(ctx, "collector started",
		logger.String("provider", c.provider.Name()),
		logger.Int("locations", len(c.locations)),
		logger.Duration("interval", c.interval),
	)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (c *Collector) Stop() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
}

// RunOnce fetches every configured location once, concurrently.
func (c *Collector) RunOnce(ctx context.Context) {
	cycleID := uuid.NewString()
	c.logger.Debug(ctx, "collection cycle starting", logger.String("cycle", cycleID))

	var wg sync.WaitGroup
	for _, location := range c.locations {
		location := location
		wg.Add(1)
		go func() {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, perLocationTimeout)
			defer cancel()

			c.collect(fetchCtx, cycleID, location)
		}()
	}
	wg.Wait()

	c.logger.Debug(ctx, "collection cycle completed", logger.String("cycle", cycleID))
}

func (c *Collector) collect(ctx context.Context, cycleID, location string) {
	start := time.Now()

	reading, err := c.provider.Fetch(ctx, location)
	metrics.RecordCollectorFetchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordCollectorFetchError()
		metrics.RecordErrorByComponent("collector", "fetch_failed")
		c.logger.Error(ctx, "fetch failed",
			logger.String("cycle", cycleID),
			logger.String("location", location),
			logger.Error(err),
		)
		return
	}
	metrics.RecordCollectorFetch()

	if err := c.ingestor.Ingest(ctx, reading); err != nil {
		metrics.RecordErrorByComponent("collector", "ingest_failed")
		c.logger.Error(ctx, "ingest failed",
			logger.String("cycle", cycleID),
			logger.String("location", location),
			logger.Error(err),
		)
		return
	}

	c.logger.Debug(ctx, "reading collected",
		logger.String("cycle", cycleID),
		logger.String("location", reading.LocationName),
		logger.Time("timestamp", reading.Timestamp),
	)
}
