package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/envsentry/envsentry/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Delay between submission and verification, giving the async
// ingest pipeline time to drain.
const processingDelay = 2 * time.Second

// Horizon used for the verification predictions.
const verifyHorizonHours = 3

// PercentageMultiplier converts a ratio to a percentage.
const percentageMultiplier = 100.0

// Run executes the complete seeding run.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting reading seeder",
		logger.String("baseURL", config.BaseURL),
		logger.Any("locations", config.Locations),
		logger.Int("hours", config.Hours),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	readings, err := generateReadings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("reading generation failed: %w", err)
	}

	if err := submitReadings(ctx, config, readings, stats); err != nil {
		return fmt.Errorf("reading submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for readings to be processed")
	time.Sleep(processingDelay)

	if err := retrieveAssessments(ctx, config, stats); err != nil {
		return fmt.Errorf("risk verification failed: %w", err)
	}

	if err := retrievePredictions(ctx, config, verifyHorizonHours, stats); err != nil {
		return fmt.Errorf("prediction verification failed: %w", err)
	}

	if err := saveReadingsToFile(ctx, config, readings); err != nil {
		logger.Get().Warn(ctx, "failed to save readings to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seeding completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveReadingsToFile saves the generated readings to a JSON file.
func saveReadingsToFile(ctx context.Context, config *Config, readings []Reading) error {
	if len(readings) == 0 {
		return fmt.Errorf("no readings to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "seeded_readings_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, reading := range readings {
		jsonData, err := json.Marshal(reading)
		if err != nil {
			return fmt.Errorf("failed to marshal reading %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write reading %d: %w", i, err)
		}

		if i < len(readings)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "readings saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, readingsPerSecond float64

	if stats.ReadingsSubmitted > 0 {
		successRate = float64(stats.ReadingsSuccessful) / float64(stats.ReadingsSubmitted) * percentageMultiplier
	}

	if stats.Duration > 0 {
		readingsPerSecond = float64(stats.ReadingsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("readingsGenerated", stats.ReadingsGenerated),
		logger.Int("readingsSubmitted", stats.ReadingsSubmitted),
		logger.Int("readingsSuccessful", stats.ReadingsSuccessful),
		logger.Int("readingsFailed", stats.ReadingsFailed),
		logger.Int("assessmentsRetrieved", stats.AssessmentsRetrieved),
		logger.Int("predictionsRetrieved", stats.PredictionsRetrieved),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("readingsPerSecond", readingsPerSecond))
}
