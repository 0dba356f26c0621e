package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/envsentry/envsentry/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`EnvSentry Reading Seeder
========================

A concurrent tool for seeding the EnvSentry service with synthetic
environmental readings and verifying the analytics endpoints.

Usage:
  go run cmd/seed-readings/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -locations string
        Comma-separated list of locations to seed (default "Berlin,Madrid,Oslo")
  -hours int
        Length of the synthetic history in hours (default 24)
  -step int
        Minutes between consecutive readings (default 15)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated readings (default: seeded_readings_TIMESTAMP.json)
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-readings/main.go

  # Seed a week of history for two cities
  go run cmd/seed-readings/main.go -locations "Lisbon,Porto" -hours 168

  # Seed against a non-default port with verbose output
  go run cmd/seed-readings/main.go -url http://localhost:8080 -verbose
`)
}
