package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTP status codes the submission loop distinguishes.
const (
	statusAccepted = 202
	statusOK       = 200
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitReadings submits readings concurrently using a worker pool.
func submitReadings(ctx context.Context, config *Config, readings []Reading, stats *Stats) error {
	log.Printf("submitting %d readings with %d workers...", len(readings), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/readings"

	var (
		successful int64
		failed     int64
	)

	jobs := make(chan Reading)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for reading := range jobs {
				resp, err := client.Post(ctx, url, reading)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("submit failed for %s: %v", reading.LocationName, err)
					}
					continue
				}

				body, readErr := readResponseBody(resp)
				if readErr != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}

				if resp.StatusCode != statusAccepted {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("submit rejected (%d): %s", resp.StatusCode, string(body))
					}
					continue
				}

				var ack AckResponse
				if err := json.Unmarshal(body, &ack); err != nil || ack.Status != "accepted" {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&successful, 1)
			}
		}()
	}

	for _, reading := range readings {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return fmt.Errorf("submission cancelled: %w", ctx.Err())
		case jobs <- reading:
		}
	}
	close(jobs)
	wg.Wait()

	stats.ReadingsSubmitted = len(readings)
	stats.ReadingsSuccessful = int(successful)
	stats.ReadingsFailed = int(failed)

	log.Printf("submission complete: %d ok, %d failed", successful, failed)
	return nil
}
