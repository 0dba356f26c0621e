package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/envsentry/envsentry/pkg/logger"
)

// retrieveAssessments fetches the current risk assessment for every
// seeded location and sanity-checks the score range.
func retrieveAssessments(ctx context.Context, config *Config, stats *Stats) error {
	client := newHTTPClient(config.Timeout)

	for _, location := range config.Locations {
		url := config.BaseURL + "/risk/" + location

		resp, err := client.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("risk request for %s failed: %w", location, err)
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("risk response for %s unreadable: %w", location, err)
		}
		if resp.StatusCode != statusOK {
			return fmt.Errorf("risk for %s returned status %d: %s", location, resp.StatusCode, string(body))
		}

		var assessment Assessment
		if err := json.Unmarshal(body, &assessment); err != nil {
			return fmt.Errorf("risk response for %s unparseable: %w", location, err)
		}
		if assessment.Score < 0 || assessment.Score > 100 {
			return fmt.Errorf("risk score for %s out of range: %d", location, assessment.Score)
		}

		stats.AssessmentsRetrieved++
		logger.Get().Info(ctx, "risk assessment",
			logger.String("location", location),
			logger.Int("score", assessment.Score),
			logger.String("level", assessment.Level))
	}

	return nil
}

// retrievePredictions fetches a short-horizon prediction for every
// seeded location. Locations with too little history report 422 and
// are skipped rather than failing the run.
func retrievePredictions(ctx context.Context, config *Config, horizonHours int, stats *Stats) error {
	client := newHTTPClient(config.Timeout)
	const statusWaiting = 422

	for _, location := range config.Locations {
		url := config.BaseURL + "/predict/" + location + "?hours=" + strconv.Itoa(horizonHours)

		resp, err := client.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("predict request for %s failed: %w", location, err)
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("predict response for %s unreadable: %w", location, err)
		}
		if resp.StatusCode == statusWaiting {
			logger.Get().Warn(ctx, "not enough history for prediction", logger.String("location", location))
			continue
		}
		if resp.StatusCode != statusOK {
			return fmt.Errorf("predict for %s returned status %d: %s", location, resp.StatusCode, string(body))
		}

		var prediction Prediction
		if err := json.Unmarshal(body, &prediction); err != nil {
			return fmt.Errorf("predict response for %s unparseable: %w", location, err)
		}

		stats.PredictionsRetrieved++
		logger.Get().Info(ctx, "prediction",
			logger.String("location", location),
			logger.Int("horizonHours", prediction.HorizonHours),
			logger.Float64("predictedTempC", prediction.PredictedTempC),
			logger.Float64("confidence", prediction.Confidence),
			logger.Int("dataPoints", prediction.DataPointsUsed))
	}

	return nil
}
