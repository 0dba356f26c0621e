// Package analysis summarizes a historical reading window: per-metric
// statistics, least-squares trend direction labels, and anomaly flags.
// Like the other analytics, a report is ephemeral and recomputed per
// query, never stored.
package analysis

import (
	"fmt"
	"math"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// Analysis configuration constants.
const (
	minSamples = 10

	tempTrendThreshold     = 0.1 // °C per sample
	humidityTrendThreshold = 0.5 // percentage points per sample
	pm25TrendThreshold     = 0.5 // µg/m³ per sample

	tempVariabilityStdDev    = 5.0
	humidityFluctuationRange = 40.0
	pm25SevereEpisode        = 100.0

	percentMultiplier = 100.0
)

// Direction labels the slope of a metric series.
type Direction string

// Trend directions.
const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// MetricStats summarizes one metric series over the window.
type MetricStats struct {
	Mean   float64   `json:"mean"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	StdDev float64   `json:"std_dev"`
	Trend  Direction `json:"trend"`
}

// DataQuality describes how complete the analyzed window was.
type DataQuality struct {
	ReadingsCount int     `json:"readings_count"`
	TimeSpanHours float64 `json:"time_span_hours"`
	Completeness  float64 `json:"completeness"`
}

// Report is the full pattern analysis of one window. PM25 is nil when
// fewer than two readings in the window carried air-quality data.
type Report struct {
	Temperature MetricStats  `json:"temperature"`
	Humidity    MetricStats  `json:"humidity"`
	PM25        *MetricStats `json:"pm2_5,omitempty"`
	Anomalies   []string     `json:"anomalies"`
	DataQuality DataQuality  `json:"data_quality"`
}

// Analyze summarizes the window. The window must be ordered oldest to
// newest and contain at least 10 samples; otherwise
// ErrInsufficientData is returned.
func Analyze(window []model.Reading) (Report, error) {
	if len(window) < minSamples {
		return Report{}, fmt.Errorf("%w: have %d samples, need %d",
			ErrInsufficientData, len(window), minSamples)
	}

	temps := make([]float64, 0, len(window))
	humidity := make([]float64, 0, len(window))
	var pm25 []float64
	for _, r := range window {
		temps = append(temps, r.TempC)
		humidity = append(humidity, r.Humidity)
		if r.AirQuality != nil {
			pm25 = append(pm25, r.AirQuality.PM25)
		}
	}

	report := Report{
		Temperature: metricStats(temps, tempTrendThreshold),
		Humidity:    metricStats(humidity, humidityTrendThreshold),
		DataQuality: dataQuality(window, len(pm25)),
	}
	if len(pm25) > 1 {
		stats := metricStats(pm25, pm25TrendThreshold)
		report.PM25 = &stats
	}
	report.Anomalies = detectAnomalies(report)
	return report, nil
}

// metricStats computes summary statistics and a trend label for one
// series. The trend threshold is per sample, not per hour: the slope
// is fitted against the sample index.
func metricStats(values []float64, trendThreshold float64) MetricStats {
	minV, maxV := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	var stdDev float64
	if len(values) > 1 {
		stdDev = math.Sqrt(sumSq / float64(len(values)-1))
	}

	return MetricStats{
		Mean:   mean,
		Min:    minV,
		Max:    maxV,
		StdDev: stdDev,
		Trend:  directionFor(slope(values), trendThreshold),
	}
}

// slope fits a least-squares line against the sample index and returns
// the per-sample rate of change.
func slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	xMean := float64(n-1) / 2
	var yMean float64
	for _, v := range values {
		yMean += v
	}
	yMean /= float64(n)

	var numerator, denominator float64
	for i, v := range values {
		dx := float64(i) - xMean
		numerator += dx * (v - yMean)
		denominator += dx * dx
	}
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func directionFor(perSample, threshold float64) Direction {
	switch {
	case perSample > threshold:
		return DirectionIncreasing
	case perSample < -threshold:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}

// detectAnomalies flags window-level irregularities worth a closer look.
func detectAnomalies(report Report) []string {
	anomalies := []string{}
	if report.Temperature.StdDev > tempVariabilityStdDev {
		anomalies = append(anomalies, "High temperature variability detected")
	}
	if report.Humidity.Max-report.Humidity.Min > humidityFluctuationRange {
		anomalies = append(anomalies, "Significant humidity fluctuations")
	}
	if report.PM25 != nil && report.PM25.Max > pm25SevereEpisode {
		anomalies = append(anomalies, "Severe air pollution episodes detected")
	}
	return anomalies
}

// dataQuality measures the window itself: how many readings, the span
// between the window endpoints, and what share carried air-quality data.
func dataQuality(window []model.Reading, pm25Count int) DataQuality {
	span := window[len(window)-1].Timestamp.Sub(window[0].Timestamp).Hours()
	return DataQuality{
		ReadingsCount: len(window),
		TimeSpanHours: span,
		Completeness:  float64(pm25Count) / float64(len(window)) * percentMultiplier,
	}
}
