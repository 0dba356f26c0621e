// Package trend predicts short-horizon metric values from an ordered
// window of readings for one location. The predictor is an explicit
// linear-trend heuristic, not a trainable model: it fits a straight
// line between the window endpoints, extrapolates it, and grades its
// own reliability from how well that line explains the window.
package trend

import (
	"fmt"
	"math"
	"time"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// Default predictor configuration constants.
const (
	defaultMinSamples   = 3
	defaultDecayPerHour = 0.05
	confidenceFloor     = 0.50
	confidenceCeiling   = 0.95
	humidityMax         = 100.0
	rangeEpsilon        = 1e-9
	minutesPerHour      = 60
	defaultHorizonHours = 1
)

// Trends holds the fitted per-hour rate of change for each tracked metric.
type Trends struct {
	TempPerHour     float64 `json:"temp_per_hour"`
	HumidityPerHour float64 `json:"humidity_per_hour"`
	PM25PerHour     float64 `json:"pm25_per_hour"`
}

// Prediction is the ephemeral result of extrapolating a window.
type Prediction struct {
	LocationName      string    `json:"location_name"`
	PredictionFor     time.Time `json:"prediction_for"`
	HorizonHours      int       `json:"horizon_hours"`
	PredictedTempC    float64   `json:"predicted_temp_c"`
	PredictedHumidity float64   `json:"predicted_humidity"`
	PredictedPM25     float64   `json:"predicted_pm2_5"`
	Confidence        float64   `json:"confidence_score"`
	DataPointsUsed    int       `json:"data_points_used"`
	Trends            Trends    `json:"trends"`
}

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithMinSamples sets the minimum window size required for a prediction.
func WithMinSamples(n int) Option {
	return func(p *Predictor) {
		if n > 1 {
			p.minSamples = n
		}
	}
}

// WithConfidenceDecay sets the per-hour confidence decay applied to
// horizons beyond the first.
func WithConfidenceDecay(perHour float64) Option {
	return func(p *Predictor) {
		if perHour >= 0 {
			p.decayPerHour = perHour
		}
	}
}

// Predictor extrapolates linear trends over reading windows. It holds
// only configuration; predictions carry no cross-call state and are
// safe to compute concurrently.
type Predictor struct {
	minSamples   int
	decayPerHour float64
}

// NewPredictor creates a predictor with configuration options.
func NewPredictor(opts ...Option) *Predictor {
	p := &Predictor{
		minSamples:   defaultMinSamples,
		decayPerHour: defaultDecayPerHour,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict extrapolates the window horizonHours ahead. The window must
// be ordered oldest to newest and contain at least the configured
// minimum number of samples; otherwise ErrInsufficientData is returned.
func (p *Predictor) Predict(window []model.Reading, horizonHours int) (Prediction, error) {
	if horizonHours < 1 {
		return Prediction{}, fmt.Errorf("%w: %d hours", ErrInvalidHorizon, horizonHours)
	}
	if len(window) < p.minSamples {
		return Prediction{}, fmt.Errorf("%w: have %d samples, need %d",
			ErrInsufficientData, len(window), p.minSamples)
	}
	fit := fitWindow(window)
	return p.extrapolate(window, fit, horizonHours, fit.confidence), nil
}

// PredictMulti produces one prediction per horizon from a single fit.
// Confidence decays (non-strictly) as the horizon grows, since the
// fit's reliability diminishes with distance.
func (p *Predictor) PredictMulti(window []model.Reading, horizons []int) ([]Prediction, error) {
	if len(horizons) == 0 {
		return nil, fmt.Errorf("%w: no horizons supplied", ErrInvalidHorizon)
	}
	if len(window) < p.minSamples {
		return nil, fmt.Errorf("%w: have %d samples, need %d",
			ErrInsufficientData, len(window), p.minSamples)
	}
	fit := fitWindow(window)

	out := make([]Prediction, 0, len(horizons))
	for _, h := range horizons {
		if h < 1 {
			return nil, fmt.Errorf("%w: %d hours", ErrInvalidHorizon, h)
		}
		conf := fit.confidence - p.decayPerHour*float64(h-defaultHorizonHours)
		if conf < confidenceFloor {
			conf = confidenceFloor
		}
		out = append(out, p.extrapolate(window, fit, h, conf))
	}
	return out, nil
}

// windowFit carries the fitted trends and the base confidence derived
// from temperature residuals.
type windowFit struct {
	trends     Trends
	confidence float64
}

// fitWindow computes per-hour trends between the window endpoints and a
// single confidence scalar from the temperature series. Temperature is
// the reference metric: its residuals against the endpoint line,
// normalized by the observed value range, grade the whole fit.
func fitWindow(window []model.Reading) windowFit {
	first, last := window[0], window[len(window)-1]
	elapsed := last.Timestamp.Sub(first.Timestamp).Hours()

	var ft windowFit
	if elapsed > 0 {
		ft.trends.TempPerHour = (last.TempC - first.TempC) / elapsed
		ft.trends.HumidityPerHour = (last.Humidity - first.Humidity) / elapsed
		ft.trends.PM25PerHour = pm25Trend(window)
	}
	ft.confidence = temperatureConfidence(window, first, ft.trends.TempPerHour)
	return ft
}

// pm25Trend fits PM2.5 between the first and last readings that carry
// air-quality data. Windows with fewer than two such readings yield a
// zero trend rather than an error.
func pm25Trend(window []model.Reading) float64 {
	var (
		firstVal, lastVal float64
		firstTS, lastTS   time.Time
		count             int
	)
	for _, r := range window {
		if r.AirQuality == nil {
			continue
		}
		if count == 0 {
			firstVal, firstTS = r.AirQuality.PM25, r.Timestamp
		}
		lastVal, lastTS = r.AirQuality.PM25, r.Timestamp
		count++
	}
	if count < 2 {
		return 0
	}
	span := lastTS.Sub(firstTS).Hours()
	if span <= 0 {
		return 0
	}
	return (lastVal - firstVal) / span
}

// temperatureConfidence grades the endpoint line against the whole
// window: RMS of the residuals, normalized by the temperature range,
// clamped into [0.50, 0.95]. A perfectly linear or constant series
// scores the ceiling; erratic series bottom out at the floor.
func temperatureConfidence(window []model.Reading, first model.Reading, tempPerHour float64) float64 {
	minT, maxT := window[0].TempC, window[0].TempC
	var sumSq float64
	for _, r := range window {
		fitted := first.TempC + tempPerHour*r.Timestamp.Sub(first.Timestamp).Hours()
		resid := r.TempC - fitted
		sumSq += resid * resid
		if r.TempC < minT {
			minT = r.TempC
		}
		if r.TempC > maxT {
			maxT = r.TempC
		}
	}
	rms := math.Sqrt(sumSq / float64(len(window)))
	valueRange := maxT - minT
	if valueRange < rangeEpsilon || rms < rangeEpsilon {
		return confidenceCeiling
	}
	conf := 1 - rms/valueRange
	if conf < confidenceFloor {
		return confidenceFloor
	}
	if conf > confidenceCeiling {
		return confidenceCeiling
	}
	return conf
}

// extrapolate projects the fitted trends horizonHours past the last
// reading. Humidity is clamped to its physical range and PM2.5 is
// floored at zero.
func (p *Predictor) extrapolate(window []model.Reading, fit windowFit, horizonHours int, confidence float64) Prediction {
	last := window[len(window)-1]
	h := float64(horizonHours)

	humidity := last.Humidity + fit.trends.HumidityPerHour*h
	if humidity < 0 {
		humidity = 0
	}
	if humidity > humidityMax {
		humidity = humidityMax
	}

	var lastPM25 float64
	if last.AirQuality != nil {
		lastPM25 = last.AirQuality.PM25
	}
	pm25 := lastPM25 + fit.trends.PM25PerHour*h
	if pm25 < 0 {
		pm25 = 0
	}

	return Prediction{
		LocationName:      last.LocationName,
		PredictionFor:     last.Timestamp.Add(time.Duration(horizonHours) * minutesPerHour * time.Minute),
		HorizonHours:      horizonHours,
		PredictedTempC:    last.TempC + fit.trends.TempPerHour*h,
		PredictedHumidity: humidity,
		PredictedPM25:     pm25,
		Confidence:        confidence,
		DataPointsUsed:    len(window),
		Trends:            fit.trends,
	}
}
