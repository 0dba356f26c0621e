package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// WeatherAPIProvider fetches current conditions from WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// WeatherAPIOption applies a configuration option to the provider.
type WeatherAPIOption func(*WeatherAPIProvider)

// WithBaseURL overrides the upstream base URL (test servers, proxies).
func WithBaseURL(baseURL string) WeatherAPIOption {
	return func(p *WeatherAPIProvider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

// WithBackoff overrides the retry/backoff configuration.
func WithBackoff(cfg BackoffConfig) WeatherAPIOption {
	return func(p *WeatherAPIProvider) {
		p.httpCfg.Backoff = cfg
	}
}

// NewWeatherAPIProvider creates a provider with a circuit breaker and
// exponential backoff around the upstream API.
func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...WeatherAPIOption) *WeatherAPIProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherapi",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	p := &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name identifies the upstream provider.
func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// weatherAPIResponse is the subset of current.json the service consumes.
type weatherAPIResponse struct {
	Location struct {
		Name           string  `json:"name"`
		Lat            float64 `json:"lat"`
		Lon            float64 `json:"lon"`
		LocaltimeEpoch int64   `json:"localtime_epoch"`
	} `json:"location"`
	Current struct {
		LastUpdatedEpoch int64   `json:"last_updated_epoch"`
		TempC            float64 `json:"temp_c"`
		Humidity         float64 `json:"humidity"`
		WindKph          float64 `json:"wind_kph"`
		PressureMb       float64 `json:"pressure_mb"`
		VisKm            float64 `json:"vis_km"`
		UV               float64 `json:"uv"`
		AirQuality       *struct {
			PM25     float64 `json:"pm2_5"`
			PM10     float64 `json:"pm10"`
			O3       float64 `json:"o3"`
			NO2      float64 `json:"no2"`
			SO2      float64 `json:"so2"`
			CO       float64 `json:"co"`
			EPAIndex int     `json:"us-epa-index"`
		} `json:"air_quality"`
	} `json:"current"`
}

// Fetch requests current conditions with air quality for a location.
func (p *WeatherAPIProvider) Fetch(ctx context.Context, location string) (model.Reading, error) {
	if p.apiKey == "" {
		return model.Reading{}, ErrNoAPIKey
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", location)
		values.Set("aqi", "yes")

		u := fmt.Sprintf("%s/current.json?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return model.Reading{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Reading{}, fmt.Errorf("decode weatherapi response: %w", err)
	}

	epoch := payload.Current.LastUpdatedEpoch
	if epoch == 0 {
		epoch = payload.Location.LocaltimeEpoch
	}
	ts := time.Unix(epoch, 0).UTC()
	if epoch == 0 {
		ts = time.Now().UTC()
	}

	r := model.Reading{
		LocationName: payload.Location.Name,
		Lat:          payload.Location.Lat,
		Lon:          payload.Location.Lon,
		Timestamp:    ts,
		TempC:        payload.Current.TempC,
		Humidity:     payload.Current.Humidity,
		WindKPH:      payload.Current.WindKph,
		PressureMB:   payload.Current.PressureMb,
		VisKM:        payload.Current.VisKm,
		UVIndex:      payload.Current.UV,
	}
	if payload.Current.AirQuality != nil {
		r.AirQuality = &model.AirQuality{
			PM25:     payload.Current.AirQuality.PM25,
			PM10:     payload.Current.AirQuality.PM10,
			O3:       payload.Current.AirQuality.O3,
			NO2:      payload.Current.AirQuality.NO2,
			SO2:      payload.Current.AirQuality.SO2,
			CO:       payload.Current.AirQuality.CO,
			EPAIndex: payload.Current.AirQuality.EPAIndex,
		}
	}

	return r, nil
}

// doRequestWithResilience executes the HTTP request with retries,
// exponential backoff, and a circuit breaker.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, ErrNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, ErrBadBackoff
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests {
				_ = resp.Body.Close()
				return nil, ErrRateLimited
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				_ = resp.Body.Close()
				return nil, ErrServerError
			}
			if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
				_ = resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", ErrUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, errors.New("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}
