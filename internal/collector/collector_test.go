package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/envsentry/envsentry/internal/domain/model"
	"github.com/envsentry/envsentry/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const currentJSON = `{
  "location": {"name": "London", "lat": 51.52, "lon": -0.11, "localtime_epoch": 1756200000},
  "current": {
    "last_updated_epoch": 1756199700,
    "temp_c": 22.0,
    "humidity": 65,
    "wind_kph": 11.2,
    "pressure_mb": 1012.0,
    "vis_km": 10.0,
    "uv": 4.0,
    "air_quality": {
      "pm2_5": 12.4, "pm10": 18.0, "o3": 52.0, "no2": 21.0,
      "so2": 4.0, "co": 230.0, "us-epa-index": 2
    }
  }
}`

type fakeIngestor struct {
	mu       sync.Mutex
	readings []model.Reading
	err      error
}

func (f *fakeIngestor) Ingest(_ context.Context, r model.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.readings = append(f.readings, r)
	return nil
}

func (f *fakeIngestor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.readings)
}

func TestWeatherAPIProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.Query().Get("key"))
		}
		if r.URL.Query().Get("aqi") != "yes" {
			t.Error("expected aqi=yes in query")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(currentJSON))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "test-key", WithBaseURL(srv.URL))

	r, err := p.Fetch(context.Background(), "London")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if r.LocationName != "London" {
		t.Errorf("expected London, got %q", r.LocationName)
	}
	if r.TempC != 22.0 {
		t.Errorf("expected temp 22.0, got %v", r.TempC)
	}
	if !r.Timestamp.Equal(time.Unix(1756199700, 0).UTC()) {
		t.Errorf("expected last_updated timestamp, got %v", r.Timestamp)
	}
	if r.AirQuality == nil {
		t.Fatal("expected air quality block")
	}
	if r.AirQuality.PM25 != 12.4 || r.AirQuality.EPAIndex != 2 {
		t.Errorf("unexpected air quality: %+v", r.AirQuality)
	}
}

func TestWeatherAPIProviderRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(currentJSON))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "test-key",
		WithBaseURL(srv.URL),
		WithBackoff(BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}),
	)

	if _, err := p.Fetch(context.Background(), "London"); err != nil {
		t.Fatalf("expected fetch to succeed after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 upstream calls, got %d", calls)
	}
}

func TestWeatherAPIProviderNoKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "")
	if _, err := p.Fetch(context.Background(), "London"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestCollectorRunOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(currentJSON))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "test-key", WithBaseURL(srv.URL))
	ingestor := &fakeIngestor{}

	c := New(p, ingestor, []string{"London", "Tokyo"}, WithInterval(time.Minute))
	c.RunOnce(context.Background())

	if got := ingestor.count(); got != 2 {
		t.Errorf("expected 2 ingested readings, got %d", got)
	}
}

func TestCollectorStartWithoutLocations(t *testing.T) {
	c := New(nil, &fakeIngestor{}, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Errorf("expected idle collector without locations, got %v", err)
	}
	c.Stop()
}
