// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is the shared struct validator for ingest payloads.
var validate = validator.New() //nolint:gochecknoglobals // validator instances are designed to be shared

// AirQuality carries pollutant concentrations in µg/m³ plus the
// EPA index band (1..6). The whole block is optional on a Reading:
// sources without air-quality sensors simply omit it.
type AirQuality struct {
	PM25     float64 `json:"pm2_5" validate:"gte=0"`
	PM10     float64 `json:"pm10" validate:"gte=0"`
	O3       float64 `json:"o3" validate:"gte=0"`
	NO2      float64 `json:"no2" validate:"gte=0"`
	SO2      float64 `json:"so2" validate:"gte=0"`
	CO       float64 `json:"co" validate:"gte=0"`
	EPAIndex int     `json:"epa_index" validate:"gte=0,lte=6"`
}

// Reading is one measurement snapshot for a location at an instant.
// Immutable once stored; exactly one Reading may exist per
// (LocationName, Timestamp).
type Reading struct {
	LocationName string    `json:"location_name" validate:"required"`
	Lat          float64   `json:"lat" validate:"gte=-90,lte=90"`
	Lon          float64   `json:"lon" validate:"gte=-180,lte=180"`
	Timestamp    time.Time `json:"timestamp" validate:"required"`

	TempC      float64 `json:"temp_c"`
	Humidity   float64 `json:"humidity" validate:"gte=0,lte=100"`
	WindKPH    float64 `json:"wind_kph" validate:"gte=0"`
	PressureMB float64 `json:"pressure_mb" validate:"gte=0"`
	VisKM      float64 `json:"vis_km" validate:"gte=0"`
	UVIndex    float64 `json:"uv_index" validate:"gte=0"`

	AirQuality *AirQuality `json:"air_quality,omitempty"`
}

// Clone returns a copy of the reading whose AirQuality block, when
// present, is independently allocated. Mutating the clone never
// touches the original.
func (r Reading) Clone() Reading {
	if r.AirQuality != nil {
		aq := *r.AirQuality
		r.AirQuality = &aq
	}
	return r
}

// Key returns the canonical identity of a reading: the location plus
// the instant it was taken. Used for idempotency checks on ingest.
func (r Reading) Key() string {
	return strings.ToLower(strings.TrimSpace(r.LocationName)) + "@" + r.Timestamp.UTC().Format(time.RFC3339)
}

// Validate checks structural constraints and that every numeric field
// is finite. A Reading that fails here must never be partially stored.
func (r Reading) Validate() error {
	fields := map[string]float64{
		"lat": r.Lat, "lon": r.Lon,
		"temp_c": r.TempC, "humidity": r.Humidity, "wind_kph": r.WindKPH,
		"pressure_mb": r.PressureMB, "vis_km": r.VisKM, "uv_index": r.UVIndex,
	}
	if aq := r.AirQuality; aq != nil {
		fields["pm2_5"] = aq.PM25
		fields["pm10"] = aq.PM10
		fields["o3"] = aq.O3
		fields["no2"] = aq.NO2
		fields["so2"] = aq.SO2
		fields["co"] = aq.CO
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidReading, name)
		}
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}
	return nil
}
