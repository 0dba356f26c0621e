// Package risk computes a bounded multi-factor risk score from a
// single environmental reading. Scoring is pure and deterministic:
// the same reading always yields the same assessment, and no state is
// retained between calls.
package risk

import (
	"fmt"
	"sort"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// Score bounds and level thresholds.
const (
	maxScore          = 100
	lowLevelCeiling   = 30
	moderateCeiling   = 60
	epaPointsPerStep  = 10
	epaNeutralIndex   = 3
	epaPointsCap      = 30
	tempExtremeHighC  = 35.0
	tempModerateHighC = 30.0
	tempExtremeLowC   = -10.0
	tempModerateLowC  = -5.0
	humidityDryPct    = 20.0
	humidityWetPct    = 80.0
	windSevereKPH     = 50.0
	windModerateKPH   = 35.0
	uvExtreme         = 10.0
	uvHigh            = 8.0
)

// Level buckets a score into a coarse label.
type Level string

// Risk levels, derived from the score alone.
const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Factor is one triggered contribution to the overall score.
type Factor struct {
	Name          string `json:"name"`
	Value         string `json:"value"`
	SeverityLabel string `json:"severity_label"`
	Points        int    `json:"points"`
	WeightColor   string `json:"weight_color"`
}

// Assessment is the derived risk view of one reading. It is ephemeral
// and recomputed per query, never stored.
type Assessment struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Factors []Factor `json:"factors"`
}

// factorFn evaluates one independent factor against a reading.
// Returns false when the factor is not triggered.
type factorFn func(r model.Reading) (Factor, bool)

// factorTable lists every factor in evaluation order. Each entry is
// evaluated independently; triggered factors are later resorted by
// points descending for presentation.
var factorTable = []factorFn{ //nolint:gochecknoglobals // fixed rule table
	temperatureFactor,
	humidityFactor,
	windFactor,
	airQualityFactor,
	uvFactor,
}

// Score assesses one reading against the factor table.
// The result is bounded: 0 <= Score <= 100, and adding severity to any
// single input never lowers the total.
func Score(r model.Reading) Assessment {
	var (
		total   int
		factors []Factor
	)
	for _, fn := range factorTable {
		if f, ok := fn(r); ok {
			factors = append(factors, f)
			total += f.Points
		}
	}
	if total > maxScore {
		total = maxScore
	}

	// Highest contribution first; ties keep table order.
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Points > factors[j].Points
	})

	return Assessment{
		Score:   total,
		Level:   levelFor(total),
		Factors: factors,
	}
}

func levelFor(score int) Level {
	switch {
	case score <= lowLevelCeiling:
		return LevelLow
	case score <= moderateCeiling:
		return LevelModerate
	default:
		return LevelHigh
	}
}

func temperatureFactor(r model.Reading) (Factor, bool) {
	value := fmt.Sprintf("%.1f°C", r.TempC)
	switch {
	case r.TempC > tempExtremeHighC:
		return Factor{Name: "Temperature", Value: value, SeverityLabel: "Extreme Heat", Points: 20, WeightColor: "danger"}, true
	case r.TempC < tempExtremeLowC:
		return Factor{Name: "Temperature", Value: value, SeverityLabel: "Extreme Cold", Points: 20, WeightColor: "danger"}, true
	case r.TempC > tempModerateHighC:
		return Factor{Name: "Temperature", Value: value, SeverityLabel: "Heat Stress", Points: 10, WeightColor: "warning"}, true
	case r.TempC < tempModerateLowC:
		return Factor{Name: "Temperature", Value: value, SeverityLabel: "Cold Stress", Points: 10, WeightColor: "warning"}, true
	}
	return Factor{}, false
}

func humidityFactor(r model.Reading) (Factor, bool) {
	value := fmt.Sprintf("%.0f%%", r.Humidity)
	switch {
	case r.Humidity < humidityDryPct:
		return Factor{Name: "Humidity", Value: value, SeverityLabel: "Very Dry", Points: 15, WeightColor: "warning"}, true
	case r.Humidity > humidityWetPct:
		return Factor{Name: "Humidity", Value: value, SeverityLabel: "Oppressive", Points: 15, WeightColor: "warning"}, true
	}
	return Factor{}, false
}

func windFactor(r model.Reading) (Factor, bool) {
	value := fmt.Sprintf("%.0f km/h", r.WindKPH)
	switch {
	case r.WindKPH > windSevereKPH:
		return Factor{Name: "Wind Speed", Value: value, SeverityLabel: "Gale Force", Points: 15, WeightColor: "danger"}, true
	case r.WindKPH > windModerateKPH:
		return Factor{Name: "Wind Speed", Value: value, SeverityLabel: "Strong Wind", Points: 8, WeightColor: "warning"}, true
	}
	return Factor{}, false
}

// airQualityFactor scores the EPA index band: 10 points per step above
// index 3, capped at 30. Readings without air-quality data skip the
// factor entirely rather than scoring zero-value pollutants.
func airQualityFactor(r model.Reading) (Factor, bool) {
	aq := r.AirQuality
	if aq == nil || aq.EPAIndex <= epaNeutralIndex {
		return Factor{}, false
	}
	points := (aq.EPAIndex - epaNeutralIndex) * epaPointsPerStep
	if points > epaPointsCap {
		points = epaPointsCap
	}
	color := "warning"
	label := "Unhealthy"
	if aq.EPAIndex >= 5 {
		color = "danger"
		label = "Very Unhealthy"
	}
	return Factor{
		Name:          "Air Quality",
		Value:         fmt.Sprintf("EPA index %d", aq.EPAIndex),
		SeverityLabel: label,
		Points:        points,
		WeightColor:   color,
	}, true
}

func uvFactor(r model.Reading) (Factor, bool) {
	value := fmt.Sprintf("%.0f", r.UVIndex)
	switch {
	case r.UVIndex > uvExtreme:
		return Factor{Name: "UV Index", Value: value, SeverityLabel: "Extreme", Points: 10, WeightColor: "danger"}, true
	case r.UVIndex > uvHigh:
		return Factor{Name: "UV Index", Value: value, SeverityLabel: "Very High", Points: 5, WeightColor: "warning"}, true
	}
	return Factor{}, false
}
