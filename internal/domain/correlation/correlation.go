// Package correlation detects cross-factor interaction patterns in a
// single environmental reading. Detection is rule-based: a fixed,
// ordered table of predicate/template pairs is evaluated against the
// current conditions, and every matching rule emits one finding.
//
// The table order is a contract. Findings are reported in declaration
// order, never deduplicated and never re-sorted by severity, so the
// same reading always produces the same output.
package correlation

import (
	"fmt"

	"github.com/envsentry/envsentry/internal/domain/model"
)

// Rule trigger thresholds.
const (
	dispersionPM25     = 50.0
	dispersionWindKPH  = 10.0
	ozoneTempC         = 30.0
	ozonePM25          = 35.0
	heatStressHumidity = 75.0
	heatStressTempC    = 32.0
	sunProtectionUV    = 7.0
	lowPressureMB      = 1000.0
)

// Severity tags a finding's urgency.
type Severity string

// Severity tags in increasing urgency.
const (
	SeverityInfo    Severity = "info"
	SeverityWatch   Severity = "watch"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Finding is one triggered interaction between simultaneous factors.
type Finding struct {
	Category       string   `json:"category"`
	Severity       Severity `json:"severity_tag"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// rule pairs a predicate with a finding template. Adding a rule means
// appending to the table; control flow never changes.
type rule struct {
	predicate func(r model.Reading) bool
	build     func(r model.Reading) Finding
}

// ruleTable is evaluated top to bottom on every Detect call.
var ruleTable = []rule{ //nolint:gochecknoglobals // fixed rule table
	{
		// High PM2.5 trapped by stagnant air.
		predicate: func(r model.Reading) bool {
			return r.AirQuality != nil && r.AirQuality.PM25 > dispersionPM25 && r.WindKPH < dispersionWindKPH
		},
		build: func(r model.Reading) Finding {
			return Finding{
				Category: "poor air dispersion",
				Severity: SeverityWarning,
				Message: fmt.Sprintf("PM2.5 at %.1f µg/m³ with stagnant air (%.0f km/h); pollutants are accumulating near ground level",
					r.AirQuality.PM25, r.WindKPH),
				Recommendation: "Limit outdoor exposure and keep windows closed until winds pick up.",
			}
		},
	},
	{
		// Heat plus fine particulates feeds photochemical ozone.
		predicate: func(r model.Reading) bool {
			return r.AirQuality != nil && r.TempC > ozoneTempC && r.AirQuality.PM25 > ozonePM25
		},
		build: func(r model.Reading) Finding {
			return Finding{
				Category: "ozone formation risk",
				Severity: SeverityWarning,
				Message: fmt.Sprintf("High temperature (%.1f°C) with elevated PM2.5 (%.1f µg/m³) favors ground-level ozone formation",
					r.TempC, r.AirQuality.PM25),
				Recommendation: "Avoid outdoor exercise during afternoon hours when ozone peaks.",
			}
		},
	},
	{
		// Humid heat defeats evaporative cooling.
		predicate: func(r model.Reading) bool {
			return r.Humidity > heatStressHumidity && r.TempC > heatStressTempC
		},
		build: func(r model.Reading) Finding {
			return Finding{
				Category: "heat stress risk",
				Severity: SeverityDanger,
				Message: fmt.Sprintf("Temperature %.1f°C with %.0f%% humidity impairs the body's cooling; heat illness risk is elevated",
					r.TempC, r.Humidity),
				Recommendation: "Stay hydrated, seek air conditioning, and avoid strenuous activity.",
			}
		},
	},
	{
		// UV advisory regardless of sky condition; cloud-cover data may
		// be unavailable from the source.
		predicate: func(r model.Reading) bool {
			return r.UVIndex > sunProtectionUV
		},
		build: func(r model.Reading) Finding {
			return Finding{
				Category: "sun protection needed",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("UV index %.0f; unprotected skin can burn quickly", r.UVIndex),
				Recommendation: "Apply SPF 30+ sunscreen and seek shade during midday hours.",
			}
		},
	},
	{
		// Falling pressure signals an approaching weather system.
		predicate: func(r model.Reading) bool {
			return r.PressureMB > 0 && r.PressureMB < lowPressureMB
		},
		build: func(r model.Reading) Finding {
			return Finding{
				Category: "weather change likely",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("Low atmospheric pressure (%.0f mb); a weather system is likely approaching", r.PressureMB),
			}
		},
	},
}

// Detect evaluates every rule against the reading and returns the
// findings of all matching rules in table order. A reading may trigger
// zero, one, or several findings; zero findings is a normal result,
// not an error.
func Detect(r model.Reading) []Finding {
	var findings []Finding
	for _, rl := range ruleTable {
		if rl.predicate(r) {
			findings = append(findings, rl.build(r))
		}
	}
	return findings
}
