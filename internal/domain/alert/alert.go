// Package alert composes risk, correlation, and prediction outputs
// into ranked, human-actionable alerts. The composer is UI-agnostic:
// it carries a severity field the caller can map to urgent signaling,
// but never decides presentation itself.
package alert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/envsentry/envsentry/internal/domain/correlation"
	"github.com/envsentry/envsentry/internal/domain/risk"
	"github.com/envsentry/envsentry/internal/domain/trend"
)

// Composition thresholds.
const (
	riskAlertScore     = 70
	riskCriticalScore  = 85
	topFactorCount     = 3
	advisoryConfidence = 0.70
	advisoryTempRate   = 2.0  // °C per hour
	advisoryPM25Rate   = 10.0 // µg/m³ per hour
)

// Severity orders composed alerts.
type Severity string

// Alert severities, most urgent first in composed output.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Contributing component names recorded in Sources.
const (
	SourceRisk        = "risk"
	SourceCorrelation = "correlation"
	SourcePrediction  = "prediction"
)

// ContextualAlert is one composed, human-actionable alert.
type ContextualAlert struct {
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	What     string   `json:"what"`
	Cause    string   `json:"cause"`
	Action   string   `json:"action"`
	Sources  []string `json:"sources"`
}

// severityRank maps severities to sort order, most urgent first.
var severityRank = map[Severity]int{ //nolint:gochecknoglobals // fixed ordering table
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Compose merges the three analytic outputs into an ordered alert
// list. The prediction is optional; pass nil when no window was
// available. An empty result means "no significant findings" and must
// be rendered as such by callers, never as an error.
func Compose(assessment risk.Assessment, findings []correlation.Finding, prediction *trend.Prediction) []ContextualAlert {
	var alerts []ContextualAlert

	if a, ok := riskAlert(assessment); ok {
		alerts = append(alerts, a)
	}
	for _, f := range findings {
		alerts = append(alerts, findingAlert(f))
	}
	if prediction != nil {
		if a, ok := predictionAlert(*prediction); ok {
			alerts = append(alerts, a)
		}
	}

	// Most urgent first; stable so same-severity alerts keep the
	// risk -> correlation -> prediction contribution order.
	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Severity] < severityRank[alerts[j].Severity]
	})
	return alerts
}

// riskAlert summarizes the top factors when the overall score crosses
// the alerting threshold.
func riskAlert(a risk.Assessment) (ContextualAlert, bool) {
	if a.Score <= riskAlertScore {
		return ContextualAlert{}, false
	}

	severity := SeverityHigh
	if a.Score > riskCriticalScore {
		severity = SeverityCritical
	}

	top := a.Factors
	if len(top) > topFactorCount {
		top = top[:topFactorCount]
	}
	parts := make([]string, 0, len(top))
	for _, f := range top {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", f.Name, f.Value, f.SeverityLabel))
	}

	return ContextualAlert{
		Title:    fmt.Sprintf("Environmental risk score %d/100", a.Score),
		Severity: severity,
		What:     fmt.Sprintf("Combined environmental risk is %s.", a.Level),
		Cause:    "Dominant factors: " + strings.Join(parts, "; ") + ".",
		Action:   "Review the individual factors and limit exposure to the dominant hazards.",
		Sources:  []string{SourceRisk},
	}, true
}

// findingAlert maps a correlation finding to an alert. Warning and
// danger findings become high/critical alerts; info and watch findings
// are surfaced at low severity and must never trigger urgent signaling.
func findingAlert(f correlation.Finding) ContextualAlert {
	severity := SeverityLow
	switch f.Severity {
	case correlation.SeverityDanger:
		severity = SeverityCritical
	case correlation.SeverityWarning:
		severity = SeverityHigh
	case correlation.SeverityInfo, correlation.SeverityWatch:
		severity = SeverityLow
	}

	action := f.Recommendation
	if action == "" {
		action = "Monitor conditions; no immediate action required."
	}

	return ContextualAlert{
		Title:    strings.ToUpper(f.Category[:1]) + f.Category[1:],
		Severity: severity,
		What:     f.Message,
		Cause:    fmt.Sprintf("Cross-factor rule %q matched the current reading.", f.Category),
		Action:   action,
		Sources:  []string{SourceCorrelation},
	}
}

// predictionAlert turns a confident, steep trend into an advisory.
func predictionAlert(p trend.Prediction) (ContextualAlert, bool) {
	if p.Confidence < advisoryConfidence {
		return ContextualAlert{}, false
	}

	switch {
	case p.Trends.TempPerHour > advisoryTempRate:
		return trendAdvisory(p, fmt.Sprintf("Temperature rising %.1f°C/hour toward %.1f°C.", p.Trends.TempPerHour, p.PredictedTempC)), true
	case p.Trends.TempPerHour < -advisoryTempRate:
		return trendAdvisory(p, fmt.Sprintf("Temperature falling %.1f°C/hour toward %.1f°C.", -p.Trends.TempPerHour, p.PredictedTempC)), true
	case p.Trends.PM25PerHour > advisoryPM25Rate:
		return trendAdvisory(p, fmt.Sprintf("PM2.5 climbing %.1f µg/m³/hour toward %.1f µg/m³.", p.Trends.PM25PerHour, p.PredictedPM25)), true
	}
	return ContextualAlert{}, false
}

func trendAdvisory(p trend.Prediction, what string) ContextualAlert {
	return ContextualAlert{
		Title:    fmt.Sprintf("Conditions trending over the next %dh", p.HorizonHours),
		Severity: SeverityMedium,
		What:     what,
		Cause: fmt.Sprintf("Linear trend fitted over %d recent readings (confidence %.2f).",
			p.DataPointsUsed, p.Confidence),
		Action:  "Plan around the forecast change; recheck as new readings arrive.",
		Sources: []string{SourcePrediction},
	}
}
