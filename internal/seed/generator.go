package seed

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"

	"github.com/envsentry/envsentry/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	patternDivisor     = 4
)

// Constants for synthetic weather generation.
const (
	baseTempC        = 18.0
	dailyTempSwingC  = 8.0
	baseHumidity     = 55.0
	humiditySwing    = 25.0
	baseWindKPH      = 12.0
	windSwingKPH     = 18.0
	basePressureMB   = 1013.0
	pressureSwingMB  = 10.0
	baseVisKM        = 10.0
	baseUV           = 3.0
	uvSwing          = 7.0
	basePM25         = 15.0
	pm25Swing        = 40.0
	noiseAmplitude   = 1.5
	hoursPerDay      = 24.0
	maxHumidity      = 100.0
	heatwaveOffsetC  = 14.0
	smogPM25OffsetUG = 45.0
	smogWindKPH      = 4.0
)

// Synthetic pattern cases. Each location is assigned one pattern so
// the analytics endpoints have interesting data to work with.
const (
	caseMildDay  = 0
	caseHeatwave = 1
	caseSmog     = 2
	caseStorm    = 3
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomPattern picks one of the synthetic weather patterns.
func getRandomPattern() int {
	n, _ := rand.Int(rand.Reader, big.NewInt(patternDivisor))
	return int(n.Int64())
}

// generateReadings builds a synthetic history for every configured
// location: one reading every StepMin minutes covering the last Hours
// hours, ending at the current time.
func generateReadings(ctx context.Context, config *Config, stats *Stats) ([]Reading, error) {
	logger.Get().Info(ctx, "generating readings",
		logger.Int("locations", len(config.Locations)),
		logger.Int("hours", config.Hours),
		logger.Int("stepMinutes", config.StepMin))

	step := time.Duration(config.StepMin) * time.Minute
	end := time.Now().UTC().Truncate(time.Minute)
	start := end.Add(-time.Duration(config.Hours) * time.Hour)

	var readings []Reading
	for _, location := range config.Locations {
		pattern := getRandomPattern()
		for ts := start; !ts.After(end); ts = ts.Add(step) {
			readings = append(readings, buildReading(location, ts, pattern))
		}
	}

	stats.ReadingsGenerated = len(readings)
	logger.Get().Info(ctx, "readings generated", logger.Int("count", len(readings)))
	return readings, nil
}

// buildReading produces one synthetic reading. The diurnal base curve
// is a sine over the hour of day; patterns shift it into scenarios the
// risk and correlation rules react to.
func buildReading(location string, ts time.Time, pattern int) Reading {
	hourOfDay := float64(ts.Hour()) + float64(ts.Minute())/60.0
	phase := math.Sin((hourOfDay - 9) / hoursPerDay * 2 * math.Pi)
	noise := func() float64 { return (getRandomFloat() - 0.5) * noiseAmplitude }

	temp := baseTempC + dailyTempSwingC*phase + noise()
	humidity := baseHumidity - humiditySwing*phase + noise()
	wind := baseWindKPH + windSwingKPH*getRandomFloat()
	pm25 := basePM25 + pm25Swing*getRandomFloat()
	uv := math.Max(0, baseUV+uvSwing*phase)

	switch pattern {
	case caseHeatwave:
		temp += heatwaveOffsetC
		humidity = math.Min(maxHumidity, humidity+20)
		uv += 3
	case caseSmog:
		pm25 += smogPM25OffsetUG
		wind = smogWindKPH * getRandomFloat()
	case caseStorm:
		wind += 50
		humidity = math.Min(maxHumidity, humidity+30)
	}

	humidity = math.Min(maxHumidity, math.Max(0, humidity))

	return Reading{
		LocationName: location,
		Lat:          52.52,
		Lon:          13.405,
		Timestamp:    ts.Format(time.RFC3339),
		TempC:        round1(temp),
		Humidity:     round1(humidity),
		WindKPH:      round1(wind),
		PressureMB:   round1(basePressureMB + pressureSwingMB*(getRandomFloat()-0.5)),
		VisKM:        baseVisKM,
		UVIndex:      round1(uv),
		AirQuality: &AirQuality{
			PM25:     round1(pm25),
			PM10:     round1(pm25 * 1.6),
			O3:       round1(40 + 30*getRandomFloat()),
			NO2:      round1(10 + 20*getRandomFloat()),
			SO2:      round1(2 + 5*getRandomFloat()),
			CO:       round1(200 + 100*getRandomFloat()),
			EPAIndex: epaIndexForPM25(pm25),
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// epaIndexForPM25 maps a PM2.5 concentration to the US EPA index scale.
func epaIndexForPM25(pm25 float64) int {
	switch {
	case pm25 <= 12.0:
		return 1
	case pm25 <= 35.4:
		return 2
	case pm25 <= 55.4:
		return 3
	case pm25 <= 150.4:
		return 4
	case pm25 <= 250.4:
		return 5
	default:
		return 6
	}
}
