package seed

import "time"

// Config holds configuration for the seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Locations  []string      // Locations to generate readings for
	Hours      int           // Length of the synthetic history in hours
	StepMin    int           // Minutes between consecutive readings
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated readings
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Reading is the submission payload for POST /readings.
type Reading struct {
	LocationName string      `json:"location_name"`
	Lat          float64     `json:"lat"`
	Lon          float64     `json:"lon"`
	Timestamp    string      `json:"timestamp"`
	TempC        float64     `json:"temp_c"`
	Humidity     float64     `json:"humidity"`
	WindKPH      float64     `json:"wind_kph"`
	PressureMB   float64     `json:"pressure_mb"`
	VisKM        float64     `json:"vis_km"`
	UVIndex      float64     `json:"uv_index"`
	AirQuality   *AirQuality `json:"air_quality,omitempty"`
}

// AirQuality is the optional pollutant block of a submission.
type AirQuality struct {
	PM25     float64 `json:"pm2_5"`
	PM10     float64 `json:"pm10"`
	O3       float64 `json:"o3"`
	NO2      float64 `json:"no2"`
	SO2      float64 `json:"so2"`
	CO       float64 `json:"co"`
	EPAIndex int     `json:"epa_index"`
}

// AckResponse is the response from reading submission.
type AckResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// Assessment mirrors the risk endpoint response.
type Assessment struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

// Prediction mirrors the predict endpoint response.
type Prediction struct {
	LocationName   string  `json:"location_name"`
	HorizonHours   int     `json:"horizon_hours"`
	PredictedTempC float64 `json:"predicted_temp_c"`
	Confidence     float64 `json:"confidence_score"`
	DataPointsUsed int     `json:"data_points_used"`
}

// Stats holds run statistics.
type Stats struct {
	ReadingsGenerated    int
	ReadingsSubmitted    int
	ReadingsSuccessful   int
	ReadingsFailed       int
	AssessmentsRetrieved int
	PredictionsRetrieved int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
