package domain

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Coordinate is a WGS-84 latitude/longitude pair, usually a map click.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate returns ErrInvalidInput when either component is non-finite or out
// of range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude must be within [-90, 90], got %v", ErrInvalidInput, c.Lat)
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude must be within [-180, 180], got %v", ErrInvalidInput, c.Lon)
	}
	return nil
}

// Weather holds the current conditions at a coordinate.
type Weather struct {
	Temperature      float64   `json:"temperature_c"`
	RelativeHumidity float64   `json:"relative_humidity_pct"`
	WindSpeed        float64   `json:"wind_speed_kmh"`
	Precipitation    float64   `json:"precipitation_mm"`
	ObservedAt       time.Time `json:"observed_at"`
}

// PredictionInput is the single feature row passed to the model.
type PredictionInput struct {
	Month            int     `json:"month"`
	Temperature      float64 `json:"temp"`
	RelativeHumidity float64 `json:"RH"`
	WindSpeed        float64 `json:"wind"`
	Precipitation    float64 `json:"rain"`
}

// NewPredictionInput builds a feature row from weather data, taking the month
// from the package clock.
func NewPredictionInput(w Weather) PredictionInput {
	return PredictionInput{
		Month:            int(clock.Now().Month()),
		Temperature:      w.Temperature,
		RelativeHumidity: w.RelativeHumidity,
		WindSpeed:        w.WindSpeed,
		Precipitation:    w.Precipitation,
	}
}

// Features returns the row in model column order: month, temp, RH, wind, rain.
func (p PredictionInput) Features() []float64 {
	return []float64{float64(p.Month), p.Temperature, p.RelativeHumidity, p.WindSpeed, p.Precipitation}
}

// FireLocation is a single active-fire detection.
type FireLocation struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Brightness float64   `json:"brightness,omitempty"`
	Confidence string    `json:"confidence,omitempty"`
	AcquiredAt time.Time `json:"acquired_at,omitempty"`
}

// Coordinate returns the detection's position.
func (f FireLocation) Coordinate() Coordinate {
	return Coordinate{Lat: f.Lat, Lon: f.Lon}
}

// Assessment is the full result of one risk request.
type Assessment struct {
	ID          string          `json:"id"`
	Coordinate  Coordinate      `json:"coordinate"`
	Weather     Weather         `json:"weather"`
	Input       PredictionInput `json:"input"`
	Predicted   float64         `json:"predicted_burn_area"`
	NearestFire *FireLocation   `json:"nearest_fire,omitempty"`
	DistanceKm  *float64        `json:"distance_km,omitempty"`
	Verdict     RiskVerdict     `json:"verdict"`
	Message     string          `json:"message"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
}

// WeatherProvider looks up current weather for a coordinate.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, c Coordinate) (Weather, error)
}

// FireProvider lists active fires near a coordinate.
type FireProvider interface {
	NearbyFires(ctx context.Context, c Coordinate) ([]FireLocation, error)
}

// Predictor runs the burn-area model on a feature row.
type Predictor interface {
	Predict(ctx context.Context, in PredictionInput) (float64, error)
}
