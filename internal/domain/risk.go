package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	// BurnAreaScale converts the model's native output unit to an area unit.
	BurnAreaScale = 100.0

	// MarginOfError expands the danger radius by 20% before classification.
	MarginOfError = 1.2

	// displaySigFigs is the number of significant figures shown for a radius.
	displaySigFigs = 3
)

// ErrInvalidInput is returned when a prediction, distance, or coordinate is
// negative, non-finite, or out of range. Callers test for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Classification is the outcome of a radius check.
type Classification string

const (
	WithinRadius Classification = "within_radius"
	Safe         Classification = "safe"
)

// RiskVerdict is the result of evaluating a prediction against the distance to
// the nearest fire.
type RiskVerdict struct {
	Classification Classification `json:"classification"`
	DangerRadius   float64        `json:"danger_radius_km"`
	MaxRadius      float64        `json:"max_radius_km"`
}

// Within reports whether the point lies inside the high-risk radius.
func (v RiskVerdict) Within() bool {
	return v.Classification == WithinRadius
}

// Message renders the verdict as the user-facing sentence.
func (v RiskVerdict) Message() string {
	if v.Within() {
		return fmt.Sprintf("You are within the high-risk radius of %s km.", FormatRadius(v.DangerRadius))
	}
	return "You are safe from the nearest fire."
}

// DangerRadius treats the scaled prediction as a circle's area and returns the
// matching radius: sqrt(predicted*100/π).
func DangerRadius(predicted float64) (float64, error) {
	if err := checkNonNegative("predicted value", predicted); err != nil {
		return 0, err
	}
	scaled := predicted * BurnAreaScale
	if math.IsInf(scaled, 0) {
		return 0, fmt.Errorf("%w: predicted value %v overflows the burn area", ErrInvalidInput, predicted)
	}
	return math.Sqrt(scaled / math.Pi), nil
}

// Evaluate classifies a point at the given distance from the nearest fire.
// The comparison against the margin-expanded radius is inclusive.
func Evaluate(predicted, distance float64) (RiskVerdict, error) {
	dangerRadius, err := DangerRadius(predicted)
	if err != nil {
		return RiskVerdict{}, err
	}
	if err := checkNonNegative("distance", distance); err != nil {
		return RiskVerdict{}, err
	}

	maxRadius := dangerRadius * MarginOfError
	verdict := RiskVerdict{
		Classification: Safe,
		DangerRadius:   dangerRadius,
		MaxRadius:      maxRadius,
	}
	if distance <= maxRadius {
		verdict.Classification = WithinRadius
	}
	return verdict, nil
}

// SafeVerdict builds the verdict used when no fire is known near the point.
// The prediction is still validated so bad model output is never hidden.
func SafeVerdict(predicted float64) (RiskVerdict, error) {
	dangerRadius, err := DangerRadius(predicted)
	if err != nil {
		return RiskVerdict{}, err
	}
	return RiskVerdict{
		Classification: Safe,
		DangerRadius:   dangerRadius,
		MaxRadius:      dangerRadius * MarginOfError,
	}, nil
}

// FormatRadius rounds r to three significant figures and keeps trailing zeros,
// e.g. 9.9999 -> "10.0", 0.5 -> "0.500".
func FormatRadius(r float64) string {
	if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(r, 'g', displaySigFigs, 64), 64)
	if err != nil {
		rounded = r
	}
	decimals := displaySigFigs - 1 - int(math.Floor(math.Log10(math.Abs(rounded))))
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(rounded, 'f', decimals, 64)
}

func checkNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidInput, name, v)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidInput, name, v)
	}
	return nil
}
