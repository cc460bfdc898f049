// Package model loads the pre-trained burn-area regression model.
//
// The model is trained offline and shipped as a JSON artifact holding the
// intercept and one coefficient per feature. Predictions are the dot product
// of the feature row with the coefficients, plus the intercept, optionally
// mapped back through expm1 when the model was fit on log1p(area).
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"gonum.org/v1/gonum/mat"
)

// Target transforms.
const (
	TransformNone  = "none"
	TransformLog1p = "log1p"
)

// FeatureOrder is the column order every artifact must declare.
var FeatureOrder = []string{"month", "temp", "RH", "wind", "rain"}

// Artifact is the serialized form of a trained linear model.
type Artifact struct {
	Version         string    `json:"version"`
	Features        []string  `json:"features"`
	Intercept       float64   `json:"intercept"`
	Coefficients    []float64 `json:"coefficients"`
	TargetTransform string    `json:"target_transform"`
}

// Linear implements domain.Predictor with a fixed-weight linear model.
type Linear struct {
	version   string
	weights   *mat.VecDense
	intercept float64
	transform string
}

// Default returns the built-in artifact, a log1p(area) fit on the UCI Forest
// Fires weather columns.
func Default() Artifact {
	return Artifact{
		Version:         "forestfires-log1p-v1",
		Features:        slices.Clone(FeatureOrder),
		Intercept:       0.35,
		Coefficients:    []float64{0.06, 0.03, -0.006, 0.04, -0.1},
		TargetTransform: TransformLog1p,
	}
}

// LoadFile reads and validates an artifact from disk.
func LoadFile(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return New(a)
}

// New validates an artifact and builds a predictor from it.
func New(a Artifact) (*Linear, error) {
	if !slices.Equal(a.Features, FeatureOrder) {
		return nil, fmt.Errorf("model features %v do not match expected %v", a.Features, FeatureOrder)
	}
	if len(a.Coefficients) != len(FeatureOrder) {
		return nil, fmt.Errorf("model has %d coefficients, want %d", len(a.Coefficients), len(FeatureOrder))
	}
	for i, c := range append([]float64{a.Intercept}, a.Coefficients...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("model parameter %d is not finite", i)
		}
	}

	transform := a.TargetTransform
	if transform == "" {
		transform = TransformNone
	}
	if transform != TransformNone && transform != TransformLog1p {
		return nil, fmt.Errorf("unknown target_transform %q", a.TargetTransform)
	}

	return &Linear{
		version:   a.Version,
		weights:   mat.NewVecDense(len(a.Coefficients), slices.Clone(a.Coefficients)),
		intercept: a.Intercept,
		transform: transform,
	}, nil
}

// Version returns the artifact version string.
func (l *Linear) Version() string {
	return l.version
}

// Predict returns the predicted burn area. The result is not clamped, so a
// negative value reaches the evaluator and is rejected there.
func (l *Linear) Predict(ctx context.Context, in domain.PredictionInput) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if in.Month < 1 || in.Month > 12 {
		return 0, fmt.Errorf("%w: month must be within [1, 12], got %d", domain.ErrInvalidInput, in.Month)
	}

	features := in.Features()
	for _, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: feature row %v is not finite", domain.ErrInvalidInput, features)
		}
	}

	x := mat.NewVecDense(len(features), features)
	y := mat.Dot(l.weights, x) + l.intercept

	if l.transform == TransformLog1p {
		y = math.Expm1(y)
	}
	if math.IsInf(y, 0) {
		return 0, errors.New("model output overflowed")
	}
	return y, nil
}
