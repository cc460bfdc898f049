package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/google/uuid"
)

// Publisher emits completed assessments to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, a domain.Assessment) error
}

// Stage names used for error metrics and wrapping.
const (
	StageInput    = "input"
	StageWeather  = "weather"
	StageModel    = "model"
	StageFires    = "fires"
	StageEvaluate = "evaluate"
)

// StageError records which step of an assessment failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	switch e.Stage {
	case StageWeather:
		return "weather lookup: " + e.Err.Error()
	case StageModel:
		return "model predict: " + e.Err.Error()
	case StageFires:
		return "fire lookup: " + e.Err.Error()
	default:
		return e.Err.Error()
	}
}

func (e *StageError) Unwrap() error { return e.Err }

// Assessor runs the weather → model → fires → evaluate sequence for one point.
// It holds no per-request state and is safe for concurrent use.
type Assessor struct {
	weather   domain.WeatherProvider
	fires     domain.FireProvider
	predictor domain.Predictor
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates an Assessor. fires and publisher may be nil: a nil fire provider
// treats every point as having no known fire nearby, and a nil publisher
// disables event publishing.
func New(weather domain.WeatherProvider, fires domain.FireProvider, predictor domain.Predictor, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Assessor {
	return &Assessor{
		weather:   weather,
		fires:     fires,
		predictor: predictor,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a model is available.
func (a *Assessor) CheckReadiness(_ context.Context) error {
	if a.predictor == nil {
		return errors.New("no model loaded")
	}
	return nil
}

// Assess evaluates the wildfire risk at coord.
func (a *Assessor) Assess(ctx context.Context, coord domain.Coordinate) (domain.Assessment, error) {
	start := time.Now()
	defer func() {
		a.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())
	}()

	if err := coord.Validate(); err != nil {
		return domain.Assessment{}, a.fail(StageInput, err, coord)
	}
	if a.predictor == nil {
		return domain.Assessment{}, a.fail(StageModel, errors.New("no model loaded"), coord)
	}

	weather, err := a.weather.CurrentWeather(ctx, coord)
	if err != nil {
		return domain.Assessment{}, a.fail(StageWeather, err, coord)
	}

	input := domain.NewPredictionInput(weather)
	predicted, err := a.predictor.Predict(ctx, input)
	if err != nil {
		return domain.Assessment{}, a.fail(StageModel, err, coord)
	}

	var fires []domain.FireLocation
	if a.fires != nil {
		fires, err = a.fires.NearbyFires(ctx, coord)
		if err != nil {
			return domain.Assessment{}, a.fail(StageFires, err, coord)
		}
	}

	result := domain.Assessment{
		ID:         uuid.NewString(),
		Coordinate: coord,
		Weather:    weather,
		Input:      input,
		Predicted:  predicted,
	}

	nearest, distance, found := domain.NearestFire(coord, fires)
	if found {
		result.NearestFire = &nearest
		result.DistanceKm = &distance
		result.Verdict, err = domain.Evaluate(predicted, distance)
	} else {
		result.Verdict, err = domain.SafeVerdict(predicted)
	}
	if err != nil {
		return domain.Assessment{}, a.fail(StageEvaluate, err, coord)
	}

	result.Message = result.Verdict.Message()
	result.EvaluatedAt = domain.Clock().Now().UTC()

	a.metrics.Assessments.WithLabelValues(string(result.Verdict.Classification)).Inc()
	a.logger.Info("risk assessed",
		"assessment_id", result.ID,
		"lat", coord.Lat,
		"lon", coord.Lon,
		"predicted", predicted,
		"fires", len(fires),
		"verdict", result.Verdict.Classification,
		"danger_radius_km", result.Verdict.DangerRadius,
	)

	a.publish(ctx, result)
	return result, nil
}

// publish is best-effort; a failed publish never fails the request.
func (a *Assessor) publish(ctx context.Context, result domain.Assessment) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, result); err != nil {
		a.metrics.PublishErrors.Inc()
		a.logger.Warn("publish assessment failed", "assessment_id", result.ID, "error", err)
		return
	}
	a.metrics.EventsPublished.Inc()
}

func (a *Assessor) fail(stage string, err error, coord domain.Coordinate) error {
	a.metrics.AssessmentErrors.WithLabelValues(stage).Inc()
	a.logger.Warn("assessment failed",
		"stage", stage,
		"lat", coord.Lat,
		"lon", coord.Lon,
		"error", err,
	)
	return fmt.Errorf("assess: %w", &StageError{Stage: stage, Err: err})
}
