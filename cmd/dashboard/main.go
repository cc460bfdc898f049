package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/wildfire-risk-service/internal/adapter/cache"
	"github.com/couchcryptid/wildfire-risk-service/internal/adapter/firms"
	httpadapter "github.com/couchcryptid/wildfire-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wildfire-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/wildfire-risk-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/wildfire-risk-service/internal/assessment"
	"github.com/couchcryptid/wildfire-risk-service/internal/config"
	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/model"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	predictor, err := loadModel(cfg.ModelPath)
	if err != nil {
		logger.Error("failed to load model", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}
	logger.Info("model loaded", "version", predictor.Version())

	// Lookup cache (CACHE_BACKEND=memory|redis).
	var store cache.Store
	var redisClient *redis.Client
	switch cfg.CacheBackend {
	case config.CacheRedis:
		redisClient, err = connectRedis(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		store = cache.NewRedis(redisClient, "wildfire-risk:")
	default:
		store = cache.NewMemory(cfg.CacheSize, nil)
	}
	logger.Info("lookup cache configured", "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL)

	weather := cache.NewWeather(
		openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger),
		store, cfg.CacheTTL, metrics, logger)

	// Active-fire lookups (feature-flagged via FIRMS_ENABLED / FIRMS_MAP_KEY).
	var fires domain.FireProvider
	if cfg.FiresEnabled {
		client := firms.NewClient(firms.Options{
			BaseURL:       cfg.FIRMSBaseURL,
			MapKey:        cfg.FIRMSMapKey,
			Source:        cfg.FIRMSSource,
			DayRange:      cfg.FIRMSDayRange,
			SearchDegrees: cfg.FireSearchDegrees,
			Timeout:       cfg.FIRMSTimeout,
		}, metrics, logger)
		fires = cache.NewFires(client, store, cfg.CacheTTL, metrics, logger)
		logger.Info("firms fire lookups enabled", "source", cfg.FIRMSSource, "day_range", cfg.FIRMSDayRange)
	} else {
		logger.Info("firms fire lookups disabled")
	}

	var publisher assessment.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("assessment publishing enabled", "topic", cfg.KafkaAssessmentTopic, "brokers", cfg.KafkaBrokers)
	}

	assessor := assessment.New(weather, fires, predictor, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, assessor, assessor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadModel(path string) (*model.Linear, error) {
	if path == "" {
		return model.New(model.Default())
	}
	return model.LoadFile(path)
}

func connectRedis(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
