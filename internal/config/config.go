package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Path to a model artifact. Empty selects the built-in model.
	ModelPath string

	WeatherBaseURL string
	WeatherTimeout time.Duration

	// NASA FIRMS active-fire configuration.
	FiresEnabled      bool
	FIRMSBaseURL      string
	FIRMSMapKey       string
	FIRMSSource       string
	FIRMSDayRange     int
	FireSearchDegrees float64
	FIRMSTimeout      time.Duration

	CacheBackend string
	CacheTTL     time.Duration
	CacheSize    int
	RedisURL     string

	KafkaEnabled         bool
	KafkaBrokers         []string
	KafkaAssessmentTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	firmsTimeout, err := parsePositiveDuration("FIRMS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	dayRange, err := parseIntInRange("FIRMS_DAY_RANGE", 1, 1, 10)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseIntInRange("CACHE_SIZE", 1000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}
	searchDegrees, err := parseSearchDegrees()
	if err != nil {
		return nil, err
	}

	mapKey := os.Getenv("FIRMS_MAP_KEY")
	firesEnabled := true
	if v := os.Getenv("FIRMS_ENABLED"); v != "" {
		firesEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ModelPath: os.Getenv("MODEL_PATH"),

		WeatherBaseURL: sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com"),
		WeatherTimeout: weatherTimeout,

		FiresEnabled:      firesEnabled,
		FIRMSBaseURL:      sharedcfg.EnvOrDefault("FIRMS_BASE_URL", "https://firms.modaps.eosdis.nasa.gov"),
		FIRMSMapKey:       mapKey,
		FIRMSSource:       sharedcfg.EnvOrDefault("FIRMS_SOURCE", "VIIRS_SNPP_NRT"),
		FIRMSDayRange:     dayRange,
		FireSearchDegrees: searchDegrees,
		FIRMSTimeout:      firmsTimeout,

		CacheBackend: sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheMemory),
		CacheTTL:     cacheTTL,
		CacheSize:    cacheSize,
		RedisURL:     sharedcfg.EnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),

		KafkaEnabled:         os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAssessmentTopic: sharedcfg.EnvOrDefault("KAFKA_ASSESSMENT_TOPIC", "wildfire-risk-assessments"),
	}

	if cfg.FiresEnabled && cfg.FIRMSMapKey == "" {
		return nil, errors.New("FIRMS_MAP_KEY is required unless FIRMS_ENABLED is false")
	}
	if cfg.CacheBackend != CacheMemory && cfg.CacheBackend != CacheRedis {
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want %q or %q", cfg.CacheBackend, CacheMemory, CacheRedis)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaAssessmentTopic == "" {
		return nil, errors.New("KAFKA_ASSESSMENT_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func parseSearchDegrees() (float64, error) {
	s := os.Getenv("FIRE_SEARCH_DEGREES")
	if s == "" {
		return 1.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v <= 0 || v > 10 {
		return 0, errors.New("invalid FIRE_SEARCH_DEGREES: must be in (0, 10]")
	}
	return v, nil
}
