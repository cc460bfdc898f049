package observability

import (
	"log/slog"
	"testing"

	"github.com/couchcryptid/wildfire-risk-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tc.level, LogFormat: "json"})
			assert.True(t, logger.Enabled(t.Context(), tc.want))
			if tc.want > slog.LevelDebug {
				assert.False(t, logger.Enabled(t.Context(), tc.want-4))
			}
		})
	}
}

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})
	assert.Same(t, logger, slog.Default())
	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelWarn))
}
