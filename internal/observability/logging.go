package observability

import (
	"log/slog"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wildfire-risk-service/internal/config"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT and makes
// it the slog default. Unknown levels fall back to info; any format other
// than "text" is JSON.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(strings.TrimSpace(cfg.LogLevel), cfg.LogFormat).With("service", "wildfire-risk")
	slog.SetDefault(logger)
	return logger
}
