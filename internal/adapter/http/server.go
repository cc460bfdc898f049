package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assessor evaluates wildfire risk for a coordinate.
type Assessor interface {
	Assess(ctx context.Context, c domain.Coordinate) (domain.Assessment, error)
}

// Server exposes the dashboard pages, the risk API, and health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	pages      *pages
	logger     *slog.Logger
}

// NewServer creates an HTTP server wired to the given assessor.
func NewServer(addr string, assessor Assessor, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		pages:    mustParsePages(),
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /resources", s.handleResources)
	mux.HandleFunc("GET /chatbot", s.handleChatbot)
	mux.HandleFunc("POST /chatbot", s.handleChatbot)
	mux.HandleFunc("GET /api/v1/risk", s.handleRisk)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleRisk serves GET /api/v1/risk?lat=..&lon=.. as JSON.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.assessor.Assess(r.Context(), coord)
	if err != nil {
		status, msg := classifyError(err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

var errMissingCoordinate = errors.New("lat and lon query parameters are required")

// parseCoordinate reads lat/lon from the query string. Range checks are left
// to the assessor so they surface as invalid input.
func parseCoordinate(r *http.Request) (domain.Coordinate, error) {
	q := r.URL.Query()
	latStr, lonStr := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latStr == "" || lonStr == "" {
		return domain.Coordinate{}, errMissingCoordinate
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinate{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Coordinate{}, errors.New("lon must be a number")
	}
	return domain.Coordinate{Lat: lat, Lon: lon}, nil
}

// classifyError maps an assessment error to a status code and user message.
func classifyError(err error) (int, string) {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusUnprocessableEntity, "cannot assess this location, please click a different location"
	}
	return http.StatusBadGateway, "weather or fire data is unavailable right now, please try again"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
