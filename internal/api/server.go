package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/config"
	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/middleware"
	"github.com/patrickwarner/adsignal/internal/observability"
	"github.com/patrickwarner/adsignal/internal/ratelimit"
)

var tracer = otel.Tracer("adsignal")

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger  *zap.Logger
	Engine  *logic.Engine
	Metrics observability.MetricsRegistry
	Config  config.Config
	Limiter *ratelimit.ClientLimiter

	schemas *requestSchemas
}

// NewServer constructs a Server and compiles the request schemas.
func NewServer(logger *zap.Logger, engine *logic.Engine, metrics observability.MetricsRegistry, cfg config.Config) (*Server, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:  logger,
		Engine:  engine,
		Metrics: metrics,
		Config:  cfg,
		Limiter: ratelimit.NewClientLimiter(ratelimit.Config{
			Capacity:   cfg.RateLimitCapacity,
			RefillRate: cfg.RateLimitRefillRate,
			Enabled:    cfg.RateLimitEnabled,
		}),
		schemas: schemas,
	}, nil
}

// Router builds the route table. Every route gets a request ID and a
// trace-aware logger; /api routes are rate limited when enabled and
// /inspect/ routes additionally run AdInfluence.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RateLimit(s.Limiter, s.Metrics, "api"))
	api.HandleFunc("/evaluate", s.EvaluateHandler).Methods("POST")
	api.HandleFunc("/remove", s.RemoveHandler).Methods("POST")
	api.HandleFunc("/widget", s.WidgetHandler).Methods("GET")

	inspect := r.PathPrefix("/inspect").Subrouter()
	inspect.Use(middleware.AdInfluence(s.Engine, s.Logger))
	inspect.PathPrefix("/").HandlerFunc(s.InspectHandler).Methods("GET")

	return r
}

// writeJSON encodes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("encode response", zap.Error(err))
	}
}

// observe records request count and latency for one handler invocation.
func (s *Server) observe(endpoint, method string, status int, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
