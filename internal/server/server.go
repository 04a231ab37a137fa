package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"boqrate/internal/explain"
	"boqrate/internal/metrics"
	"boqrate/internal/rate"
	"boqrate/internal/store"
)

// Store is the persistence the HTTP layer reads from.
type Store interface {
	Project(ctx context.Context, id string) (store.Project, error)
	Subprojects(ctx context.Context, projectID string) ([]store.Subproject, error)
	LineItems(ctx context.Context, projectID string) ([]store.LineItem, error)
	LineItem(ctx context.Context, id string) (store.LineItem, string, error)
	Ratebook(ctx context.Context, id string) (store.Ratebook, error)
	CatalogItem(ctx context.Context, id string) (rate.CatalogItem, error)
	CatalogItems(ctx context.Context, ids []string) (map[string]rate.CatalogItem, error)
	RatebookItems(ctx context.Context, ratebookID string) ([]rate.CatalogItem, error)
	Tables(ctx context.Context, region string) (*rate.Tables, error)
}

type Server struct {
	store      Store
	engine     *rate.Engine
	explainer  *explain.Service
	normalizer Normalizer
	logger     *zap.Logger
}

func New(st Store) http.Handler {
	return NewWithEngine(st, nil, nil, nil)
}

// NewWithEngine allows injecting the engine, the explanation service and a logger.
func NewWithEngine(st Store, engine *rate.Engine, explainer *explain.Service, logger *zap.Logger) http.Handler {
	if engine == nil {
		engine = rate.NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:      st,
		engine:     engine,
		explainer:  explainer,
		normalizer: NewNormalizer("api"),
		logger:     logger,
	}
	r := chi.NewRouter()
	// Observability: Request ID and basic logger
	r.Use(requestIDMiddleware)
	r.Use(middleware.Logger)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/rates/calculate", s.handleCalculate)
	r.Get("/projects/{id}/boq", s.handleProjectBOQ)
	r.Get("/boq-items/{id}/rate", s.handleLineRate)
	r.Get("/boq-items/{id}/explanation", s.handleLineExplanation)
	r.Get("/ratebooks/compare", s.handleCompareRatebooks)
	r.Get("/ratebook-items/{id}/shares", s.handleItemShares)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// calculate runs the engine and records metrics and missing optional rows.
func (s *Server) calculate(in rate.Input) (rate.Result, error) {
	start := time.Now()
	res, err := s.engine.Calculate(in)
	metrics.CalculationDuration.Observe(time.Since(start).Seconds())

	var (
		verr *rate.ValidationError
		merr *rate.MissingConfigError
	)
	switch {
	case err == nil:
		metrics.CalculationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	case errors.As(err, &verr):
		metrics.CalculationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
	case errors.As(err, &merr):
		metrics.CalculationsTotal.WithLabelValues(metrics.OutcomeMissingConfig).Inc()
	default:
		metrics.CalculationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
	}
	if err != nil {
		return rate.Result{}, err
	}
	for _, n := range res.Notes {
		metrics.MissingOptionalData.WithLabelValues(n.Table).Inc()
		s.logger.Debug("optional surcharge row missing",
			zap.String("item_code", res.ItemCode),
			zap.String("region", in.Region),
			zap.String("table", n.Table),
			zap.String("key", n.Key))
	}
	return res, nil
}

// writeCalcError maps engine and store failures onto the error envelope.
func (s *Server) writeCalcError(w http.ResponseWriter, err error) {
	var (
		verr *rate.ValidationError
		merr *rate.MissingConfigError
	)
	switch {
	case errors.As(err, &verr):
		writeErrorJSON(w, http.StatusBadRequest, "validation_error", verr.Error())
	case errors.As(err, &merr):
		writeErrorJSON(w, http.StatusUnprocessableEntity, "missing_configuration", merr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "resource_not_found", err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
	}
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "store_unavailable", "no store configured")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}

func orDefault(s, d string) string {
	if strings.TrimSpace(s) == "" {
		return d
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func parseFloat(s string) (float64, error) {
	var n json.Number = json.Number(s)
	return n.Float64()
}
