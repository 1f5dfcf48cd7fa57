package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/haqei/situation-engine/internal/orchestrator"
	"github.com/haqei/situation-engine/internal/ranker"
)

const (
	maxRequestBody      = 64 * 1024
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	requestTimeout      = 30 * time.Second
)

// #region server

// Deps are the collaborators served over HTTP. Analyzer and Degradation
// are required; a nil Usage, Log or Gatherer disables its endpoint.
type Deps struct {
	Analyzer    Analyzer
	Degradation *ranker.Degradation
	Usage       ranker.UsageStore
	Log         LogReader
	Gatherer    prometheus.Gatherer
	Logger      *zap.Logger
}

// Server exposes analysis and operational controls.
type Server struct {
	analyzer    Analyzer
	degradation *ranker.Degradation
	usage       ranker.UsageStore
	log         LogReader
	gatherer    prometheus.Gatherer
	logger      *zap.Logger
	policy      *bluemonday.Policy
}

// New builds a Server.
func New(deps Deps) (*Server, error) {
	if deps.Analyzer == nil {
		return nil, errors.New("new http server: analyzer is required")
	}
	if deps.Degradation == nil {
		return nil, errors.New("new http server: degradation controller is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		analyzer:    deps.Analyzer,
		degradation: deps.Degradation,
		usage:       deps.Usage,
		log:         deps.Log,
		gatherer:    deps.Gatherer,
		logger:      logger.Named("httpapi"),
		policy:      bluemonday.StrictPolicy(),
	}, nil
}

// Handler returns the routed handler with the standard middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.healthz)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", s.Routes)
	return r
}

// Routes registers the versioned endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/analyze", s.analyze)
	r.Get("/fallback-level", s.fallbackLevel)
	r.Put("/fallback-level", s.setFallbackLevel)
	r.Post("/simulate/failure", s.simulateFailure)
	r.Post("/simulate/recovery", s.simulateRecovery)
	r.Get("/usage", s.usageStats)
	r.Get("/stats", s.stats)
	r.Get("/history", s.history)
}

// #endregion server

// #region handlers

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}

	res := s.analyzer.Analyze(r.Context(), s.sanitize(req.Text), orchestrator.Options{Locale: req.Locale})
	status := http.StatusOK
	if !res.OK {
		status = http.StatusInternalServerError
		if res.Error != nil && res.Error.Retryable {
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, res)
}

func (s *Server) fallbackLevel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.degradationState())
}

func (s *Server) setFallbackLevel(w http.ResponseWriter, r *http.Request) {
	var req fallbackLevelRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}
	if err := s.degradation.SetLevel(req.Level); err != nil {
		if errors.Is(err, ranker.ErrInvalidLevel) {
			writeError(w, r, http.StatusBadRequest, "invalid_level", err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal", "could not change fallback level")
		return
	}
	s.logger.Info("fallback level set", zap.Int("level", req.Level))
	writeJSON(w, http.StatusOK, s.degradationState())
}

func (s *Server) simulateFailure(w http.ResponseWriter, _ *http.Request) {
	s.degradation.SimulateFailure()
	s.logger.Info("catalog failure simulated")
	writeJSON(w, http.StatusOK, s.degradationState())
}

func (s *Server) simulateRecovery(w http.ResponseWriter, _ *http.Request) {
	s.degradation.SimulateRecovery()
	s.logger.Info("catalog recovery simulated")
	writeJSON(w, http.StatusOK, s.degradationState())
}

func (s *Server) usageStats(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		writeError(w, r, http.StatusNotFound, "not_found", "usage statistics are not available")
		return
	}
	snap := s.usage.Snapshot()
	writeJSON(w, http.StatusOK, usageResponse{Total: snap.Total(), Records: snap.Sorted()})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.analyzer.Stats())
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	resp := historyResponse{Recent: newestFirst(s.analyzer.History(), limit)}
	if s.log != nil {
		rows, err := s.log.Recent(r.Context(), limit)
		if err != nil {
			s.logger.Warn("read analysis log", zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "internal", "analysis log is unavailable")
			return
		}
		resp.Log = rows
	}
	writeJSON(w, http.StatusOK, resp)
}

// #endregion handlers

// #region helpers

var errBodyTooLarge = errors.New("request body exceeds allowed size")

func (s *Server) degradationState() degradationResponse {
	st := s.degradation.State()
	return degradationResponse{DegradationState: st, QualityLevel: ranker.QualityLevel(st.Level)}
}

// sanitize strips markup from submitted text and restores the entities the
// policy escapes.
func (s *Server) sanitize(text string) string {
	return html.UnescapeString(s.policy.Sanitize(text))
}

func (s *Server) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
		return
	}
	writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return errors.New("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New("invalid JSON payload")
	}
	return nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	if n > maxHistoryLimit {
		n = maxHistoryLimit
	}
	return n, nil
}

func newestFirst(entries []orchestrator.HistoryEntry, limit int) []orchestrator.HistoryEntry {
	out := make([]orchestrator.HistoryEntry, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error:     code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// #endregion helpers
