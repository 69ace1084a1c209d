package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/enrichd/internal/domain"
	healthuc "github.com/kailas-cloud/enrichd/internal/usecase/health"
	pipelineuc "github.com/kailas-cloud/enrichd/internal/usecase/pipeline"
)

// errorCode identifies an API error class in responses.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeRateLimited       errorCode = "rate_limited"
	codeEmbeddingProvider errorCode = "embedding_provider_error"
	codeSinkError         errorCode = "index_sink_error"
	codeInternalError     errorCode = "internal_error"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// indexRequest is the JSON body of POST /v1/index.
type indexRequest struct {
	UserID    string         `json:"user_id"`
	Documents []documentItem `json:"documents"`
}

// documentItem is a single input document.
type documentItem struct {
	ID       string             `json:"id,omitempty"`
	Content  string             `json:"content"`
	Tags     map[string]string  `json:"tags,omitempty"`
	Numerics map[string]float64 `json:"numerics,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API for the enrichment pipeline.
type Server struct {
	pipeline      *pipelineuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	pipeline *pipelineuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline: pipeline,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrConfiguration, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrSink, http.StatusBadGateway, codeSinkError),
	}
	return s
}

// IndexDocuments handles POST /v1/index: enrich a batch and commit it to
// the search index. On success the response body is the completion signal.
func (s *Server) IndexDocuments(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docs := make([]domain.Document, 0, len(req.Documents))
	for i, item := range req.Documents {
		doc, err := domain.NewDocument(item.ID, item.Content, item.Tags, item.Numerics)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("document %d: %s", i, err.Error()))
			return
		}
		docs = append(docs, doc)
	}

	signal, err := s.pipeline.Run(
		r.Context(),
		domain.State{Docs: docs},
		domain.RequestContext{UserID: req.UserID},
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, signal)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
		"topics": report.Topics,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrConfiguration,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProvider,
		domain.ErrSink,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
