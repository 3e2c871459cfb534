// Package httpapi exposes the form and document pipeline over HTTP: the
// rendered form for embedding, an inline PDF preview and the final download
// with its derived filename.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/orchestrator"
)

const maxSubmissionBytes = 32 << 20 // photos arrive inline as data URLs

type Option func(*Server)

// WithLogger injects the structured logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server routes form and report requests to the orchestrator.
type Server struct {
	orchestrator *orchestrator.Orchestrator
	logger       logrus.FieldLogger
	router       chi.Router
}

// New constructs the HTTP server around an orchestrator.
func New(o *orchestrator.Orchestrator, options ...Option) *Server {
	server := &Server{
		orchestrator: o,
		logger:       logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(server)
	}
	server.router = server.routes()
	return server
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/forms/service-report", s.handleForm)
	r.Post("/signatures", s.handleSignature)
	r.Post("/reports/preview", s.handleReport(false))
	r.Post("/reports/download", s.handleReport(true))
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	result, err := s.orchestrator.RenderForm(r.Context(), orchestrator.FormRequest{
		Renderer: r.URL.Query().Get("renderer"),
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", result.ContentType)
	w.Write(result.Output)
}

// handleReport serves both the inline preview and the attachment download;
// the two differ only in the Content-Disposition header.
func (s *Server) handleReport(download bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := s.decodeSubmission(r)
		if err != nil {
			s.clientError(w, err)
			return
		}

		result, err := s.orchestrator.SubmitReport(r.Context(), orchestrator.SubmitRequest{Record: record})
		if errors.Is(err, orchestrator.ErrInvalidReport) {
			s.validationError(w, result)
			return
		}
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", result.ContentType)
		if download {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
		} else {
			w.Header().Set("Content-Disposition", "inline")
		}
		w.Write(result.Document)
	}
}

func (s *Server) decodeSubmission(r *http.Request) (*form.Record, error) {
	var payload map[string]any
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxSubmissionBytes))
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("httpapi: decode submission: %w", err)
	}

	record, err := s.orchestrator.NewRecord(r.Context())
	if err != nil {
		return nil, err
	}
	if err := record.ApplyValues(payload); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Server) validationError(w http.ResponseWriter, result *orchestrator.SubmitResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]any{
		"errors": result.Validation.Fields,
	})
}

func (s *Server) clientError(w http.ResponseWriter, err error) {
	var capacity *form.CapacityError
	if errors.As(err, &capacity) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": map[string][]string{capacity.Field: {capacity.Message()}},
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
}
