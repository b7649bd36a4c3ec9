// Package server implements the HTTP API of multipartd: a profile upload
// endpoint accepting multipart/form-data.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tomasbasham/multipartenc"
)

// Server serves the profile API.
type Server struct {
	logger *slog.Logger
	opts   []multipartenc.Option
	newID  func() uuid.UUID
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger for request and decoder diagnostics. Nil
// loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDecoderOptions appends options passed to every extraction.
func WithDecoderOptions(opts ...multipartenc.Option) Option {
	return func(s *Server) {
		s.opts = append(s.opts, opts...)
	}
}

// WithIDGenerator replaces the generator of profile ids.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Server) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates the server. It fails when the request forms cannot be
// decoded, so a broken form surfaces at startup instead of on a request.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := multipartenc.SchemaOf[profileRequest](); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return s, nil
}

// Handler returns the router of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Post("/profiles", s.createProfile)
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// fail answers with the status mapped from an extraction error. Field
// failures are listed one per problem.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := multipartenc.StatusCode(err)
	resp := errorResponse{Error: err.Error()}

	var me *multipartenc.MultipartError
	if errors.As(err, &me) {
		resp.Error = http.StatusText(status)
		resp.Problems = me.Problems()
	}

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
		resp.Error = http.StatusText(status)
	} else {
		s.logger.InfoContext(r.Context(), "request rejected",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
