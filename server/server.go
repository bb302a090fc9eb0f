// Package server exposes the tool registry and configuration over HTTP.
// The registry is immutable after construction, so every handler is a pure
// read (plus the execute dispatch) and safe for concurrent callers.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sea-labs/sea/config"
	"github.com/sea-labs/sea/tool"
)

// Config configures a Server instance.
type Config struct {
	Tools      *tool.Manager
	AppConfig  *config.Config
	Scheduler  *tool.RevalidateScheduler
	CORSOrigin string
	MaxBody    int64
	Logger     *slog.Logger
}

// Server is the SEA HTTP API server.
type Server struct {
	tools      *tool.Manager
	appConfig  *config.Config
	scheduler  *tool.RevalidateScheduler
	corsOrigin string
	maxBody    int64
	logger     *slog.Logger
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	corsOrigin := cfg.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = 1 << 20 // 1 MB default
	}
	return &Server{
		tools:      cfg.Tools,
		appConfig:  cfg.AppConfig,
		scheduler:  cfg.Scheduler,
		corsOrigin: corsOrigin,
		maxBody:    maxBody,
		logger:     logger,
	}
}

// Handler returns an http.Handler with all routes and middleware wired.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = s.corsMiddleware(handler)
	handler = s.maxBodyMiddleware(handler)
	handler = s.loggingMiddleware(handler)

	return handler
}

// RegisterRoutes mounts API routes onto an existing mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/tools", s.handleListTools)
	mux.HandleFunc("GET /api/tools/{name}", s.handleGetTool)
	mux.HandleFunc("POST /api/tools/{name}/validate", s.handleValidateTool)
	mux.HandleFunc("POST /api/tools/{name}/execute", s.handleExecuteTool)
	mux.HandleFunc("GET /api/config/{key}", s.handleGetConfig)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) maxBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		requestID := uuid.NewString()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(started)),
		)
	})
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// apiError is the standard error envelope.
type apiError struct {
	Error apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Tool    string `json:"tool,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{
		Error: apiErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// writeToolError maps a registry error to the matching HTTP status.
func writeToolError(w http.ResponseWriter, err error) {
	toolErr, ok := tool.ErrorFrom(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, tool.ErrorCodeExecutionFailed, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch toolErr.Code {
	case tool.ErrorCodeUnknownTool:
		status = http.StatusNotFound
	case tool.ErrorCodeUnmetRequirement, tool.ErrorCodeInvalidParams:
		status = http.StatusUnprocessableEntity
	case tool.ErrorCodeExecutionUnsupported:
		status = http.StatusNotImplemented
	case tool.ErrorCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	writeJSON(w, status, apiError{
		Error: apiErrorBody{
			Code:    toolErr.Code,
			Message: toolErr.Message,
			Tool:    toolErr.Tool,
		},
	})
}
