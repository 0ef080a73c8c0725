// Package server exposes the supervisor over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	"github.com/tanpawarit/supervisor-agent/agent/taskboard"
)

const maxRequestBytes = 32 << 20

// QueryHandler is the part of the supervisor the HTTP layer needs.
type QueryHandler interface {
	HandleQuery(ctx context.Context, req contractx.QueryRequest) (contractx.QueryResponse, error)
	Agents() ([]contractx.WorkerDescriptor, error)
}

type TaskLister interface {
	ListTasks(ctx context.Context) (taskboard.TaskList, error)
}

type Option func(*Server)

// WithTaskBoard enables GET /api/tasks.
func WithTaskBoard(board TaskLister) Option {
	return func(s *Server) {
		s.board = board
	}
}

type Server struct {
	handler QueryHandler
	board   TaskLister
	mux     *http.ServeMux
}

func New(handler QueryHandler, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, errors.New("query handler is required")
	}
	s := &Server{handler: handler, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("POST /api/query", s.handleQuery)
	s.mux.HandleFunc("GET /api/agents", s.handleAgents)
	s.mux.HandleFunc("GET /api/tasks", s.handleTasks)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("path", r.URL.Path).Msg("request handler panicked")
			if !rec.wrote {
				writeError(rec, http.StatusInternalServerError, contractx.KindHandlerError, "Internal server error")
			}
		}
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}()
	s.mux.ServeHTTP(rec, r)
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("supervisor listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req contractx.QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, contractx.KindParseError, "Invalid request body")
		return
	}

	resp, err := s.handler.HandleQuery(r.Context(), req)
	switch {
	case errors.Is(err, contractx.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, contractx.KindHandlerError, "Query cannot be empty")
		return
	case err != nil:
		log.Error().Err(err).Msg("query handling failed")
		writeError(w, http.StatusInternalServerError, contractx.KindHandlerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.handler.Agents()
	if err != nil {
		log.Error().Err(err).Msg("registry unavailable")
		writeError(w, http.StatusInternalServerError, contractx.KindConfigError, "Agent registry unavailable")
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if s.board == nil {
		writeError(w, http.StatusServiceUnavailable, contractx.KindConfigError, "Task board is not configured")
		return
	}
	list, err := s.board.ListTasks(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("tasks fetch failed")
		writeError(w, http.StatusBadGateway, contractx.KindNetworkError, "Failed to fetch tasks from knowledge base")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Supervisor is running",
	})
}

type errorBody struct {
	Detail string              `json:"detail"`
	Error  contractx.CallError `json:"error"`
}

func writeError(w http.ResponseWriter, status int, kind contractx.ErrorKind, message string) {
	writeJSON(w, status, errorBody{
		Detail: message,
		Error:  contractx.CallError{Type: kind, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response failed")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wrote {
		r.status = status
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wrote {
		r.wrote = true
	}
	return r.ResponseWriter.Write(b)
}
