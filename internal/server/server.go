// Package server exposes the expense tracker over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/naufalhakim/catatin/internal/auth"
	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/engine"
	"github.com/naufalhakim/catatin/internal/service"
)

// Server handles the JSON API.
type Server struct {
	engine *engine.Engine
	store  service.Storage
	auth   auth.Authenticator
	logger *slog.Logger
	http   *http.Server
}

// New creates a server listening on addr.
func New(addr string, eng *engine.Engine, authenticator auth.Authenticator, logger *slog.Logger) *Server {
	s := &Server{
		engine: eng,
		store:  eng.Store(),
		auth:   authenticator,
		logger: logger,
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	return s
}

// Routes builds the API mux. Exposed for tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/parse", s.withAuth(s.handleParse))
	mux.HandleFunc("POST /api/expenses/save", s.withAuth(s.handleSaveBatch))

	mux.HandleFunc("GET /api/expenses", s.withAuth(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withAuth(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", s.withAuth(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withAuth(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withAuth(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/categories", s.withAuth(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withAuth(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withAuth(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/dashboard", s.withAuth(s.handleDashboard))
	mux.HandleFunc("GET /api/analytics/export", s.withAuth(s.handleExport))
	mux.HandleFunc("GET /api/parse/attempts", s.withAuth(s.handleListAttempts))

	return s.logRequests(mux)
}

// ListenAndServe blocks until the context is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type authedHandler func(w http.ResponseWriter, r *http.Request, ownerID string)

// withAuth resolves the owner before invoking the handler.
func (s *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := s.auth.Authenticate(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		next(w, r, ownerID)
	}
}

// logRequests emits one access-log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON serializes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// writeError maps application errors onto HTTP statuses. UserError messages
// are surfaced verbatim; everything else gets a generic body so internals
// never leak.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, common.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "unauthorized"
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, common.ErrEmptyInput),
		errors.Is(err, common.ErrValidationFailed),
		errors.Is(err, common.ErrDuplicateEntry):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, common.ErrExtractionFailed):
		// The user's input was fine; the model upstream was not.
		status = http.StatusBadGateway
		message = err.Error()
	case errors.Is(err, common.ErrCommitFailed):
		status = http.StatusInternalServerError
		message = "could not save expenses, please try again"
	}

	var userErr *common.UserError
	if errors.As(err, &userErr) {
		message = userErr.UserMessage
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: message})
}
