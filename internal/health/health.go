// Package health provides the HTTP liveness and readiness endpoints.
//
// Docker and Kubernetes use /healthz to see that the process is alive and
// /readyz to decide whether it should receive traffic. Readiness requires the
// bot to be connected and every registered check (e.g. the database ping) to
// pass.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// checkTimeout bounds a single readiness evaluation.
const checkTimeout = 2 * time.Second

// ErrNotReady is returned by Ready before SetReady(true).
var ErrNotReady = errors.New("not ready")

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	ready  atomic.Bool
	server *http.Server

	mu     sync.RWMutex
	checks map[string]Check
}

// New creates a new health check server.
func New(port int) *Server {
	return &Server{port: port, checks: make(map[string]Check)}
}

// SetReady marks the bot as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// AddCheck registers a named readiness check.
func (s *Server) AddCheck(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Ready runs every check and returns the first failure, if any.
func (s *Server) Ready(ctx context.Context) error {
	_, err := s.evaluate(ctx)
	return err
}

func (s *Server) evaluate(ctx context.Context) (map[string]string, error) {
	if !s.ready.Load() {
		return nil, ErrNotReady
	}

	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	results := make(map[string]string, len(names))
	var firstErr error
	for _, name := range names {
		s.mu.RLock()
		check := s.checks[name]
		s.mu.RUnlock()

		if err := check(ctx); err != nil {
			results[name] = err.Error()
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", name, err)
			}
			continue
		}
		results[name] = "ok"
	}
	return results, firstErr
}

// Handler returns the health routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		results, err := s.evaluate(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			slog.Debug("readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "not_ready", "checks": results})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "checks": results})
	})

	return mux
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
