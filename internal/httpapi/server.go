// Package httpapi serves a read-only JSON view of the running game for
// dashboards and scripts. It never mutates game state.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rngsim/internal/config"
	"github.com/cory-johannsen/rngsim/internal/game/engine"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const shutdownTimeout = 5 * time.Second

// Viewer supplies the game picture served by the API.
type Viewer interface {
	View() engine.View
}

// Server is the status API. It implements server.Service.
type Server struct {
	logger *zap.Logger
	cfg    config.HTTPConfig
	game   Viewer
	now    func() time.Time
	srv    *http.Server

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// New returns a Server for game bound to cfg.Addr.
//
// Precondition: logger and game must be non-nil; cfg.Addr must be non-empty.
func New(logger *zap.Logger, cfg config.HTTPConfig, game Viewer, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	s := &Server{
		logger: logger,
		cfg:    cfg,
		game:   game,
		now:    now,
		ready:  make(chan struct{}),
	}
	s.srv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Get("/healthz", s.Health)
	r.Route("/game", func(rr chi.Router) {
		rr.Get("/status", s.Status)
		rr.Get("/stats", s.Stats)
		rr.Get("/history", s.History)
	})
	return r
}

// Start listens on the configured address and serves until Stop.
//
// Postcondition: returns nil after Stop; returns the listen or serve error
// otherwise.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("status api listening", zap.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving status api: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("status api shutdown", zap.Error(err))
	}
}

// Addr blocks until Start is listening and returns the bound address.
func (s *Server) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener.Addr(), nil
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status serves coins, target, odds and the upgrade ledger.
func (s *Server) Status(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, toStatus(s.game.View()))
}

// Stats serves the all-time statistics.
func (s *Server) Stats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, toStats(s.game.View(), s.now()))
}

// History serves recent batches, newest first. The optional limit query
// parameter must be a positive integer.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	s.writeJSON(w, http.StatusOK, toHistory(s.game.View(), limit))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("encoding response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("writing response", zap.Error(err))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
