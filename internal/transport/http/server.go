package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lockbox/internal/app"
	"lockbox/internal/catalog"
	"lockbox/internal/config"
	"lockbox/internal/profile"
	"lockbox/internal/transport/ws"
)

// PackLister lists the content packs offered in the lobby
type PackLister interface {
	Packs() []catalog.PackInfo
}

// Checker reports the health of a dependency
type Checker interface {
	Check(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	hub    *app.GameHub
	packs  PackLister
	store  profile.Store // nil when profiles are disabled
	checks map[string]Checker
	config *config.Config
	logger *slog.Logger
}

// NewServer creates a new HTTP server. store may be nil
func NewServer(cfg *config.Config, hub *app.GameHub, packs PackLister, store profile.Store, logger *slog.Logger) *Server {
	s := &Server{
		hub:    hub,
		packs:  packs,
		store:  store,
		checks: make(map[string]Checker),
		config: cfg,
		logger: logger,
	}
	if c, ok := store.(Checker); ok {
		s.checks["profiles"] = c
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	s.setupRoutes(r)

	s.server = &http.Server{
		Addr:              cfg.GetAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/rooms", s.handleCreateRoom)
		r.Get("/rooms/{roomCode}", s.handleGetRoom)
		r.Get("/rooms/{roomCode}/state", s.handleGetRoomState)
		r.Get("/packs", s.handleListPacks)
		r.Get("/profiles/{profileId}", s.handleGetProfile)
		r.Put("/profiles/{profileId}/accessibility", s.handlePutAccessibility)
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
	})

	r.Method(http.MethodGet, "/ws", ws.NewHandler(s.hub, s.logger))
}

// Handler returns the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run listens and serves until Shutdown is called
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}

	s.logger.Info("server starting", "addr", s.server.Addr)
	err = s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request. Health checks are only logged in
// development
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			if r.URL.Path == "/api/health" && !s.config.IsDevelopment() {
				return
			}
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestID", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
