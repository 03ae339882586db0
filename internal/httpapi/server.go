// Package httpapi wires the HTTP surface: the upload form, draft-summary
// routes, the WebSocket upgrade endpoint, and health checks (spec §6).
package httpapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"boosterdraft/internal/config"
	"boosterdraft/internal/contentwatch"
	"boosterdraft/internal/registry"
	"boosterdraft/internal/wshub"
)

// Server is the whole HTTP surface for one running instance: the
// draft registry, the session hub, and the content directories they
// were built from.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	reg     *registry.Registry
	hub     *wshub.Hub
	cfg     *config.ServerConfig
	watcher *contentwatch.Watcher
}

// New builds a Server bound to a Registry and Hub that are already
// constructed and ready to run (the caller owns their lifecycle so it
// can also wire a content watcher against the same registry).
func New(cfg *config.ServerConfig, reg *registry.Registry, hub *wshub.Hub, watcher *contentwatch.Watcher) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		port:    cfg.Server.Port,
		reg:     reg,
		hub:     hub,
		cfg:     cfg,
		watcher: watcher,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// Start begins serving in a background goroutine and starts the session
// hub's own loop.
func (s *Server) Start() {
	go s.hub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("httpapi: listening on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("httpapi: server error: %v", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP listener and the session hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.httpServer == nil {
		return nil
	}
	log.Println("httpapi: shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the configured listen port.
func (s *Server) Port() int { return s.port }

// Handler exposes the router for tests that want to drive it directly
// with httptest, without a real listening socket.
func (s *Server) Handler() http.Handler { return s.router }
