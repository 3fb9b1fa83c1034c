package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
	httpmiddleware "github.com/sqlgate/sqlgate/core/infrastructure/transport/http/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	port   string
}

// NewServer creates a new HTTP server with the core middleware stack
func NewServer(port string) *Server {
	if port == "" {
		port = "8001"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "x-api-key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus HTTP metrics
	r.Use(httpmiddleware.Metrics)

	return &Server{
		router: r,
		port:   port,
	}
}

// Router returns the chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// StartAsync starts the HTTP server without blocking
func (s *Server) StartAsync() error {
	log := logging.New("http")

	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("HTTP server listening on http://127.0.0.1:%s", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop() error {
	log := logging.New("http")
	log.Infof("Shutting down HTTP server")

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
		if closeErr := s.server.Close(); closeErr != nil {
			log.Errorf("Error force closing HTTP server: %v", closeErr)
		}
		return err
	}

	log.Infof("HTTP server stopped")
	return nil
}
