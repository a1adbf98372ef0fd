// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/zcsoft/videotimeline/internal/api"
	"github.com/zcsoft/videotimeline/internal/config"
	"github.com/zcsoft/videotimeline/internal/db"
	"github.com/zcsoft/videotimeline/internal/logger"
	"github.com/zcsoft/videotimeline/internal/middleware"
	"github.com/zcsoft/videotimeline/internal/session"
	"github.com/zcsoft/videotimeline/internal/strips"
	"github.com/zcsoft/videotimeline/internal/thumbs"
)

// Server represents the HTTP server
type Server struct {
	config         *config.Config
	db             *db.DB
	repos          *db.Repositories
	stripService   *strips.Service
	sessionManager *session.Manager
	router         *gin.Engine
	server         *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)
	generator := thumbs.NewFFmpegGenerator()
	stripService := strips.NewService(repos, generator, cfg)
	sessionManager := session.NewManager(stripService, &cfg.Timeline)

	return &Server{
		config:         cfg,
		db:             database,
		repos:          repos,
		stripService:   stripService,
		sessionManager: sessionManager,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Add middleware stack
	s.router.Use(middleware.RequestLogger()) // Custom zerolog request logger
	s.router.Use(gin.Recovery())             // Panic recovery
	s.router.Use(cors.Default())             // CORS support (allows all origins)

	// Create API route group
	apiGroup := s.router.Group("/api")

	// Register service routes
	api.SetupHealthRoutes(apiGroup, s.db)
	api.SetupMediaRoutes(apiGroup, s.repos)
	api.SetupTimelineRoutes(apiGroup, s.stripService, s.repos)
	api.SetupSessionRoutes(apiGroup, s.sessionManager, s.stripService, s.repos)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	if err := s.sessionManager.Start(); err != nil {
		return fmt.Errorf("failed to start session manager: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	// Close sessions before cancelling generation runs: sessions hold
	// strip-ready callbacks registered with the strip service
	if s.sessionManager != nil {
		s.sessionManager.Stop()
	}

	if s.stripService != nil {
		s.stripService.Stop()
	}

	// Check if server was started before attempting shutdown
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
