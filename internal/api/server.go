package api

import (
	"context"
	"net/http"
	"time"

	"example.com/conecar/services/fletes/config"
	"example.com/conecar/services/fletes/internal/api/handlers"
	"example.com/conecar/services/fletes/internal/importer"
	"example.com/conecar/services/fletes/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Server represents the HTTP server
type Server struct {
	config        config.Config
	router        *gin.Engine
	httpServer    *http.Server
	fleteService  *services.FleteService
	importService *importer.Service
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, fleteService *services.FleteService, importService *importer.Service) *Server {
	server := &Server{
		config:        cfg,
		fleteService:  fleteService,
		importService: importService,
	}

	router := server.setupRouter()
	server.router = router

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	server.httpServer = httpServer

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	router := gin.Default()

	// Recovery middleware
	router.Use(gin.Recovery())

	// Register handlers
	transportistaHandler := handlers.NewTransportistaHandler(s.fleteService)
	transportistaHandler.RegisterRoutes(router)

	fleteHandler := handlers.NewFleteHandler(s.fleteService)
	fleteHandler.RegisterRoutes(router)

	importHandler := handlers.NewImportHandler(s.importService)
	importHandler.RegisterRoutes(router)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.Server.Address).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	// Create a timeout context for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
