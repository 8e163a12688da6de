package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/conecar/services/fletes/config"
	"example.com/conecar/services/fletes/internal/api"
	"example.com/conecar/services/fletes/internal/cache"
	"example.com/conecar/services/fletes/internal/database"
	"example.com/conecar/services/fletes/internal/importer"
	"example.com/conecar/services/fletes/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for fletes, transportistas and Excel import/export`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize database connection and run migrations
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}

	// Initialize cache
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	// Initialize services
	fleteService := services.NewFleteService(db, redisCache)
	importService := importer.NewService(db, redisCache, cfg.Import)

	// Initialize and start the server
	server := api.NewServer(cfg, fleteService, importService)

	// Start the server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Shutdown the server
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down API server")
	return nil
}
