package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"medialog/internal/auth"
	"medialog/internal/clients/metadata"
	"medialog/internal/config"
	"medialog/internal/core"
	"medialog/internal/database"
	"medialog/internal/database/models"
	"medialog/internal/handlers"
	"medialog/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Initialize logger to write to both file and console
	if err := os.MkdirAll(cfg.App.DataPath, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.App.DataPath, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	logger := utils.NewLogger(cfg.App.Debug, multiWriter)

	// Initialize database
	db, err := database.NewSQLite(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations:", err)
	}

	// Provider clients and aggregation facades
	omdbClient := metadata.NewOMDbClient(cfg.Metadata.OMDb.APIKey)
	tmdbClient := metadata.NewTMDBClient(cfg.Metadata.TMDB.AccessToken, cfg.Metadata.Language)
	catalog := core.NewCatalog(omdbClient, tmdbClient, cfg.Metadata.DetailTTL, logger)
	lists := core.NewListCatalog(tmdbClient, cfg.Metadata.ListCacheTTL, logger)

	jwtManager, err := auth.NewJWTManager(cfg.App.JWTSecret, cfg.App.SessionTimeout)
	if err != nil {
		logger.Fatal("Failed to initialize auth:", err)
	}

	apiHandler := handlers.NewAPIHandler(cfg, catalog, lists,
		models.NewUserRepository(db), models.NewWatchedRepository(db),
		models.NewShowRepository(db), models.NewWatchlistRepository(db),
		jwtManager, logger)

	server := handlers.NewServer(cfg, apiHandler, logger)

	// Handle shutdown gracefully
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server failed to start:", err)
		}
	}()

	lists.StartScheduler()

	logger.Info("Medialog started successfully on port", cfg.App.Port)

	// Wait for interrupt
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Shutting down...")
	lists.Stop()
	server.Stop(ctx)
}
