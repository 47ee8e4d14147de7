package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/arqut/arqut-registry/internal/api"
	"github.com/arqut/arqut-registry/internal/config"
	"github.com/arqut/arqut-registry/internal/pkg/logger"
	"github.com/arqut/arqut-registry/internal/storage"
)

// runServer starts the registry server
func runServer() {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	log.Info("Starting Arqut Registry",
		"port", cfg.API.Port,
		"version", "0.1.0",
	)

	// Check API key configuration. Reads are always open; without a key
	// hash the mutating endpoints are open too.
	if cfg.API.APIKey.Hash == "" {
		log.Warn("No API key configured, mutating endpoints are unauthenticated")
		log.Warn("Generate one with: " + os.Args[0] + " apikey generate -c " + cfgFile)
	} else {
		log.Info("API key validated", "created_at", cfg.API.APIKey.CreatedAt)
	}

	// Ensure the database directory exists
	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("Failed to create data directory", "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.Path)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if err := store.Init(); err != nil {
		log.Error("Failed to initialize database schema", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("Storage initialized", "path", cfg.Storage.Path)

	// Initialize REST API server
	apiServer := api.New(&cfg.API, store, log.Logger)

	log.Info("Starting HTTP server", "port", cfg.API.Port)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error("HTTP server error", "error", err)
		}
	}()
	defer apiServer.Stop()

	log.Info("Server initialized successfully")

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Received shutdown signal", "signal", sig)
	log.Info("Server stopped")
}
