package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/community-console/internal/advert"
	"github.com/kurihiro0119/community-console/internal/api"
	"github.com/kurihiro0119/community-console/internal/batch"
	"github.com/kurihiro0119/community-console/internal/config"
	"github.com/kurihiro0119/community-console/internal/logger"
	"github.com/kurihiro0119/community-console/internal/storage"
	"github.com/kurihiro0119/community-console/internal/storage/postgres"
	"github.com/kurihiro0119/community-console/internal/storage/sqlite"
	"github.com/kurihiro0119/community-console/pkg/client"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			log.Error("failed to initialize PostgreSQL storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			log.Error("failed to initialize SQLite storage", "error", err)
			os.Exit(1)
		}
	}
	defer store.Close()

	// Quotes need an investor session
	var quoter api.Quoter
	session := &client.Session{AccessToken: cfg.AccessToken, Role: cfg.UserRole}
	if err := cfg.ValidateBackend(); err != nil {
		log.Warn("advertisement quotes disabled", "reason", err)
	} else if err := session.Require(client.RoleInvestor); err != nil {
		log.Warn("advertisement quotes disabled", "reason", err)
	} else {
		c := client.NewClient(client.Options{
			CommonURL: cfg.CommonAPIURL,
			Timeout:   cfg.HTTPTimeout,
			Logger:    log,
		}, session)
		tracker, err := batch.NewTracker(batch.TrackerConfig{Logger: log, Delay: cfg.SubmitDelay, Recorder: store})
		if err != nil {
			log.Error("failed to create tracker", "error", err)
			os.Exit(1)
		}
		quoter = advert.NewCampaign(c, tracker, log)
	}

	// Initialize handler
	handler := api.NewHandler(store, quoter)

	// Setup routes
	router := api.SetupRoutes(handler, log)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Info("starting API server", "addr", addr, "storage", cfg.StorageType)

	if err := router.Run(addr); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
