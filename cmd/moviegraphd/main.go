package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/moviegraph/moviegraph/internal/api"
	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/controllers"
	"github.com/moviegraph/moviegraph/internal/scheduler"
	"github.com/moviegraph/moviegraph/internal/services/auth"
	"github.com/moviegraph/moviegraph/internal/services/scraper"
	"github.com/moviegraph/moviegraph/internal/services/tmdb"
	"github.com/moviegraph/moviegraph/internal/store"
	"github.com/moviegraph/moviegraph/internal/store/boltstore"
	"github.com/moviegraph/moviegraph/internal/store/neo4jstore"
	"github.com/moviegraph/moviegraph/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Moviegraph")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Open the store backend
	var st store.Store
	switch cfg.StoreBackend {
	case "neo4j":
		st, err = neo4jstore.Open(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	default:
		st, err = boltstore.Open(cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	logger.WithField("backend", cfg.StoreBackend).Info("Store initialized")

	// 4. Initialize services
	tmdbClient, err := tmdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize TMDB client: %w", err)
	}
	logger.Info("TMDB client initialized")

	authClient, err := auth.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth client: %w", err)
	}
	logger.Info("Auth client initialized")

	imdbScraper := scraper.NewIMDb(logger)
	rtScraper := scraper.NewRottenTomatoes(logger)

	// 5. Initialize controllers
	completeness := controllers.NewCompleteness(cfg)
	movieData := controllers.NewMovieData(st, tmdbClient, completeness, logger)
	thresholds := controllers.NewThresholds(st, cfg, logger)
	users := controllers.NewUsers(st, authClient, logger)
	recommender := controllers.NewRecommender(st, logger)
	backfill := controllers.NewRatingBackfill(st, imdbScraper, rtScraper, cfg, logger)
	sweep := controllers.NewCompletionSweep(st, movieData, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(backfill, sweep, cfg, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, movieData, thresholds, users, recommender, authClient, logger)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Moviegraph is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Moviegraph stopped")
	return nil
}
