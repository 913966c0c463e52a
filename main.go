package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sejersbol/bullseye/internal/config"
	"github.com/sejersbol/bullseye/internal/database"
	"github.com/sejersbol/bullseye/internal/handicap"
	server "github.com/sejersbol/bullseye/internal/http"
	"github.com/sejersbol/bullseye/internal/leaderboard"
	"github.com/sejersbol/bullseye/internal/metrics"
	"github.com/sejersbol/bullseye/internal/notifier/slack"
	"github.com/sejersbol/bullseye/internal/processor"
	"github.com/sejersbol/bullseye/internal/pubsub"
	"github.com/sejersbol/bullseye/internal/rating"
	"github.com/sejersbol/bullseye/internal/rounds"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	roundStore := rounds.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	table := handicap.Default()
	engine := rating.NewEngine(table)
	classifier := rating.NewClassifier()
	leaderboards := leaderboard.NewService(roundStore, table)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	pubsub := pubsub.New(cfg.ProjectID)
	processor := processor.New(roundStore, notifier, metricsSvc, pubsub, engine)

	s := server.NewServer(
		roundStore,
		metricsSvc,
		metricsHandler,
		cfg,
		leaderboards,
		engine,
		classifier,
		table,
		notifier,
		processor,
		pubsub,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
