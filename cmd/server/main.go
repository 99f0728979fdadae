package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "blooddrive-backend/internal/api/grpc"
	httpapi "blooddrive-backend/internal/api/http"
	"blooddrive-backend/internal/app"
	"blooddrive-backend/internal/config"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	withCron := flag.Bool("with-cron", true, "Run the cron scheduler inside the API process")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BloodDrive backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetServerAddress(), "grpc", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}

	a, err := app.Build(ctx, cfg, db)
	if err != nil {
		logger.Error("Failed to initialize services", "error", err)
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer a.Close()

	// gRPC health + reflection
	health := grpcapi.NewHealthServer()
	health.SetServing(true)
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	go func() {
		logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
		if err := health.Serve(lis); err != nil {
			logger.Error("gRPC server error", "error", err)
		}
	}()

	// Cron jobs
	var cronScheduler *scheduler.Scheduler
	if *withCron {
		jobRunner := a.JobRunner()
		jobRunner.SetHealthReporter(health)
		cronScheduler, err = scheduler.NewScheduler(jobRunner)
		if err != nil {
			logger.Error("Failed to register cron jobs", "error", err)
			log.Fatalf("Failed to register cron jobs: %v", err)
		}
		cronScheduler.Start()
	}

	// HTTP API
	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(a.HTTPServices(), a.Tokens),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		logger.Info("HTTP API listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	health.Stop()
	logger.Info("Server stopped. Goodbye!")
}
