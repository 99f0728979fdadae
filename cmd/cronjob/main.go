package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"blooddrive-backend/internal/app"
	"blooddrive-backend/internal/config"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'eligibility-reminders', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BloodDrive cronjob runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()
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

	jobRunner := a.JobRunner()

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.Run(*runOnce); err != nil {
			logger.Error("Unknown job name", "job", *runOnce)
			fmt.Printf("Available jobs:\n  - %s\n", strings.Join(jobRunner.JobNames(), "\n  - "))
			a.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to register cron jobs", "error", err)
		log.Fatalf("Failed to register cron jobs: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
