// Package app wires configuration, storage and services into one graph
// shared by the API server, the cron runner and the admin CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	httpapi "blooddrive-backend/internal/api/http"
	"blooddrive-backend/internal/cache"
	"blooddrive-backend/internal/config"
	"blooddrive-backend/internal/jobs"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository/postgres"
	"blooddrive-backend/internal/security"
	"blooddrive-backend/internal/service"
	"blooddrive-backend/internal/storage"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
)

type App struct {
	Config   *config.Config
	DB       *sql.DB
	Store    *postgres.Store
	Redis    *redis.Client // nil when the dashboard cache is disabled
	Tokens   security.TokenManager
	Storage  storage.StorageInterface
	Notifier *service.ChangeNotifier

	Auth          service.AuthService
	Donors        service.DonorService
	Requests      service.RequestService
	Donations     service.DonationService
	Reports       service.ReportService
	Notifications service.NotificationService
	Email         service.EmailService
}

// OpenDatabase connects to PostgreSQL and verifies the connection.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")
	return db, nil
}

// Build assembles every service on top of db. Optional integrations (Redis,
// geocoding, email) are enabled by their config sections.
func Build(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, error) {
	a := &App{
		Config:   cfg,
		DB:       db,
		Store:    postgres.NewStore(db),
		Tokens:   security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL()),
		Notifier: service.NewChangeNotifier(),
	}

	store, err := storage.New(ctx, storage.Config{
		Type:    cfg.Storage.Type,
		Dir:     cfg.Storage.UploadDir,
		BaseURL: cfg.Storage.BaseURL,
		Bucket:  cfg.Storage.Bucket,
		Region:  cfg.Storage.Region,
		Prefix:  cfg.Storage.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	a.Storage = store
	logger.Info("Report storage ready", "type", cfg.Storage.Type)

	// The report service treats a nil interface as "no cache"; never hand it
	// a typed nil pointer.
	var dashCache service.DashboardCache
	if cfg.Redis.Addr != "" {
		a.Redis = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		dc := cache.NewDashboardCache(a.Redis, cfg.Cache.DashboardTTL())
		if err := dc.Ping(ctx); err != nil {
			logger.Warn("Redis not reachable yet, dashboard cache will retry lazily", "addr", cfg.Redis.Addr, "error", err)
		}
		a.Notifier.Subscribe(dc)
		dashCache = dc
		logger.Info("Dashboard cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Cache.DashboardTTL())
	}

	var geocoder service.Geocoder
	if cfg.Geocoder.BaseURL != "" {
		geocoder = service.NewGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent,
			time.Duration(cfg.Geocoder.TimeoutSeconds)*time.Second, cfg.Geocoder.RetryCount)
		logger.Info("Geocoding enabled", "base_url", cfg.Geocoder.BaseURL)
	}

	a.Email = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	if cfg.SendGrid.APIKey == "" {
		logger.Warn("SendGrid API key not set, emails will be skipped")
	}

	cooldown := cfg.Eligibility.CooldownDays
	a.Auth = service.NewAuthService(a.Store.UserRepository, a.Tokens)
	a.Notifications = service.NewNotificationService(a.Store.NotificationRepository)
	a.Donors = service.NewDonorService(a.Store.DonorRepository, a.Store.DonationRepository, geocoder, a.Notifier, cooldown)
	a.Donations = service.NewDonationService(a.Store.DonationRepository, a.Store.DonorRepository, a.Notifier, cooldown)
	a.Requests = service.NewRequestService(
		a.Store.BloodRequestRepository,
		a.Store.DonorRepository,
		a.Store.UserRepository,
		a.Notifications,
		a.Email,
		a.Notifier,
		cooldown,
	)
	a.Reports = service.NewReportService(
		a.Store.DonorRepository,
		a.Store.DonationRepository,
		a.Store.BloodRequestRepository,
		dashCache,
		a.Storage,
	)
	return a, nil
}

// HTTPServices exposes the services the HTTP router needs.
func (a *App) HTTPServices() httpapi.Services {
	return httpapi.Services{
		Auth:          a.Auth,
		Donors:        a.Donors,
		Requests:      a.Requests,
		Donations:     a.Donations,
		Reports:       a.Reports,
		Notifications: a.Notifications,
		Storage:       a.Storage,
	}
}

// JobRunner builds the runner for scheduled and one-off jobs.
func (a *App) JobRunner() *jobs.JobRunner {
	return jobs.NewJobRunner(a.Store.DonorRepository, a.Store, &jobs.Services{
		Notifications: a.Notifications,
		Email:         a.Email,
		Reports:       a.Reports,
	}, a.Config)
}

// Close releases Redis and the database.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}
