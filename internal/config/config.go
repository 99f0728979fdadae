package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	SendGrid    SendGridConfig    `yaml:"sendgrid"`
	JWT         JWTConfig         `yaml:"jwt"`
	Storage     StorageConfig     `yaml:"storage"`
	Geocoder    GeocoderConfig    `yaml:"geocoder"`
	Eligibility EligibilityConfig `yaml:"eligibility"`
	Cache       CacheConfig       `yaml:"cache"`
	Log         LogConfig         `yaml:"log"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// ServerConfig contains the HTTP API and gRPC health listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
	BaseURL  string `yaml:"base_url"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains dashboard cache connection settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SendGridConfig contains email service settings. An empty APIKey disables email.
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessTokenExpiry) * time.Minute
}

func (j JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTokenExpiry) * time.Minute
}

// StorageConfig contains report storage settings
type StorageConfig struct {
	Type      string `yaml:"type"`       // "local" or "s3"
	UploadDir string `yaml:"upload_dir"` // For local storage
	BaseURL   string `yaml:"base_url"`   // Server base URL for local download links
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// GeocoderConfig points at a Nominatim-compatible search endpoint. An empty BaseURL disables geocoding.
type GeocoderConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RetryCount     int    `yaml:"retry_count"`
}

type EligibilityConfig struct {
	CooldownDays int `yaml:"cooldown_days"`
}

type CacheConfig struct {
	DashboardTTLSeconds int `yaml:"dashboard_ttl_seconds"`
}

func (c CacheConfig) DashboardTTL() time.Duration {
	return time.Duration(c.DashboardTTLSeconds) * time.Second
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	EligibilityReminders string `yaml:"eligibility_reminders"`
	WarmDashboardCache   string `yaml:"warm_dashboard_cache"`
	DatabaseHealthProbe  string `yaml:"database_health_probe"`
	PurgeExpiredExports  string `yaml:"purge_expired_exports"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a validated configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Storage
	if val := os.Getenv("STORAGE_TYPE"); val != "" {
		c.Storage.Type = val
	}
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}
	if val := os.Getenv("S3_BUCKET"); val != "" {
		c.Storage.Bucket = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		c.Storage.Region = val
	}

	// Geocoder
	if val := os.Getenv("GEOCODER_BASE_URL"); val != "" {
		c.Geocoder.BaseURL = val
	}

	// Eligibility
	if val := os.Getenv("ELIGIBILITY_COOLDOWN_DAYS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Eligibility.CooldownDays)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = c.Server.Port + 1
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 || c.Server.GRPCPort == c.Server.Port {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// SendGrid validation
	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from_email is required when api_key is set")
	}
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "Blood Drive"
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}

	// Storage validation
	switch c.Storage.Type {
	case "", "local":
		c.Storage.Type = "local"
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required for local storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("s3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	// Geocoder defaults
	if c.Geocoder.TimeoutSeconds == 0 {
		c.Geocoder.TimeoutSeconds = 5
	}
	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = "blooddrive-backend"
	}

	// Eligibility defaults
	if c.Eligibility.CooldownDays == 0 {
		c.Eligibility.CooldownDays = 90
	}
	if c.Eligibility.CooldownDays < 0 {
		return fmt.Errorf("invalid eligibility cooldown: %d days", c.Eligibility.CooldownDays)
	}

	// Cache defaults
	if c.Cache.DashboardTTLSeconds == 0 {
		c.Cache.DashboardTTLSeconds = 300
	}

	// Scheduler defaults
	if c.Scheduler.EligibilityReminders == "" {
		c.Scheduler.EligibilityReminders = "0 0 8 * * *" // 8 AM UTC
	}
	if c.Scheduler.WarmDashboardCache == "" {
		c.Scheduler.WarmDashboardCache = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.DatabaseHealthProbe == "" {
		c.Scheduler.DatabaseHealthProbe = "*/30 * * * * *" // every 30 seconds
	}
	if c.Scheduler.PurgeExpiredExports == "" {
		c.Scheduler.PurgeExpiredExports = "0 */10 * * * *" // every 10 minutes
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP API address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health listener address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
