package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Flyswatter server and worker.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Blob     BlobConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// BlobConfig configures the MinIO blob store. Uploads go through the internal
// endpoint; presigned download URLs are built against the public endpoint so
// they resolve from outside the deployment network.
type BlobConfig struct {
	InternalEndpoint string
	PublicEndpoint   string
	AccessKey        string
	SecretKey        string
	Bucket           string
	InternalSecure   bool
	PublicSecure     bool
	URLTTL           time.Duration
}

type JobsConfig struct {
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	Concurrency    int
	TaskTimeout    time.Duration
	WorkDir        string
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value
// is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("FLYSWATTER_PORT", 8080),
			Env:  envString("FLYSWATTER_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			AccessTTL:  envDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: envDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Blob: BlobConfig{
			InternalEndpoint: os.Getenv("BLOB_INTERNAL_ENDPOINT"),
			PublicEndpoint:   os.Getenv("BLOB_PUBLIC_ENDPOINT"),
			AccessKey:        os.Getenv("BLOB_ACCESS_KEY"),
			SecretKey:        os.Getenv("BLOB_SECRET_KEY"),
			Bucket:           envString("BLOB_BUCKET", "flyswatter"),
			InternalSecure:   envBool("BLOB_INTERNAL_SECURE", false),
			PublicSecure:     envBool("BLOB_PUBLIC_SECURE", true),
			URLTTL:           envDuration("BLOB_URL_TTL", 24*time.Hour),
		},
		Jobs: JobsConfig{
			MaxAttempts:    envInt("JOB_MAX_ATTEMPTS", 5),
			RetryBaseDelay: envDuration("JOB_RETRY_BASE_DELAY", 30*time.Second),
			RetryMaxDelay:  envDuration("JOB_RETRY_MAX_DELAY", 10*time.Minute),
			Concurrency:    envInt("JOB_CONCURRENCY", 4),
			TaskTimeout:    envDuration("JOB_TASK_TIMEOUT", 5*time.Minute),
			WorkDir:        envString("JOB_WORK_DIR", os.TempDir()),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Blob.InternalEndpoint == "" {
		return fmt.Errorf("BLOB_INTERNAL_ENDPOINT is required")
	}
	if c.Blob.PublicEndpoint == "" {
		return fmt.Errorf("BLOB_PUBLIC_ENDPOINT is required")
	}
	if c.Blob.AccessKey == "" || c.Blob.SecretKey == "" {
		return fmt.Errorf("BLOB_ACCESS_KEY and BLOB_SECRET_KEY are required")
	}

	if c.Jobs.MaxAttempts < 1 {
		return fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1, got %d", c.Jobs.MaxAttempts)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
