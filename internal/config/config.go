package config

import (
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/fancystore/storeadmin/pkg/config"
	"github.com/fancystore/storeadmin/pkg/database"
)

// Blob backends.
const (
	BlobFilesystem = "filesystem"
	BlobGridFS     = "gridfs"
	BlobMinIO      = "minio"
	BlobMemory     = "memory"
)

// Config holds all configuration for the admin service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort      int    `env:"HTTP_PORT" envDefault:"5000"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:""`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storeadmin"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storeadmin_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storeadmin"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	PostgresMaxConns   int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Image storage
	BlobBackend    string        `env:"BLOB_BACKEND" envDefault:"filesystem"`
	BlobTimeout    time.Duration `env:"BLOB_TIMEOUT" envDefault:"10s"`
	UploadDir      string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// GridFS
	MongoURI     string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB      string `env:"MONGO_DB" envDefault:"fancyStore"`
	GridFSBucket string `env:"GRIDFS_BUCKET" envDefault:"images"`

	// MinIO
	MinIOEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:""`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:""`
	MinIOBucket    string `env:"MINIO_BUCKET" envDefault:"storeadmin-images"`
	MinIORegion    string `env:"MINIO_REGION" envDefault:""`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Dashboard
	LowStockThreshold int `env:"LOW_STOCK_THRESHOLD" envDefault:"10"`

	// Redis stats cache. An empty address disables the cache.
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:""`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"30s"`

	// Kafka. No brokers disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`

	// Profiling
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load storeadmin config: %w", err)
	}

	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storeadmin config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants. pkgconfig.Load calls it after
// parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains([]string{BlobFilesystem, BlobGridFS, BlobMinIO, BlobMemory}, c.BlobBackend) {
		return fmt.Errorf("invalid BLOB_BACKEND %q: must be one of filesystem, gridfs, minio, memory", c.BlobBackend)
	}
	if c.BlobTimeout <= 0 {
		return fmt.Errorf("BLOB_TIMEOUT must be positive, got %s", c.BlobTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative, got %d", c.LowStockThreshold)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0 and 1, got %v", c.TracingSampleRate)
	}

	switch c.BlobBackend {
	case BlobFilesystem:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for the filesystem backend")
		}
	case BlobGridFS:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the gridfs backend")
		}
	case BlobMinIO:
		if c.MinIOEndpoint == "" || c.MinIOAccessKey == "" || c.MinIOSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	}
	return nil
}

// Postgres returns the connection pool settings.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	if c.PostgresMaxConns > 0 {
		pg.MaxConns = c.PostgresMaxConns
	}
	return pg
}
