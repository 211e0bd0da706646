package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fancystore/storeadmin/internal/blob"
	"github.com/fancystore/storeadmin/internal/blob/filesystem"
	"github.com/fancystore/storeadmin/internal/blob/gridfs"
	"github.com/fancystore/storeadmin/internal/blob/memory"
	"github.com/fancystore/storeadmin/internal/blob/minio"
	"github.com/fancystore/storeadmin/internal/cache"
	"github.com/fancystore/storeadmin/internal/config"
	"github.com/fancystore/storeadmin/internal/event"
	handler "github.com/fancystore/storeadmin/internal/handler/http"
	"github.com/fancystore/storeadmin/internal/repository/postgres"
	"github.com/fancystore/storeadmin/internal/service"
	"github.com/fancystore/storeadmin/migrations"
	"github.com/fancystore/storeadmin/pkg/database"
	"github.com/fancystore/storeadmin/pkg/health"
	pkgkafka "github.com/fancystore/storeadmin/pkg/kafka"
	"github.com/fancystore/storeadmin/pkg/middleware"
	"github.com/fancystore/storeadmin/pkg/tracing"
)

const serviceName = "storeadmin"

// App wires together all dependencies and runs the admin service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	mongo          *mongo.Client
	images         *blob.Adapter
	httpServer     *http.Server
	tracerShutdown tracing.Shutdown
}

// NewApp creates a new application instance, initializing all dependencies.
// The blob store is only constructed here; it is initialized in Run so a
// slow backend does not delay the HTTP listener.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TracingSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}

	// PostgreSQL holds products, categories and orders.
	pgCfg := cfg.Postgres()
	a.pool, err = database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(nil, a.pool, serviceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
		a.pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	backend, err := a.newBlobBackend(ctx)
	if err != nil {
		a.pool.Close()
		return nil, err
	}
	blobCfg := blob.DefaultConfig()
	blobCfg.Timeout = cfg.BlobTimeout
	a.images = blob.NewAdapter(backend, blobCfg, logger)

	var statsCache service.StatsCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		a.redis, err = database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis unreachable, dashboard cache will retry per request",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))
		}
		statsCache = cache.NewStatsCache(a.redis, cfg.StatsCacheTTL)
	}

	var publisher event.Publisher = event.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		if err := a.producer.Ping(ctx); err != nil {
			logger.Warn("kafka ping failed, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
		publisher = a.producer
	}
	eventProducer := event.NewProducer(publisher, logger)

	// Build the dependency graph.
	productRepo := postgres.NewProductRepository(a.pool)
	categoryRepo := postgres.NewCategoryRepository(a.pool)
	orderRepo := postgres.NewOrderRepository(a.pool)
	userRepo := postgres.NewUserRepository(a.pool)

	svcs := handler.Services{
		Products:   service.NewProductService(productRepo, a.images, eventProducer, statsCache, logger),
		Categories: service.NewCategoryService(categoryRepo, a.images, eventProducer, statsCache, logger),
		Orders:     service.NewOrderService(orderRepo, eventProducer, statsCache, logger),
		Users:      service.NewUserService(userRepo, logger),
		Dashboard: service.NewDashboardService(productRepo, categoryRepo, orderRepo, userRepo, a.images,
			statsCache, cfg.LowStockThreshold, logger),
		Catalog: service.NewCatalogService(productRepo, logger),
		Images:  a.images,
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return a.pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("blobstore", a.images.Ping)
	if a.redis != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(svcs, healthHandler, handler.RouterConfig{
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORS:           corsCfg,
		PprofEnabled:   cfg.PprofEnabled,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
	}, logger)

	a.httpServer = newHTTPServer(cfg.HTTPPort, router)

	return a, nil
}

// Server timeouts.
const (
	readTimeout       = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newHTTPServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// newBlobBackend builds the backend selected by BLOB_BACKEND.
func (a *App) newBlobBackend(ctx context.Context) (blob.Backend, error) {
	cfg := a.cfg
	switch cfg.BlobBackend {
	case config.BlobGridFS:
		gcfg := gridfs.Config{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
			Bucket:   cfg.GridFSBucket,
			BaseURL:  cfg.PublicBaseURL,
		}
		client, err := gridfs.Connect(ctx, gcfg)
		if err != nil {
			return nil, err
		}
		store, err := gridfs.New(client, gcfg)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		a.mongo = client
		return store, nil
	case config.BlobMinIO:
		return minio.New(minio.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			Region:    cfg.MinIORegion,
			UseSSL:    cfg.MinIOUseSSL,
			BaseURL:   cfg.PublicBaseURL,
		})
	case config.BlobMemory:
		a.logger.Warn("using in-memory blob store, images are lost on restart")
		return memory.New(cfg.PublicBaseURL), nil
	default:
		return filesystem.New(cfg.UploadDir, cfg.PublicBaseURL), nil
	}
}

// Run starts the HTTP server and initializes the blob store, then blocks
// until the context is canceled. Image routes answer 503 until the store is
// ready.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("blob_backend", a.images.BackendName()),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		if err := a.images.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("blob store never became ready", slog.String("error", err.Error()))
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis and MongoDB clients
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.mongo != nil {
		mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer mongoCancel()
		if err := a.mongo.Disconnect(mongoCtx); err != nil {
			a.logger.Error("mongo disconnect error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
