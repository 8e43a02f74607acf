package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hearwell/catalog-service/internal/app/catalog/config"
	"hearwell/catalog-service/internal/app/catalog/handler"
	"hearwell/catalog-service/internal/app/catalog/migration"
	"hearwell/catalog-service/internal/app/catalog/repository"
	"hearwell/catalog-service/internal/app/catalog/service"
	"hearwell/catalog-service/internal/app/catalog/util"
	"hearwell/pkg/logger"
)

const serviceName = "catalog-service"

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		logger.Init(serviceName, "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	if cfg.Log.File != "" {
		logFile := logger.InitWithFile(serviceName, cfg.Log.Level, logger.FileOptions{Path: cfg.Log.File})
		defer logFile.Close()
	} else {
		logger.Init(serviceName, cfg.Log.Level)
	}
	logger.Info().Msg("Starting Catalog Service")

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	// Без базы сервис не стартует
	pool, err := connectDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	db, err := openGorm(pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize gorm")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	// === МИГРАЦИЯ ===
	// Перенос legacy данных выполняется до старта HTTP сервера
	migrator := migration.New(db)
	if err := migrator.EnsureSchema(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare schema")
	}
	report, err := migrator.Run(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("Legacy migration failed")
	}
	if report.Failed > 0 {
		logger.Warn().Int("failed", report.Failed).Msg("Some products were not migrated, see warnings above")
	}

	// === КЕШ ===
	cache, err := newCache(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer cache.Close()

	// === СОБЫТИЯ КАТАЛОГА ===
	publisher := newPublisher(cfg.Kafka)
	defer publisher.Close()

	// === ХРАНИЛИЩЕ ИЗОБРАЖЕНИЙ ===
	fileSaver, err := newFileSaver(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize file storage")
	}

	// === АДМИНИСТРАТОР ===
	passwordHash, err := adminPasswordHash(cfg.Auth)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare admin credentials")
	}
	jwtManager := util.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	// === СЛОИ ПРИЛОЖЕНИЯ ===
	catalogService := service.NewCatalogService(
		repository.NewCategoryRepository(db),
		repository.NewFeatureRepository(db),
		repository.NewProductRepository(db),
		cache,
		publisher,
	)
	authService := service.NewAuthService(cfg.Auth.AdminUsername, passwordHash, jwtManager)

	catalogHandler := handler.NewCatalogHandler(catalogService, fileSaver)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := handler.NewAuthMiddleware(authService)

	routerOpts := handler.RouterOptions{CORSOrigins: cfg.Server.CORSOrigins}
	if cfg.Storage.Driver == "local" {
		routerOpts.UploadDir = cfg.Storage.UploadDir
		routerOpts.UploadPrefix = cfg.Storage.PublicPrefix
	}
	router := handler.SetupRoutes(catalogHandler, authHandler, authMiddleware, routerOpts)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second, // загрузка изображений
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя pgx connection pool
// Использует retry logic с 10 попытками для устойчивости при запуске в Docker
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		logger.Warn().
			Err(err).
			Int("attempt", i+1).
			Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
	}

	return pool, nil
}

// openGorm поднимает gorm поверх того же пула соединений
func openGorm(pool *pgxpool.Pool) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// newCache возвращает Redis кеш, либо in-memory кеш если Redis не настроен
func newCache(cfg config.RedisConfig) (util.Cache, error) {
	if !cfg.Enabled() {
		logger.Info().Msg("Redis is not configured, using in-memory cache")
		return util.NewMemoryCache(time.Hour, 10*time.Minute), nil
	}

	cache, err := util.NewRedisCache(cfg.Address(), cfg.Password, cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("address", cfg.Address()).Msg("Connected to Redis")
	return cache, nil
}

func newPublisher(cfg config.KafkaConfig) util.MessagePublisher {
	if len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka is not configured, catalog events are disabled")
		return util.NopPublisher{}
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Initialized Kafka producer")
	return util.NewKafkaProducer(cfg.Brokers, cfg.Topic)
}

func newFileSaver(cfg config.StorageConfig) (util.FileSaver, error) {
	if cfg.Driver == "cloudinary" {
		saver, err := util.NewCloudinaryFileSaver(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("folder", cfg.CloudinaryFolder).Msg("Uploads go to Cloudinary")
		return saver, nil
	}

	saver, err := util.NewLocalFileSaver(cfg.UploadDir, cfg.PublicPrefix)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("dir", cfg.UploadDir).Msg("Uploads are stored locally")
	return saver, nil
}

// adminPasswordHash отдает bcrypt хеш из конфига или считает его из пароля
func adminPasswordHash(cfg config.AuthConfig) (string, error) {
	if cfg.AdminPasswordHash != "" {
		if err := util.ValidateAdminPasswordHash(cfg.AdminPasswordHash); err != nil {
			return "", err
		}
		return cfg.AdminPasswordHash, nil
	}
	return util.HashAdminPassword(cfg.AdminPassword)
}
