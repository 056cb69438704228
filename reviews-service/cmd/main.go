package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shopreviews/pkg/logger"
	"shopreviews/reviews-service/internal/app/reviews/config"
	"shopreviews/reviews-service/internal/app/reviews/handler"
	"shopreviews/reviews-service/internal/app/reviews/infrastructure"
	"shopreviews/reviews-service/internal/app/reviews/infrastructure/cache"
	"shopreviews/reviews-service/internal/app/reviews/infrastructure/identity"
	"shopreviews/reviews-service/internal/app/reviews/infrastructure/messaging"
	"shopreviews/reviews-service/internal/app/reviews/processor"
	"shopreviews/reviews-service/internal/app/reviews/repository"
	"shopreviews/reviews-service/internal/app/reviews/service"
)

const serviceName = "reviews-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer closeDB(db)
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	// Redis не обязателен: без него список отзывов читается напрямую из БД
	var reviewCache infrastructure.ReviewCache
	redisClient, err := cache.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, reviews cache disabled")
	} else {
		defer redisClient.Close()
		reviewCache = cache.NewRedisReviewCache(redisClient)
		logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")
	}

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	store := repository.NewDatastore(db)
	reviewService := service.NewReviewService(store, reviewCache, kafkaProducer, cfg.Redis.CacheTTL)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	statsScheduler := processor.NewStatsScheduler(reviewService)
	if err := statsScheduler.Start(schedulerCtx, cfg.Scheduler.StatsSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start stats scheduler")
	}

	identityProvider := identity.NewJWTProvider(cfg.JWT.Secret, 24*time.Hour)
	authMiddleware := handler.NewAuthMiddleware(identityProvider)
	reviewHandler := handler.NewReviewHandler(reviewService)
	router := handler.SetupRoutes(reviewHandler, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Reviews Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Reviews Service...")

	stopScheduler()
	statsScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Reviews Service stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.LogSQL {
		logLevel = gormlogger.Info
	}

	// Ping делает connectWithRetry
	gormConfig := &gorm.Config{
		DisableAutomaticPing: true,
		Logger: gormlogger.New(gormLogWriter{log: logger.Logger().With().Str("component", "gorm").Logger()}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	}

	return connectWithRetry(func() gorm.Dialector { return postgres.Open(cfg.DSN()) }, gormConfig, 10, 3*time.Second)
}

// connectWithRetry открывает пул и пингует его; пул неудачной попытки закрывается
func connectWithRetry(dialector func() gorm.Dialector, gormConfig *gorm.Config, attempts int, delay time.Duration) (*gorm.DB, error) {
	var err error

	for i := 0; i < attempts; i++ {
		var db *gorm.DB
		db, err = gorm.Open(dialector(), gormConfig)
		if err == nil {
			err = pingAndConfigurePool(db)
		}
		if err == nil {
			return db, nil
		}

		// gorm.Open возвращает открытый пул и при ошибке
		closeDB(db)

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}

	return nil, err
}

func pingAndConfigurePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// gormLogWriter направляет логи GORM в zerolog
type gormLogWriter struct {
	log zerolog.Logger
}

func (w gormLogWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Msgf(format, args...)
}
