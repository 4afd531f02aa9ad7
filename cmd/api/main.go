// Package main is the entry point for the guide-validator API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"guide-validator/internal/app/service"
	"guide-validator/internal/config"
	"guide-validator/internal/domain"
	"guide-validator/internal/infra/postgres"
	"guide-validator/internal/infra/postgres/migrations"
	rediscache "guide-validator/internal/infra/redis"
	"guide-validator/internal/infra/source/registry"
	"guide-validator/internal/job"
	"guide-validator/internal/logger"
	"guide-validator/internal/transport/httpserver"
	"guide-validator/internal/validator"
	"guide-validator/pkg/locker"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting guide-validator",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	db, err := postgres.NewConnection(
		postgres.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			Name:         cfg.Database.Name,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	repo := postgres.NewRepository(db)

	sources, err := registry.NewSources(cfg.Source, log.Logger)
	if err != nil {
		log.Fatal("failed to build directory sources", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
	)

	var cache domain.Cache
	if cfg.Cache.Enabled {
		cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		log.Info("search cache enabled",
			zap.Duration("search_ttl", cfg.Cache.SearchTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("search cache disabled")
	}

	searchDefaults := domain.SearchDefaults{
		FallbackCountry: cfg.Search.FallbackCountry,
		PageSize:        cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}

	searchSvc := service.NewSearchService(repo, cache, searchDefaults, cfg.Cache.SearchTTL, log.Logger)
	materializer := service.NewMaterializeService(repo, sources, cache, log.Logger)

	distLocker := locker.NewRedisLocker(redisClient, log.Logger)

	v := validator.New()

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:       cfg.App.Port,
			BodyLimit:  1024 * 1024, // 1MB
			Debug:      cfg.App.Debug,
			AdminToken: cfg.Admin.Token,
		},
		searchSvc,
		materializer,
		db,
		v,
		log.Logger,
	)

	scheduler := job.NewRefreshScheduler(
		materializer,
		job.RefreshConfig{
			Interval:  cfg.Refresh.Interval,
			Timeout:   cfg.Refresh.Timeout,
			OnStartup: cfg.Refresh.OnStartup,
		},
		log.Logger,
		distLocker,
	)
	scheduler.Start(cfg.Refresh.OnStartup)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		scheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
