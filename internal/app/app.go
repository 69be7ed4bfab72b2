package app

import (
	"context"
	"fmt"
	"time"

	"github.com/phambaophuc/image-derivative/internal/config"
	"github.com/phambaophuc/image-derivative/internal/services/cache"
	"github.com/phambaophuc/image-derivative/internal/services/derivative"
	"github.com/phambaophuc/image-derivative/internal/services/processor"
	"github.com/phambaophuc/image-derivative/internal/services/queue"
	"github.com/phambaophuc/image-derivative/internal/services/sizespec"
	"github.com/phambaophuc/image-derivative/internal/services/storage"
	"github.com/phambaophuc/image-derivative/internal/services/token"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisMaxRetries = 3
	redisTimeout    = 5 * time.Second
)

const (
	DriverS3       = "s3"
	DriverSupabase = "supabase"
	DriverMemory   = "memory"
)

// App holds the services shared by the HTTP server, the Lambda entry point
// and the CLI.
type App struct {
	Config   *config.Config
	Service  *derivative.Service
	Checkers []storage.HealthChecker

	// Optional; nil when not configured.
	Queue *queue.QueueService
	Cache *cache.RedisCache

	logger *zap.Logger
}

// New builds the derivative service from cfg. Redis and RabbitMQ are
// optional: a connection failure is logged and the feature disabled.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.Token.Secret == "" {
		logger.Warn("JWT_SECRET is empty, every token will be rejected")
	}

	origin, dest, checkers, err := newGateways(cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Checkers: checkers,
		logger:   logger,
	}

	deps := derivative.Dependencies{
		Origin:    origin,
		Dest:      dest,
		Parser:    sizespec.NewParser(cfg.Image.AllowedSizes),
		Validator: token.NewValidator(cfg.Token.Secret, logger),
		Engine:    processor.NewEngine(cfg.Image.MaxFileSize, cfg.Image.JPEGQuality, cfg.Derivative.BlurPreviewSize).
			WithMaxPixels(cfg.Image.MaxPixels),
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     10, // Connection pool
			MinIdleConns: 5,
			MaxRetries:   redisMaxRetries,
			DialTimeout:  redisTimeout,
			ReadTimeout:  redisTimeout,
			WriteTimeout: redisTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, blurhash cache disabled", zap.Error(err))
			client.Close()
		} else {
			a.Cache = cache.NewRedisCache(client, cfg.Redis.CacheDuration)
			deps.Cache = a.Cache
			a.Checkers = append(a.Checkers, a.Cache)
		}
	}

	if cfg.RabbitMQ.URL != "" {
		q, err := queue.NewQueueService(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
		if err != nil {
			logger.Warn("Failed to initialize queue service", zap.Error(err))
		} else {
			a.Queue = q
			deps.Notifier = q
		}
	}

	a.Service = derivative.NewService(derivative.Options{
		OriginBucket:        originBucket(cfg),
		DestBucket:          destBucket(cfg),
		StorageURL:          cfg.Derivative.StorageURL,
		DestCDNURL:          cfg.Derivative.DestCDNURL,
		ResizeCacheCheck:    cfg.Derivative.ResizeCacheCheck,
		BlurCacheCheck:      cfg.Derivative.BlurCacheCheck,
		BlurPersistMetadata: cfg.Derivative.BlurPersistMetadata,
	}, deps, logger)

	return a, nil
}

func newGateways(cfg *config.Config, logger *zap.Logger) (storage.Gateway, storage.Gateway, []storage.HealthChecker, error) {
	switch cfg.Storage.Driver {
	case DriverS3:
		origin, err := storage.NewS3Gateway(storage.S3Config{
			Endpoint:     cfg.Storage.Endpoint,
			AccessKey:    cfg.Storage.AccessKey,
			AccessSecret: cfg.Storage.AccessSecret,
			Region:       cfg.Storage.OriginRegion,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Storage.DestRegion == cfg.Storage.OriginRegion {
			return origin, origin, []storage.HealthChecker{origin}, nil
		}

		dest, err := storage.NewS3Gateway(storage.S3Config{
			Endpoint:     cfg.Storage.Endpoint,
			AccessKey:    cfg.Storage.AccessKey,
			AccessSecret: cfg.Storage.AccessSecret,
			Region:       cfg.Storage.DestRegion,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return origin, dest, []storage.HealthChecker{origin, dest}, nil

	case DriverSupabase:
		g := storage.NewSupabaseGateway(cfg.Supabase.URL, cfg.Supabase.KEY, cfg.Supabase.BUCKET)
		return g, g, []storage.HealthChecker{g}, nil

	case DriverMemory:
		g := storage.NewMemoryGateway()
		return g, g, []storage.HealthChecker{g}, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// originBucket falls back to the Supabase bucket when no origin bucket is set.
func originBucket(cfg *config.Config) string {
	if cfg.Storage.OriginBucket == "" {
		return cfg.Supabase.BUCKET
	}
	return cfg.Storage.OriginBucket
}

func destBucket(cfg *config.Config) string {
	if cfg.Storage.DestBucket == "" {
		return originBucket(cfg)
	}
	return cfg.Storage.DestBucket
}

// Close releases the optional connections.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}
