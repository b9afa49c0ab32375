package builder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/repository"
	"go.uber.org/zap"
)

// setupDatabase creates a new PostgreSQL connection pool
func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
	)

	return pool, nil
}

// setupSessionStorage opens the configured session store and registers its
// cleanup on the app.
func setupSessionStorage(ctx context.Context, cfg *config.Config, app *App) (repository.SessionRepository, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverSQLite:
		store, err := repository.NewSessionSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		app.addCloser("sqlite", store.Close)
		app.logger.Info("SQLite session storage ready", zap.String("path", cfg.SQLitePath))
		return store, nil

	default:
		db, err := setupDatabase(ctx, cfg, app.logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}
		app.addCloser("postgres", func() error {
			db.Close()
			return nil
		})

		app.logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		app.logger.Info("Database migrations completed successfully")

		return repository.NewSessionPostgres(db), nil
	}
}

// setupSessionCache returns nil when caching is disabled.
func setupSessionCache(ctx context.Context, cfg config.CacheConfig, app *App) (repository.SessionCache, error) {
	switch cfg.Driver {
	case config.CacheDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		app.addCloser("redis", client.Close)
		app.logger.Info("Redis session cache ready", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.TTL))
		return repository.NewSessionRedisCache(client, cfg.TTL), nil

	case config.CacheDriverMemory:
		app.logger.Info("In-memory session cache ready", zap.Duration("ttl", cfg.TTL))
		return repository.NewSessionMemoryCache(cfg.TTL, cfg.CleanupInterval), nil

	default:
		return nil, nil
	}
}
