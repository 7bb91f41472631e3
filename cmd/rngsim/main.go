// Package main provides the rngsim binary: an idle number-matching game
// played from the terminal, with an optional read-only status API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rngsim/internal/config"
	"github.com/cory-johannsen/rngsim/internal/console"
	"github.com/cory-johannsen/rngsim/internal/game/engine"
	"github.com/cory-johannsen/rngsim/internal/game/scheduler"
	"github.com/cory-johannsen/rngsim/internal/httpapi"
	"github.com/cory-johannsen/rngsim/internal/observability"
	"github.com/cory-johannsen/rngsim/internal/server"
	"github.com/cory-johannsen/rngsim/internal/storage"
	"github.com/cory-johannsen/rngsim/internal/storage/file"
	"github.com/cory-johannsen/rngsim/internal/storage/memory"
	"github.com/cory-johannsen/rngsim/internal/storage/postgres"
	"github.com/cory-johannsen/rngsim/internal/storage/redis"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)); err != nil {
		logger.Warn("setting GOMAXPROCS", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)

	store, err := openStore(ctx, logger, cfg, lifecycle)
	if err != nil {
		logger.Fatal("opening save store", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}

	game, err := engine.Open(ctx, logger, store, engine.Options{
		HistoryLimit: cfg.Game.HistoryLimit,
		BurstSpacing: cfg.Game.BurstSpacing,
		SaveTimeout:  cfg.Storage.SaveTimeout,
	})
	if err != nil {
		logger.Fatal("opening game", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	// Added after the store so shutdown drains bursts before connections close.
	lifecycle.Add("engine", game)

	clock := scheduler.NewDisplayClock(cfg.Game.ClockInterval, time.Now)
	stopClock := clock.Start()
	defer stopClock()

	con := console.New(logger, game, os.Stdin, os.Stdout, console.Options{
		Color: cfg.Game.Color,
		Clock: clock,
	})
	lifecycle.Add("console", con)

	if cfg.HTTP.Enabled() {
		lifecycle.Add("status-api", httpapi.New(logger, cfg.HTTP, game, clock.Now))
	}

	logger.Info("rngsim initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("backend", cfg.Storage.Backend),
		zap.String("http_addr", cfg.HTTP.Addr),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("rngsim error", zap.Error(err))
	}
}

// openStore builds the configured save backend. Backends that hold
// connections register a lifecycle service that closes them on shutdown.
func openStore(ctx context.Context, logger *zap.Logger, cfg config.Config, lifecycle *server.Lifecycle) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Warn("memory backend selected, progress will not survive exit")
		return memory.New(), nil

	case config.BackendFile:
		store, err := file.New(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("saving to file", zap.String("path", store.Path()))
		return store, nil

	case config.BackendPostgres:
		dbStart := time.Now()
		pool, err := postgres.Connect(ctx, logger, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.String("slot", cfg.Storage.Slot),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		lifecycle.Add("postgres", pool)
		return pool.Snapshots(cfg.Storage.Slot), nil

	case config.BackendRedis:
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		store := redis.NewStore(rdb, cfg.Storage.Slot)
		logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr), zap.String("key", store.Key()))
		lifecycle.Add("redis", healthService(logger, "redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}, func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("closing redis client", zap.Error(err))
			}
		}))
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// healthService checks the redis connection every 30 seconds and closes it
// when the lifecycle stops.
func healthService(logger *zap.Logger, name string, check func(context.Context) error, closeFn func()) server.Service {
	stop := make(chan struct{})
	return &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return nil
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := check(ctx); err != nil {
						logger.Warn(name+" health check failed", zap.Error(err))
					}
					cancel()
				}
			}
		},
		StopFn: func() {
			close(stop)
			closeFn()
		},
	}
}
