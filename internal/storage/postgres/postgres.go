// Package postgres keeps game snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rngsim/internal/config"
)

// HealthInterval is how often a started Pool pings the database.
const HealthInterval = 30 * time.Second

// pingTimeout bounds a single health ping.
const pingTimeout = 5 * time.Second

// Pool owns the connections behind the snapshot stores. Run as a lifecycle
// service it pings the database every HealthInterval; Stop closes it, so it
// must be registered before anything that still saves during shutdown.
type Pool struct {
	db       *pgxpool.Pool
	logger   *zap.Logger
	interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// poolConfig maps the database section onto pgxpool settings.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	return poolCfg, nil
}

// Connect opens a pool for cfg and checks that the database answers.
//
// Precondition: logger must be non-nil; cfg must pass config validation.
// Postcondition: Returns a Pool that answered a ping, or a non-nil error.
func Connect(ctx context.Context, logger *zap.Logger, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	p := &Pool{
		db:       db,
		logger:   logger,
		interval: HealthInterval,
		stop:     make(chan struct{}),
	}
	if err := p.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return p, nil
}

// Snapshots returns the snapshot store for slot on this pool.
func (p *Pool) Snapshots(slot string) *SnapshotStore {
	return NewSnapshotStore(p.db, slot)
}

// Ping checks that the database answers within pingTimeout.
func (p *Pool) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.db.Ping(ctx)
}

// Start pings the database every interval until Stop, logging failures.
// A failed ping does not end the service; pgx reconnects on the next use.
func (p *Pool) Start() error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return nil
		case <-ticker.C:
			if err := p.Ping(context.Background()); err != nil {
				p.logger.Warn("database health check failed", zap.Error(err))
			}
		}
	}
}

// Stop ends Start and closes every connection. It is safe to call more
// than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		p.db.Close()
	})
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.db
}
