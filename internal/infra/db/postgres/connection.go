package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"vacancy-export-bot/internal/config"
	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/infra/metrics"
)

// Querier is the subset of *pgxpool.Pool the repositories use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// QuerierSource hands out the shared querier, creating it if needed.
type QuerierSource interface {
	Querier(ctx context.Context) (Querier, error)
}

type pgPool interface {
	Querier
	Stat() *pgxpool.Stat
	Close()
}

type dialFunc func(ctx context.Context, cfg config.DatabaseConfig) (pgPool, error)

var _ QuerierSource = (*Provider)(nil)

// Provider owns the process-wide connection pool. The pool is created once,
// either by an explicit warm-up at startup or by the first request; concurrent
// first callers share one creation. A failed creation is retried on the next call.
type Provider struct {
	cfg  config.DatabaseConfig
	dial dialFunc
	log  *zerolog.Logger

	mu     sync.Mutex
	pool   pgPool
	closed bool
}

func NewProvider(cfg config.DatabaseConfig, logger *zerolog.Logger) *Provider {
	l := logger.With().Str("component", "PgProvider").Logger()
	return &Provider{cfg: cfg, dial: dialPgxPool, log: &l}
}

// Querier returns the shared pool. Creation failures wrap domain.ErrStoreUnavailable.
func (p *Provider) Querier(ctx context.Context) (Querier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("%w: pool is closed", domain.ErrStoreUnavailable)
	}
	if p.pool != nil {
		return p.pool, nil
	}

	p.log.Info().Msg("connection pool absent, creating")
	pool, err := p.dial(ctx, p.cfg)
	metrics.IncPoolCreated(err)
	if err != nil {
		p.log.Error().Err(err).Msg("connection pool creation failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	p.pool = pool
	p.log.Info().Int32("max_conns", p.cfg.MaxConns).Msg("connection pool created")
	return pool, nil
}

// Warmup creates the pool eagerly.
func (p *Provider) Warmup(ctx context.Context) error {
	_, err := p.Querier(ctx)
	return err
}

// Stats reports pool counters; ok is false while no pool exists.
func (p *Provider) Stats() (total, idle, inUse int32, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return 0, 0, 0, false
	}
	st := p.pool.Stat()
	if st == nil {
		return 0, 0, 0, false
	}
	return st.TotalConns(), st.IdleConns(), st.AcquiredConns(), true
}

// Close closes the pool once. Safe to call when no pool was ever created.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
		p.log.Info().Msg("connection pool closed")
	}
}

func dialPgxPool(ctx context.Context, cfg config.DatabaseConfig) (pgPool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse DB DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	if cfg.DisableStmtCache {
		// pgbouncer in transaction mode cannot hold prepared statements
		poolConfig.ConnConfig.BuildStatementCache = nil
		poolConfig.ConnConfig.PreferSimpleProtocol = true
	}

	connCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(connCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
