package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/logger"
)

const (
	sqliteMemory    = "file::memory:?cache=shared"
	firstPingDelay  = 250 * time.Millisecond
	maxPingDelay    = 4 * time.Second
	dialectPostgres = "postgres"
)

// Client owns the process-wide gorm handle.
type Client struct {
	conn *gorm.DB
}

// New opens the configured database, applies the pool limits and pings it,
// retrying with backoff up to cfg.ConnectAttempts times.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	limitPool(sqlDB, cfg)

	c := &Client{conn: conn}
	if err := c.pingWithBackoff(ctx, cfg.ConnectAttempts, logg); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", dialector.Name()), "db.connected")
	}
	return c, nil
}

// Wrap adopts an already opened connection, mostly for tests.
func Wrap(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func (c *Client) pingWithBackoff(ctx context.Context, attempts int, logg *logger.Logger) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.NewExponential(firstPingDelay)
	backoff = retry.WithCappedDuration(maxPingDelay, backoff)
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff)

	try := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		try++
		err := c.Ping(ctx)
		if err == nil {
			return nil
		}
		if logg != nil {
			logg.Warn(logg.WithFields(ctx, map[string]any{"attempt": try, "error": err.Error()}), "db.ping.failed")
		}
		return retry.RetryableError(err)
	})
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.DBDriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = sqliteMemory
		}
		return sqlite.Open(path), nil
	case "", config.DBDriverPostgres:
		if cfg.DSN == "" {
			return nil, errors.New("database DSN is required")
		}
		// Simple protocol keeps pgbouncer in transaction mode happy.
		return postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true}), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func limitPool(sqlDB *sql.DB, cfg config.DBConfig) {
	if n := cfg.MaxOpenConns; n > 0 {
		sqlDB.SetMaxOpenConns(n)
	}
	if n := cfg.MaxIdleConns; n > 0 {
		sqlDB.SetMaxIdleConns(n)
	}
	if d := cfg.ConnMaxLifetime; d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}
	if d := cfg.ConnMaxIdleTime; d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

// IsPostgres reports whether row locking clauses are available.
func (c *Client) IsPostgres() bool {
	return IsPostgres(c.conn)
}

func IsPostgres(conn *gorm.DB) bool {
	return conn != nil && conn.Dialector != nil && conn.Dialector.Name() == dialectPostgres
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn in a transaction bound to ctx. An error or panic from fn
// rolls back; a panic is re-raised after the rollback.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
