package redis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/logger"
)

// Every key this service writes lives under bargen:<area>:...
const (
	keyNamespace      = "bargen"
	idempotencyPrefix = "idempotency"
	sessionPrefix     = "session"
	lockPrefix        = "lock"
)

// ErrNotInitialized is returned by helpers called on a zero Client.
var ErrNotInitialized = errors.New("redis client not initialized")

// Both scripts run atomically server side.
const (
	// compareAndDelete removes KEYS[1] only while it still holds ARGV[1].
	compareAndDelete = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

	// incrWithExpiry increments KEYS[1] and starts its ARGV[1] ms window on
	// the first hit.
	incrWithExpiry = `local n = redis.call("INCR", KEYS[1])
if n == 1 and tonumber(ARGV[1]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`
)

// commands is the subset of go-redis the Client drives; tests swap in a fake.
type commands interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// Client backs idempotency replay, write throttling, access sessions and
// the cron lock.
type Client struct {
	store commands
	raw   *redis.Client
}

// IdempotencyStore is the slice of Client the idempotency middleware needs:
// claim with SetNX, finalize with Set, release with Del.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
}

// New connects and pings. A URL wins over the discrete address fields.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"redis_addr": opts.Addr, "redis_db": opts.DB}), "redis.connected")
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	case cfg.Address == "":
		return nil, errors.New("redis url or address is required")
	}
	// Settings from the URL take precedence over the pool config.
	opts.DB = cmp.Or(opts.DB, cfg.DB)
	opts.PoolSize = cmp.Or(opts.PoolSize, cfg.PoolSize)
	opts.MinIdleConns = cmp.Or(opts.MinIdleConns, cfg.MinIdleConns)
	opts.DialTimeout = cmp.Or(opts.DialTimeout, cfg.DialTimeout)
	opts.ReadTimeout = cmp.Or(opts.ReadTimeout, cfg.ReadTimeout)
	opts.WriteTimeout = cmp.Or(opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func (c *Client) cmds() (commands, error) {
	if c == nil || c.store == nil {
		return nil, ErrNotInitialized
	}
	return c.store, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	r, err := c.cmds()
	if err != nil {
		return err
	}
	return r.Set(ctx, key, value, ttl).Err()
}

// Get returns redis.Nil (see IsNil) for a missing key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	r, err := c.cmds()
	if err != nil {
		return "", err
	}
	return r.Get(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	r, err := c.cmds()
	if err != nil {
		return false, err
	}
	return r.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	r, err := c.cmds()
	if err != nil {
		return err
	}
	return r.Del(ctx, keys...).Err()
}

// IncrWithTTL counts hits in a fixed window that opens on the first hit.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	r, err := c.cmds()
	if err != nil {
		return 0, err
	}
	return r.Eval(ctx, incrWithExpiry, []string{key}, ttl.Milliseconds()).Int64()
}

// CompareAndDelete deletes key when it still holds expected and reports
// whether it did.
func (c *Client) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	r, err := c.cmds()
	if err != nil {
		return false, err
	}
	n, err := r.Eval(ctx, compareAndDelete, []string{key}, expected).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Client) Ping(ctx context.Context) error {
	r, err := c.cmds()
	if err != nil {
		return err
	}
	return r.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return namespaced(idempotencyPrefix, scope, id)
}

// AccessSessionKey marks an access token id as live.
func (c *Client) AccessSessionKey(accessID string) string {
	return namespaced(sessionPrefix, "access", accessID)
}

func (c *Client) LockKey(name string) string {
	return namespaced(lockPrefix, name)
}

// IsNil reports whether err is the redis missing-key sentinel.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// namespaced joins the non-blank parts under keyNamespace.
func namespaced(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}
