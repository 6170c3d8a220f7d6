package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bargen/bargen-backend/pkg/config"
)

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, "bargen:write:alice", time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].ttl != time.Minute {
		t.Fatalf("expected a single expire call, got %+v", mock.expireCalls)
	}
}

func TestCompareAndDeleteOnlyRemovesMatchingValue(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.LockKey("cron")

	if _, err := client.SetNX(ctx, key, "worker-a:1", time.Minute); err != nil {
		t.Fatalf("setnx: %v", err)
	}
	deleted, err := client.CompareAndDelete(ctx, key, "worker-b:2")
	if err != nil || deleted {
		t.Fatalf("foreign owner must not delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = client.CompareAndDelete(ctx, key, "worker-a:1")
	if err != nil || !deleted {
		t.Fatalf("owner delete failed: deleted=%v err=%v", deleted, err)
	}
	if _, err := client.Get(ctx, key); !IsNil(err) {
		t.Fatalf("expected key gone, got %v", err)
	}
}

func TestSetGetDelLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.AccessSessionKey("jti-1")
	if err := client.Set(ctx, key, "1", 10*time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != "1" {
		t.Fatalf("expected stored value, got %q", value)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); !IsNil(err) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestZeroClientReturnsNotInitialized(t *testing.T) {
	client := &Client{}
	if _, err := client.SetNX(context.Background(), "k", "v", time.Second); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := client.Ping(context.Background()); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized from ping, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "bargen:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.AccessSessionKey("abc"); got != "bargen:session:access:abc" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.LockKey(" cron "); got != "bargen:lock:cron" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.IdempotencyKey("scope", ""); got != "bargen:idempotency:scope" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@cache:6380/3", DB: 1, PoolSize: 7})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 3 || opts.PoolSize != 7 || opts.Password != "pw" {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2})
	if err != nil || opts.Addr != "localhost:6379" || opts.DB != 2 {
		t.Fatalf("unexpected address options %+v %v", opts, err)
	}

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected missing address error")
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// Eval understands the two scripts the client ships.
func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected arity"))
	}
	switch script {
	case compareAndDelete:
		if v, ok := m.data[keys[0]]; ok && v == fmt.Sprint(args[0]) {
			delete(m.data, keys[0])
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	case incrWithExpiry:
		m.incr[keys[0]]++
		n := m.incr[keys[0]]
		if ms, _ := args[0].(int64); n == 1 && ms > 0 {
			m.expireCalls = append(m.expireCalls, expireCall{key: keys[0], ttl: time.Duration(ms) * time.Millisecond})
		}
		return redis.NewCmdResult(n, nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("unexpected script"))
}
