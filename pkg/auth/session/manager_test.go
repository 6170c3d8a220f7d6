package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memoryKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttl[key] = ttl
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryKV) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager(kv *memoryKV) *Manager {
	return &Manager{kv: kv, isNil: func(err error) bool { return errors.Is(err, redislib.Nil) }}
}

func TestRegisterThenRevoke(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	m := newTestManager(kv)

	require.NoError(t, m.Register(ctx, "jti-1", "alice", time.Hour))
	assert.Equal(t, time.Hour, kv.ttl["sess:jti-1"])

	ok, err := m.HasSession(ctx, "jti-1", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Revoke(ctx, "jti-1"))
	ok, err = m.HasSession(ctx, "jti-1", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionIsBoundToPrincipal(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemoryKV())
	require.NoError(t, m.Register(ctx, "jti-2", "alice", time.Hour))

	ok, err := m.HasSession(ctx, "jti-2", "mallory")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreErrorsSurface(t *testing.T) {
	kv := newMemoryKV()
	kv.err = errors.New("redis down")

	_, err := newTestManager(kv).HasSession(context.Background(), "jti", "alice")
	assert.EqualError(t, err, "redis down")
}

func TestInputValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemoryKV())

	assert.ErrorIs(t, m.Register(ctx, " ", "p", time.Hour), ErrNoAccessID)
	assert.ErrorIs(t, m.Register(ctx, "jti", "p", 0), ErrBadTTL)
	_, err := m.HasSession(ctx, "", "p")
	assert.ErrorIs(t, err, ErrNoAccessID)
	assert.ErrorIs(t, m.Revoke(ctx, ""), ErrNoAccessID)
}
