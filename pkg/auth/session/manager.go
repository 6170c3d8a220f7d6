package session

import (
	"context"
	"errors"
	"strings"
	"time"

	redisclient "github.com/bargen/bargen-backend/pkg/redis"
	"github.com/bargen/bargen-backend/pkg/types"
)

var (
	ErrNoAccessID = errors.New("access id is required")
	ErrBadTTL     = errors.New("session ttl must be positive")
)

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is what the auth middleware needs: is this token id
// still live for this principal.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string, principal types.Principal) (bool, error)
}

// Manager keeps one redis key per issued access token, valued with the
// principal it was minted for. Deleting the key revokes the token before its
// exp claim.
type Manager struct {
	kv    store
	isNil func(error) bool
}

func NewManager(client *redisclient.Client) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &Manager{kv: client, isNil: redisclient.IsNil}, nil
}

// Register records accessID as live for principal until ttl elapses.
func (m *Manager) Register(ctx context.Context, accessID string, principal types.Principal, ttl time.Duration) error {
	key, err := m.key(accessID)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return ErrBadTTL
	}
	return m.kv.Set(ctx, key, principal.String(), ttl)
}

// HasSession is false for unknown, expired or revoked ids, and for an id that
// was registered to a different principal.
func (m *Manager) HasSession(ctx context.Context, accessID string, principal types.Principal) (bool, error) {
	key, err := m.key(accessID)
	if err != nil {
		return false, err
	}
	owner, err := m.kv.Get(ctx, key)
	switch {
	case err != nil && m.isNil(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return types.ParsePrincipal(owner) == principal, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	key, err := m.key(accessID)
	if err != nil {
		return err
	}
	return m.kv.Del(ctx, key)
}

func (m *Manager) key(accessID string) (string, error) {
	accessID = strings.TrimSpace(accessID)
	if accessID == "" {
		return "", ErrNoAccessID
	}
	return m.kv.AccessSessionKey(accessID), nil
}
