package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRevoker invalidates every token of an account issued up to a point
// in time. Suspending an account revokes its sessions.
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, accountID uuid.UUID, ttl time.Duration) error
	IsRevoked(ctx context.Context, accountID uuid.UUID, issuedAt time.Time) (bool, error)
}

// RedisSessionRevoker stores the revocation time per account with a TTL of
// the token lifetime, after which every revoked token has expired anyway.
type RedisSessionRevoker struct {
	client    redis.UniversalClient
	keyPrefix string
	now       func() time.Time
}

func NewRedisSessionRevoker(client redis.UniversalClient) *RedisSessionRevoker {
	return &RedisSessionRevoker{client: client, keyPrefix: "homechef:sessions:revoked:", now: time.Now}
}

func (r *RedisSessionRevoker) RevokeSessions(ctx context.Context, accountID uuid.UUID, ttl time.Duration) error {
	at := r.now().Unix()
	if err := r.client.Set(ctx, r.keyPrefix+accountID.String(), at, ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", accountID, err)
	}
	return nil
}

// IsRevoked compares at second precision, the precision of iat
func (r *RedisSessionRevoker) IsRevoked(ctx context.Context, accountID uuid.UUID, issuedAt time.Time) (bool, error) {
	raw, err := r.client.Get(ctx, r.keyPrefix+accountID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revocation of %s: %w", accountID, err)
	}
	at, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation time %q: %w", raw, err)
	}
	return issuedAt.Unix() <= at, nil
}

// InMemorySessionRevoker serves a single instance when Redis is disabled
type InMemorySessionRevoker struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]revocation
	now     func() time.Time
}

type revocation struct {
	at      int64
	expires time.Time
}

func NewInMemorySessionRevoker() *InMemorySessionRevoker {
	return &InMemorySessionRevoker{revoked: make(map[uuid.UUID]revocation), now: time.Now}
}

func (r *InMemorySessionRevoker) RevokeSessions(_ context.Context, accountID uuid.UUID, ttl time.Duration) error {
	now := r.now()
	r.mu.Lock()
	r.revoked[accountID] = revocation{at: now.Unix(), expires: now.Add(ttl)}
	r.mu.Unlock()
	return nil
}

func (r *InMemorySessionRevoker) IsRevoked(_ context.Context, accountID uuid.UUID, issuedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.revoked[accountID]
	if !ok {
		return false, nil
	}
	if !r.now().Before(rev.expires) {
		delete(r.revoked, accountID)
		return false, nil
	}
	return issuedAt.Unix() <= rev.at, nil
}

var (
	_ SessionRevoker = (*RedisSessionRevoker)(nil)
	_ SessionRevoker = (*InMemorySessionRevoker)(nil)
)
