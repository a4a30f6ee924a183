package cache

import (
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns the Redis store when a client is configured and
// the in-memory store otherwise. The in-memory store does not deduplicate
// across instances, so it is logged at warn outside development.
func NewIdempotencyStore(client redis.UniversalClient, production bool, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, "")
	}
	if production {
		logger.Warn("Redis disabled, using in-memory idempotency store; events may be handled twice across instances")
	} else {
		logger.Info("Using in-memory idempotency store")
	}
	return NewInMemoryIdempotencyStore(0)
}
