package auth

import (
	"context"
	"time"

	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SuspensionHandler revokes the sessions of suspended accounts, so tokens
// issued before a suspension stay invalid after reactivation
type SuspensionHandler struct {
	revoker SessionRevoker
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSuspensionHandler keeps revocations for ttl, the token lifetime
func NewSuspensionHandler(revoker SessionRevoker, ttl time.Duration, logger *zap.Logger) *SuspensionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuspensionHandler{revoker: revoker, ttl: ttl, logger: logger}
}

func (h *SuspensionHandler) Name() string { return "auth.suspension" }

func (h *SuspensionHandler) EventTypes() []string {
	return []string{account.EventTypeAccountSuspended}
}

func (h *SuspensionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.revoker.RevokeSessions(ctx, event.AggregateID(), h.ttl); err != nil {
		return err
	}
	h.logger.Info("Sessions revoked", zap.String("account_id", event.AggregateID().String()))
	return nil
}

var _ shared.EventHandler = (*SuspensionHandler)(nil)
