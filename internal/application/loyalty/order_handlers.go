package loyalty

import (
	"context"
	"fmt"

	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderCompletedHandler credits points when an order is completed
type OrderCompletedHandler struct {
	service *LoyaltyService
	logger  *zap.Logger
}

// NewOrderCompletedHandler creates a new OrderCompletedHandler
func NewOrderCompletedHandler(service *LoyaltyService, logger *zap.Logger) *OrderCompletedHandler {
	return &OrderCompletedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderCompletedHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderCompleted}
}

// Handle earns points on the paid total
func (h *OrderCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*ordering.OrderCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ordering.EventTypeOrderCompleted, event.EventType())
	}
	if _, err := h.service.Earn(ctx, completed.ClientID, completed.OrderID, completed.Total); err != nil {
		h.logger.Error("failed to earn loyalty points",
			zap.String("order_id", completed.OrderID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// OrderAbortedHandler refunds redeemed points of rejected and cancelled orders
type OrderAbortedHandler struct {
	service *LoyaltyService
	logger  *zap.Logger
}

// NewOrderAbortedHandler creates a new OrderAbortedHandler
func NewOrderAbortedHandler(service *LoyaltyService, logger *zap.Logger) *OrderAbortedHandler {
	return &OrderAbortedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderAbortedHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderRejected, ordering.EventTypeOrderCancelled}
}

// Handle reverses the order's redemption, if it had one
func (h *OrderAbortedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		parties  ordering.OrderParties
		redeemed int64
		reason   string
	)
	switch e := event.(type) {
	case *ordering.OrderRejectedEvent:
		parties, redeemed, reason = e.OrderParties, e.RedeemedPoints, "Order rejected: "+e.Reason
	case *ordering.OrderCancelledEvent:
		parties, redeemed, reason = e.OrderParties, e.RedeemedPoints, "Order cancelled: "+e.Reason
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	if redeemed == 0 {
		return nil
	}
	if r := []rune(reason); len(r) > loyalty.MaxReasonLength {
		reason = string(r[:loyalty.MaxReasonLength])
	}
	if _, err := h.service.Reverse(ctx, parties.ClientID, parties.OrderID, reason); err != nil {
		h.logger.Error("failed to reverse loyalty redemption",
			zap.String("order_id", parties.OrderID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var (
	_ shared.EventHandler = (*OrderCompletedHandler)(nil)
	_ shared.EventHandler = (*OrderAbortedHandler)(nil)
)
