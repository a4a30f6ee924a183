package chat

import (
	"context"
	"fmt"

	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RoomLifecycleHandler keeps an order's chat room in step with the order:
// opened on placement, the driver joins on assignment and leaves on release,
// and the room closes once the order is finished.
type RoomLifecycleHandler struct {
	service *ChatService
	logger  *zap.Logger
}

// NewRoomLifecycleHandler creates a new RoomLifecycleHandler
func NewRoomLifecycleHandler(service *ChatService, logger *zap.Logger) *RoomLifecycleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomLifecycleHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *RoomLifecycleHandler) EventTypes() []string {
	return []string{
		ordering.EventTypeOrderPlaced,
		ordering.EventTypeDriverAssigned,
		ordering.EventTypeDriverReleased,
		ordering.EventTypeOrderRejected,
		ordering.EventTypeOrderCompleted,
		ordering.EventTypeOrderCancelled,
	}
}

// Handle applies the room change for the event
func (h *RoomLifecycleHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var err error
	switch e := event.(type) {
	case *ordering.OrderPlacedEvent:
		_, err = h.service.OpenRoom(ctx, e.OrderParties)
	case *ordering.DriverAssignedEvent:
		if e.DriverID == nil {
			return nil
		}
		if _, err = h.service.OpenRoom(ctx, e.OrderParties); err == nil {
			err = h.service.AddParticipant(ctx, e.OrderID, *e.DriverID, account.RoleDriver)
		}
	case *ordering.DriverReleasedEvent:
		err = h.service.RemoveParticipant(ctx, e.OrderID, e.ReleasedDriverID)
	case *ordering.OrderRejectedEvent:
		err = h.service.CloseRoom(ctx, e.OrderID)
	case *ordering.OrderCompletedEvent:
		err = h.service.CloseRoom(ctx, e.OrderID)
	case *ordering.OrderCancelledEvent:
		err = h.service.CloseRoom(ctx, e.OrderID)
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	if err != nil {
		h.logger.Error("failed to update chat room",
			zap.String("event_type", event.EventType()),
			zap.String("order_id", event.AggregateID().String()),
			zap.Error(err),
		)
	}
	return err
}

var _ shared.EventHandler = (*RoomLifecycleHandler)(nil)
