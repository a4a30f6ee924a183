package event

import (
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/chat"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/ordering"
)

// RegisterAllEvents registers every event type written to the outbox so the
// processor can decode it
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(account.EventTypeAccountRegistered, &account.AccountRegisteredEvent{})
	serializer.Register(account.EventTypeAccountSuspended, &account.AccountSuspendedEvent{})

	serializer.Register(ordering.EventTypeOrderPlaced, &ordering.OrderPlacedEvent{})
	serializer.Register(ordering.EventTypeOrderAccepted, &ordering.OrderAcceptedEvent{})
	serializer.Register(ordering.EventTypeOrderRejected, &ordering.OrderRejectedEvent{})
	serializer.Register(ordering.EventTypeOrderPreparationStarted, &ordering.OrderPreparationStartedEvent{})
	serializer.Register(ordering.EventTypeOrderReady, &ordering.OrderReadyEvent{})
	serializer.Register(ordering.EventTypeDriverAssigned, &ordering.DriverAssignedEvent{})
	serializer.Register(ordering.EventTypeDriverReleased, &ordering.DriverReleasedEvent{})
	serializer.Register(ordering.EventTypeOrderPickedUp, &ordering.OrderPickedUpEvent{})
	serializer.Register(ordering.EventTypeOrderDelivered, &ordering.OrderDeliveredEvent{})
	serializer.Register(ordering.EventTypeOrderCompleted, &ordering.OrderCompletedEvent{})
	serializer.Register(ordering.EventTypeOrderCancelled, &ordering.OrderCancelledEvent{})
	serializer.Register(ordering.EventTypeCashCollected, &ordering.CashCollectedEvent{})
	serializer.Register(ordering.EventTypeCashSettled, &ordering.CashSettledEvent{})

	serializer.Register(chat.EventTypeMessageSent, &chat.MessageSentEvent{})

	serializer.Register(loyalty.EventTypePointsEarned, &loyalty.PointsEarnedEvent{})
	serializer.Register(loyalty.EventTypePointsRedeemed, &loyalty.PointsRedeemedEvent{})
	serializer.Register(loyalty.EventTypeLoyaltyTierChanged, &loyalty.TierChangedEvent{})
}
