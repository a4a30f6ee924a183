package notification

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/chat"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/notification"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const clockFormat = "15:04 MST"

var (
	instantChannels = []notification.Channel{notification.ChannelRealtime, notification.ChannelPush}
	receiptChannels = []notification.Channel{notification.ChannelRealtime, notification.ChannelEmail}
)

// OrderEventHandler tells the parties of an order about its progress
type OrderEventHandler struct {
	service  *NotificationService
	accounts account.AccountRepository
	logger   *zap.Logger
}

// NewOrderEventHandler creates a new OrderEventHandler
func NewOrderEventHandler(service *NotificationService, accounts account.AccountRepository, logger *zap.Logger) *OrderEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderEventHandler{service: service, accounts: accounts, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderEventHandler) EventTypes() []string {
	return []string{
		ordering.EventTypeOrderPlaced,
		ordering.EventTypeOrderAccepted,
		ordering.EventTypeOrderRejected,
		ordering.EventTypeOrderPreparationStarted,
		ordering.EventTypeOrderReady,
		ordering.EventTypeDriverAssigned,
		ordering.EventTypeDriverReleased,
		ordering.EventTypeOrderPickedUp,
		ordering.EventTypeOrderDelivered,
		ordering.EventTypeOrderCompleted,
		ordering.EventTypeOrderCancelled,
		ordering.EventTypeCashSettled,
	}
}

// Handle maps the event to its recipients and sends the dispatches
func (h *OrderEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	oe, ok := event.(ordering.OrderEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	dispatches, err := h.dispatches(ctx, event)
	if err != nil {
		return err
	}
	p := oe.GetParties()
	for _, d := range dispatches {
		d.OrderID = &p.OrderID
		if d.Data == nil {
			d.Data = map[string]string{}
		}
		d.Data["order_number"] = p.OrderNumber
		if err := h.service.Notify(ctx, d); err != nil {
			h.logger.Error("failed to notify",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", p.OrderID.String()),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func (h *OrderEventHandler) dispatches(ctx context.Context, event shared.DomainEvent) ([]Dispatch, error) {
	switch e := event.(type) {
	case *ordering.OrderPlacedEvent:
		total := money(e.Total, e.Currency)
		return []Dispatch{
			{
				Recipients: []uuid.UUID{e.CookID},
				Kind:       notification.KindApprovalRequest,
				Title:      "New order " + e.OrderNumber,
				Body: fmt.Sprintf("%d item(s), %s, paid by %s. Accept before %s.",
					e.ItemCount, total, paymentLabel(e.PaymentMethod), e.ApprovalDeadline.Format(clockFormat)),
				Data: map[string]string{"total": total, "approval_deadline": e.ApprovalDeadline.Format(clockFormat)},
			},
			{
				Recipients: []uuid.UUID{e.ClientID},
				Kind:       notification.KindOrderReceipt,
				Title:      "Order " + e.OrderNumber + " placed",
				Body:       fmt.Sprintf("We sent your order to the kitchen. Total %s.", total),
				Data: map[string]string{
					"total":           total,
					"payment_method":  string(e.PaymentMethod),
					"redeemed_points": strconv.FormatInt(e.RedeemedPoints, 10),
				},
				Channels: receiptChannels,
			},
		}, nil

	case *ordering.OrderAcceptedEvent:
		return one(e.ClientID, notification.KindOrderAccepted, "Order "+e.OrderNumber+" accepted",
			"The kitchen expects it ready around "+e.EstimatedReadyAt.Format(clockFormat)+"."), nil

	case *ordering.OrderRejectedEvent:
		return one(e.ClientID, notification.KindOrderRejected, "Order "+e.OrderNumber+" was declined",
			"Reason: "+e.Reason+"."+refundNote(e.PaymentStatus, e.RedeemedPoints)), nil

	case *ordering.OrderPreparationStartedEvent:
		d := one(e.ClientID, notification.KindOrderPreparing, "Cooking started", "Your order "+e.OrderNumber+" is being prepared.")
		d[0].Channels = instantChannels
		return d, nil

	case *ordering.OrderReadyEvent:
		drivers, err := h.accounts.FindOnDutyDrivers(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, len(drivers))
		for i := range drivers {
			ids[i] = drivers[i].ID
		}
		return []Dispatch{
			{
				Recipients: []uuid.UUID{e.ClientID},
				Kind:       notification.KindOrderReady,
				Title:      "Order " + e.OrderNumber + " is ready",
				Body:       "We are finding a driver for you.",
				Channels:   instantChannels,
			},
			{
				Recipients: ids,
				Kind:       notification.KindDeliveryOffer,
				Title:      "Delivery available in " + e.City,
				Body:       "Order " + e.OrderNumber + " is ready for pickup.",
				Data: map[string]string{
					"pickup_lat": strconv.FormatFloat(e.Pickup.Lat, 'f', 6, 64),
					"pickup_lng": strconv.FormatFloat(e.Pickup.Lng, 'f', 6, 64),
				},
				Channels: instantChannels,
			},
		}, nil

	case *ordering.DriverAssignedEvent:
		return []Dispatch{{
			Recipients: []uuid.UUID{e.ClientID, e.CookID},
			Kind:       notification.KindDriverAssigned,
			Title:      "Driver on the way",
			Body:       "A driver accepted order " + e.OrderNumber + ".",
			Channels:   instantChannels,
		}}, nil

	case *ordering.DriverReleasedEvent:
		d := one(e.CookID, notification.KindDriverReleased, "Driver released order "+e.OrderNumber,
			"The order is back in the queue for another driver.")
		d[0].Channels = instantChannels
		return d, nil

	case *ordering.OrderPickedUpEvent:
		d := one(e.ClientID, notification.KindOrderPickedUp, "Order "+e.OrderNumber+" picked up",
			"Your food has left the kitchen.")
		d[0].Channels = instantChannels
		return d, nil

	case *ordering.OrderDeliveredEvent:
		return []Dispatch{{
			Recipients: []uuid.UUID{e.ClientID, e.CookID},
			Kind:       notification.KindOrderDelivered,
			Title:      "Order " + e.OrderNumber + " delivered",
			Body:       "Enjoy your meal.",
		}}, nil

	case *ordering.OrderCompletedEvent:
		recipients := []uuid.UUID{e.CookID}
		if e.DriverID != nil {
			recipients = append(recipients, *e.DriverID)
		}
		return []Dispatch{{
			Recipients: recipients,
			Kind:       notification.KindOrderCompleted,
			Title:      "Order " + e.OrderNumber + " completed",
			Body:       "Total " + money(e.Total, e.Currency) + ".",
			Channels:   instantChannels,
		}}, nil

	case *ordering.OrderCancelledEvent:
		recipients := []uuid.UUID{e.ClientID, e.CookID}
		if e.DriverID != nil {
			recipients = append(recipients, *e.DriverID)
		}
		if e.CancelledBy != nil {
			recipients = without(recipients, *e.CancelledBy)
		}
		return []Dispatch{{
			Recipients: recipients,
			Kind:       notification.KindOrderCancelled,
			Title:      "Order " + e.OrderNumber + " cancelled",
			Body:       "Reason: " + e.Reason + ".",
		}}, nil

	case *ordering.CashSettledEvent:
		if e.DriverID == nil {
			return nil, nil
		}
		d := one(*e.DriverID, notification.KindCashSettled, "Cash settled",
			money(e.Amount, e.Currency)+" for order "+e.OrderNumber+" was settled.")
		d[0].Channels = []notification.Channel{notification.ChannelRealtime}
		return d, nil
	}
	return nil, fmt.Errorf("unexpected event type %s", event.EventType())
}

// MessageSentHandler alerts the other chat participants
type MessageSentHandler struct {
	service *NotificationService
	logger  *zap.Logger
}

// NewMessageSentHandler creates a new MessageSentHandler
func NewMessageSentHandler(service *NotificationService, logger *zap.Logger) *MessageSentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageSentHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MessageSentHandler) EventTypes() []string {
	return []string{chat.EventTypeMessageSent}
}

// Handle notifies over realtime and push only
func (h *MessageSentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*chat.MessageSentEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			chat.EventTypeMessageSent, event.EventType())
	}
	orderID := e.OrderID
	return h.service.Notify(ctx, Dispatch{
		Recipients: e.Recipients,
		Kind:       notification.KindChatMessage,
		Title:      "New message on " + e.OrderNumber,
		Body:       e.Preview,
		OrderID:    &orderID,
		Data: map[string]string{
			"room_id":     e.RoomID.String(),
			"message_id":  e.MessageID.String(),
			"sender_role": string(e.SenderRole),
		},
		Channels: instantChannels,
	})
}

// TierChangedHandler congratulates clients on a loyalty promotion
type TierChangedHandler struct {
	service *NotificationService
	logger  *zap.Logger
}

// NewTierChangedHandler creates a new TierChangedHandler
func NewTierChangedHandler(service *NotificationService, logger *zap.Logger) *TierChangedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TierChangedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *TierChangedHandler) EventTypes() []string {
	return []string{loyalty.EventTypeLoyaltyTierChanged}
}

// Handle notifies the client of the new tier
func (h *TierChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*loyalty.TierChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			loyalty.EventTypeLoyaltyTierChanged, event.EventType())
	}
	return h.service.Notify(ctx, Dispatch{
		Recipients: []uuid.UUID{e.ClientID},
		Kind:       notification.KindTierChanged,
		Title:      "Welcome to " + string(e.NewTier),
		Body:       fmt.Sprintf("You reached %s with %d lifetime points.", e.NewTier, e.LifetimeEarned),
		Data: map[string]string{
			"previous_tier": string(e.PreviousTier),
			"tier":          string(e.NewTier),
		},
	})
}

func one(recipient uuid.UUID, kind notification.Kind, title, body string) []Dispatch {
	return []Dispatch{{Recipients: []uuid.UUID{recipient}, Kind: kind, Title: title, Body: body}}
}

func without(ids []uuid.UUID, drop uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func money(amount decimal.Decimal, currency valueobject.Currency) string {
	return amount.StringFixed(2) + " " + string(currency)
}

func paymentLabel(m ordering.PaymentMethod) string {
	if m == ordering.PaymentCash {
		return "cash on delivery"
	}
	return "card"
}

func refundNote(status ordering.PaymentStatus, points int64) string {
	note := ""
	if status == ordering.PaymentRefundPending {
		note += " Your card payment will be refunded."
	}
	if points > 0 {
		note += fmt.Sprintf(" %d points were returned to your balance.", points)
	}
	return note
}

var (
	_ shared.EventHandler = (*OrderEventHandler)(nil)
	_ shared.EventHandler = (*MessageSentHandler)(nil)
	_ shared.EventHandler = (*TierChangedHandler)(nil)
)
