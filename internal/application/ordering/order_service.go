package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	accountapp "github.com/homechef/backend/internal/application/account"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/menu"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/homechef/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService places orders and serves order queries
type OrderService struct {
	tx       TransactionScope
	orders   ordering.OrderRepository
	dishes   menu.DishRepository
	accounts account.AccountRepository
	loyalty  LoyaltyRedeemer
	config   Config
	logger   *zap.Logger
	metrics  *telemetry.BusinessMetrics
	now      func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	tx TransactionScope,
	orders ordering.OrderRepository,
	dishes menu.DishRepository,
	accounts account.AccountRepository,
	loyalty LoyaltyRedeemer,
	config Config,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		tx:       tx,
		orders:   orders,
		dishes:   dishes,
		accounts: accounts,
		loyalty:  loyalty,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// placement is a validated order request shared by card and cash checkout
type placement struct {
	items        []OrderLineRequest
	address      *accountapp.AddressInput
	method       ordering.PaymentMethod
	paymentRef   string
	redeemPoints int64
	notes        string
	// prepare runs inside the transaction before the order is inserted
	prepare func(ctx context.Context, repos TransactionalRepositories, o *ordering.Order) error
}

// PlaceOrder places a card-paid order
func (s *OrderService) PlaceOrder(ctx context.Context, actor account.Actor, req PlaceOrderRequest) (*OrderResponse, error) {
	o, err := s.place(ctx, actor, placement{
		items:        req.Items,
		address:      req.Address,
		method:       ordering.PaymentCard,
		paymentRef:   req.PaymentReference,
		redeemPoints: req.RedeemPoints,
		notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *OrderService) place(ctx context.Context, actor account.Actor, p placement) (*ordering.Order, error) {
	if !actor.IsClient() {
		return nil, shared.ErrForbidden
	}
	client, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Suspended accounts cannot place orders")
	}
	dropoff, err := s.dropoff(client, p.address)
	if err != nil {
		return nil, err
	}
	cook, lines, err := s.resolveLines(ctx, p.items)
	if err != nil {
		return nil, err
	}
	pickup := *cook.Address

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2))
	}
	fee := s.config.DeliveryFee.Calculate(pickup.Location, dropoff.Location)
	now := s.now()

	var order *ordering.Order
	err = s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		quote, err := s.loyalty.QuoteWith(ctx, repos.Loyalty(), client.ID, p.redeemPoints, subtotal)
		if err != nil {
			return err
		}
		number, err := repos.Orders().GenerateOrderNumber(ctx, now)
		if err != nil {
			return fmt.Errorf("generate order number: %w", err)
		}
		o, err := ordering.NewOrder(ordering.NewOrderInput{
			OrderNumber:      number,
			ClientID:         client.ID,
			CookID:           cook.ID,
			Lines:            lines,
			Currency:         s.config.Currency,
			Pickup:           pickup,
			Dropoff:          dropoff,
			DeliveryFee:      fee,
			Discount:         quote.Discount,
			RedeemedPoints:   quote.Points,
			PaymentMethod:    p.method,
			PaymentReference: p.paymentRef,
			Notes:            p.notes,
			ApprovalTimeout:  s.config.ApprovalTimeout,
			Now:              now,
		})
		if err != nil {
			return err
		}
		if p.prepare != nil {
			if err := p.prepare(ctx, repos, o); err != nil {
				return err
			}
		}
		if err := repos.Orders().CreateWithEvents(ctx, o, o.GetDomainEvents()); err != nil {
			return err
		}
		if err := s.loyalty.RedeemWith(ctx, repos.Loyalty(), client.ID, o.ID, quote); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.ClearDomainEvents()

	s.metrics.RecordOrderPlaced(ctx, string(order.PaymentMethod), order.Total)
	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("client_id", order.ClientID.String()),
		zap.String("cook_id", order.CookID.String()),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int64("redeemed_points", order.RedeemedPoints),
	)
	return order, nil
}

func (s *OrderService) dropoff(client *account.Account, in *accountapp.AddressInput) (valueobject.Address, error) {
	if in != nil {
		addr, err := in.ToAddress()
		if err != nil {
			return valueobject.Address{}, shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
		return addr, nil
	}
	if client.Address == nil {
		return valueobject.Address{}, shared.NewDomainError("ADDRESS_REQUIRED", "A delivery address is required")
	}
	return *client.Address, nil
}

// resolveLines snapshots the requested dishes. Every dish must exist, be
// available and belong to the same cook, who must be taking orders.
func (s *OrderService) resolveLines(ctx context.Context, items []OrderLineRequest) (*account.Account, []ordering.LineInput, error) {
	if len(items) == 0 {
		return nil, nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.DishID)
	}
	dishes, err := s.dishes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]*menu.Dish, len(dishes))
	for i := range dishes {
		byID[dishes[i].ID] = &dishes[i]
	}

	var cookID uuid.UUID
	lines := make([]ordering.LineInput, 0, len(items))
	for _, item := range items {
		d, ok := byID[item.DishID]
		if !ok {
			return nil, nil, shared.NewDomainError("DISH_NOT_FOUND", fmt.Sprintf("Dish %s not found", item.DishID))
		}
		if !d.Available {
			return nil, nil, shared.NewDomainError("DISH_UNAVAILABLE", fmt.Sprintf("%s is not available", d.Name))
		}
		if cookID == uuid.Nil {
			cookID = d.CookID
		} else if d.CookID != cookID {
			return nil, nil, shared.NewDomainError("MIXED_COOKS", "All dishes must come from the same cook")
		}
		if d.Price.Currency() != s.config.Currency {
			return nil, nil, shared.NewDomainError("CURRENCY_MISMATCH", fmt.Sprintf("%s is priced in %s", d.Name, d.Price.Currency()))
		}
		lines = append(lines, ordering.LineInput{
			DishID:    d.ID,
			DishName:  d.Name,
			UnitPrice: d.Price.Amount(),
			Quantity:  item.Quantity,
		})
	}

	cook, err := s.accounts.FindByID(ctx, cookID)
	if err != nil {
		return nil, nil, err
	}
	if !cook.CanAcceptOrders() || cook.Address == nil {
		return nil, nil, shared.NewDomainError("COOK_UNAVAILABLE", "The kitchen is not taking orders")
	}
	return cook, lines, nil
}

// Get returns an order visible to the actor: its parties and admins. Drivers
// may also see orders waiting for a driver.
func (s *OrderService) Get(ctx context.Context, actor account.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, o) {
		return nil, shared.ErrForbidden
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

func canView(actor account.Actor, o *ordering.Order) bool {
	if actor.IsAdmin() || o.IsParty(actor.ID) {
		return true
	}
	return actor.IsDriver() && o.Status == ordering.StatusReady && o.DriverID == nil
}

// List returns the actor's orders, scoped by role
func (s *OrderService) List(ctx context.Context, actor account.Actor, filter OrderListFilter) ([]OrderResponse, int64, error) {
	switch actor.Role {
	case account.RoleClient:
		return s.ListForClient(ctx, actor.ID, filter)
	case account.RoleCook:
		return s.ListForCook(ctx, actor.ID, filter)
	case account.RoleDriver:
		return s.ListForDriver(ctx, actor.ID, filter)
	case account.RoleAdmin:
		return s.ListAll(ctx, filter)
	}
	return nil, 0, shared.ErrForbidden
}

// ListForClient returns orders the client placed
func (s *OrderService) ListForClient(ctx context.Context, clientID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	f := orderFilter(filter)
	f.ClientID = &clientID
	return s.find(ctx, f)
}

// ListForCook returns orders of the cook's kitchen, optionally by status
func (s *OrderService) ListForCook(ctx context.Context, cookID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	f := orderFilter(filter)
	f.CookID = &cookID
	return s.find(ctx, f)
}

// ListForDriver returns orders the driver holds or delivered
func (s *OrderService) ListForDriver(ctx context.Context, driverID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	f := orderFilter(filter)
	f.DriverID = &driverID
	return s.find(ctx, f)
}

// ListAll returns every order matching the admin filter
func (s *OrderService) ListAll(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	f := orderFilter(filter)
	f.ClientID, f.CookID, f.DriverID = filter.ClientID, filter.CookID, filter.DriverID
	return s.find(ctx, f)
}

func orderFilter(filter OrderListFilter) ordering.OrderFilter {
	return ordering.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		}.Normalize(),
		Statuses:      filter.Status,
		PaymentMethod: filter.PaymentMethod,
	}
}

func (s *OrderService) find(ctx context.Context, f ordering.OrderFilter) ([]OrderResponse, int64, error) {
	for _, st := range f.Statuses {
		if !st.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %s", st))
		}
	}
	orders, total, err := s.orders.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// Cancel aborts an order before pickup. Clients may cancel only while the
// order awaits approval; cooks once they accepted it and until a driver takes
// it; admins at any point before pickup.
func (s *OrderService) Cancel(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsClient() && o.ClientID == actor.ID:
		if o.Status != ordering.StatusPendingApproval {
			return nil, shared.NewDomainError("CANCEL_NOT_ALLOWED", "Orders can only be cancelled before the cook accepts them")
		}
	case actor.IsCook() && o.CookID == actor.ID:
		switch o.Status {
		case ordering.StatusAccepted, ordering.StatusPreparing, ordering.StatusReady:
		default:
			return nil, shared.NewDomainError("CANCEL_NOT_ALLOWED", "Cooks can cancel accepted orders until a driver takes them")
		}
	default:
		return nil, shared.ErrForbidden
	}

	if err := o.Cancel(actor.ID, reason, s.now()); err != nil {
		return nil, err
	}
	if err := persist(ctx, s.orders, s.metrics, o); err != nil {
		return nil, err
	}
	s.logger.Info("order cancelled",
		zap.String("order_id", o.ID.String()),
		zap.String("by", actor.ID.String()),
		zap.String("role", string(actor.Role)),
		zap.String("payment_status", string(o.PaymentStatus)),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Complete is the client's confirmation that a delivered order arrived
func (s *OrderService) Complete(ctx context.Context, actor account.Actor, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsClient() || o.ClientID != actor.ID {
		return nil, shared.ErrForbidden
	}
	if err := o.Complete(s.now()); err != nil {
		return nil, err
	}
	if err := persist(ctx, s.orders, s.metrics, o); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Stats summarises orders for the admin dashboard. "Today" starts at
// midnight UTC.
func (s *OrderService) Stats(ctx context.Context) (*StatsResponse, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	revenue, completed, err := s.orders.SumCompletedSince(ctx, midnight)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[ordering.OrderStatus]int64, len(ordering.AllStatuses()))
	var open int64
	for _, st := range ordering.AllStatuses() {
		byStatus[st] = counts[st]
		if !st.IsTerminal() {
			open += counts[st]
		}
	}
	return &StatsResponse{
		ByStatus:       byStatus,
		CompletedToday: completed,
		RevenueToday:   revenue.Round(2),
		Currency:       s.config.Currency,
		OpenOrders:     open,
		GeneratedAt:    now,
	}, nil
}

// persist saves the order with its pending events and records the transition
func persist(ctx context.Context, repo ordering.OrderRepository, metrics *telemetry.BusinessMetrics, o *ordering.Order) error {
	if err := repo.SaveWithLockAndEvents(ctx, o, o.GetDomainEvents()); err != nil {
		return err
	}
	o.ClearDomainEvents()
	metrics.RecordOrderTransition(ctx, string(o.Status))
	return nil
}
