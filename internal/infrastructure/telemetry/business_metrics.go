package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides the marketplace counters: orders placed, order
// transitions, loyalty points and notification deliveries, plus a gauge of
// open orders per status. All Record methods are safe on a nil receiver so
// services can run without telemetry.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	ordersPlacedTotal     *Counter
	orderAmountTotal      *Counter
	orderTransitionsTotal *Counter
	loyaltyPointsTotal    *Counter
	notificationsTotal    *Counter

	// Gauge metrics (point-in-time values)
	openOrders *Gauge

	jobDuration *Histogram

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	orderProvider OrderMetricsProvider
}

// OrderMetricsProvider provides order counts for periodic collection without
// the telemetry layer depending on the ordering domain.
type OrderMetricsProvider interface {
	CountOrdersByStatus(ctx context.Context) (map[string]int64, error)
}

// OrderMetricsProviderFunc adapts a function to OrderMetricsProvider
type OrderMetricsProviderFunc func(ctx context.Context) (map[string]int64, error)

func (f OrderMetricsProviderFunc) CountOrdersByStatus(ctx context.Context) (map[string]int64, error) {
	return f(ctx)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	OrderProvider   OrderMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		orderProvider: cfg.OrderProvider,
	}

	var err error
	counters := []struct {
		target           **Counter
		name, desc, unit string
	}{
		{&bm.ordersPlacedTotal, "homechef_orders_placed_total", "Total number of orders placed", "{orders}"},
		{&bm.orderAmountTotal, "homechef_order_amount_total", "Total placed order amount in cents", "{cents}"},
		{&bm.orderTransitionsTotal, "homechef_order_transitions_total", "Total number of order status transitions", "{transitions}"},
		{&bm.loyaltyPointsTotal, "homechef_loyalty_points_total", "Loyalty points moved, by kind", "{points}"},
		{&bm.notificationsTotal, "homechef_notifications_total", "Notification deliveries, by channel and outcome", "{notifications}"},
	}
	for _, c := range counters {
		*c.target, err = NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
	}

	bm.openOrders, err = NewGauge(
		cfg.Meter,
		"homechef_open_orders",
		"Current number of orders per status",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.jobDuration, err = NewHistogram(
		cfg.Meter,
		"homechef_job_duration_seconds",
		"Scheduled job run duration",
		"s",
		DurationBuckets,
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderPlaced records a placed order and its total.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, paymentMethod string, total decimal.Decimal) {
	if bm == nil {
		return
	}
	bm.ordersPlacedTotal.Inc(ctx, AttrPaymentMethod.String(paymentMethod))
	cents := total.Mul(decimal.NewFromInt(100)).IntPart()
	bm.orderAmountTotal.Add(ctx, cents, AttrPaymentMethod.String(paymentMethod))
}

// RecordOrderTransition records an order reaching a status.
func (bm *BusinessMetrics) RecordOrderTransition(ctx context.Context, status string) {
	if bm == nil {
		return
	}
	bm.orderTransitionsTotal.Inc(ctx, AttrOrderStatus.String(status))
}

// RecordOpenOrders records the gauge for one status.
func (bm *BusinessMetrics) RecordOpenOrders(ctx context.Context, status string, count int64) {
	if bm == nil {
		return
	}
	bm.openOrders.Record(ctx, count, AttrOrderStatus.String(status))
}

// =============================================================================
// Loyalty Metrics
// =============================================================================

// Points kinds for metrics labeling.
const (
	PointsEarned   = "earned"
	PointsRedeemed = "redeemed"
	PointsReversed = "reversed"
)

// RecordLoyaltyPoints records points moved through the ledger.
func (bm *BusinessMetrics) RecordLoyaltyPoints(ctx context.Context, kind string, points int64) {
	if bm == nil || points <= 0 {
		return
	}
	bm.loyaltyPointsTotal.Add(ctx, points, AttrPointsKind.String(kind))
}

// =============================================================================
// Notification Metrics
// =============================================================================

// Delivery outcomes for metrics labeling.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// RecordNotification records one delivery attempt on a channel.
func (bm *BusinessMetrics) RecordNotification(ctx context.Context, channel, outcome string) {
	if bm == nil {
		return
	}
	bm.notificationsTotal.Inc(ctx,
		AttrChannel.String(channel),
		AttrOutcome.String(outcome),
	)
}

// RecordJobRun records one scheduled job run and its outcome.
func (bm *BusinessMetrics) RecordJobRun(ctx context.Context, job, outcome string, d time.Duration) {
	if bm == nil {
		return
	}
	bm.jobDuration.RecordDuration(ctx, d, AttrJob.String(job), AttrJobOutcome.String(outcome))
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectOrderMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectOrderMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectOrderMetrics(ctx context.Context) {
	if bm.orderProvider == nil {
		bm.logger.Debug("No order provider configured, skipping order metrics collection")
		return
	}
	counts, err := bm.orderProvider.CountOrdersByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count orders by status", zap.Error(err))
		return
	}
	for status, count := range counts {
		bm.RecordOpenOrders(ctx, status, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	if bm == nil {
		return
	}
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrOrderStatus = attribute.Key("order_status")
	AttrPointsKind  = attribute.Key("points_kind")
	AttrChannel     = attribute.Key("channel")
	AttrOutcome     = attribute.Key("outcome")
)
