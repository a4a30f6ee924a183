package event

import (
	"context"
	"fmt"

	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// OutboxPublisher stages domain events as outbox rows on the transaction that
// writes their aggregate. The relay in OutboxProcessor delivers them later.
type OutboxPublisher struct {
	serializer *EventSerializer
}

func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// PublishWithTx inserts one pending row per event. A serialization failure
// aborts the batch before anything is written.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	rows, err := p.stage(events)
	if err != nil || len(rows) == 0 {
		return err
	}
	if err := tx.WithContext(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("outbox insert of %d events for %s %s: %w",
			len(rows), rows[0].AggregateType, rows[0].AggregateID, err)
	}
	return nil
}

// SaveEvents is the repository hook. txProvider is the *gorm.DB of the
// aggregate write.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

func (p *OutboxPublisher) stage(events []shared.DomainEvent) ([]*models.OutboxEntryModel, error) {
	rows := make([]*models.OutboxEntryModel, 0, len(events))
	for _, ev := range events {
		payload, err := p.serializer.Serialize(ev)
		if err != nil {
			return nil, fmt.Errorf("stage %s for %s %s: %w", ev.EventType(), ev.AggregateType(), ev.AggregateID(), err)
		}
		rows = append(rows, models.OutboxEntryModelFromDomain(shared.NewOutboxEntry(ev, payload)))
	}
	return rows, nil
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
