package persistence

import (
	"context"

	apporder "github.com/homechef/backend/internal/application/ordering"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionScope implements the ordering TransactionScope using GORM
// transactions. Repositories handed to the callback write through the same
// transaction, and their events go to the outbox inside it too.
type GormTransactionScope struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, outboxSaver shared.OutboxEventSaver) *GormTransactionScope {
	return &GormTransactionScope{db: db, outboxSaver: outboxSaver}
}

// Execute runs fn within a database transaction. If fn returns an error the
// transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, outboxSaver: s.outboxSaver})
	})
}

type gormTransactionalRepositories struct {
	tx          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

func (r *gormTransactionalRepositories) Orders() ordering.OrderRepository {
	repo := NewGormOrderRepository(r.tx)
	repo.SetOutboxEventSaver(r.outboxSaver)
	return repo
}

func (r *gormTransactionalRepositories) Accounts() account.AccountRepository {
	repo := NewGormAccountRepository(r.tx)
	repo.SetOutboxEventSaver(r.outboxSaver)
	return repo
}

func (r *gormTransactionalRepositories) Loyalty() loyalty.AccountRepository {
	repo := NewGormLoyaltyRepository(r.tx)
	repo.SetOutboxEventSaver(r.outboxSaver)
	return repo
}

var (
	_ apporder.TransactionScope          = (*GormTransactionScope)(nil)
	_ apporder.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
