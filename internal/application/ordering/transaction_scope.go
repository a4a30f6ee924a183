package ordering

import (
	"context"

	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/homechef/backend/internal/domain/ordering"
)

// TransactionScope provides transactional access to the repositories an order
// write touches. All repository operations inside Execute are committed or
// rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an error,
	// the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to one transaction.
//
// Orders is the Order aggregate; Loyalty is the client's points account,
// written in the same transaction when an order redeems points. Accounts
// is used to lock a client or driver row while a per-account limit is
// checked.
type TransactionalRepositories interface {
	Orders() ordering.OrderRepository
	Accounts() account.AccountRepository
	Loyalty() loyalty.AccountRepository
}

// NoOpTransactionScope runs the function without a transaction. It is used in
// tests and where atomicity is not required.
type NoOpTransactionScope struct {
	orders   ordering.OrderRepository
	accounts account.AccountRepository
	loyalty  loyalty.AccountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(orders ordering.OrderRepository, accounts account.AccountRepository, points loyalty.AccountRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{orders: orders, accounts: accounts, loyalty: points}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Orders() ordering.OrderRepository { return s.orders }

func (s *NoOpTransactionScope) Accounts() account.AccountRepository { return s.accounts }

func (s *NoOpTransactionScope) Loyalty() loyalty.AccountRepository { return s.loyalty }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
