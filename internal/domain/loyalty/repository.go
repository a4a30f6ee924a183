package loyalty

import (
	"context"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
)

// AccountRepository persists loyalty accounts together with their ledger
type AccountRepository interface {
	// FindByClient returns shared.ErrNotFound when the client has no account
	FindByClient(ctx context.Context, clientID uuid.UUID) (*Account, error)
	Create(ctx context.Context, a *Account) error
	// SaveWithEntries updates the account with a version check and appends
	// the ledger entries and outbox events in the same transaction.
	// A duplicate (order, type) entry yields shared.ErrAlreadyExists.
	SaveWithEntries(ctx context.Context, a *Account, entries []*LedgerEntry, events []shared.DomainEvent) error
	// FindOrderEntry returns the entry of the given type for the order, or
	// shared.ErrNotFound
	FindOrderEntry(ctx context.Context, clientID, orderID uuid.UUID, t EntryType) (*LedgerEntry, error)
	// Ledger lists entries newest first
	Ledger(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]LedgerEntry, int64, error)
}
