package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
)

// Device is a push notification target registered by a user
type Device struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Token     string
	Platform  string
	CreatedAt time.Time
}

// AccountRepository defines persistence for accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FindByIDForUpdate loads the account and holds its row lock until the
	// enclosing transaction ends. Writes that check a per-account limit take
	// this lock before counting.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Account, error)
	// FindAll lists accounts; supported filter keys are "role" and "status"
	FindAll(ctx context.Context, filter shared.Filter) ([]Account, int64, error)
	// FindOnDutyDrivers returns active drivers currently on duty
	FindOnDutyDrivers(ctx context.Context) ([]Account, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// Create inserts the account; pending domain events go to the outbox in
	// the same transaction
	Create(ctx context.Context, a *Account) error
	// SaveWithLock updates with an optimistic version check and persists
	// pending domain events like Create
	SaveWithLock(ctx context.Context, a *Account) error
}

// DeviceRepository stores push device tokens
type DeviceRepository interface {
	// Upsert registers a token; re-registering moves it to the given account
	Upsert(ctx context.Context, d *Device) error
	FindByAccounts(ctx context.Context, accountIDs []uuid.UUID) ([]Device, error)
	DeleteByToken(ctx context.Context, token string) error
}
