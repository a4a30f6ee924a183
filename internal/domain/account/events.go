package account

import (
	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
)

const AggregateTypeAccount = "Account"

const (
	EventTypeAccountRegistered = "AccountRegistered"
	EventTypeAccountSuspended  = "AccountSuspended"
)

// AccountRegisteredEvent is raised when a new marketplace profile is created
type AccountRegisteredEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Role      Role      `json:"role"`
	Email     string    `json:"email"`
}

func NewAccountRegisteredEvent(a *Account) *AccountRegisteredEvent {
	return &AccountRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountRegistered, AggregateTypeAccount, a.ID),
		AccountID:       a.ID,
		Role:            a.Role,
		Email:           a.Email,
	}
}

// AccountSuspendedEvent is raised when an admin suspends an account
type AccountSuspendedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Role      Role      `json:"role"`
	Reason    string    `json:"reason"`
}

func NewAccountSuspendedEvent(a *Account) *AccountSuspendedEvent {
	return &AccountSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountSuspended, AggregateTypeAccount, a.ID),
		AccountID:       a.ID,
		Role:            a.Role,
		Reason:          a.SuspendReason,
	}
}
