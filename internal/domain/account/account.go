// Package account models the marketplace participants: clients who order,
// cooks who sell dishes, drivers who deliver and admins who operate the
// marketplace. Credentials live with the external identity provider; an
// Account is the marketplace profile keyed by the provider's subject ID.
package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
)

// Role is the marketplace role of an account
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleCook   Role = "COOK"
	RoleDriver Role = "DRIVER"
	RoleAdmin  Role = "ADMIN"
)

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleCook, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether a user may pick this role at sign-up
func (r Role) SelfRegistrable() bool {
	return r == RoleClient || r == RoleCook || r == RoleDriver
}

// Status is the account status
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

const (
	defaultPrepMinutes = 30
	maxPrepMinutes     = 240
)

// CookProfile holds seller specific settings
type CookProfile struct {
	KitchenName        string
	AcceptingOrders    bool
	DefaultPrepMinutes int
}

// DriverProfile holds courier specific state
type DriverProfile struct {
	Vehicle        string
	OnDuty         bool
	LastLocation   *valueobject.Point
	LastLocationAt *time.Time
}

// NotificationPreferences toggles the out-of-app channels
type NotificationPreferences struct {
	Email bool
	Push  bool
}

// Account is the aggregate root for a marketplace participant
type Account struct {
	shared.BaseAggregateRoot
	Role          Role
	Status        Status
	DisplayName   string
	Email         string
	Phone         string
	Address       *valueobject.Address
	Preferences   NotificationPreferences
	Cook          *CookProfile
	Driver        *DriverProfile
	SuspendReason string
	SuspendedAt   *time.Time
}

// NewAccount registers a new profile for the identity provider subject id
func NewAccount(id uuid.UUID, role Role, displayName, email string) (*Account, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_ID", "Account ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown account role")
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	a := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		Role:              role,
		Status:            StatusActive,
		DisplayName:       strings.TrimSpace(displayName),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Preferences:       NotificationPreferences{Email: true, Push: true},
	}

	switch role {
	case RoleCook:
		a.Cook = &CookProfile{KitchenName: a.DisplayName, DefaultPrepMinutes: defaultPrepMinutes}
	case RoleDriver:
		a.Driver = &DriverProfile{}
	}

	a.AddDomainEvent(NewAccountRegisteredEvent(a))
	return a, nil
}

// IsActive returns true unless suspended
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// UpdateProfile replaces contact information. Empty values clear optional fields.
func (a *Account) UpdateProfile(displayName, phone string, address *valueobject.Address, prefs NotificationPreferences) error {
	if err := validateDisplayName(displayName); err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	a.DisplayName = strings.TrimSpace(displayName)
	a.Phone = phone
	a.Address = address
	a.Preferences = prefs
	a.Touch()
	a.IncrementVersion()
	return nil
}

// SetKitchen updates the cook profile
func (a *Account) SetKitchen(kitchenName string, defaultPrepMinutes int) error {
	if a.Cook == nil {
		return shared.NewDomainError("NOT_A_COOK", "Only cooks have a kitchen")
	}
	kitchenName = strings.TrimSpace(kitchenName)
	if kitchenName == "" || len(kitchenName) > 200 {
		return shared.NewDomainError("INVALID_KITCHEN_NAME", "Kitchen name must be 1-200 characters")
	}
	if defaultPrepMinutes < 1 || defaultPrepMinutes > maxPrepMinutes {
		return shared.NewDomainError("INVALID_PREP_TIME", "Preparation time must be between 1 and 240 minutes")
	}
	a.Cook.KitchenName = kitchenName
	a.Cook.DefaultPrepMinutes = defaultPrepMinutes
	a.Touch()
	a.IncrementVersion()
	return nil
}

// SetAcceptingOrders opens or closes the cook's kitchen. Opening requires a
// kitchen address because delivery fees and routes start there.
func (a *Account) SetAcceptingOrders(accepting bool) error {
	if a.Cook == nil {
		return shared.NewDomainError("NOT_A_COOK", "Only cooks can change kitchen availability")
	}
	if accepting && a.Address == nil {
		return shared.NewDomainError("ADDRESS_REQUIRED", "Set a kitchen address before accepting orders")
	}
	a.Cook.AcceptingOrders = accepting
	a.Touch()
	a.IncrementVersion()
	return nil
}

// CanAcceptOrders reports whether the cook can take new orders
func (a *Account) CanAcceptOrders() bool {
	return a.IsActive() && a.Cook != nil && a.Cook.AcceptingOrders && a.Address != nil
}

// SetOnDuty toggles whether the driver receives delivery offers
func (a *Account) SetOnDuty(onDuty bool, vehicle string) error {
	if a.Driver == nil {
		return shared.NewDomainError("NOT_A_DRIVER", "Only drivers can go on duty")
	}
	if vehicle = strings.TrimSpace(vehicle); vehicle != "" {
		a.Driver.Vehicle = vehicle
	}
	a.Driver.OnDuty = onDuty
	a.Touch()
	a.IncrementVersion()
	return nil
}

// UpdateLocation records the driver's last known position
func (a *Account) UpdateLocation(lat, lng float64, at time.Time) error {
	if a.Driver == nil {
		return shared.NewDomainError("NOT_A_DRIVER", "Only drivers report a location")
	}
	p, err := valueobject.NewPoint(lat, lng)
	if err != nil {
		return shared.NewDomainError("INVALID_LOCATION", err.Error())
	}
	a.Driver.LastLocation = &p
	a.Driver.LastLocationAt = &at
	a.Touch()
	a.IncrementVersion()
	return nil
}

// CanDeliver reports whether the driver can take deliveries
func (a *Account) CanDeliver() bool {
	return a.IsActive() && a.Driver != nil && a.Driver.OnDuty
}

// Suspend blocks the account from marketplace activity
func (a *Account) Suspend(reason string) error {
	if a.Status == StatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Account is already suspended")
	}
	if a.Role == RoleAdmin {
		return shared.NewDomainError("CANNOT_SUSPEND_ADMIN", "Admin accounts cannot be suspended")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Suspension reason is required")
	}
	now := time.Now()
	a.Status = StatusSuspended
	a.SuspendReason = reason
	a.SuspendedAt = &now
	if a.Cook != nil {
		a.Cook.AcceptingOrders = false
	}
	if a.Driver != nil {
		a.Driver.OnDuty = false
	}
	a.Touch()
	a.IncrementVersion()
	a.AddDomainEvent(NewAccountSuspendedEvent(a))
	return nil
}

// Reactivate lifts a suspension
func (a *Account) Reactivate() error {
	if a.Status != StatusSuspended {
		return shared.NewDomainError("NOT_SUSPENDED", "Account is not suspended")
	}
	a.Status = StatusActive
	a.SuspendReason = ""
	a.SuspendedAt = nil
	a.Touch()
	a.IncrementVersion()
	return nil
}

func validateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") || len(email) > 254 {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
