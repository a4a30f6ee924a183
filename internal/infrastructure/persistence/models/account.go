package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
)

// AccountModel is the persistence model for the Account aggregate root.
// Cook and driver profile columns are null for other roles.
type AccountModel struct {
	AggregateModel
	Role          account.Role   `gorm:"type:varchar(20);not null;index"`
	Status        account.Status `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	DisplayName   string         `gorm:"type:varchar(100);not null"`
	Email         string         `gorm:"type:varchar(254)"`
	Phone         string         `gorm:"type:varchar(30)"`
	HasAddress    bool           `gorm:"not null;default:false"`
	Address       AddressColumns `gorm:"embedded;embeddedPrefix:address_"`
	EmailEnabled  bool           `gorm:"not null"`
	PushEnabled   bool           `gorm:"not null"`
	SuspendReason string         `gorm:"type:varchar(500)"`
	SuspendedAt   *time.Time

	KitchenName        *string `gorm:"type:varchar(100)"`
	AcceptingOrders    *bool
	DefaultPrepMinutes *int

	Vehicle        *string `gorm:"type:varchar(50)"`
	OnDuty         *bool   `gorm:"index"`
	LastLat        *float64
	LastLng        *float64
	LastLocationAt *time.Time
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *account.Account {
	a := &account.Account{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Role:              m.Role,
		Status:            m.Status,
		DisplayName:       m.DisplayName,
		Email:             m.Email,
		Phone:             m.Phone,
		Preferences:       account.NotificationPreferences{Email: m.EmailEnabled, Push: m.PushEnabled},
		SuspendReason:     m.SuspendReason,
		SuspendedAt:       m.SuspendedAt,
	}
	if m.HasAddress {
		addr := m.Address.ToDomain()
		a.Address = &addr
	}
	if m.Role == account.RoleCook {
		a.Cook = &account.CookProfile{
			KitchenName:        deref(m.KitchenName),
			AcceptingOrders:    deref(m.AcceptingOrders),
			DefaultPrepMinutes: deref(m.DefaultPrepMinutes),
		}
	}
	if m.Role == account.RoleDriver {
		a.Driver = &account.DriverProfile{
			Vehicle:        deref(m.Vehicle),
			OnDuty:         deref(m.OnDuty),
			LastLocationAt: m.LastLocationAt,
		}
		if m.LastLat != nil && m.LastLng != nil {
			a.Driver.LastLocation = &valueobject.Point{Lat: *m.LastLat, Lng: *m.LastLng}
		}
	}
	return a
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *account.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Role = a.Role
	m.Status = a.Status
	m.DisplayName = a.DisplayName
	m.Email = a.Email
	m.Phone = a.Phone
	m.HasAddress = a.Address != nil
	m.Address = AddressColumns{}
	if a.Address != nil {
		m.Address = AddressColumnsFromDomain(*a.Address)
	}
	m.EmailEnabled = a.Preferences.Email
	m.PushEnabled = a.Preferences.Push
	m.SuspendReason = a.SuspendReason
	m.SuspendedAt = a.SuspendedAt

	m.KitchenName, m.AcceptingOrders, m.DefaultPrepMinutes = nil, nil, nil
	if a.Cook != nil {
		m.KitchenName = &a.Cook.KitchenName
		m.AcceptingOrders = &a.Cook.AcceptingOrders
		m.DefaultPrepMinutes = &a.Cook.DefaultPrepMinutes
	}
	m.Vehicle, m.OnDuty, m.LastLat, m.LastLng, m.LastLocationAt = nil, nil, nil, nil, nil
	if a.Driver != nil {
		m.Vehicle = &a.Driver.Vehicle
		m.OnDuty = &a.Driver.OnDuty
		m.LastLocationAt = a.Driver.LastLocationAt
		if a.Driver.LastLocation != nil {
			m.LastLat = &a.Driver.LastLocation.Lat
			m.LastLng = &a.Driver.LastLocation.Lng
		}
	}
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *account.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// DeviceModel is a registered push token
type DeviceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"type:varchar(512);not null;uniqueIndex"`
	Platform  string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeviceModel) TableName() string {
	return "devices"
}

// ToDomain converts the persistence model to a domain Device
func (m *DeviceModel) ToDomain() account.Device {
	return account.Device{
		ID:        m.ID,
		AccountID: m.AccountID,
		Token:     m.Token,
		Platform:  m.Platform,
		CreatedAt: m.CreatedAt,
	}
}

// DeviceModelFromDomain creates a new persistence model from a domain Device
func DeviceModelFromDomain(d *account.Device) *DeviceModel {
	return &DeviceModel{
		ID:        d.ID,
		AccountID: d.AccountID,
		Token:     d.Token,
		Platform:  d.Platform,
		CreatedAt: d.CreatedAt,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
