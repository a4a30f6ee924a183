package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
)

// AddressInput is a geocoded address supplied by the client app
type AddressInput struct {
	Line1        string  `json:"line1" binding:"required,min=1,max=300"`
	Line2        string  `json:"line2" binding:"max=300"`
	City         string  `json:"city" binding:"required,min=1,max=100"`
	PostalCode   string  `json:"postal_code" binding:"max=20"`
	Instructions string  `json:"instructions" binding:"max=500"`
	Lat          float64 `json:"lat" binding:"min=-90,max=90"`
	Lng          float64 `json:"lng" binding:"min=-180,max=180"`
}

// ToAddress validates and converts the input
func (in AddressInput) ToAddress() (valueobject.Address, error) {
	addr, err := valueobject.NewAddress(in.Line1, in.City, valueobject.Point{Lat: in.Lat, Lng: in.Lng})
	if err != nil {
		return valueobject.Address{}, err
	}
	addr.Line2 = in.Line2
	addr.PostalCode = in.PostalCode
	addr.Instructions = in.Instructions
	return addr, nil
}

// RegisterRequest creates the caller's marketplace profile
type RegisterRequest struct {
	Role        account.Role  `json:"role" binding:"required,oneof=CLIENT COOK DRIVER"`
	DisplayName string        `json:"display_name" binding:"required,min=1,max=200"`
	Email       string        `json:"email" binding:"omitempty,email,max=254"`
	Phone       string        `json:"phone" binding:"max=50"`
	Address     *AddressInput `json:"address"`
}

// UpdateProfileRequest replaces the caller's contact details
type UpdateProfileRequest struct {
	DisplayName string        `json:"display_name" binding:"required,min=1,max=200"`
	Phone       string        `json:"phone" binding:"max=50"`
	Address     *AddressInput `json:"address"`
	EmailNotify *bool         `json:"email_notifications"`
	PushNotify  *bool         `json:"push_notifications"`
}

// CookAvailabilityRequest opens or closes a kitchen
type CookAvailabilityRequest struct {
	AcceptingOrders    bool    `json:"accepting_orders"`
	KitchenName        *string `json:"kitchen_name" binding:"omitempty,min=1,max=200"`
	DefaultPrepMinutes *int    `json:"default_prep_minutes" binding:"omitempty,min=1,max=240"`
}

// DriverDutyRequest toggles whether a driver gets delivery offers
type DriverDutyRequest struct {
	OnDuty  bool   `json:"on_duty"`
	Vehicle string `json:"vehicle" binding:"max=100"`
}

// LocationRequest reports a driver's position
type LocationRequest struct {
	Lat float64 `json:"lat" binding:"min=-90,max=90"`
	Lng float64 `json:"lng" binding:"min=-180,max=180"`
}

// DeviceRequest registers a push token
type DeviceRequest struct {
	Token    string `json:"token" binding:"required,min=1,max=512"`
	Platform string `json:"platform" binding:"required,oneof=ios android web"`
}

// SuspendRequest carries the admin's reason
type SuspendRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AccountListFilter narrows the admin account listing
type AccountListFilter struct {
	Page     int            `form:"page" binding:"min=0"`
	PageSize int            `form:"page_size" binding:"min=0,max=100"`
	Search   string         `form:"search"`
	Role     account.Role   `form:"role" binding:"omitempty,oneof=CLIENT COOK DRIVER ADMIN"`
	Status   account.Status `form:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED"`
}

// CookProfileResponse is the public part of a cook's profile
type CookProfileResponse struct {
	KitchenName        string `json:"kitchen_name"`
	AcceptingOrders    bool   `json:"accepting_orders"`
	DefaultPrepMinutes int    `json:"default_prep_minutes"`
}

// DriverProfileResponse is a driver's duty state
type DriverProfileResponse struct {
	Vehicle        string             `json:"vehicle,omitempty"`
	OnDuty         bool               `json:"on_duty"`
	LastLocation   *valueobject.Point `json:"last_location,omitempty"`
	LastLocationAt *time.Time         `json:"last_location_at,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID                 uuid.UUID              `json:"id"`
	Role               account.Role           `json:"role"`
	Status             account.Status         `json:"status"`
	DisplayName        string                 `json:"display_name"`
	Email              string                 `json:"email,omitempty"`
	Phone              string                 `json:"phone,omitempty"`
	Address            *valueobject.Address   `json:"address,omitempty"`
	EmailNotifications bool                   `json:"email_notifications"`
	PushNotifications  bool                   `json:"push_notifications"`
	Cook               *CookProfileResponse   `json:"cook,omitempty"`
	Driver             *DriverProfileResponse `json:"driver,omitempty"`
	SuspendReason      string                 `json:"suspend_reason,omitempty"`
	SuspendedAt        *time.Time             `json:"suspended_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Version            int                    `json:"version"`
}

// ToAccountResponse converts the aggregate to its API shape
func ToAccountResponse(a *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:                 a.ID,
		Role:               a.Role,
		Status:             a.Status,
		DisplayName:        a.DisplayName,
		Email:              a.Email,
		Phone:              a.Phone,
		Address:            a.Address,
		EmailNotifications: a.Preferences.Email,
		PushNotifications:  a.Preferences.Push,
		SuspendReason:      a.SuspendReason,
		SuspendedAt:        a.SuspendedAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
		Version:            a.Version,
	}
	if a.Cook != nil {
		resp.Cook = &CookProfileResponse{
			KitchenName:        a.Cook.KitchenName,
			AcceptingOrders:    a.Cook.AcceptingOrders,
			DefaultPrepMinutes: a.Cook.DefaultPrepMinutes,
		}
	}
	if a.Driver != nil {
		resp.Driver = &DriverProfileResponse{
			Vehicle:        a.Driver.Vehicle,
			OnDuty:         a.Driver.OnDuty,
			LastLocation:   a.Driver.LastLocation,
			LastLocationAt: a.Driver.LastLocationAt,
		}
	}
	return resp
}

// ToAccountResponses converts a slice of accounts
func ToAccountResponses(accounts []account.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out
}
