package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// AccountService manages marketplace profiles. Identities come from the
// external identity provider; this service only stores what the marketplace
// needs about them.
type AccountService struct {
	accounts account.AccountRepository
	devices  account.DeviceRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts account.AccountRepository, devices account.DeviceRepository, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts: accounts,
		devices:  devices,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates the profile of the token subject
func (s *AccountService) Register(ctx context.Context, subject uuid.UUID, req RegisterRequest) (*AccountResponse, error) {
	if !req.Role.SelfRegistrable() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be CLIENT, COOK or DRIVER")
	}
	exists, err := s.accounts.Exists(ctx, subject)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Account is already registered")
	}

	a, err := account.NewAccount(subject, req.Role, req.DisplayName, req.Email)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" || req.Address != nil {
		addr, err := optionalAddress(req.Address)
		if err != nil {
			return nil, err
		}
		if err := a.UpdateProfile(a.DisplayName, req.Phone, addr, a.Preferences); err != nil {
			return nil, err
		}
		a.Version = 1
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("account registered",
		zap.String("account_id", a.ID.String()),
		zap.String("role", string(a.Role)),
	)
	resp := ToAccountResponse(a)
	return &resp, nil
}

// Get returns an account by ID
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(a)
	return &resp, nil
}

// UpdateProfile replaces the caller's contact details
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*AccountResponse, error) {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	addr, err := optionalAddress(req.Address)
	if err != nil {
		return nil, err
	}
	prefs := a.Preferences
	if req.EmailNotify != nil {
		prefs.Email = *req.EmailNotify
	}
	if req.PushNotify != nil {
		prefs.Push = *req.PushNotify
	}
	if err := a.UpdateProfile(req.DisplayName, req.Phone, addr, prefs); err != nil {
		return nil, err
	}
	return s.save(ctx, a)
}

// SetCookAvailability opens or closes the caller's kitchen
func (s *AccountService) SetCookAvailability(ctx context.Context, actor account.Actor, req CookAvailabilityRequest) (*AccountResponse, error) {
	if !actor.IsCook() {
		return nil, shared.ErrForbidden
	}
	a, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if req.AcceptingOrders && !a.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Suspended accounts cannot accept orders")
	}
	if req.KitchenName != nil || req.DefaultPrepMinutes != nil {
		name, prep := a.Cook.KitchenName, a.Cook.DefaultPrepMinutes
		if req.KitchenName != nil {
			name = *req.KitchenName
		}
		if req.DefaultPrepMinutes != nil {
			prep = *req.DefaultPrepMinutes
		}
		if err := a.SetKitchen(name, prep); err != nil {
			return nil, err
		}
	}
	if err := a.SetAcceptingOrders(req.AcceptingOrders); err != nil {
		return nil, err
	}
	return s.save(ctx, a)
}

// SetDriverDuty toggles whether the caller receives delivery offers
func (s *AccountService) SetDriverDuty(ctx context.Context, actor account.Actor, req DriverDutyRequest) (*AccountResponse, error) {
	if !actor.IsDriver() {
		return nil, shared.ErrForbidden
	}
	a, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if req.OnDuty && !a.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Suspended accounts cannot go on duty")
	}
	if err := a.SetOnDuty(req.OnDuty, req.Vehicle); err != nil {
		return nil, err
	}
	return s.save(ctx, a)
}

// UpdateDriverLocation records the caller's position. Location pings are
// frequent, so a concurrent update is retried once on the fresh row.
func (s *AccountService) UpdateDriverLocation(ctx context.Context, actor account.Actor, req LocationRequest) (*AccountResponse, error) {
	if !actor.IsDriver() {
		return nil, shared.ErrForbidden
	}
	var resp *AccountResponse
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var a *account.Account
		a, err = s.accounts.FindByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if err = a.UpdateLocation(req.Lat, req.Lng, s.now()); err != nil {
			return nil, err
		}
		resp, err = s.save(ctx, a)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			break
		}
	}
	return resp, err
}

// Suspend blocks an account (admin only)
func (s *AccountService) Suspend(ctx context.Context, actor account.Actor, id uuid.UUID, reason string) (*AccountResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Suspend(reason); err != nil {
		return nil, err
	}
	resp, err := s.save(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("account suspended",
		zap.String("account_id", id.String()),
		zap.String("admin_id", actor.ID.String()),
		zap.String("reason", reason),
	)
	return resp, nil
}

// Reactivate lifts a suspension (admin only)
func (s *AccountService) Reactivate(ctx context.Context, actor account.Actor, id uuid.UUID) (*AccountResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Reactivate(); err != nil {
		return nil, err
	}
	return s.save(ctx, a)
}

// List returns accounts for the admin console
func (s *AccountService) List(ctx context.Context, filter AccountListFilter) ([]AccountResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
	if filter.Role != "" {
		f.Filters["role"] = string(filter.Role)
	}
	if filter.Status != "" {
		f.Filters["status"] = string(filter.Status)
	}
	f = f.Normalize()

	accounts, total, err := s.accounts.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToAccountResponses(accounts), total, nil
}

// RegisterDevice stores a push token for the caller
func (s *AccountService) RegisterDevice(ctx context.Context, actor account.Actor, req DeviceRequest) error {
	d := &account.Device{
		ID:        uuid.New(),
		AccountID: actor.ID,
		Token:     req.Token,
		Platform:  req.Platform,
		CreatedAt: s.now(),
	}
	return s.devices.Upsert(ctx, d)
}

func (s *AccountService) save(ctx context.Context, a *account.Account) (*AccountResponse, error) {
	if err := s.accounts.SaveWithLock(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAccountResponse(a)
	return &resp, nil
}

func optionalAddress(in *AddressInput) (*valueobject.Address, error) {
	if in == nil {
		return nil, nil
	}
	addr, err := in.ToAddress()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	return &addr, nil
}
