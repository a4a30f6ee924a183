package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	accountapp "github.com/homechef/backend/internal/application/account"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_Register(t *testing.T) {
	subject := uuid.New()
	req := accountapp.RegisterRequest{Role: account.RoleCook, DisplayName: "Nana's Kitchen"}

	t.Run("registers the token subject", func(t *testing.T) {
		svc := new(mockAccounts)
		svc.On("Register", mock.Anything, subject, req).
			Return(&accountapp.AccountResponse{ID: subject, Role: account.RoleCook}, nil)
		h := NewAccountHandler(svc)

		w, env := serve(t, h.Register, call{method: http.MethodPost, route: "/accounts", url: "/accounts", body: req, subject: &subject})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, subject, decode[accountapp.AccountResponse](t, env.Data).ID)
	})

	t.Run("admins cannot self-register", func(t *testing.T) {
		h := NewAccountHandler(new(mockAccounts))

		w, env := serve(t, h.Register, call{method: http.MethodPost, route: "/accounts", url: "/accounts",
			body: accountapp.RegisterRequest{Role: account.RoleAdmin, DisplayName: "root"}, subject: &subject})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "role", env.Error.Details[0].Field)
	})

	t.Run("second registration conflicts", func(t *testing.T) {
		svc := new(mockAccounts)
		svc.On("Register", mock.Anything, subject, req).Return(nil, shared.ErrAlreadyExists)
		h := NewAccountHandler(svc)

		w, env := serve(t, h.Register, call{method: http.MethodPost, route: "/accounts", url: "/accounts", body: req, subject: &subject})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
	})

	t.Run("no subject", func(t *testing.T) {
		h := NewAccountHandler(new(mockAccounts))

		w, _ := serve(t, h.Register, call{method: http.MethodPost, route: "/accounts", url: "/accounts", body: req})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAccountHandler_Suspend(t *testing.T) {
	admin := actorOf(account.RoleAdmin)
	id := uuid.New()
	svc := new(mockAccounts)
	svc.On("Suspend", mock.Anything, *admin, id, "fraud").
		Return(&accountapp.AccountResponse{ID: id, Status: account.StatusSuspended}, nil)
	h := NewAccountHandler(svc)

	w, env := serve(t, h.Suspend, call{method: http.MethodPost, route: "/admin/accounts/:id/suspend",
		url: "/admin/accounts/" + id.String() + "/suspend", body: accountapp.SuspendRequest{Reason: "fraud"}, actor: admin})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, account.StatusSuspended, decode[accountapp.AccountResponse](t, env.Data).Status)
}

func TestAccountHandler_RegisterDevice(t *testing.T) {
	client := actorOf(account.RoleClient)
	req := accountapp.DeviceRequest{Token: "fcm-token", Platform: "android"}
	svc := new(mockAccounts)
	svc.On("RegisterDevice", mock.Anything, *client, req).Return(nil)
	h := NewAccountHandler(svc)

	w, _ := serve(t, h.RegisterDevice, call{method: http.MethodPost, route: "/accounts/me/devices",
		url: "/accounts/me/devices", body: req, actor: client})

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}
