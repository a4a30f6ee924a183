package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/application/event"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOutboxHandler(t *testing.T) {
	admin := actorOf(account.RoleAdmin)

	t.Run("lists dead entries with meta", func(t *testing.T) {
		svc := new(mockOutbox)
		svc.On("GetDeadLetterEntries", mock.Anything, event.OutboxFilter{Page: 1, PageSize: 50}).
			Return([]event.OutboxEntryDTO{{ID: uuid.New(), Status: "DEAD"}}, int64(1), nil)
		h := NewOutboxHandler(svc)

		w, env := serve(t, h.GetDeadLetterEntries, call{method: http.MethodGet, route: "/admin/outbox/dead",
			url: "/admin/outbox/dead?page=1&page_size=50", actor: admin})

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 50, env.Meta.PageSize)
	})

	t.Run("retry of a live entry", func(t *testing.T) {
		id := uuid.New()
		svc := new(mockOutbox)
		svc.On("RetryDeadEntry", mock.Anything, id).
			Return(nil, shared.NewDomainError("INVALID_STATUS", "Only dead entries can be retried"))
		h := NewOutboxHandler(svc)

		w, env := serve(t, h.RetryDeadEntry, call{method: http.MethodPost, route: "/admin/outbox/:id/retry",
			url: "/admin/outbox/" + id.String() + "/retry", actor: admin})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_STATUS", env.Error.Code)
	})

	t.Run("retry all returns the count", func(t *testing.T) {
		svc := new(mockOutbox)
		svc.On("RetryAllDeadEntries", mock.Anything).Return(int64(7), nil)
		h := NewOutboxHandler(svc)

		w, env := serve(t, h.RetryAllDeadEntries, call{method: http.MethodPost, route: "/admin/outbox/retry-all",
			url: "/admin/outbox/retry-all", actor: admin})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(7), decode[CountData](t, env.Data).Count)
	})
}
