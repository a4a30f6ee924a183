package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"PAYMENT_REFERENCE_REQUIRED", http.StatusBadRequest},
		{"EMPTY_ORDER", http.StatusBadRequest},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{"NOT_PARTICIPANT", http.StatusForbidden},
		{"ACCOUNT_SUSPENDED", http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{"DISH_NOT_FOUND", http.StatusNotFound},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"STORAGE_DISABLED", http.StatusServiceUnavailable},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"HANDOFF_LOCKED", http.StatusTooManyRequests},
		{"APPROVAL_EXPIRED", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_POINTS", http.StatusUnprocessableEntity},
		{"MIXED_COOKS", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.code))
		})
	}
}

func TestErrorCodeHTTPStatus_TransportCodes(t *testing.T) {
	for code, want := range map[string]int{
		ErrCodeInternal:        http.StatusInternalServerError,
		ErrCodeValidation:      http.StatusBadRequest,
		ErrCodeInvalidJSON:     http.StatusBadRequest,
		ErrCodeUnauthorized:    http.StatusUnauthorized,
		ErrCodeNotRegistered:   http.StatusForbidden,
		ErrCodeRouteNotFound:   http.StatusNotFound,
		ErrCodeRateLimited:     http.StatusTooManyRequests,
		ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
		ErrCodeUnavailable:     http.StatusServiceUnavailable,
	} {
		got, ok := ErrorCodeHTTPStatus[code]
		require.True(t, ok, "%s has no explicit status", code)
		assert.Equal(t, want, got, code)
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewSuccessResponseWithMeta(nil, 0, 0, 0)
	assert.Equal(t, 1, empty.Meta.Page)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNewErrorResponse_JSON(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse("NOT_FOUND", "order not found", "req-1"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": "NOT_FOUND", "message": "order not found", "request_id": "req-1"}
	}`, string(raw))
}

type placeItem struct {
	DishID   string `validate:"required,uuid"`
	Quantity int    `validate:"min=1"`
}

type placeBody struct {
	Items         []placeItem `validate:"required,min=1,dive"`
	PaymentMethod string      `validate:"oneof=CARD CASH"`
}

func TestValidationDetails(t *testing.T) {
	t.Run("validator errors become field details", func(t *testing.T) {
		err := validator.New().Struct(placeBody{
			Items:         []placeItem{{DishID: "", Quantity: 0}},
			PaymentMethod: "BARTER",
		})
		require.Error(t, err)

		details, ok := ValidationDetails(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []ValidationDetail{
			{Field: "items[0].dish_id", Message: "is required"},
			{Field: "items[0].quantity", Message: "must be at least 1"},
			{Field: "payment_method", Message: "must be one of: CARD CASH"},
		}, details)
	})

	t.Run("json type errors name the field", func(t *testing.T) {
		var body struct {
			Quantity int `json:"quantity"`
		}
		err := json.Unmarshal([]byte(`{"quantity":"two"}`), &body)

		details, ok := ValidationDetails(err)
		require.True(t, ok)
		assert.Equal(t, "quantity", details[0].Field)
		assert.Equal(t, "must be a int", details[0].Message)
	})

	t.Run("other errors are not validation failures", func(t *testing.T) {
		_, ok := ValidationDetails(assert.AnError)
		assert.False(t, ok)
	})
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "dish_id", toSnake("DishID"))
	assert.Equal(t, "payment_method", toSnake("PaymentMethod"))
	assert.Equal(t, "image_url", toSnake("ImageURL"))
	assert.Equal(t, "items[0]", toSnake("Items[0]"))
}
