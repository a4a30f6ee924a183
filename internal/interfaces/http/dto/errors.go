package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors keep their own codes.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeNotRegistered   = "NOT_REGISTERED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP statuses. Codes missing here
// fall back to StatusFor's naming rules.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,
	"EMPTY_ORDER":      http.StatusBadRequest,
	"DUPLICATE_ITEM":   http.StatusBadRequest,
	"DUPLICATE_STOP":   http.StatusBadRequest,

	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeTokenExpired:  http.StatusUnauthorized,
	ErrCodeTokenInvalid:  http.StatusUnauthorized,
	ErrCodeTokenRevoked:  http.StatusUnauthorized,
	ErrCodeNotRegistered: http.StatusForbidden,

	ErrCodeForbidden:       http.StatusForbidden,
	"ACCOUNT_SUSPENDED":    http.StatusForbidden,
	"NOT_PARTICIPANT":      http.StatusForbidden,
	"NOT_A_COOK":           http.StatusForbidden,
	"NOT_A_DRIVER":         http.StatusForbidden,
	"NOT_ASSIGNED":         http.StatusForbidden,
	"CANNOT_SUSPEND_ADMIN": http.StatusForbidden,
	"CANCEL_NOT_ALLOWED":   http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeRouteNotFound: http.StatusNotFound,
	"DISH_NOT_FOUND":     http.StatusNotFound,
	"ENTRY_NOT_FOUND":    http.StatusNotFound,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	"HANDOFF_LOCKED":       http.StatusTooManyRequests,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
	"STORAGE_DISABLED":     http.StatusServiceUnavailable,
}

// StatusFor returns the HTTP status of an error code. Unlisted INVALID_* and
// *_REQUIRED codes are input errors (400); any other unlisted code is a
// business rule violation (422).
func StatusFor(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasSuffix(code, "_REQUIRED") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
