// Package errs defines the business error model shared by all layers.
// Domain operations fail with a typed *Error carrying a stable code; the
// handler layer performs the single mapping from code to HTTP status and
// response envelope. Use errors.Is with the package-level sentinels to
// branch on a specific failure.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a business failure kind. Codes are stable and appear
// verbatim in API error responses.
type Code string

const (
	// Common
	CodeInvalidInput     Code = "INVALID_INPUT_VALUE"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeInvalidType      Code = "INVALID_TYPE_VALUE"
	CodeAccessDenied     Code = "ACCESS_DENIED"
	CodeInternal         Code = "INTERNAL_SERVER_ERROR"

	// Auth
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeInvalidToken        Code = "INVALID_TOKEN"
	CodeExpiredToken        Code = "EXPIRED_TOKEN"
	CodeInvalidRefreshToken Code = "INVALID_REFRESH_TOKEN"
	CodeLogoutUser          Code = "LOGOUT_USER"

	// Member
	CodeMemberNotFound  Code = "MEMBER_NOT_FOUND"
	CodeDuplicateEmail  Code = "DUPLICATE_EMAIL"
	CodeInvalidPassword Code = "INVALID_PASSWORD"
	CodeInactiveMember  Code = "INACTIVE_MEMBER"

	// Product
	CodeProductNotFound   Code = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"

	// Order
	CodeOrderNotFound        Code = "ORDER_NOT_FOUND"
	CodeOrderAlreadyCanceled Code = "ORDER_ALREADY_CANCELLED"
	CodeOrderCannotCancel    Code = "ORDER_CANNOT_CANCEL"
	CodeOrderLockFailed      Code = "ORDER_LOCK_FAILED"
)

// Error is a business failure with a stable code and an HTTP status used by
// the top-level adapter. It intentionally carries no wrapped cause: causes
// are logged at the site that detects them.
type Error struct {
	Code    Code
	Status  int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Is makes errors.Is(err, errs.ProductNotFound) match any *Error with the
// same code, regardless of which instance was returned.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newErr(code Code, status int, msg string) *Error {
	return &Error{Code: code, Status: status, Message: msg}
}

// Sentinels, one per code. Services return these directly.
var (
	InvalidInput     = newErr(CodeInvalidInput, http.StatusBadRequest, "invalid input value")
	MethodNotAllowed = newErr(CodeMethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed")
	InvalidType      = newErr(CodeInvalidType, http.StatusBadRequest, "invalid type value")
	AccessDenied     = newErr(CodeAccessDenied, http.StatusForbidden, "access denied")
	Internal         = newErr(CodeInternal, http.StatusInternalServerError, "internal server error")

	Unauthorized        = newErr(CodeUnauthorized, http.StatusUnauthorized, "authentication required")
	InvalidToken        = newErr(CodeInvalidToken, http.StatusUnauthorized, "invalid token")
	ExpiredToken        = newErr(CodeExpiredToken, http.StatusUnauthorized, "expired token")
	InvalidRefreshToken = newErr(CodeInvalidRefreshToken, http.StatusUnauthorized, "invalid refresh token")
	LogoutUser          = newErr(CodeLogoutUser, http.StatusUnauthorized, "logged out user")

	MemberNotFound  = newErr(CodeMemberNotFound, http.StatusNotFound, "member not found")
	DuplicateEmail  = newErr(CodeDuplicateEmail, http.StatusConflict, "email already in use")
	InvalidPassword = newErr(CodeInvalidPassword, http.StatusBadRequest, "password does not match")
	InactiveMember  = newErr(CodeInactiveMember, http.StatusForbidden, "inactive member")

	ProductNotFound   = newErr(CodeProductNotFound, http.StatusNotFound, "product not found")
	InsufficientStock = newErr(CodeInsufficientStock, http.StatusBadRequest, "insufficient stock")

	OrderNotFound        = newErr(CodeOrderNotFound, http.StatusNotFound, "order not found")
	OrderAlreadyCanceled = newErr(CodeOrderAlreadyCanceled, http.StatusBadRequest, "order already cancelled")
	OrderCannotCancel    = newErr(CodeOrderCannotCancel, http.StatusBadRequest, "order state does not allow cancellation")
	OrderLockFailed      = newErr(CodeOrderLockFailed, http.StatusConflict, "another request is processing this product, retry shortly")
)

// WithMessage returns a copy of err with a more specific message. The code
// and status are preserved so errors.Is still matches the sentinel.
func WithMessage(err *Error, msg string) *Error {
	return &Error{Code: err.Code, Status: err.Status, Message: msg}
}

// StatusOf returns the HTTP status for err, or 500 for non-business errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the business code for err, or INTERNAL_SERVER_ERROR.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return Internal.Message
}
