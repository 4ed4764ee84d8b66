// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrResourceInUse      = errors.New("resource in use")
	ErrSelfDeletion       = errors.New("self deletion forbidden")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUpstream           = errors.New("upstream unavailable")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenInvalid = errors.New("token invalid")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, "INVALID_INPUT")
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		fmt.Sprintf("%s already exists", field),
		http.StatusConflict,
		"DUPLICATE",
	)
}

func ResourceInUseError(resource string) *AppError {
	return NewAppError(
		ErrResourceInUse,
		fmt.Sprintf("%s is still referenced and cannot be deleted", resource),
		http.StatusConflict,
		"RESOURCE_IN_USE",
	)
}

func SelfDeletionError() *AppError {
	return NewAppError(
		ErrSelfDeletion,
		"you cannot delete your own account",
		http.StatusBadRequest,
		"SELF_DELETION_FORBIDDEN",
	)
}

func StorageUnavailableError() *AppError {
	return NewAppError(
		ErrStorageUnavailable,
		"storage temporarily unavailable, retry the request",
		http.StatusServiceUnavailable,
		"STORAGE_UNAVAILABLE",
	)
}

func UpstreamError() *AppError {
	return NewAppError(
		ErrUpstream,
		"content source unavailable",
		http.StatusServiceUnavailable,
		"UPSTREAM_UNAVAILABLE",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "token has expired", http.StatusUnauthorized, "TOKEN_EXPIRED")
}

func TokenRevokedError() *AppError {
	return NewAppError(ErrTokenRevoked, "token has been revoked", http.StatusUnauthorized, "TOKEN_REVOKED")
}

func TokenInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "token is invalid", http.StatusUnauthorized, "TOKEN_INVALID")
}

// StorageError marks a driver fault so handlers report it as
// StorageUnavailable; the driver error stays in the chain for logs.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
