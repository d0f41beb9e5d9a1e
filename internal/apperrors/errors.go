package apperrors

import (
	"errors"
	"fmt"
)

// Not-found errors raised by the aggregate and repository.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrCycleNotFound = errors.New("cycle not found")
	ErrEntryNotFound = errors.New("daily entry not found")
)

// Credential and token errors. The distinct token failures are kept for
// logging; handlers collapse them into a generic 401/403 response body.
var (
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user inactive or no longer exists")
)

// ValidationError reports a field-level constraint violation on input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a ValidationError for a field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports a duplicate value on a unique field (username, email).
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// InternalError wraps store/transport failures not attributable to caller
// input. The wrapped cause is for logs only; callers see a generic message.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Internal wraps err as an InternalError unless it already belongs to the
// taxonomy.
func Internal(err error) error {
	var ve *ValidationError
	var ce *ConflictError
	var ie *InternalError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve), errors.As(err, &ce), errors.As(err, &ie):
		return err
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrCycleNotFound), errors.Is(err, ErrEntryNotFound):
		return err
	default:
		return &InternalError{Err: err}
	}
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCycleNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}
