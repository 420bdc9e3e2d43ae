// internal/pkg/errors/error.go
package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict: resource already exists")
	ErrInternal       = errors.New("internal server error")
	ErrRateLimited    = errors.New("too many requests")
	ErrSessionExpired = errors.New("session expired or invalid")
	ErrBadRequest     = errors.New("bad request")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// ========== Validation ==========

// ValidationError is raised before any store call when caller input breaks a precondition.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrInvalidInput) match every validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidation builds a ValidationError with a user-facing message.
func NewValidation(message string) error {
	return &ValidationError{Message: message}
}

// NewFieldValidation is NewValidation with the offending field recorded.
func NewFieldValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ========== Store / provider operations ==========

// OpError is a store or provider failure prefixed with the action that was attempted.
// Error() renders "<action>: <translated message>"; Unwrap keeps the cause reachable.
type OpError struct {
	Action string
	Err    error
}

func (e *OpError) Error() string {
	return e.Action + ": " + Translate(e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Op wraps err with the action phrase. A nil err stays nil.
func Op(action string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Action: action, Err: err}
}

// ========== Identity provider ==========

const (
	CodeInvalidCredential = "auth/invalid-credential"
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeUserNotFound      = "auth/user-not-found"
	CodeSessionExpired    = "auth/session-expired"
)

// AuthError is an identity-provider failure identified by a stable code.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is maps auth codes onto the generic sentinels so handlers can pick a status code.
func (e *AuthError) Is(target error) bool {
	switch e.Code {
	case CodeInvalidCredential, CodeUserNotFound:
		return target == ErrUnauthorized
	case CodeEmailInUse:
		return target == ErrConflict
	case CodeTooManyRequests:
		return target == ErrRateLimited
	case CodeSessionExpired:
		return target == ErrSessionExpired
	}
	return false
}

// NewAuth builds an AuthError.
func NewAuth(code string, err error) error {
	return &AuthError{Code: code, Err: err}
}

// ========== Helpers ==========

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
