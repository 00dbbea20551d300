// errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// Kinds. Every domain error unwraps to exactly one of these so callers can
// branch with errors.Is without knowing the concrete entity.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUnprocessable  = errors.New("unprocessable entity")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	ErrDatabaseOperation = errors.New("database operation failed")
)

// DomainError carries a user-facing message and the kind it belongs to.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...interface{}) error {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return newf(ErrNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newf(ErrConflict, format, args...)
}

func Unprocessable(format string, args ...interface{}) error {
	return newf(ErrUnprocessable, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return newf(ErrUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newf(ErrForbidden, format, args...)
}

func BadRequest(format string, args ...interface{}) error {
	return newf(ErrBadRequest, format, args...)
}

// Database wraps a driver error so it still matches ErrDatabaseOperation.
func Database(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrDatabaseOperation, err)
}

// KindOf reports which kind err belongs to, or ErrInternalServer.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrNotFound, ErrConflict, ErrUnprocessable, ErrUnauthorized,
		ErrForbidden, ErrBadRequest, ErrDatabaseOperation,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternalServer
}

// Message returns the user-facing part of err.
func Message(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
