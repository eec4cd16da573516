package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error into the taxonomy the API layer maps to
// status codes. Every service-level failure carries exactly one Kind.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindInvalidArgument  Kind = "invalid_argument"
	KindInvalidRole      Kind = "invalid_role"
	KindExpired          Kind = "expired"
	KindRevoked          Kind = "revoked"
	KindExhausted        Kind = "exhausted"
	KindAlreadyProcessed Kind = "already_processed"
	KindInternal         Kind = "internal"
)

// Error is the service-level error type. Services construct it with the
// helpers below; storage errors are wrapped so drivers never leak to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func InvalidArgument(format string, args ...any) *Error {
	return newError(KindInvalidArgument, format, args...)
}

func InvalidRole(format string, args ...any) *Error {
	return newError(KindInvalidRole, format, args...)
}

func Expired(format string, args ...any) *Error {
	return newError(KindExpired, format, args...)
}

func Revoked(format string, args ...any) *Error {
	return newError(KindRevoked, format, args...)
}

func Exhausted(format string, args ...any) *Error {
	return newError(KindExhausted, format, args...)
}

func AlreadyProcessed(format string, args ...any) *Error {
	return newError(KindAlreadyProcessed, format, args...)
}

// Internal wraps an unexpected storage or infrastructure error.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the Kind from err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error Kind to the stable status code the API exposes.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict, KindAlreadyProcessed:
		return fiber.StatusConflict
	case KindInvalidArgument, KindInvalidRole:
		return fiber.StatusBadRequest
	case KindExpired, KindRevoked, KindExhausted:
		return fiber.StatusGone
	default:
		return fiber.StatusInternalServerError
	}
}
