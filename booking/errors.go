package booking

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers. The HTTP layer maps kinds to status
// codes; the engine itself only ever branches on Kind, never on message text.
type Kind string

const (
	KindNotFound                Kind = "not_found"
	KindAccessDenied            Kind = "access_denied"
	KindDuplicateBooking        Kind = "duplicate_booking"
	KindAlreadyCanceled         Kind = "already_canceled"
	KindInvalidTransition       Kind = "invalid_transition"
	KindImmutableFieldViolation Kind = "immutable_field_violation"
	KindCapacityExceeded        Kind = "capacity_exceeded"
	KindPastEvent               Kind = "past_event"
	KindTenantMismatch          Kind = "tenant_mismatch"
	KindUnavailable             Kind = "unavailable"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a domain error with a caller-facing message.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a transient store failure. The original cause is kept for
// logs but never shown to end users.
func Unavailable(err error, message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindUnavailable for errors that did not
// come from the engine. Storage failures leak no detail beyond that
// classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
