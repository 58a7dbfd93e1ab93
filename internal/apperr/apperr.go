// Package apperr defines the failures the mutation services return. Every
// failure carries a localized message that is safe to show to the caller.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	Unauthenticated Kind = iota + 1
	Forbidden
	NotFound
	Validation
	DuplicateReview
	UserNotFound
	ServiceUnavailable
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case DuplicateReview:
		return "duplicate_review"
	case UserNotFound:
		return "user_not_found"
	case ServiceUnavailable:
		return "service_unavailable"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Reason narrows a Validation failure.
type Reason string

const (
	RatingOutOfRange Reason = "rating_out_of_range"
	ContentEmpty     Reason = "content_empty"
	ContentTooShort  Reason = "content_too_short"
	ContentTooLong   Reason = "content_too_long"
	MissingField     Reason = "missing_field"
	NameTooLong      Reason = "name_too_long"
	AddressTooLong   Reason = "address_too_long"
)

// Entities reported by NotFound failures.
const (
	EntityTruck  = "truck"
	EntityReview = "review"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Reason  Reason // set for Validation
	Field   string // set for MissingField
	Entity  string // set for NotFound
	Message string
	Err     error // underlying cause, never shown to callers
}

func (e *Error) Error() string {
	var s string
	switch {
	case e.Reason != "":
		s = fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Entity != "":
		s = fmt.Sprintf("%s: %s", e.Kind, e.Entity)
	default:
		s = e.Kind.String()
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, Reason and Entity so that errors.Is works against the
// constructors below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Reason != "" && t.Reason != e.Reason {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	return true
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or ServiceUnavailable for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ServiceUnavailable
}

func NewUnauthenticated() *Error {
	return &Error{Kind: Unauthenticated, Message: msgUnauthenticated}
}

func NewForbidden(message string) *Error {
	if message == "" {
		message = msgForbidden
	}
	return &Error{Kind: Forbidden, Message: message}
}

func NewNotFound(entity string) *Error {
	msg := msgReviewNotFound
	if entity == EntityTruck {
		msg = msgTruckNotFound
	}
	return &Error{Kind: NotFound, Entity: entity, Message: msg}
}

func NewDuplicateReview() *Error {
	return &Error{Kind: DuplicateReview, Message: msgDuplicateReview}
}

func NewUserNotFound() *Error {
	return &Error{Kind: UserNotFound, Message: msgUserNotFound}
}

// NewInvalid builds a Validation failure. field is only meaningful for
// MissingField.
func NewInvalid(reason Reason, field, message string) *Error {
	return &Error{Kind: Validation, Reason: reason, Field: field, Message: message}
}

// NewUnavailable wraps a storage or network fault behind a generic message.
func NewUnavailable(message string, cause error) *Error {
	return &Error{Kind: ServiceUnavailable, Message: message, Err: cause}
}
