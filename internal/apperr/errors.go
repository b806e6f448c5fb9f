// Package apperr normalises every failure the ordering core can surface into
// one error type carrying a Kind and an optional user-facing message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for presentation and control flow.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindInvalidCoupon
	KindCancellationNotAllowed
	KindRequestFailed
	KindRequestTimeout
	KindAuthenticationExpired
	KindNotFound
)

var kindNames = map[Kind]string{
	KindUnknown:                "unknown",
	KindValidation:             "validation",
	KindInvalidCoupon:          "invalid_coupon",
	KindCancellationNotAllowed: "cancellation_not_allowed",
	KindRequestFailed:          "request_failed",
	KindRequestTimeout:         "request_timeout",
	KindAuthenticationExpired:  "authentication_expired",
	KindNotFound:               "not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// GenericMessage is shown when neither the service nor the caller provided one.
const GenericMessage = "Something went wrong. Please try again."

// Error is the single error shape surfaced to callers of the core.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status for request failures, 0 otherwise.
	Status int
	Err    error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrInvalidCoupon          = &Error{Kind: KindInvalidCoupon}
	ErrCancellationNotAllowed = &Error{Kind: KindCancellationNotAllowed}
	ErrRequestFailed          = &Error{Kind: KindRequestFailed}
	ErrRequestTimeout         = &Error{Kind: KindRequestTimeout}
	ErrAuthenticationExpired  = &Error{Kind: KindAuthenticationExpired}
	ErrNotFound               = &Error{Kind: KindNotFound}
)

// ErrEmptyResponse is a request failure where the service answered without
// a result.
var ErrEmptyResponse = New(KindRequestFailed, "The server sent an empty response. Please try again.")

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation is shorthand for New(KindValidation, message).
func Validation(message string) *Error {
	return New(KindValidation, message)
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind. A timeout is also a request failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Err != nil {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindRequestFailed && e.Kind == KindRequestTimeout
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns the message to show for err, falling back to a generic
// one when the failure carries none.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return GenericMessage
}
