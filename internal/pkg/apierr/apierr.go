// Package apierr defines the error taxonomy shared by the registry client,
// the in-memory mirror and the coordinators. Every failed operation is
// classified as exactly one kind; there are no retries and no partial
// successes.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies a registry operation failure.
type Kind int

const (
	// KindUnknown marks an error that carries no classification.
	KindUnknown Kind = iota
	// KindInvalidResponse means the HTTP response had an unexpected shape.
	KindInvalidResponse
	// KindNotFound means the addressed entity does not exist.
	KindNotFound
	// KindAlreadyExists means a uniqueness rule was violated.
	KindAlreadyExists
	// KindValidation means the input was rejected (400-class).
	KindValidation
	// KindServer means any other non-2xx outcome.
	KindServer
	// KindNetwork means the transport itself failed.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindInvalidResponse:
		return "invalid_response"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a classified registry failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind carrying an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// InvalidResponse creates an invalid-response error.
func InvalidResponse(message string) *Error { return New(KindInvalidResponse, message) }

// NotFound creates a not-found error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// AlreadyExists creates an already-exists error.
func AlreadyExists(message string) *Error { return New(KindAlreadyExists, message) }

// Validation creates a validation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// Server creates a server error.
func Server(message string) *Error { return New(KindServer, message) }

// Network creates a network error wrapping the transport failure.
func Network(err error) *Error { return Wrap(KindNetwork, "network error", err) }

// KindOf extracts the kind of a classified error, unwrapping as needed.
// Unclassified errors report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return KindUnknown
	}
	return e.Kind
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsAlreadyExists reports whether err is an already-exists error.
func IsAlreadyExists(err error) bool { return IsKind(err, KindAlreadyExists) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }
