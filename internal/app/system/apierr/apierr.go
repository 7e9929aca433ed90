// Package apierr defines the error taxonomy returned by the API and how
// each kind maps to an HTTP status.
//
// Stores return plain sentinel errors. Services and handlers translate
// them into *Error values; anything that is not an *Error is treated as
// an internal failure and never shown to the client.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "ConflictError"
	case KindNotFound:
		return "NotFoundError"
	case KindUnauthorized, KindForbidden:
		return "AuthError"
	default:
		return "InternalError"
	}
}

// Error is a classified, client-safe error.
type Error struct {
	Kind    Kind
	Status  int
	Field   string // offending field path, when known
	Message string
	Err     error // wrapped cause, never rendered
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation is malformed or out-of-range input (400).
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Field: field, Message: msg}
}

// Conflict is a duplicate unique id, vote, or feedback (400).
func Conflict(field, msg string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusBadRequest, Field: field, Message: msg}
}

// InUse is a conflict with dependent records, e.g. deleting a
// constituency that still has panchayats (409).
func InUse(msg string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: msg}
}

// NotFound is a missing entity or foreign key (404).
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

// Unauthorized is a missing or invalid bearer token (401).
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden is a signed-in user without the required role (403).
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

// Internal wraps an unexpected failure (500).
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// From returns err as an *Error, wrapping unclassified errors as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// KindOf returns the kind of err (KindInternal for unclassified errors).
func KindOf(err error) Kind {
	return From(err).Kind
}

// IsDomain reports whether err is a classified, non-internal error. The
// bulk coordinator records these per item instead of aborting.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind != KindInternal
}
