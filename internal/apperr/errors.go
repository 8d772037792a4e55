// Package apperr defines the error taxonomy surfaced to API callers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how the caller should react to it.
type Kind int

const (
	KindInternal Kind = iota
	KindAuth
	KindPermission
	KindValidation
	KindNotFound
	KindConflict
)

// Code is a machine-readable error code.
type Code string

const (
	CodeInternal          Code = "INTERNAL"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeInvalidCredential Code = "INVALID_CREDENTIALS"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeWeakPassword      Code = "WEAK_PASSWORD"
	CodePasswordMismatch  Code = "PASSWORD_MISMATCH"
	CodePasswordTooLong   Code = "PASSWORD_TOO_LONG"
	CodeNotMember         Code = "NOT_BOARD_MEMBER"
	CodeCreatorRemoval    Code = "CREATOR_NOT_REMOVABLE"
	CodeEmptyComment      Code = "EMPTY_COMMENT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeEmailTaken        Code = "EMAIL_TAKEN"
	CodeAlreadyMember     Code = "ALREADY_MEMBER"
)

// Error is a classified error with an optional offending field.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithField returns a copy of e naming the offending input field.
func (e *Error) WithField(field string) *Error {
	cp := *e
	cp.Field = field
	return &cp
}

func newError(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Auth reports missing or invalid credentials.
func Auth(code Code, message string) *Error {
	return newError(KindAuth, code, message)
}

// Permission reports an authenticated caller acting outside its rights.
func Permission(message string) *Error {
	return newError(KindPermission, CodeForbidden, message)
}

// Validation reports malformed, missing or contradictory input.
func Validation(code Code, message string) *Error {
	return newError(KindValidation, code, message)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(message string) *Error {
	return newError(KindNotFound, CodeNotFound, message)
}

// Conflict reports a uniqueness violation.
func Conflict(code Code, message string) *Error {
	return newError(KindConflict, code, message)
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, code Code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps err to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuth:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
