// Package apperror defines the error kinds surfaced by the schema engine.
//
// Every catalog or store operation either succeeds or fails with one of the
// kinds below. Callers match kinds with errors.Is against the sentinels or
// read them with KindOf.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindInvalidIdentifier Kind = "invalid_identifier"
	KindDuplicateName     Kind = "duplicate_name"
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindStorage           Kind = "storage"
)

// Error carries a kind, a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. Sentinels carry no
// message, so any error of a kind matches that kind's sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrInvalidIdentifier = &Error{Kind: KindInvalidIdentifier}
	ErrDuplicateName     = &Error{Kind: KindDuplicateName}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrStorage           = &Error{Kind: KindStorage}
)

func InvalidIdentifier(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidIdentifier, Message: fmt.Sprintf(format, args...)}
}

func DuplicateName(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicateName, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity, e.g. NotFound("feature", id).
func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("no such %s with id = %v", entity, id)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence failure. Errors that already carry a kind are
// returned unchanged so a NotFound raised below a repository stays a NotFound.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// KindOf returns the kind of err, or KindStorage for errors carrying none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}
