package storage

import (
	"errors"
	"fmt"
)

// ErrorKind classifies business-rule failures so the API layer can map them to
// HTTP status codes without string matching.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindConflict
	KindForbidden
	KindInvalid
)

// Error is a business-rule violation raised by a repository operation.
// Unexpected failures (I/O, database) are returned as plain wrapped errors and
// must not be surfaced verbatim to API clients.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func notFoundErr(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictErr(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func forbiddenErr(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func invalidErr(format string, args ...any) error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func kindOf(err error) ErrorKind {
	var storageErr *Error
	if errors.As(err, &storageErr) {
		return storageErr.Kind
	}
	return 0
}

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsConflict reports whether err is a duplicate or state-guard failure.
func IsConflict(err error) bool { return kindOf(err) == KindConflict }

// IsForbidden reports whether err is an ownership failure.
func IsForbidden(err error) bool { return kindOf(err) == KindForbidden }

// IsInvalid reports whether err is a request validation failure.
func IsInvalid(err error) bool { return kindOf(err) == KindInvalid }
