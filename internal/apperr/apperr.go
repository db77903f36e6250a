// Package apperr defines the application error taxonomy shared by all
// services and the HTTP layer.
//
// Three kinds cover every failure the API reports: a missing entity, a
// business-rule conflict, and malformed input. Handlers classify errors
// with errors.As and translate the kind to an HTTP status, so services
// and repositories never import net/http.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the class of an application error.
type Kind int

const (
	// KindNotFound marks a lookup for an entity that does not exist.
	KindNotFound Kind = iota
	// KindConflict marks a business-rule or state violation.
	KindConflict
	// KindValidation marks malformed or out-of-range input.
	KindValidation
)

// Error is an application error with a kind and a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NotFound returns a KindNotFound error with a formatted message.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error with a formatted message.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a KindValidation error with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err. The second return is false when err
// is not an application error.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// IsNotFound reports whether err is a KindNotFound application error.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

// IsConflict reports whether err is a KindConflict application error.
func IsConflict(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConflict
}

// IsValidation reports whether err is a KindValidation application error.
func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindValidation
}
