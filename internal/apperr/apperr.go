package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so the HTTP boundary can pick a status
// code without string matching.
type Kind int

const (
	// KindValidation marks missing or malformed input.
	KindValidation Kind = iota
	// KindConflict marks a duplicate-resource failure, e.g. signing up an
	// email that is already registered or awaiting verification.
	KindConflict
	// KindNotFound marks a lookup of an unknown user or note.
	KindNotFound
	// KindInvalidCredential marks an OTP/email pair that matches nothing.
	// Expired codes surface here too; callers cannot tell them apart.
	KindInvalidCredential
)

// Error is the application error carried from services to the HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation builds a missing/malformed-input error.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf builds a formatted validation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a duplicate-resource error.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound builds an unknown-resource error.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// InvalidCredential builds an OTP mismatch error.
func InvalidCredential(message string) error {
	return &Error{Kind: KindInvalidCredential, Message: message}
}

// Status maps err to an HTTP status code. The second return is false when err
// is not an application error and should be treated as an internal failure.
func Status(err error) (int, bool) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return 0, false
	}
	switch appErr.Kind {
	case KindValidation, KindInvalidCredential:
		return http.StatusBadRequest, true
	case KindNotFound:
		return http.StatusNotFound, true
	case KindConflict:
		return http.StatusConflict, true
	}
	return http.StatusInternalServerError, true
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
