// Package apperrors classifies the failures the service layer reports so the
// HTTP layer can pick a status code without string matching.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind is the category of an application error.
type Kind int

const (
	// KindNotFound means the requested product id does not exist.
	KindNotFound Kind = iota + 1
	// KindConflict is a business rule violation such as a duplicate name.
	KindConflict
	// KindValidation is a malformed price range or search term.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// AppError is an error carrying a Kind and a message safe to show to callers.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a KindNotFound error.
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// Conflict creates a KindConflict error.
func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// Validation creates a KindValidation error.
func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// KindOf returns the Kind of the first AppError in err's chain, or 0.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode converts an error to an HTTP status code.
// Conflicts are reported as 400, matching the rest of the API's business errors.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
