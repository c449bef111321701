package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("requested resource not found")
	ErrUnauthenticated   = errors.New("authentication failed")
	ErrInvalidCredential = fmt.Errorf("invalid credential: %w", ErrUnauthenticated)
	ErrForbidden         = errors.New("user is not authorized to make this request")
	ErrBadRequest        = errors.New("bad request")
	ErrAlreadyExists     = errors.New("resource already exists") // unique constraint violated
	ErrValidation        = errors.New("validation failed")
)

// Error carries a client-facing message on top of one of the sentinels above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Wrap attaches a client-facing message to a sentinel.
func Wrap(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string, id int64) error {
	return Wrap(ErrNotFound, "404 - %s with id: %d wasn't found", resource, id)
}

func Forbidden() error {
	return Wrap(ErrForbidden, "User is not authorized to make this request.")
}

// StatusFromError maps domain errors to HTTP status codes.
// Authorization failures share 401 with authentication failures; only the
// sentinel and message tell them apart.
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Kind names the failure class for logs.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthenticated):
		return "authentication"
	case errors.Is(err, ErrForbidden):
		return "authorization"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	}
	return "internal"
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
