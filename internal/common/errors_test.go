package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound("Post", 3), http.StatusNotFound},
		{"invalid credential", fmt.Errorf("decode: %w", ErrInvalidCredential), http.StatusUnauthorized},
		{"forbidden", Forbidden(), http.StatusUnauthorized},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"bad request", Wrap(ErrBadRequest, "invalid id"), http.StatusBadRequest},
		{"already exists", Wrap(ErrAlreadyExists, "Post with this title already exists"), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFromError(tc.err))
		})
	}
}

func TestKindSeparatesAuthenticationFromAuthorization(t *testing.T) {
	assert.Equal(t, "authentication", Kind(ErrInvalidCredential))
	assert.Equal(t, "authorization", Kind(Forbidden()))
	assert.False(t, errors.Is(Forbidden(), ErrUnauthenticated))
}

func TestWrapKeepsMessage(t *testing.T) {
	err := NotFound("Comment", 12)
	assert.Equal(t, "404 - Comment with id: 12 wasn't found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}
