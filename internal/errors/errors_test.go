package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"missing fields", ErrMissingFields, http.StatusBadRequest},
		{"user exists", ErrUserExists, http.StatusConflict},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"refresh used", ErrRefreshTokenUsed, http.StatusUnauthorized},
		{"not owner", ErrNotVideoOwner, http.StatusForbidden},
		{"channel missing", ErrChannelNotFound, http.StatusNotFound},
		{"upload failed", ErrVideoUpload, http.StatusInternalServerError},
		{"token generation", ErrTokenGeneration, http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", WrapError(ErrVideoNotFound, errors.New("record not found"))), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestWrapErrorKeepsIdentity(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	wrapped := WrapError(ErrInternal, cause)

	assert.ErrorIs(t, wrapped, ErrInternal)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrUserExists)
	assert.Equal(t, "Internal server error", GetErrorMessage(wrapped))
	assert.Equal(t, "Internal server error: dial tcp: refused", wrapped.Error())
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "", GetErrorMessage(nil))
	assert.Equal(t, "boom", GetErrorMessage(errors.New("boom")))
	assert.Equal(t, "channel does not exist", GetErrorMessage(ErrChannelNotFound))
}
