package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{Validation("bad"), http.StatusUnprocessableEntity},
		{BadRequest("bad"), http.StatusBadRequest},
		{Duplicate("dup"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{RateLimited("slow"), http.StatusTooManyRequests},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus, tc.err.Type)
	}
}

func TestFromUnwrapsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NotFound("Conversation not found"))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, "Conversation not found", From(wrapped).Message)

	plain := errors.New("socket closed")
	got := From(plain)
	assert.Equal(t, TypeInternal, got.Type)
	assert.ErrorIs(t, got, plain)
}

func TestWriteRendersDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)

	Write(rr, req, Unauthorized("Could not validate credentials"))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "Could not validate credentials", body.Detail)
	assert.Equal(t, TypeUnauthorized, body.Type)
}

func TestWriteHidesInternalCause(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	Write(rr, req, errors.New("dial tcp 10.0.0.1:27017: refused"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Detail)
}
