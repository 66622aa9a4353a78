package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/davimurta/aurora-pairing-server/internal/errors"
)

func TestStatusFromCode(t *testing.T) {
	tests := []struct {
		code   apperrors.ErrorCode
		status int
	}{
		{apperrors.ErrCodeValidation, http.StatusBadRequest},
		{apperrors.ErrCodeMissingRequired, http.StatusBadRequest},
		{apperrors.ErrCodeConnectionCodeNotFound, http.StatusBadRequest},
		{apperrors.ErrCodeConnectionExpired, http.StatusBadRequest},
		{apperrors.ErrCodeConnectionAlreadyUsed, http.StatusBadRequest},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{apperrors.ErrCodeDatabase, http.StatusInternalServerError},
		{apperrors.ErrCodeInternal, http.StatusInternalServerError},
		{apperrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.status, StatusFromCode(tc.code))
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("writes failure envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, apperrors.ConnectionExpired(), false)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, apperrors.ErrCodeConnectionExpired, resp.Code)
		assert.Equal(t, "Connection code has expired", resp.Message)
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("boom"), false)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.ErrCodeInternal, resp.Code)
		assert.NotContains(t, resp.Message, "boom")
	})

	t.Run("strips details unless verbose", func(t *testing.T) {
		err := apperrors.ValidationError("Validation failed").
			WithDetails([]string{"code must be 6 characters"})

		rec := httptest.NewRecorder()
		WriteError(rec, err, false)
		assert.NotContains(t, rec.Body.String(), "6 characters")

		rec = httptest.NewRecorder()
		WriteError(rec, err, true)
		assert.Contains(t, rec.Body.String(), "6 characters")
	})
}
