package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyLimitMiddleware(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.Write(body)
	})

	t.Run("passes small bodies through", func(t *testing.T) {
		m := NewBodyLimitMiddleware(64)
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hello"))
		rec := httptest.NewRecorder()

		m.Handler(echo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello", rec.Body.String())
	})

	t.Run("rejects oversized content length upfront", func(t *testing.T) {
		m := NewBodyLimitMiddleware(8)
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 100)))
		rec := httptest.NewRecorder()

		m.Handler(echo).ServeHTTP(rec, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), "too large")
	})

	t.Run("defaults the limit when given zero", func(t *testing.T) {
		m := NewBodyLimitMiddleware(0)
		assert.Equal(t, int64(DefaultMaxBodySize), m.maxSize)
	})
}
