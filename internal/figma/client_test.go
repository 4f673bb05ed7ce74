package figma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("tok", WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
}

func TestGetFile_MissingToken(t *testing.T) {
	_, err := NewClient("  ").GetFile(context.Background(), "KEY", "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestGetFile_SendsTokenAndNodeID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/KEY", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("X-Figma-Token"))
		assert.Equal(t, "1:2", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"name":"Board"}`))
	})

	body, err := c.GetFile(context.Background(), "KEY", "1:2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Board"}`, string(body))
}

func TestGetFile_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrInvalidToken},
		{http.StatusForbidden, ErrInvalidToken},
		{http.StatusNotFound, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			})

			_, err := c.GetFile(context.Background(), "KEY", "")
			assert.ErrorIs(t, err, tt.want)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
		})
	}
}

func TestGetFile_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream"))
	})

	_, err := c.GetFile(context.Background(), "KEY", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "upstream")
	assert.Equal(t, int32(defaultRetries), calls.Load())
}

func TestGetFile_RecoversAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	})

	_, err := c.GetFile(context.Background(), "KEY", "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetFile_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.GetFile(ctx, "KEY", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
