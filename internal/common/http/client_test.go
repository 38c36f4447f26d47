// internal/common/http/client_test.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DoJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ping", in["message"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"pong"}`))
	}))
	defer server.Close()

	var out struct {
		Reply string `json:"reply"`
	}
	err := NewClient(5*time.Second).DoJSON(context.Background(), http.MethodPost, server.URL,
		map[string]string{"Authorization": "Bearer k"}, map[string]string{"message": "ping"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "pong", out.Reply)
}

func TestClient_DoJSON_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := NewClient(5*time.Second).WithRetries(2).DoJSON(context.Background(), http.MethodGet, server.URL, nil, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoJSON_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`bad input`))
	}))
	defer server.Close()

	err := NewClient(5*time.Second).WithRetries(3).DoJSON(context.Background(), http.MethodGet, server.URL, nil, nil, nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "bad input", statusErr.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_DoJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewClient(5*time.Second).DoJSON(ctx, http.MethodGet, server.URL, nil, nil, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}
