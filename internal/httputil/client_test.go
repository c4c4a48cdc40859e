package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Client Tests
// =============================================================================

func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{
		BaseURL: "http://localhost:4000/",
		Token:   "secret",
		Timeout: 10 * time.Second,
	})

	assert.Equal(t, "http://localhost:4000", client.BaseURL())
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://localhost:4000"})
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Widget", body["name"])

		WriteJSON(w, http.StatusCreated, map[string]string{"id": "1"})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret"})
	resp, err := client.Post(context.Background(), "/items", map[string]string{"name": "Widget"})
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, DecodeResponse(resp, &out))
	assert.Equal(t, "1", out["id"])
}

func TestClient_DoesNotRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	resp, err := client.Get(context.Background(), "/items")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 1, calls)
}

func TestDecodeResponse_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	resp, err := client.Delete(context.Background(), "/items/9")
	require.NoError(t, err)

	err = DecodeResponse(resp, nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "Not found", statusErr.Message)
}

func TestDecodeResponse_PlainErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	resp, err := client.Get(context.Background(), "/")
	require.NoError(t, err)

	err = DecodeResponse(resp, nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "upstream exploded", statusErr.Message)
}

func TestDecodeResponse_NilTargetDiscards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	resp, err := client.Delete(context.Background(), "/items/1")
	require.NoError(t, err)
	assert.NoError(t, DecodeResponse(resp, nil))
}

func TestReadAllWithLimit(t *testing.T) {
	data, truncated, err := ReadAllWithLimit(strings.NewReader("abcdef"), 4)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, "abcd", string(data))

	_, err = ReadAllStrict(strings.NewReader("abcdef"), 4)
	assert.Error(t, err)

	data, err = ReadAllStrict(strings.NewReader("abc"), 4)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}
