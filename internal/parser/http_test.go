package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPParser_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/parse", r.URL.Path)

		var req parseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "remind me friday", req.Text)

		json.NewEncoder(w).Encode(Result{
			Structured: json.RawMessage(`{"intent":"reminder","day":"friday"}`),
			Model:      "test-model",
		})
	}))
	defer upstream.Close()

	p := NewHTTPParser(upstream.URL, "test-model")
	result, err := p.Parse(context.Background(), "remind me friday", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"reminder","day":"friday"}`, string(result.Structured))
}

func TestHTTPParser_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Result{Structured: json.RawMessage(`{}`)})
	}))
	defer upstream.Close()

	p := NewHTTPParser(upstream.URL, "")
	_, err := p.Parse(context.Background(), "text", "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPParser_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer upstream.Close()

	p := NewHTTPParser(upstream.URL, "")
	_, err := p.Parse(context.Background(), "text", "")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses are not retried")
}

func TestHTTPParser_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	p := NewHTTPParser(upstream.URL, "")
	_, err := p.Parse(context.Background(), "text", "")
	assert.Error(t, err)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}
