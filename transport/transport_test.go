package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/clinic-client/transport"
)

func TestDoEncodesJSONBody(t *testing.T) {
	var got struct {
		Name string `json:"name"`
	}
	var contentType, authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		authorization = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	tr := transport.NewHTTP(server.URL)
	header := http.Header{}
	header.Set("Authorization", "Bearer at-1")
	resp, err := tr.Do(context.Background(), &transport.Request{
		Method: http.MethodPost,
		Path:   "/things",
		Header: header,
		Body:   map[string]string{"name": "x"},
	})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.JSONEq(t, `{"id":1}`, string(resp.Body))
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "Bearer at-1", authorization)
}

func TestDoErrorStatusIsNotATransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"maintenance"}`))
	}))
	defer server.Close()

	resp, err := transport.NewHTTP(server.URL).Do(context.Background(), &transport.Request{
		Method: http.MethodGet,
		Path:   "/things",
	})
	require.NoError(t, err, "an error status still yields a response, not an error")
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
}

func TestDoPerRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	_, err := transport.NewHTTP(server.URL).Do(context.Background(), &transport.Request{
		Method:  http.MethodGet,
		Path:    "/slow",
		Timeout: 20 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := transport.NewHTTP(server.URL).Do(ctx, &transport.Request{
		Method: http.MethodGet,
		Path:   "/slow",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := transport.NewHTTP(server.URL).Do(context.Background(), &transport.Request{
		Method: http.MethodGet,
		Path:   "/things",
	})
	require.Error(t, err)
}
