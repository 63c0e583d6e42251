package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritchiero/Budget-Agent/internal/auth"
	"github.com/ritchiero/Budget-Agent/internal/config"
)

func testServer(t *testing.T, keyHash string) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.LLM.APIKey = ""
	cfg.Server.APIKeyHash = keyHash
	cfg.Server.RateLimit = 0

	h, err := newHandler(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutes(t *testing.T) {
	srv := testServer(t, "")

	for _, path := range []string{"/", "/api/health", "/api/overview", "/api/hidden-costs", "/api/timeline", "/api/estimate?task=check+status"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), path)
	}

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/overview", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestChatRequiresKeyWhenConfigured(t *testing.T) {
	hash, err := auth.HashKey("ba_secret")
	require.NoError(t, err)
	srv := testServer(t, hash)

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/chat", strings.NewReader(`{"message":"where does my money go"}`))
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "ba_secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// reports stay public
	resp, err = http.Get(srv.URL + "/api/hidden-costs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
