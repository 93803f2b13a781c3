package configcmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/intervirt-md/internal/config"
)

func testConfig(serverURL string) *config.Config {
	return &config.Config{
		Endpoint: serverURL,
		Token:    "test-token",
	}
}

func TestRunTest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "pong"}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	err := runTest(&buf, testConfig(server.URL), true, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Endpoint reachable")
	assert.Contains(t, buf.String(), "Endpoint says: pong")
}

func TestRunTest_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "Unauthorized"}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	err := runTest(&buf, testConfig(server.URL), true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestRunTest_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "forbidden"}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	err := runTest(&buf, testConfig(server.URL), true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestRunTest_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var buf bytes.Buffer
	err := runTest(&buf, testConfig(server.URL), true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection failed")
	assert.Contains(t, err.Error(), "status 500")
}

func TestRunTest_InvalidConfig(t *testing.T) {
	var buf bytes.Buffer
	err := runTest(&buf, &config.Config{}, true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")
	assert.Empty(t, buf.String())
}
