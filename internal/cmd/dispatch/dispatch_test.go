package dispatch

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/intervirt-md/api"
)

const lab = "# Lab\n\n```bash\nvirtctl start vm1\n```{{execute}}\n\n```go\nx := 1\n```\n\n```\nkubectl get vmis\n```{{execute}}\n"

func writeLab(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lab.md")
	require.NoError(t, os.WriteFile(path, []byte(lab), 0644))
	return path
}

func newTestOptions(output string) (*dispatchOptions, *bytes.Buffer) {
	var stdout bytes.Buffer
	return &dispatchOptions{output: output, noColor: true, stdout: &stdout}, &stdout
}

func TestRunDispatch_Single(t *testing.T) {
	var got api.ExecuteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/execute", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "run-1", "status": "queued", "output": "vm1 started"}`))
	}))
	defer server.Close()

	opts, stdout := newTestOptions("")
	err := runDispatch(writeLab(t), 0, opts, api.NewClient(server.URL, "tok"))
	require.NoError(t, err)

	assert.Equal(t, "virtctl start vm1\n", got.Code)
	assert.Equal(t, "bash", got.Language)
	assert.Equal(t, 0, got.Index)
	assert.Equal(t, "lab.md", got.Source)

	out := stdout.String()
	assert.Contains(t, out, "✓ Dispatched block 0 (line 3)")
	assert.Contains(t, out, "Status: queued")
	assert.Contains(t, out, "ID: run-1")
	assert.Contains(t, out, "vm1 started")
}

func TestRunDispatch_All(t *testing.T) {
	var codes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.ExecuteRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		codes = append(codes, req.Code)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	opts, stdout := newTestOptions("json")
	opts.all = true
	err := runDispatch(writeLab(t), -1, opts, api.NewClient(server.URL, ""))
	require.NoError(t, err)

	assert.Equal(t, []string{"virtctl start vm1\n", "kubectl get vmis\n"}, codes)

	var results []api.ExecuteResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	assert.Len(t, results, 2)
}

func TestRunDispatch_IndexOutOfRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("endpoint should not be called")
	}))
	defer server.Close()

	opts, _ := newTestOptions("")
	err := runDispatch(writeLab(t), 5, opts, api.NewClient(server.URL, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block 5 not found")
	assert.Contains(t, err.Error(), "has 2 executable blocks")
}

func TestRunDispatch_EndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "unsupported language"}`))
	}))
	defer server.Close()

	opts, _ := newTestOptions("")
	err := runDispatch(writeLab(t), 1, opts, api.NewClient(server.URL, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to dispatch block 1")
	assert.Contains(t, err.Error(), "unsupported language")
}

func TestRunDispatch_NoBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.md")
	require.NoError(t, os.WriteFile(path, []byte("# Nothing to run\n"), 0644))

	opts, _ := newTestOptions("")
	opts.all = true
	err := runDispatch(path, -1, opts, api.NewClient("http://localhost:99999", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no executable blocks")
}

func TestNewCmdDispatch_Args(t *testing.T) {
	cmd := NewCmdDispatch()

	assert.Error(t, cmd.Args(cmd, []string{"lab.md"}))
	assert.NoError(t, cmd.Args(cmd, []string{"lab.md", "0"}))

	require.NoError(t, cmd.Flags().Set("all", "true"))
	assert.NoError(t, cmd.Args(cmd, []string{"lab.md"}))
	assert.Error(t, cmd.Args(cmd, []string{"lab.md", "0"}))
}
