package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotbox/internal/config"
	"shotbox/internal/submit"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type capturedRequest struct {
	filename string
	mimeType string
	category string
	tags     string
}

func newAPI(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest, *atomic.Int32) {
	t.Helper()
	seen := &capturedRequest{}
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			if _, header, err := r.FormFile("file"); err == nil {
				seen.filename = header.Filename
				seen.mimeType = header.Header.Get("Content-Type")
			}
			seen.category = r.FormValue("category")
			seen.tags = r.FormValue("tags")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, seen, calls
}

func run(t *testing.T, endpoint string, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cfg := &config.AppConfig{
		Environment: "test",
		Client:      config.ClientConfig{Endpoint: endpoint, Timeout: 5 * time.Second},
	}
	cmd := NewRootCmd(cfg)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestUploadFile(t *testing.T) {
	srv, seen, _ := newAPI(t, http.StatusOK,
		`{"message":"file uploaded successfully","name":"u_shot.png","size":16,"id":"u"}`)

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	out, err := run(t, srv.URL, nil, "upload", path, "--category", "bug", "--tag", "login page", "--tag", "ui")
	require.NoError(t, err)

	var result submit.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "u_shot.png", result.Name)

	assert.Equal(t, "shot.png", seen.filename)
	assert.Equal(t, "image/png", seen.mimeType)
	assert.Equal(t, "bug", seen.category)
	assert.Equal(t, `["login-page","ui"]`, seen.tags)
}

func TestUploadPaste(t *testing.T) {
	srv, seen, _ := newAPI(t, http.StatusOK,
		`{"message":"file uploaded successfully","name":"u_image.png","size":16,"id":"u"}`)

	_, err := run(t, srv.URL, bytes.NewReader(pngHeader), "upload", "--paste", "-c", "design", "-t", "mock")
	require.NoError(t, err)
	assert.Equal(t, "image.png", seen.filename)
	assert.Equal(t, "design", seen.category)
}

func TestUploadPasteWithoutImageNeverCallsAPI(t *testing.T) {
	srv, _, calls := newAPI(t, http.StatusOK, `{}`)

	_, err := run(t, srv.URL, strings.NewReader("plain text"), "upload", "--paste", "-c", "bug", "-t", "x")
	var validation *submit.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "file required", validation.Message)
	assert.Zero(t, calls.Load())
}

func TestUploadServerErrorIsGeneric(t *testing.T) {
	srv, _, _ := newAPI(t, http.StatusInternalServerError, `{"error":"Failed to store file"}`)

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	_, err := run(t, srv.URL, nil, "upload", path, "-c", "bug", "-t", "x")
	require.ErrorIs(t, err, submit.ErrUploadFailed)
	assert.Equal(t, "upload failed", err.Error())
}

func TestUploadRequiresExactlyOneSource(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:0", nil, "upload", "-c", "bug")
	assert.EqualError(t, err, "provide either a file argument or --paste")
}

func TestCategories(t *testing.T) {
	out, err := run(t, "", nil, "categories")
	require.NoError(t, err)
	assert.Equal(t, "research\ndesign\nbug\nfeedback\n", out)
}
