package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotbox/internal/config"
	"shotbox/internal/handlers"
	"shotbox/internal/ingest"
	"shotbox/internal/storage"
)

func TestServerRoutes(t *testing.T) {
	cfg := &config.AppConfig{Environment: "test", Upload: config.UploadConfig{MaxMemory: 1 << 20}}
	reg := prometheus.NewRegistry()
	svc := ingest.NewService(storage.NewMemoryContainer("rawimages"), nil, nil, nil, zerolog.Nop())
	hs, err := handlers.NewHandlerSet(zerolog.Nop(), cfg, svc, handlers.Dependencies{Registerer: reg})
	require.NoError(t, err)

	srv := NewHTTPServer(cfg, zerolog.Nop(), hs, reg)

	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shotbox_upload_requests_total{status="400"} 1`)
}
