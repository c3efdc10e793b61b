package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotbox/internal/config"
	"shotbox/internal/ingest"
	"shotbox/internal/models"
	"shotbox/internal/repository"
	"shotbox/internal/storage"
)

type fakeLister struct {
	uploads   []models.Upload
	err       error
	gotLimit  int
	gotOffset int
	calls     int
}

func (f *fakeLister) List(_ context.Context, limit, offset int) ([]models.Upload, error) {
	f.calls++
	f.gotLimit, f.gotOffset = limit, offset
	return f.uploads, f.err
}

func (f *fakeLister) GetByID(_ context.Context, id string) (models.Upload, error) {
	if f.err != nil {
		return models.Upload{}, f.err
	}
	for _, upload := range f.uploads {
		if upload.ID == id {
			return upload, nil
		}
	}
	return models.Upload{}, repository.ErrUploadNotFound
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Upload:      config.UploadConfig{MaxMemory: 1 << 20},
	}
}

func newTestEngine(t *testing.T, svc *ingest.Service, deps Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hs, err := NewHandlerSet(zerolog.Nop(), testConfig(), svc, deps)
	require.NoError(t, err)

	engine := gin.New()
	hs.Register(engine.Group("/api"))
	return engine
}

func uploadBody(t *testing.T, withFile bool, size int) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if withFile {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{1}, size))
		require.NoError(t, err)
	}
	require.NoError(t, writer.WriteField("category", "bug"))
	require.NoError(t, writer.WriteField("tags", `["ui","crash"]`))
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUploadImageSuccess(t *testing.T) {
	container := storage.NewMemoryContainer("rawimages")
	reg := prometheus.NewRegistry()
	engine := newTestEngine(t, ingest.NewService(container, nil, nil, nil, zerolog.Nop()), Dependencies{Registerer: reg})

	body, contentType := uploadBody(t, true, 1024)
	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "file uploaded successfully", out["message"])
	assert.Equal(t, float64(1024), out["size"])
	assert.Regexp(t, `^[0-9a-f-]{36}_photo\.png$`, out["name"])
	assert.Equal(t, out["id"].(string)+"_photo.png", out["name"])

	obj, ok := container.Get(out["name"].(string))
	require.True(t, ok)
	assert.Equal(t, "bug", obj.Metadata["category"])

	count, err := testutil.GatherAndCount(reg, "shotbox_upload_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUploadImageWithoutFile(t *testing.T) {
	engine := newTestEngine(t, ingest.NewService(storage.NewMemoryContainer("rawimages"), nil, nil, nil, zerolog.Nop()), Dependencies{})

	body, contentType := uploadBody(t, false, 0)
	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No file found in request"}`, rec.Body.String())
}

func TestUploadImageRejectsJSON(t *testing.T) {
	engine := newTestEngine(t, ingest.NewService(storage.NewMemoryContainer("rawimages"), nil, nil, nil, zerolog.Nop()), Dependencies{})

	for _, body := range []string{`{}`, `{"file":"aGVsbG8="}`, `[1,2,3]`} {
		req := httptest.NewRequest(http.MethodPost, "/api/upload-image", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		out := decode(t, rec)
		assert.Equal(t, "Content type must be multipart/form-data", out["error"])
		assert.Equal(t, "application/json", out["contentType"])
	}
}

func TestUploadImageWithoutStorageTarget(t *testing.T) {
	engine := newTestEngine(t, ingest.NewService(nil, storage.ErrNotConfigured, nil, nil, zerolog.Nop()), Dependencies{})

	body, contentType := uploadBody(t, true, 8)
	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Storage connection string not configured"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	svc := ingest.NewService(storage.NewMemoryContainer("rawimages"), nil, nil, nil, zerolog.Nop())
	engine := newTestEngine(t, svc, Dependencies{
		PingCache: func(context.Context) error { return errors.New("down") },
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"ok","database":"disabled","cache":"error","environment":"test"}`, rec.Body.String())
}

func TestListUploads(t *testing.T) {
	svc := ingest.NewService(storage.NewMemoryContainer("rawimages"), nil, nil, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	newTestEngine(t, svc, Dependencies{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	lister := &fakeLister{uploads: []models.Upload{{
		ID:         "id-1",
		StoredName: "id-1_a.png",
		Status:     models.UploadStatusAccepted,
		SizeBytes:  3,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}}
	rec = httptest.NewRecorder()
	newTestEngine(t, svc, Dependencies{Uploads: lister}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads?page=3&perPage=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, lister.gotLimit)
	assert.Equal(t, 20, lister.gotOffset)
	items := decode(t, rec)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "accepted", items[0].(map[string]any)["status"])
}

func TestListUploadsPageBeyondRange(t *testing.T) {
	svc := ingest.NewService(storage.NewMemoryContainer("rawimages"), nil, nil, nil, zerolog.Nop())
	lister := &fakeLister{uploads: []models.Upload{{ID: "id-1"}}}
	engine := newTestEngine(t, svc, Dependencies{Uploads: lister})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads?page=9223372036854775807&perPage=200", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	assert.Zero(t, lister.calls)
}

func TestGetUpload(t *testing.T) {
	svc := ingest.NewService(storage.NewMemoryContainer("rawimages"), nil, nil, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	newTestEngine(t, svc, Dependencies{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads/id-1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	lister := &fakeLister{uploads: []models.Upload{{
		ID:         "id-1",
		StoredName: "id-1_a.png",
		MimeType:   "image/png",
		Status:     models.UploadStatusStored,
	}}}
	engine := newTestEngine(t, svc, Dependencies{Uploads: lister})

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads/id-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "id-1_a.png", body["name"])
	assert.Equal(t, "stored", body["status"])

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"upload not found"}`, rec.Body.String())

	lister.err = errors.New("connection reset")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads/id-1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
