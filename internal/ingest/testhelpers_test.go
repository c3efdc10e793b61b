package ingest

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"shotbox/internal/events"
	"shotbox/internal/models"
)

type formPart struct {
	field       string
	fileName    string
	contentType string
	body        []byte
}

func newMultipartRequest(t *testing.T, parts ...formPart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, part := range parts {
		if part.fileName == "" {
			require.NoError(t, writer.WriteField(part.field, string(part.body)))
			continue
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+part.field+`"; filename="`+part.fileName+`"`)
		if part.contentType != "" {
			header.Set("Content-Type", part.contentType)
		}
		w, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = w.Write(part.body)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type fakeLedger struct {
	mu      sync.Mutex
	uploads []models.Upload
	err     error
}

func (f *fakeLedger) Create(_ context.Context, upload models.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.uploads = append(f.uploads, upload)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Ingested
	err    error
}

func (f *fakePublisher) PublishIngested(_ context.Context, event events.Ingested) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type failingContainer struct {
	name      string
	createErr error
	putErr    error
}

func (f failingContainer) Name() string { return f.name }

func (f failingContainer) CreateIfNotExists(context.Context) error { return f.createErr }

func (f failingContainer) Put(context.Context, string, []byte, string, map[string]string) error {
	return f.putErr
}

var errBackend = errors.New("backend unavailable")
