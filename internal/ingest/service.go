package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shotbox/internal/events"
	"shotbox/internal/models"
	"shotbox/internal/storage"
)

const SuccessMessage = "file uploaded successfully"

// Result is the success descriptor returned to the uploader.
type Result struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ID      string `json:"id"`
}

// Recorder persists a ledger row for each stored upload.
type Recorder interface {
	Create(ctx context.Context, upload models.Upload) error
}

// EventPublisher announces stored uploads to downstream workers.
type EventPublisher interface {
	PublishIngested(ctx context.Context, event events.Ingested) error
}

type Service struct {
	container storage.Container
	openErr   error
	ledger    Recorder
	publisher EventPublisher
	log       zerolog.Logger
	newID     func() string
}

// NewService builds the ingestion service. openErr is the error returned
// when the container was opened; it is reported on every request so that a
// missing storage target surfaces as a per-request configuration error.
// ledger and publisher may be nil.
func NewService(container storage.Container, openErr error, ledger Recorder, publisher EventPublisher, log zerolog.Logger) *Service {
	return &Service{
		container: container,
		openErr:   openErr,
		ledger:    ledger,
		publisher: publisher,
		log:       log,
		newID:     uuid.NewString,
	}
}

// Ready returns a ConfigurationError when no usable container is configured.
func (s *Service) Ready() error {
	switch {
	case errors.Is(s.openErr, storage.ErrNotConfigured):
		return &ConfigurationError{Message: "Storage connection string not configured"}
	case s.openErr != nil:
		return &ConfigurationError{Message: "Storage connection string is invalid", Err: s.openErr}
	case s.container == nil:
		return &ConfigurationError{Message: "Storage connection string not configured"}
	}
	return nil
}

func (s *Service) Container() storage.Container {
	return s.container
}

func (s *Service) Ingest(ctx context.Context, upload Upload) (Result, error) {
	if err := s.Ready(); err != nil {
		return Result{}, err
	}
	if upload.File == nil {
		return Result{}, &BadRequestError{Message: "No file found in request"}
	}

	id := s.newID()
	storedName := id + "_" + upload.FileName

	data, err := io.ReadAll(upload.File)
	if err != nil {
		return Result{}, &BadRequestError{Message: "Unable to read file"}
	}

	if detected, mismatch := sniffMismatch(upload.MimeType, data); mismatch {
		s.log.Debug().
			Str("id", id).
			Str("declared", upload.MimeType).
			Str("detected", detected).
			Msg("declared media type differs from content")
	}

	if err := s.container.CreateIfNotExists(ctx); err != nil {
		s.log.Error().Err(err).Str("container", s.container.Name()).Msg("ensure container failed")
		return Result{}, &StorageError{Op: "create container", Err: err}
	}

	category := ""
	if upload.Category != nil {
		category = *upload.Category
	}
	metadata := map[string]string{
		"id":       id,
		"mimeType": upload.MimeType,
		"category": category,
		"tags":     encodeTags(upload.Tags),
	}

	if err := s.container.Put(ctx, storedName, data, upload.MimeType, metadata); err != nil {
		s.log.Error().Err(err).Str("id", id).Str("name", storedName).Msg("store upload failed")
		return Result{}, &StorageError{Op: "put", Err: err}
	}

	size := int64(len(data))
	s.log.Info().
		Str("id", id).
		Str("name", storedName).
		Int64("size", size).
		Str("category", category).
		Msg("upload stored")

	s.announce(ctx, models.Upload{
		ID:         id,
		StoredName: storedName,
		Container:  s.container.Name(),
		MimeType:   upload.MimeType,
		Category:   category,
		Tags:       metadata["tags"],
		SizeBytes:  size,
		Status:     models.UploadStatusStored,
	})

	return Result{
		Message: SuccessMessage,
		Name:    storedName,
		Size:    size,
		ID:      id,
	}, nil
}

// announce records the upload in the ledger and on the event stream. Both
// are best effort: the blob is already stored and the caller gets its id.
func (s *Service) announce(ctx context.Context, upload models.Upload) {
	if s.ledger != nil {
		now := time.Now().UTC()
		upload.CreatedAt = now
		upload.UpdatedAt = now
		if err := s.ledger.Create(ctx, upload); err != nil {
			s.log.Warn().Err(err).Str("id", upload.ID).Msg("record upload failed")
		}
	}

	if s.publisher != nil {
		err := s.publisher.PublishIngested(ctx, events.Ingested{
			ID:        upload.ID,
			Name:      upload.StoredName,
			Container: upload.Container,
			MimeType:  upload.MimeType,
			Category:  upload.Category,
			Size:      upload.SizeBytes,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("id", upload.ID).Msg("publish ingested event failed")
		}
	}
}

// encodeTags JSON-encodes the raw tags field. An absent field encodes as
// "null"; a present field is encoded as a JSON string even when it already
// holds a JSON array.
func encodeTags(tags *string) string {
	if tags == nil {
		return "null"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(*tags); err != nil {
		return "null"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
