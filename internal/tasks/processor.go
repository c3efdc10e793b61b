package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"shotbox/internal/events"
	"shotbox/internal/media/sniffer"
	"shotbox/internal/models"
	"shotbox/internal/repository"
)

// StatusUpdater moves a ledger row to its post-ingestion status.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, status models.UploadStatus) error
}

type Processor struct {
	uploads StatusUpdater
	logger  zerolog.Logger
}

// NewProcessor returns a processor; uploads may be nil when no ledger is configured.
func NewProcessor(uploads StatusUpdater, logger zerolog.Logger) *Processor {
	return &Processor{
		uploads: uploads,
		logger:  logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	event, err := events.Decode(msg.Values)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch event.Type {
	case events.TypeIngested:
		return p.handleIngested(ctx, event)
	default:
		p.logger.Warn().Str("type", event.Type).Str("message_id", msg.ID).Msg("unknown event type")
		return nil
	}
}

func (p *Processor) handleIngested(ctx context.Context, event events.Ingested) error {
	status := Classify(event)
	p.logger.Info().
		Str("id", event.ID).
		Str("name", event.Name).
		Str("mime_type", event.MimeType).
		Str("status", string(status)).
		Msg("upload classified")

	if p.uploads == nil {
		return nil
	}
	err := p.uploads.UpdateStatus(ctx, event.ID, status)
	if errors.Is(err, repository.ErrUploadNotFound) {
		p.logger.Warn().Str("id", event.ID).Msg("upload missing from ledger")
		return nil
	}
	return err
}

// Classify accepts uploads whose media type names an image. When the
// declared type is empty the original file extension decides.
func Classify(event events.Ingested) models.UploadStatus {
	mediaType := event.MimeType
	if mediaType == "" {
		mediaType = sniffer.TypeByExtension(originalName(event))
	}
	if sniffer.IsImage(mediaType) {
		return models.UploadStatusAccepted
	}
	return models.UploadStatusRejected
}

func originalName(event events.Ingested) string {
	return strings.TrimPrefix(event.Name, event.ID+"_")
}
