package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"shotbox/internal/config"
	"shotbox/internal/ingest"
	"shotbox/internal/models"
)

// UploadReader reads rows from the upload ledger.
type UploadReader interface {
	List(ctx context.Context, limit, offset int) ([]models.Upload, error)
	GetByID(ctx context.Context, id string) (models.Upload, error)
}

// Dependencies are the optional collaborators of the HTTP handlers. Nil
// fields disable the feature that needs them.
type Dependencies struct {
	Uploads      UploadReader
	PingDatabase func(ctx context.Context) error
	PingCache    func(ctx context.Context) error
	Registerer   prometheus.Registerer
}

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	ingest  *ingest.Service
	deps    Dependencies
	metrics *uploadMetrics
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc *ingest.Service, deps Dependencies) (HandlerSet, error) {
	metrics, err := newUploadMetrics(deps.Registerer)
	if err != nil {
		return HandlerSet{}, err
	}
	return HandlerSet{
		log:     log,
		cfg:     cfg,
		ingest:  svc,
		deps:    deps,
		metrics: metrics,
	}, nil
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)
	router.POST("/upload-image", h.UploadImage)
	router.GET("/uploads", h.ListUploads)
	router.GET("/uploads/:id", h.GetUpload)
}
