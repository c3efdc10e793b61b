package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Storage     string `json:"storage"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	storageStatus := "ok"
	if err := h.ingest.Ready(); err != nil {
		storageStatus = "unconfigured"
	} else if pinger, ok := h.ingest.Container().(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			storageStatus = "error"
			h.log.Error().Err(err).Msg("storage ping failed")
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Storage:     storageStatus,
		Database:    h.probe(ctx, "database", h.deps.PingDatabase),
		Cache:       h.probe(ctx, "cache", h.deps.PingCache),
		Environment: h.cfg.Environment,
	})
}

func (h HandlerSet) probe(ctx context.Context, name string, ping func(context.Context) error) string {
	if ping == nil {
		return "disabled"
	}
	if err := ping(ctx); err != nil {
		h.log.Error().Err(err).Str("dependency", name).Msg("ping failed")
		return "error"
	}
	return "ok"
}
