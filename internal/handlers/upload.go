package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shotbox/internal/ingest"
	"shotbox/internal/middleware"
)

func (h HandlerSet) UploadImage(c *gin.Context) {
	if err := h.ingest.Ready(); err != nil {
		h.uploadFailed(c, err)
		return
	}

	upload, err := ingest.ParseRequest(c.Request, h.cfg.Upload.MaxMemory)
	if err != nil {
		h.uploadFailed(c, err)
		return
	}
	defer upload.Close()

	result, err := h.ingest.Ingest(c.Request.Context(), upload)
	if err != nil {
		h.uploadFailed(c, err)
		return
	}

	h.metrics.observe(http.StatusOK, result.Size)
	c.JSON(http.StatusOK, result)
}

func (h HandlerSet) uploadFailed(c *gin.Context, err error) {
	status := ingest.StatusCode(err)
	body := gin.H{"error": ingest.PublicMessage(err)}

	var bad *ingest.BadRequestError
	if errors.As(err, &bad) && bad.ContentType != nil {
		body["contentType"] = *bad.ContentType
	}

	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("upload failed")
	}
	_ = c.Error(err)
	h.metrics.observe(status, 0)
	c.JSON(status, body)
}
