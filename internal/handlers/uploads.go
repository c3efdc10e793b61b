package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shotbox/internal/models"
	"shotbox/internal/repository"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

func (h HandlerSet) ListUploads(c *gin.Context) {
	if h.deps.Uploads == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload ledger not configured"})
		return
	}

	limit := defaultPerPage
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= maxPerPage {
			limit = v
		}
	}

	offset := 0
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			// past any addressable row
			if v-1 > math.MaxInt32/limit {
				c.JSON(http.StatusOK, gin.H{"items": []gin.H{}})
				return
			}
			offset = (v - 1) * limit
		}
	}

	uploads, err := h.deps.Uploads.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list uploads failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list uploads"})
		return
	}

	items := make([]gin.H, 0, len(uploads))
	for _, upload := range uploads {
		items = append(items, uploadJSON(upload))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) GetUpload(c *gin.Context) {
	if h.deps.Uploads == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload ledger not configured"})
		return
	}

	upload, err := h.deps.Uploads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
			return
		}
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("get upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load upload"})
		return
	}

	c.JSON(http.StatusOK, uploadJSON(upload))
}

func uploadJSON(upload models.Upload) gin.H {
	return gin.H{
		"id":        upload.ID,
		"name":      upload.StoredName,
		"container": upload.Container,
		"mimeType":  upload.MimeType,
		"category":  upload.Category,
		"tags":      upload.Tags,
		"size":      upload.SizeBytes,
		"status":    upload.Status,
		"createdAt": upload.CreatedAt,
		"updatedAt": upload.UpdatedAt,
	}
}
