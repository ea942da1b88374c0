package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/realtime"
	"github.com/unionhub/unionhub-api/internal/response"
	"github.com/unionhub/unionhub-api/internal/services"
	"github.com/unionhub/unionhub-api/internal/storage/objectstore"
	"github.com/unionhub/unionhub-api/internal/validation"
)

// ImageStore persists uploaded gallery images
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*objectstore.Object, error)
}

// GalleryHandler stores uploaded photos and announces them to live connections
type GalleryHandler struct {
	store     ImageStore
	publisher services.Publisher
	maxSize   int64
	now       func() time.Time
	log       *log.Logger
}

// NewGalleryHandler creates the handler. publisher may be nil; maxSize 0 disables the size check.
func NewGalleryHandler(store ImageStore, publisher services.Publisher, maxSize int64) *GalleryHandler {
	return &GalleryHandler{
		store:     store,
		publisher: publisher,
		maxSize:   maxSize,
		now:       time.Now,
		log:       logger.Handler("gallery"),
	}
}

// Upload handles POST /api/gallery
func (h *GalleryHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequestError(c, "No file provided")
		return
	}
	defer file.Close()

	contentType, ext, err := validation.ValidateImageUpload(header, h.maxSize)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrFileTooLarge):
			response.PayloadTooLargeError(c, err.Error())
		default:
			response.BadRequestError(c, err.Error())
		}
		return
	}

	key := fmt.Sprintf("%s/%s%s", h.now().UTC().Format("2006/01"), uuid.NewString(), ext)
	obj, err := h.store.Put(c.Request.Context(), key, file, header.Size, contentType)
	if err != nil {
		h.log.Error("Failed to store image", "filename", header.Filename, "error", err)
		response.InternalServerError(c, "Failed to store image")
		return
	}

	if h.publisher != nil {
		ev := notification.NewEvent(notification.ActivityPayload{
			Type:    "gallery",
			Message: "New photo added to the gallery",
			URL:     obj.URL,
		})
		if err := h.publisher.Publish(c.Request.Context(), realtime.ServerSource, ev); err != nil {
			h.log.Warn("Failed to announce gallery upload", "key", obj.Key, "error", err)
		}
	}

	h.log.Info("Stored gallery image", "key", obj.Key, "size", obj.Size)
	response.SuccessResponse(c, http.StatusCreated, "Image uploaded", obj)
}
