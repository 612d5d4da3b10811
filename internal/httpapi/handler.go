package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/image-text-search/internal/domain"
	"github.com/ironsheep/image-text-search/internal/imaging"
	"github.com/ironsheep/image-text-search/internal/ingest"
	"github.com/ironsheep/image-text-search/internal/library"
	"github.com/ironsheep/image-text-search/internal/ocr"
)

// UploadField is the multipart field carrying uploaded images.
const UploadField = "images"

// InfoProvider reports the state of the OCR backend.
type InfoProvider interface {
	Info(ctx context.Context) ocr.OCRInfo
}

// Limits restricts uploads.
type Limits struct {
	MaxUploadSize  int64
	AllowedFormats []string
}

// Handler serves the collection over HTTP.
type Handler struct {
	lib    *library.Library
	cache  *imaging.ContentCache
	info   InfoProvider
	limits Limits
	log    *zap.Logger
}

// NewHandler creates a handler over lib. info may be nil.
func NewHandler(lib *library.Library, info InfoProvider, limits Limits, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		lib:    lib,
		cache:  imaging.NewContentCache(),
		info:   info,
		limits: limits,
		log:    log,
	}
}

// UploadImages ingests the multipart files in the "images" field.
func (h *Handler) UploadImages(c *gin.Context) {
	if h.limits.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limits.MaxUploadSize)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload too large"})
			return
		}
		h.log.Warn("Failed to parse multipart form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected a multipart form"})
		return
	}

	headers := form.File[UploadField]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image files provided"})
		return
	}

	files := make([]domain.RawFile, 0, len(headers))
	for _, fh := range headers {
		if !h.allowed(fh.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   fmt.Sprintf("Invalid file format: %s", fh.Filename),
				"allowed": h.limits.AllowedFormats,
			})
			return
		}

		data, err := readPart(fh)
		if err != nil {
			h.log.Error("Failed to read file", zap.String("file", fh.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
			return
		}
		files = append(files, domain.RawFile{Name: filepath.Base(fh.Filename), Data: data})
	}

	res, err := h.lib.Add(c.Request.Context(), files, nil)
	if err != nil {
		status := statusFor(err)
		h.log.Error("Failed to add images",
			zap.Int("files", len(files)),
			zap.Int("status", status),
			zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Images processed successfully",
		"added":   domain.StripContent(res.Added),
		"skipped": res.Skipped,
		"total":   h.lib.Len(),
	})
}

func (h *Handler) allowed(name string) bool {
	if len(h.limits.AllowedFormats) == 0 {
		return true
	}
	return slices.Contains(h.limits.AllowedFormats, strings.ToLower(filepath.Ext(name)))
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// statusFor maps Add failures to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, library.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrEngineAcquisition):
		return http.StatusServiceUnavailable
	case errors.Is(err, ingest.ErrMalformedInput), errors.Is(err, ingest.ErrRecognition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ListImages returns every record without content.
func (h *Handler) ListImages(c *gin.Context) {
	images := h.lib.List()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(images),
		"images": domain.StripContent(images),
	})
}

// SearchImages returns records whose text contains ?q=, without content.
func (h *Handler) SearchImages(c *gin.Context) {
	query := c.Query("q")
	results := h.lib.Search(query)
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(results),
		"results": domain.StripContent(results),
	})
}

// GetImage returns one record with its data URI.
func (h *Handler) GetImage(c *gin.Context) {
	img, ok := h.lib.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	c.JSON(http.StatusOK, img)
}

// GetImageContent serves the original image bytes.
func (h *Handler) GetImageContent(c *gin.Context) {
	id := c.Param("id")
	img, ok := h.lib.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	content, err := h.cache.Load(id, img.Content)
	if err != nil {
		h.log.Error("Stored content is not a data URI", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored content is unreadable"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.Name))
	c.Data(http.StatusOK, content.MIMEType, content.Data)
}

// GetImageThumbnail serves a PNG that fits within ?size= pixels (default 256).
func (h *Handler) GetImageThumbnail(c *gin.Context) {
	size := imaging.DefaultThumbnailSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < imaging.MinThumbnailSize || n > imaging.MaxThumbnailSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("size must be an integer in [%d, %d]", imaging.MinThumbnailSize, imaging.MaxThumbnailSize),
			})
			return
		}
		size = n
	}

	id := c.Param("id")
	img, ok := h.lib.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	content, err := h.cache.Load(id, img.Content)
	if err != nil {
		h.log.Error("Stored content is not a data URI", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored content is unreadable"})
		return
	}

	thumb, err := imaging.Thumbnail(content.Data, size)
	if err != nil {
		h.log.Error("Failed to render thumbnail", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render thumbnail"})
		return
	}
	c.Data(http.StatusOK, "image/png", thumb)
}

// DeleteImage removes one record.
func (h *Handler) DeleteImage(c *gin.Context) {
	id := c.Param("id")
	if err := h.lib.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		h.log.Error("Failed to delete image", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}
	h.cache.Evict(id)
	c.Status(http.StatusNoContent)
}

// ClearImages removes every record.
func (h *Handler) ClearImages(c *gin.Context) {
	if err := h.lib.Clear(c.Request.Context()); err != nil {
		h.log.Error("Failed to clear images", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear images"})
		return
	}
	h.cache.Clear()
	c.Status(http.StatusNoContent)
}

// HealthCheck reports OCR availability and the collection size.
func (h *Handler) HealthCheck(c *gin.Context) {
	body := gin.H{"status": "OK", "images": h.lib.Len()}
	if h.info != nil {
		info := h.info.Info(c.Request.Context())
		body["ocr"] = info
		if !info.Available {
			body["status"] = "DEGRADED"
		}
	}
	c.JSON(http.StatusOK, body)
}
