package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pastebin-lite/pastebin-lite/config"
	"github.com/pastebin-lite/pastebin-lite/internal/metrics"
	"github.com/pastebin-lite/pastebin-lite/internal/services"
	"github.com/pastebin-lite/pastebin-lite/internal/slug"
	"github.com/pastebin-lite/pastebin-lite/models"
	"github.com/pastebin-lite/pastebin-lite/storage"
)

// testNowHeader carries the caller-supplied current time (epoch milliseconds)
// when the service runs in test mode.
const testNowHeader = "X-Test-Now-Ms"

// PasteHandler handles paste creation, viewing and deletion.
type PasteHandler struct {
	service *services.PasteService
	config  *config.Config
}

// NewPasteHandler creates a new paste handler.
func NewPasteHandler(service *services.PasteService, cfg *config.Config) *PasteHandler {
	return &PasteHandler{
		service: service,
		config:  cfg,
	}
}

type createRequest struct {
	Content    string `json:"content"`
	TTLSeconds *int64 `json:"ttl_seconds"`
	MaxViews   *int   `json:"max_views"`
}

type createResponse struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type viewResponse struct {
	Content        string     `json:"content"`
	RemainingViews *int       `json:"remaining_views"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// Create handles POST /api/pastes.
func (h *PasteHandler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON in request body"})
		return
	}

	paste, err := h.service.CreatePaste(c.Request.Context(), services.CreatePasteRequest{
		Content:    req.Content,
		TTLSeconds: req.TTLSeconds,
		MaxViews:   req.MaxViews,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Id exhaustion is already counted per collision; only transport
		// failures feed the storage-error counter.
		if !errors.Is(err, storage.ErrDuplicateID) {
			metrics.StorageErrors.WithLabelValues("create").Inc()
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to create paste"})
		return
	}

	metrics.PastesCreated.Inc()
	c.JSON(http.StatusCreated, createResponse{
		ID:        paste.ID,
		URL:       fmt.Sprintf("%s/p/%s", h.baseURL(c), paste.ID),
		ExpiresAt: paste.ExpiresAt,
	})
}

// View handles GET /api/pastes/:id. Each successful fetch consumes one view.
func (h *PasteHandler) View(c *gin.Context) {
	result, ok := h.consumeView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewResponse{
		Content:        result.Content,
		RemainingViews: result.RemainingViews,
		ExpiresAt:      result.ExpiresAt,
	})
}

// ViewRaw handles GET /p/:id, returning the bare content for CLI use.
func (h *PasteHandler) ViewRaw(c *gin.Context) {
	result, ok := h.consumeView(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.Content))
}

// consumeView runs one view against the lifecycle service and writes the
// error response when the paste cannot be served.
func (h *PasteHandler) consumeView(c *gin.Context) (*services.ViewResult, bool) {
	id := c.Param("id")
	if !slug.IsValid(id) {
		// No generator ever produced this id; skip the store round trip and
		// answer the same way as any other missing paste.
		metrics.Views.WithLabelValues(string(models.ReasonNotFound)).Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "paste not found"})
		return nil, false
	}
	now := h.requestNow(c)

	result, err := h.service.ViewPaste(c.Request.Context(), id, now)
	if err != nil {
		var notAvailable *services.NotAvailableError
		if errors.As(err, &notAvailable) {
			// Every gone-reason collapses to the same response so callers
			// cannot probe whether an id ever existed.
			metrics.Views.WithLabelValues(string(notAvailable.Reason)).Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "paste not found"})
			return nil, false
		}
		metrics.StorageErrors.WithLabelValues("view").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return nil, false
	}

	metrics.Views.WithLabelValues("served").Inc()
	return result, true
}

// Delete handles DELETE /api/pastes/:id; deleting an unknown id succeeds.
func (h *PasteHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !slug.IsValid(id) {
		// Nothing to delete under a malformed id.
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.service.DeletePaste(c.Request.Context(), id); err != nil {
		metrics.StorageErrors.WithLabelValues("delete").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

// requestNow resolves the effective current time for a request. In test mode
// the X-Test-Now-Ms header overrides the clock so automated tests can
// simulate time passing.
func (h *PasteHandler) requestNow(c *gin.Context) time.Time {
	now := h.service.Now()
	if !h.config.TestMode {
		return now
	}
	header := c.GetHeader(testNowHeader)
	if header == "" {
		return now
	}
	ms, err := strconv.ParseInt(header, 10, 64)
	if err != nil || ms <= 0 {
		return now
	}
	return time.UnixMilli(ms)
}

// baseURL returns the configured base URL, falling back to the request host.
func (h *PasteHandler) baseURL(c *gin.Context) string {
	if h.config.BaseURL != "" {
		return h.config.BaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}
