package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pastebin-lite/pastebin-lite/storage"
)

// SystemHandler handles health and service metadata endpoints.
type SystemHandler struct {
	store   storage.PasteStore
	version string
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(store storage.PasteStore, version string) *SystemHandler {
	return &SystemHandler{
		store:   store,
		version: version,
	}
}

// Healthz handles GET /api/healthz. It pings the storage backend and must
// answer quickly, so the ping gets a short deadline of its own.
func (h *SystemHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ok":    false,
			"error": "storage connection failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Version handles GET /api/version.
func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "pastebin-lite",
		"version": h.version,
	})
}
