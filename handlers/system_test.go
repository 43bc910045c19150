package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pastebin-lite/pastebin-lite/storage"
)

// deadStore reports an unreachable backend.
type deadStore struct {
	storage.PasteStore
}

func (deadStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHealthzHealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSystemHandler(storage.NewMemoryStore(), "test")

	router := gin.New()
	router.GET("/api/healthz", handler.Healthz)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestHealthzStorageDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSystemHandler(deadStore{storage.NewMemoryStore()}, "test")

	router := gin.New()
	router.GET("/api/healthz", handler.Healthz)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":false`)
}

func TestVersionEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSystemHandler(storage.NewMemoryStore(), "1.2.3")

	router := gin.New()
	router.GET("/api/version", handler.Version)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
}
