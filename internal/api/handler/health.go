package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/mediagrid/internal/gallery"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	registry   *gallery.Registry
	providerID string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *gallery.Registry, providerID string) *HealthHandler {
	return &HealthHandler{registry: registry, providerID: providerID}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": h.providerID,
		"views":    h.registry.Len(),
	})
}
