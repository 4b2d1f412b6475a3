package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/domains/health"
)

// HealthHandler trả JSON thô (không bọc envelope) để probe đọc trực tiếp
type HealthHandler struct {
	service health.Service
	appName string
	version string
}

func NewHealthHandler(service health.Service, appName, version string) *HealthHandler {
	return &HealthHandler{service: service, appName: appName, version: version}
}

// Liveness - GET /health
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   h.appName,
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness - GET /ready (Postgres + Redis)
func (h *HealthHandler) Readiness(c *gin.Context) {
	results, ready := h.service.Ready(c.Request.Context())
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not-ready", "checks": results})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": results})
}

// Database - GET /health/db
func (h *HealthHandler) Database(c *gin.Context) {
	h.writeDependency(c, "postgres")
}

// Status - GET /api/health/status
func (h *HealthHandler) Status(c *gin.Context) {
	status := h.service.Status(c.Request.Context())

	code := http.StatusOK
	if status.Status == health.OverallUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// Services - GET /api/health/services
func (h *HealthHandler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services":  h.service.Services(c.Request.Context()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ServiceByName - GET /api/health/services/:name
func (h *HealthHandler) ServiceByName(c *gin.Context) {
	h.writeDependency(c, c.Param("name"))
}

func (h *HealthHandler) writeDependency(c *gin.Context, name string) {
	status, err := h.service.Service(c.Request.Context(), name)
	if errors.Is(err, health.ErrUnknownService) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service '" + name + "' not found"})
		return
	}

	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
