package handlers

import (
	"time"

	"superclaims/internal/dto"

	"github.com/gofiber/fiber/v2"
)

const (
	ServiceName    = "superclaims"
	ServiceVersion = "1.0.0"
)

type HealthHandler struct {
	checks map[string]string
}

// NewHealthHandler reports the given collaborator states on every health call.
func NewHealthHandler(checks map[string]string) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health godoc
// @Summary Service health
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Version:   ServiceVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    h.checks,
	})
}

// Root godoc
// @Summary Service information
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Medical insurance claim processing service",
		"version": ServiceVersion,
		"docs":    "/swagger/index.html",
	})
}
