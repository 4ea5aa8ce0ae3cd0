package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zerowastechef/zwc-backend/internal/dto"
	"github.com/zerowastechef/zwc-backend/internal/services"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// AdminStats handles GET /admin/stats - the admin panel aggregates.
func (h *StatsHandler) AdminStats(c *fiber.Ctx) error {
	stats, err := h.statsService.AdminStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load stats",
		})
	}
	return c.JSON(stats)
}
