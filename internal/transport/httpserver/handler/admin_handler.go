package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"guide-validator/internal/app/service"
	"guide-validator/internal/transport/httpserver/dto"
)

// AdminHandler handles admin HTTP requests.
type AdminHandler struct {
	materializer  *service.MaterializeService
	searchService *service.SearchService
	logger        *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(materializer *service.MaterializeService, searchSvc *service.SearchService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		materializer:  materializer,
		searchService: searchSvc,
		logger:        logger,
	}
}

// RefreshAll handles POST /api/v1/admin/refresh
func (h *AdminHandler) RefreshAll(c *fiber.Ctx) error {
	h.logger.Info("manual refresh triggered")

	results := h.materializer.RefreshAll(c.Context())

	return c.JSON(dto.FromRefreshResults(results))
}

// RefreshSource handles POST /api/v1/admin/refresh/:source
func (h *AdminHandler) RefreshSource(c *fiber.Ctx) error {
	sourceName := c.Params("source")

	h.logger.Info("manual source refresh triggered", zap.String("source", sourceName))

	result, err := h.materializer.RefreshSource(c.Context(), sourceName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "REFRESH_FAILED",
		})
	}

	if result == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "source not found",
			Code:  "SOURCE_NOT_FOUND",
		})
	}

	return c.JSON(dto.RefreshResultResponse{
		Source:   result.Source,
		Count:    result.Count,
		Duration: result.Duration.String(),
	})
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.searchService.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to collect stats",
			Code:  "INTERNAL_ERROR",
		})
	}

	byType := make(map[string]int64, len(stats.ByType))
	for t, n := range stats.ByType {
		byType[string(t)] = n
	}

	byTier := make(map[string]int64, len(stats.ByTier))
	for tier, n := range stats.ByTier {
		label, ok := tierLabels[tier]
		if !ok {
			label = "unknown"
		}
		byTier[label] = n
	}

	return c.JSON(dto.StatsResponse{
		TotalListings: stats.Total,
		ByType:        byType,
		ByTier:        byTier,
	})
}

// GetSources handles GET /api/v1/admin/sources
func (h *AdminHandler) GetSources(c *fiber.Ctx) error {
	health := h.materializer.CheckSources(c.Context())

	sources := make([]fiber.Map, 0, len(health))
	for _, name := range h.materializer.SourceNames() {
		status := "ok"
		if err := health[name]; err != nil {
			status = err.Error()
		}
		sources = append(sources, fiber.Map{
			"name":   name,
			"status": status,
		})
	}

	return c.JSON(fiber.Map{
		"sources": sources,
	})
}
