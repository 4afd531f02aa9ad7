package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"guide-validator/internal/app/service"
	"guide-validator/internal/domain"
)

// DashboardHandler handles dashboard HTTP requests.
type DashboardHandler struct {
	searchService *service.SearchService
	logger        *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *service.SearchService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		searchService: svc,
		logger:        logger,
	}
}

// tierLabels maps tier numbers to dashboard labels.
var tierLabels = map[int]string{
	domain.TierFeatured:  "featured",
	domain.TierActivated: "activated",
	domain.TierStandard:  "standard",
}

// Render handles GET /dashboard
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	stats, err := h.searchService.Stats(c.Context())
	if err != nil {
		h.logger.Error("dashboard stats failed", zap.Error(err))

		// Storage failures surface; a dashboard of silent zeros would be
		// indistinguishable from an empty store.
		return fiber.NewError(fiber.StatusInternalServerError, "stats unavailable")
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

	return c.Render("pages/dashboard", fiber.Map{
		"Title":        "Listing Search Dashboard",
		"ListingCount": stats.Total,
		"ByType":       byType,
		"ByTier":       byTier,
	}, "layouts/base")
}
