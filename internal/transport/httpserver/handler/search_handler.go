// Package handler provides HTTP handlers for the API.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"guide-validator/internal/app/service"
	"guide-validator/internal/domain"
	"guide-validator/internal/transport/httpserver/dto"
	"guide-validator/internal/validator"
)

// SearchHandler handles listing search HTTP requests.
type SearchHandler struct {
	service   *service.SearchService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc *service.SearchService, v *validator.Validator, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/v1/search/:type
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	return h.search(c, false)
}

// AdminSearch handles GET /api/v1/admin/search/:type. Same semantics as the
// public search but widens visibility to not-yet-approved listings.
func (h *SearchHandler) AdminSearch(c *fiber.Ctx) error {
	return h.search(c, true)
}

func (h *SearchHandler) search(c *fiber.Ctx, includeUnapproved bool) error {
	listingType, ok := domain.ParseListingType(c.Params("type"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "unknown listing type",
			Code:  "INVALID_TYPE",
		})
	}

	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	params := req.ToParams(listingType)
	params.IncludeUnapproved = includeUnapproved

	result, err := h.service.Search(c.Context(), params)
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "search failed",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromSearchResult(result))
}

// GetByID handles GET /api/v1/search/:type/:id
func (h *SearchHandler) GetByID(c *fiber.Ctx) error {
	listingType, ok := domain.ParseListingType(c.Params("type"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "unknown listing type",
			Code:  "INVALID_TYPE",
		})
	}

	id := c.Params("id")

	listing, err := h.service.GetByID(c.Context(), listingType, id)
	if err != nil {
		h.logger.Error("get by id failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to get listing",
			Code:  "INTERNAL_ERROR",
		})
	}

	if listing == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "listing not found",
			Code:  "NOT_FOUND",
		})
	}

	return c.JSON(dto.FromDomainListing(listing))
}
