package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-analytics/internal/api/dto"
	"github.com/spec-kit/incident-analytics/internal/service"
	apperrors "github.com/spec-kit/incident-analytics/pkg/util/errorutil"
)

// RankingsHandler serves Top-N views.
type RankingsHandler struct {
	service *service.ReportService
}

// NewRankingsHandler constructs handler.
func NewRankingsHandler(reportService *service.ReportService) *RankingsHandler {
	return &RankingsHandler{service: reportService}
}

// Ranking GET /api/v1/rankings/:view?limit=N.
func (h *RankingsHandler) Ranking(c *fiber.Ctx) error {
	limit, err := parseLimit(c, h.service.DefaultTopN())
	if err != nil {
		return err
	}
	view := c.Params("view")
	items, err := h.service.Ranking(c.UserContext(), service.RankingView(view), limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Data: dto.RankingResponse{View: view, Limit: limit, Items: items}})
}

func parseLimit(c *fiber.Ctx, fallback int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError("limit must be an integer", map[string]any{"limit": raw})
	}
	return limit, nil
}
