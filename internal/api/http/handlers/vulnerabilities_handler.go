package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-analytics/internal/api/dto"
	"github.com/spec-kit/incident-analytics/internal/service"
)

// VulnerabilitiesHandler serves the latest published CVEs.
type VulnerabilitiesHandler struct {
	service *service.VulnerabilityService
}

// NewVulnerabilitiesHandler constructs handler.
func NewVulnerabilitiesHandler(vulnService *service.VulnerabilityService) *VulnerabilitiesHandler {
	return &VulnerabilitiesHandler{service: vulnService}
}

// Latest GET /api/v1/vulnerabilities?limit=N.
func (h *VulnerabilitiesHandler) Latest(c *fiber.Ctx) error {
	limit, err := parseLimit(c, 0)
	if err != nil {
		return err
	}
	records := h.service.Latest(c.UserContext(), limit)
	return c.JSON(dto.Envelope{Data: dto.NewVulnerabilitiesResponse(records)})
}
