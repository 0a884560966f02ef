package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-analytics/internal/api/dto"
	"github.com/spec-kit/incident-analytics/internal/service"
)

// ReportHandler serves the analysis report and its sections.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{service: reportService}
}

// Report GET /api/v1/report.
func (h *ReportHandler) Report(c *fiber.Ctx) error {
	report, err := h.service.Report(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Data: report})
}

// Global GET /api/v1/report/global.
func (h *ReportHandler) Global(c *fiber.Ctx) error {
	global, err := h.service.Global(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Data: global})
}

// Group GET /api/v1/report/groups/:dimension.
func (h *ReportHandler) Group(c *fiber.Ctx) error {
	view, err := h.service.Group(c.UserContext(), c.Params("dimension"))
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Data: view})
}

// Charts GET /api/v1/report/charts.
func (h *ReportHandler) Charts(c *fiber.Ctx) error {
	charts, err := h.service.Charts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Data: charts})
}

// Reload POST /api/v1/dataset/reload.
func (h *ReportHandler) Reload(c *fiber.Ctx) error {
	ds, err := h.service.Reload(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Data: dto.ReloadResponse{
		Tickets:  len(ds.Tickets),
		Contacts: len(ds.Contacts),
		Flagged:  len(ds.Issues()),
		LoadedAt: ds.LoadedAt,
	}})
}
