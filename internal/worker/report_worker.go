package worker

import (
	"github.com/spec-kit/incident-analytics/internal/service"
)

// StartReportWorker registers the report service's dataset event handlers.
func StartReportWorker(reportService *service.ReportService) {
	if reportService == nil {
		return
	}
	reportService.RegisterHandlers()
}
