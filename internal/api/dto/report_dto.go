package dto

import (
	"time"

	"github.com/spec-kit/incident-analytics/internal/feed"
)

// Envelope wraps every successful payload.
type Envelope struct {
	Data any `json:"data"`
}

// RankingResponse is a Top-N view.
type RankingResponse struct {
	View  string `json:"view"`
	Limit int    `json:"limit"`
	Items any    `json:"items"`
}

// VulnerabilityItem is one feed record as served over HTTP.
type VulnerabilityItem struct {
	CVEID     string `json:"cve_id"`
	Summary   string `json:"summary"`
	Published string `json:"published"`
	CVSS      string `json:"cvss"`
}

// VulnerabilitiesResponse lists the latest feed records.
type VulnerabilitiesResponse struct {
	Count int                 `json:"count"`
	Items []VulnerabilityItem `json:"items"`
}

// NewVulnerabilitiesResponse maps feed records to their wire form.
func NewVulnerabilitiesResponse(records []feed.Record) VulnerabilitiesResponse {
	items := make([]VulnerabilityItem, 0, len(records))
	for _, r := range records {
		items = append(items, VulnerabilityItem{
			CVEID:     r.CVEID,
			Summary:   r.Summary,
			Published: r.Published,
			CVSS:      r.CVSS,
		})
	}
	return VulnerabilitiesResponse{Count: len(items), Items: items}
}

// ReloadResponse describes the snapshot now being served.
type ReloadResponse struct {
	Tickets  int       `json:"tickets"`
	Contacts int       `json:"contacts"`
	Flagged  int       `json:"flagged"`
	LoadedAt time.Time `json:"loaded_at"`
}
