package service

import (
	"context"

	"github.com/spec-kit/incident-analytics/internal/feed"
)

// MaxVulnerabilities caps a single feed request.
const MaxVulnerabilities = 100

// LatestFetcher returns the newest feed records.
type LatestFetcher interface {
	Latest(ctx context.Context, n int) []feed.Record
}

// VulnerabilityService exposes the feed adapter to transports.
type VulnerabilityService struct {
	feed LatestFetcher
}

// NewVulnerabilityService creates the service.
func NewVulnerabilityService(fetcher LatestFetcher) *VulnerabilityService {
	return &VulnerabilityService{feed: fetcher}
}

// Latest returns up to limit records; limit <= 0 uses the feed default.
func (s *VulnerabilityService) Latest(ctx context.Context, limit int) []feed.Record {
	if limit > MaxVulnerabilities {
		limit = MaxVulnerabilities
	}
	return s.feed.Latest(ctx, limit)
}
