package service

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-analytics/internal/events"
	"github.com/spec-kit/incident-analytics/internal/repository"
	"github.com/spec-kit/incident-analytics/internal/seed"
	apperrors "github.com/spec-kit/incident-analytics/pkg/util/errorutil"
)

// SeedService bulk-loads a seed document into the store.
type SeedService struct {
	seeds      repository.SeedRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSeedService creates the service.
func NewSeedService(seeds repository.SeedRepository, dispatcher events.Dispatcher, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{seeds: seeds, dispatcher: dispatcher, logger: logger}
}

// LoadFile opens path and loads it.
func (s *SeedService) LoadFile(ctx context.Context, path string) (repository.SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return repository.SeedResult{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return s.Load(ctx, f, path)
}

// Load replaces the store content with the document read from r. The write is
// committed before EventDatasetSeeded is published; a failing subscriber is
// reported alongside the committed result.
func (s *SeedService) Load(ctx context.Context, r io.Reader, source string) (repository.SeedResult, error) {
	doc, err := seed.Parse(r)
	if err != nil {
		return repository.SeedResult{}, apperrors.WrapValidation(err, map[string]any{"source": source})
	}
	batch, err := doc.Batch()
	if err != nil {
		return repository.SeedResult{}, apperrors.WrapValidation(err, map[string]any{"source": source})
	}
	s.logger.Info("seeding store", zap.String("source", source), zap.Stringer("document", doc))

	result, err := s.seeds.Replace(ctx, batch)
	if err != nil {
		return repository.SeedResult{}, fmt.Errorf("replace store content: %w", err)
	}
	s.logger.Info("store seeded",
		zap.Int("tickets", result.Tickets),
		zap.Int("contacts", result.Contacts),
		zap.Int64("back_filled", result.BackFilled),
	)

	if s.dispatcher != nil {
		payload := events.DatasetSeededPayload{
			Source:        source,
			Customers:     result.Customers,
			Employees:     result.Employees,
			IncidentTypes: result.IncidentTypes,
			Tickets:       result.Tickets,
			Contacts:      result.Contacts,
			BackFilled:    result.BackFilled,
		}
		if err := s.dispatcher.Publish(ctx, events.NewEvent(events.EventDatasetSeeded, payload)); err != nil {
			return result, fmt.Errorf("dataset seeded handlers: %w", err)
		}
	}
	return result, nil
}
