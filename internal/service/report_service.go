package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-analytics/internal/analysis"
	"github.com/spec-kit/incident-analytics/internal/cache"
	"github.com/spec-kit/incident-analytics/internal/config"
	"github.com/spec-kit/incident-analytics/internal/domain"
	"github.com/spec-kit/incident-analytics/internal/events"
	"github.com/spec-kit/incident-analytics/internal/observability"
	apperrors "github.com/spec-kit/incident-analytics/pkg/util/errorutil"
)

// Snapshotter reads the whole dataset from the store.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*domain.Dataset, error)
}

// RankingView names a Top-N ranking.
type RankingView string

const (
	RankingCustomers     RankingView = "customers"
	RankingIncidentTypes RankingView = "incident-types"
	RankingEmployees     RankingView = "employees"
)

// RankingViews lists every supported ranking.
var RankingViews = []RankingView{RankingCustomers, RankingIncidentTypes, RankingEmployees}

// ReportService holds the current dataset snapshot and serves reports built from it.
type ReportService struct {
	store      Snapshotter
	cache      *cache.ReportCache
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AnalysisConfig
	loc        *time.Location

	mu      sync.RWMutex
	dataset *analysis.Dataset
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	Store      Snapshotter
	Cache      *cache.ReportCache
	Metrics    *observability.Metrics
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewReportService creates the service. No data is read until the first request or Reload.
func NewReportService(cfg config.AnalysisConfig, deps ReportDependencies) (*ReportService, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("analysis timezone: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = analysis.DefaultTopN
	}
	return &ReportService{
		store:      deps.Store,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cfg:        cfg,
		loc:        loc,
	}, nil
}

// RegisterHandlers subscribes to dataset events.
func (s *ReportService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventDatasetSeeded, s.handleDatasetSeeded)
}

func (s *ReportService) handleDatasetSeeded(ctx context.Context, event events.Event) error {
	s.logger.Info("DatasetSeeded", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	removed, err := s.cache.Invalidate(ctx)
	if err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	} else if removed > 0 {
		s.logger.Info("report cache invalidated", zap.Int("removed", removed))
	}
	if _, err := s.Reload(ctx); err != nil {
		return fmt.Errorf("reload after seed: %w", err)
	}
	return nil
}

// Reload reads a fresh snapshot and swaps it in. On failure the previous snapshot stays active.
func (s *ReportService) Reload(ctx context.Context) (*analysis.Dataset, error) {
	if s.store == nil {
		return nil, apperrors.NewUnavailable("store", nil)
	}
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable("store", err)
	}
	ds, err := analysis.NewDataset(snapshot,
		analysis.WithLocation(s.loc),
		analysis.WithStrictDates(s.cfg.StrictDates),
	)
	if err != nil {
		return nil, apperrors.NewDataIntegrity("dataset has inconsistent ticket dates", err)
	}

	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	flagged := len(ds.Issues())
	s.metrics.RecordDataset(len(ds.Tickets), flagged, ds.LoadedAt)
	s.logger.Info("dataset loaded",
		zap.Int("tickets", len(ds.Tickets)),
		zap.Int("contacts", len(ds.Contacts)),
		zap.Int("flagged", flagged),
	)
	if s.dispatcher != nil {
		payload := events.DatasetReloadedPayload{Tickets: len(ds.Tickets), Flagged: flagged, LoadedAt: ds.LoadedAt}
		if err := s.dispatcher.Publish(ctx, events.NewEvent(events.EventDatasetReloaded, payload)); err != nil {
			s.logger.Warn("dataset reloaded handlers failed", zap.Error(err))
		}
	}
	return ds, nil
}

// Dataset returns the active snapshot, loading it on first use.
func (s *ReportService) Dataset(ctx context.Context) (*analysis.Dataset, error) {
	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}
	return s.Reload(ctx)
}

// Report returns the full report for the active snapshot, from cache when possible.
func (s *ReportService) Report(ctx context.Context) (*analysis.Report, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	key := cache.Key(s.cfg.FraudIncidentType, strconv.FormatInt(ds.LoadedAt.UnixNano(), 10))

	if s.cache.Enabled() {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.metrics.RecordCacheLookup(true)
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			s.metrics.RecordCacheLookup(false)
		default:
			s.metrics.RecordCacheLookup(false)
			s.logger.Warn("report cache read failed", zap.Error(err))
		}
	}

	start := time.Now()
	report, err := analysis.Build(ds, s.reportOptions())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.metrics.RecordReport(time.Since(start))

	if err := s.cache.Set(ctx, key, report); err != nil {
		s.logger.Warn("report cache write failed", zap.Error(err))
	}
	return report, nil
}

func (s *ReportService) reportOptions() analysis.ReportOptions {
	return analysis.ReportOptions{
		FraudIncidentType: s.cfg.FraudIncidentType,
		Charts: analysis.ChartOptions{
			CriticalExcludedType: s.cfg.CriticalExcludedType,
			CriticalTopN:         s.cfg.CriticalTopN,
		},
	}
}

// Global returns the dataset-wide statistics.
func (s *ReportService) Global(ctx context.Context) (analysis.GlobalStats, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return analysis.GlobalStats{}, err
	}
	return report.Global, nil
}

// Group returns one grouped view of the fraud subset.
func (s *ReportService) Group(ctx context.Context, dimension string) (analysis.GroupView, error) {
	d := analysis.Dimension(dimension)
	if !validDimension(d) {
		return analysis.GroupView{}, apperrors.NewNotFound("dimension", map[string]any{
			"dimension": dimension,
			"supported": analysis.Dimensions,
		})
	}
	report, err := s.Report(ctx)
	if err != nil {
		return analysis.GroupView{}, err
	}
	view, ok := report.Group(d)
	if !ok {
		return analysis.GroupView{}, apperrors.NewNotFound("dimension", map[string]any{"dimension": dimension})
	}
	return view, nil
}

func validDimension(d analysis.Dimension) bool {
	for _, known := range analysis.Dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// Charts returns the chart series.
func (s *ReportService) Charts(ctx context.Context) (analysis.Charts, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return analysis.Charts{}, err
	}
	return report.Charts, nil
}

// DefaultTopN is the ranking size used when a caller does not pick one.
func (s *ReportService) DefaultTopN() int {
	return s.cfg.TopN
}

// Ranking computes a Top-N view. n <= 0 yields an empty ranking.
func (s *ReportService) Ranking(ctx context.Context, view RankingView, n int) (any, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	switch view {
	case RankingCustomers:
		return analysis.TopCustomers(ds, n), nil
	case RankingIncidentTypes:
		return analysis.TopIncidentTypesByResolution(ds, n), nil
	case RankingEmployees:
		return analysis.TopEmployeesByHours(ds, n), nil
	default:
		return nil, apperrors.NewNotFound("ranking", map[string]any{
			"view":      string(view),
			"supported": RankingViews,
		})
	}
}
