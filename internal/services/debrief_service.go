package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"debriefpulse/internal/acquire"
	"debriefpulse/internal/debrief"
	apierrors "debriefpulse/internal/errors"
	"debriefpulse/internal/infrastructure"
)

// DebriefService owns the loaded survey dataset and answers all
// analytics queries against it. The dataset is replaced atomically on
// Refresh; queries run against whatever snapshot is current, so readers
// never block a refresh and vice versa.
type DebriefService struct {
	source  acquire.Source
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	mu       sync.RWMutex
	dataset  *debrief.Dataset
	loadedAt time.Time
}

// NewDebriefService creates the service. The dataset is empty until the
// first Refresh.
func NewDebriefService(source acquire.Source, logger *slog.Logger) *DebriefService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebriefService{
		source: source,
		logger: logger.With(slog.String("component", "debrief_service")),
	}
}

// SetMetrics attaches the OpenTelemetry instruments. Optional; the
// service works without them.
func (s *DebriefService) SetMetrics(m *infrastructure.BusinessMetrics) {
	s.metrics = m
}

// Refresh fetches the response table from the source, normalizes it and
// swaps it in as the current dataset. On failure the previous dataset
// stays in place.
func (s *DebriefService) Refresh(ctx context.Context) error {
	start := time.Now()

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset refresh failed",
			slog.String("source", s.source.Describe()),
			slog.String("error", err.Error()))
		infrastructure.RecordRefresh(ctx, s.metrics, time.Since(start), 0, err)
		return apierrors.SourceLoadError(err)
	}

	ds := debrief.Normalize(raw, s.logger)

	s.mu.Lock()
	s.dataset = ds
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset refreshed",
		slog.String("source", s.source.Describe()),
		slog.Int("rows", ds.Len()),
		slog.Int("partners", len(ds.Partners())),
		slog.Duration("duration", time.Since(start)))
	infrastructure.RecordRefresh(ctx, s.metrics, time.Since(start), ds.Len(), nil)
	return nil
}

// current returns the dataset snapshot, or an error when nothing has
// been loaded yet.
func (s *DebriefService) current() (*debrief.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, apierrors.ErrNoDataset
	}
	return s.dataset, nil
}

// Loaded reports whether a dataset has been loaded.
func (s *DebriefService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset != nil
}

// LoadedAt returns the time of the last successful refresh.
func (s *DebriefService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// SourceDescription identifies the configured source for health output.
func (s *DebriefService) SourceDescription() string {
	return s.source.Describe()
}

// RecordExport counts one generated report download.
func (s *DebriefService) RecordExport(ctx context.Context, format string) {
	infrastructure.RecordExport(ctx, s.metrics, format)
}

// Roster returns the sorted distinct partner names.
func (s *DebriefService) Roster(ctx context.Context) ([]string, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	return ds.Partners(), nil
}

// Metrics computes the aggregate metrics, optionally scoped to one
// partner. An unknown partner yields zero-valued metrics, not an error.
func (s *DebriefService) Metrics(ctx context.Context, partner string) (debrief.Metrics, error) {
	ds, err := s.current()
	if err != nil {
		return debrief.Metrics{}, err
	}
	return debrief.ComputeMetrics(ds, partner), nil
}

// ThemeFrequencies returns the ordered frequency table for the role.
func (s *DebriefService) ThemeFrequencies(ctx context.Context, role debrief.Role, partner string, top int) ([]debrief.ThemeCount, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	return debrief.TopThemes(debrief.ExtractFrequencies(ds, role, partner), top), nil
}

// Quotes returns the cleaned raw responses for the role in row order.
func (s *DebriefService) Quotes(ctx context.Context, role debrief.Role, partner string) ([]string, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	return debrief.ExtractThemes(ds, role, partner), nil
}

// TimeSeries returns per-date average ratings.
func (s *DebriefService) TimeSeries(ctx context.Context, partner string) ([]debrief.TimePoint, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	return debrief.TimeSeries(ds, partner), nil
}

// Report assembles the full partner report.
func (s *DebriefService) Report(ctx context.Context, partner string) (debrief.PartnerReport, error) {
	ds, err := s.current()
	if err != nil {
		return debrief.PartnerReport{}, err
	}
	return debrief.BuildPartnerReport(ds, partner), nil
}

// ReportDetails returns the headers and raw rows backing a partner
// report, for the session-details sheet of the export workbook.
func (s *DebriefService) ReportDetails(ctx context.Context, partner string) ([]string, [][]string, error) {
	ds, err := s.current()
	if err != nil {
		return nil, nil, err
	}
	return ds.Headers(), debrief.PartnerRows(ds, partner), nil
}

// Comparison computes per-partner metrics. An empty partner list means
// the full roster.
func (s *DebriefService) Comparison(ctx context.Context, partners []string) (map[string]debrief.Metrics, error) {
	ds, err := s.current()
	if err != nil {
		return nil, err
	}
	if len(partners) == 0 {
		partners = ds.Partners()
	}
	return debrief.BuildComparison(ctx, ds, partners), nil
}
