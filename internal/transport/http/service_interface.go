package http

import (
	"context"
	"time"

	"debriefpulse/internal/debrief"
)

// DebriefServiceInterface is the service surface the handlers depend on.
type DebriefServiceInterface interface {
	Refresh(ctx context.Context) error
	Loaded() bool
	LoadedAt() time.Time
	SourceDescription() string
	RecordExport(ctx context.Context, format string)

	Roster(ctx context.Context) ([]string, error)
	Metrics(ctx context.Context, partner string) (debrief.Metrics, error)
	ThemeFrequencies(ctx context.Context, role debrief.Role, partner string, top int) ([]debrief.ThemeCount, error)
	Quotes(ctx context.Context, role debrief.Role, partner string) ([]string, error)
	TimeSeries(ctx context.Context, partner string) ([]debrief.TimePoint, error)
	Report(ctx context.Context, partner string) (debrief.PartnerReport, error)
	ReportDetails(ctx context.Context, partner string) ([]string, [][]string, error)
	Comparison(ctx context.Context, partners []string) (map[string]debrief.Metrics, error)
}
