package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debriefpulse/internal/debrief"
	apierrors "debriefpulse/internal/errors"
)

// fakeSource serves a fixed table or a fixed error.
type fakeSource struct {
	table debrief.RawTable
	err   error
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context) (debrief.RawTable, error) {
	f.calls++
	return f.table, f.err
}

func (f *fakeSource) Describe() string { return "fake:test" }

func surveySource() *fakeSource {
	return &fakeSource{table: debrief.RawTable{
		Headers: []string{"Session Date", "Partner Program", "Relevance", "Support", "Urgency", "Organizational Pressure", "Coach ID"},
		Rows: [][]string{
			{"2025-01-10", "Acme Corp", "5", "4", "3", "Budget cuts", "C1"},
			{"2025-01-10", "Acme Corp", "4", "4", "4", "Budget cuts", "C2"},
			{"2025-02-01", "Acme Corp", "3", "5", "2", "Reorg fatigue", "C1"},
			{"2025-01-12", "Globex", "4", "3", "5", "Hiring freeze", "C3"},
		},
	}}
}

func newLoadedService(t *testing.T) *DebriefService {
	t.Helper()
	svc := NewDebriefService(surveySource(), slog.Default())
	require.NoError(t, svc.Refresh(context.Background()))
	return svc
}

func TestDebriefService_QueriesBeforeRefresh(t *testing.T) {
	svc := NewDebriefService(surveySource(), slog.Default())
	ctx := context.Background()

	assert.False(t, svc.Loaded())

	_, err := svc.Roster(ctx)
	assert.ErrorIs(t, err, apierrors.ErrNoDataset)

	_, err = svc.Metrics(ctx, "")
	assert.ErrorIs(t, err, apierrors.ErrNoDataset)

	_, err = svc.Report(ctx, "Acme Corp")
	assert.ErrorIs(t, err, apierrors.ErrNoDataset)
}

func TestDebriefService_RefreshAndRoster(t *testing.T) {
	svc := newLoadedService(t)

	assert.True(t, svc.Loaded())
	assert.False(t, svc.LoadedAt().IsZero())

	roster, err := svc.Roster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corp", "Globex"}, roster)
}

func TestDebriefService_RefreshFailureKeepsDataset(t *testing.T) {
	src := surveySource()
	svc := NewDebriefService(src, slog.Default())
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	src.err = errors.New("sheet unavailable")
	err := svc.Refresh(ctx)
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "SOURCE_LOAD_FAILED", apiErr.ErrorCode)

	// The previous snapshot still answers queries
	roster, err := svc.Roster(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 2)
}

func TestDebriefService_Metrics(t *testing.T) {
	svc := newLoadedService(t)
	ctx := context.Background()

	global, err := svc.Metrics(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, global.TotalResponses)
	assert.Equal(t, 3, global.UniqueSessions)
	assert.InDelta(t, 4.0, global.AvgRelevance, 1e-9)
	assert.Equal(t, 3, global.CoachCount)

	scoped, err := svc.Metrics(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, 3, scoped.TotalResponses)
	assert.Equal(t, 2, scoped.UniqueSessions)

	unknown, err := svc.Metrics(ctx, "Nobody Inc")
	require.NoError(t, err)
	assert.Equal(t, debrief.Metrics{}, unknown)
}

func TestDebriefService_ThemesAndQuotes(t *testing.T) {
	svc := newLoadedService(t)
	ctx := context.Background()

	freqs, err := svc.ThemeFrequencies(ctx, debrief.RolePressure, "", 0)
	require.NoError(t, err)
	require.NotEmpty(t, freqs)
	assert.Equal(t, debrief.ThemeCount{Theme: "Budget cuts", Count: 2}, freqs[0])

	top, err := svc.ThemeFrequencies(ctx, debrief.RolePressure, "", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	quotes, err := svc.Quotes(ctx, debrief.RolePressure, "Globex")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hiring freeze"}, quotes)
}

func TestDebriefService_ReportAndDetails(t *testing.T) {
	svc := newLoadedService(t)
	ctx := context.Background()

	report, err := svc.Report(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", report.PartnerName)
	assert.Equal(t, 3, report.SessionCount)

	headers, rows, err := svc.ReportDetails(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Len(t, headers, 7)
	assert.Len(t, rows, 3)

	// Unknown partner is a valid empty-result query
	report, err = svc.Report(ctx, "Nobody Inc")
	require.NoError(t, err)
	assert.Zero(t, report.SessionCount)
	assert.Empty(t, report.Pressures)
}

func TestDebriefService_Comparison(t *testing.T) {
	svc := newLoadedService(t)
	ctx := context.Background()

	all, err := svc.Comparison(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 3, all["Acme Corp"].TotalResponses)
	assert.Equal(t, 1, all["Globex"].TotalResponses)

	some, err := svc.Comparison(ctx, []string{"Globex"})
	require.NoError(t, err)
	assert.Len(t, some, 1)
}
