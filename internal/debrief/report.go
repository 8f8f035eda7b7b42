package debrief

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BuildPartnerReport assembles the read-only snapshot for one partner.
// An unknown partner name is a valid empty-result query: the report comes
// back with zero counts, empty theme lists, and an absent date range.
//
// SessionCount is the partner's response row count, not the stricter
// (date, partner) session identity: a partner-scoped report treats every
// submitted response as part of the engagement.
func BuildPartnerReport(ds *Dataset, partner string) PartnerReport {
	report := PartnerReport{PartnerName: partner}
	if ds == nil {
		return report
	}

	rows := filterRows(ds, partner)
	report.SessionCount = len(rows)
	report.DateRange = rangeOf(ds, rows)
	report.Pressures = ExtractFrequencies(ds, RolePressure, partner)
	report.Challenges = ExtractFrequencies(ds, RoleChallenge, partner)
	report.Obstacles = ExtractFrequencies(ds, RoleObstacle, partner)
	report.Takeaways = ExtractFrequencies(ds, RoleTakeaway, partner)
	report.TimeSeries = TimeSeries(ds, partner)
	report.TakeawayQuotes = ExtractThemes(ds, RoleTakeaway, partner)
	report.FeedbackQuotes = ExtractThemes(ds, RoleFeedback, partner)
	report.Metrics = ComputeMetrics(ds, partner)
	return report
}

// PartnerRows returns the partner's raw rows (padded to header width)
// for the session-details sheet of the export workbook.
func PartnerRows(ds *Dataset, partner string) [][]string {
	if ds == nil {
		return nil
	}
	idx := filterRows(ds, partner)
	rows := make([][]string, 0, len(idx))
	for _, i := range idx {
		rows = append(rows, ds.Row(i))
	}
	return rows
}

// BuildComparison computes per-partner metrics independently for each
// named partner. No cross-partner normalization happens here; that
// belongs to presentation. The dataset is immutable after load, so the
// per-partner computations run concurrently.
func BuildComparison(ctx context.Context, ds *Dataset, partners []string) map[string]Metrics {
	out := make(map[string]Metrics, len(partners))
	if ds == nil || len(partners) == 0 {
		return out
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, partner := range partners {
		g.Go(func() error {
			m := ComputeMetrics(ds, partner)
			mu.Lock()
			out[partner] = m
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return out
}
