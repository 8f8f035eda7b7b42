package debrief

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// sessionKeySep separates date and partner in the global session key.
// Unit separator, cannot occur in cell text.
const sessionKeySep = "\x1f"

// ComputeMetrics computes the aggregate summary over the whole table
// (partnerFilter == "") or the rows whose partner column equals the
// filter exactly. Missing columns and unknown partners degrade to zero
// defaults, never an error.
//
// Session identity: a session needs non-empty values in both the partner
// and date columns; rows missing either are excluded entirely. Without a
// partner filter, uniqueness is computed on the (date, partner) pair so
// sessions held by different partners on the same day stay distinct.
// Inside one partner's rows the partner is constant, so date-only
// uniqueness is equivalent and is what gets counted.
func ComputeMetrics(ds *Dataset, partnerFilter string) Metrics {
	var m Metrics
	if ds == nil {
		return m
	}

	rows := filterRows(ds, partnerFilter)
	m.TotalResponses = len(rows)
	m.UniqueSessions = countSessions(ds, rows, partnerFilter == "")
	m.AvgRelevance = safeMean(ds, rows, RoleRelevance)
	m.AvgSupport = safeMean(ds, rows, RoleSupport)
	m.AvgUrgency = safeMean(ds, rows, RoleUrgency)
	m.CoachCount = countCoaches(ds, rows)
	m.DateRange = rangeOf(ds, rows)
	m.DateRangeDays = m.DateRange.Days()
	return m
}

// filterRows returns the row indices matching the partner filter, or all
// rows when the filter is empty.
func filterRows(ds *Dataset, partnerFilter string) []int {
	rows := make([]int, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		if partnerFilter != "" && ds.cell(i, RolePartner) != partnerFilter {
			continue
		}
		rows = append(rows, i)
	}
	return rows
}

// countSessions counts distinct sessions among the given rows. Rows
// lacking a valid date or a partner value do not represent a session.
func countSessions(ds *Dataset, rows []int, byPair bool) int {
	if _, ok := ds.Binding(RoleDate); !ok {
		return 0
	}
	if _, ok := ds.Binding(RolePartner); !ok {
		return 0
	}

	seen := make(map[string]struct{})
	for _, i := range rows {
		d := ds.dateAt(i)
		partner := ds.cell(i, RolePartner)
		if d.IsZero() || partner == "" {
			continue
		}
		key := d.Format("2006-01-02")
		if byPair {
			key += sessionKeySep + partner
		}
		seen[key] = struct{}{}
	}
	return len(seen)
}

// safeMean returns the arithmetic mean of the numeric-coercible values of
// the role's column among the given rows. Non-numeric and empty cells are
// excluded from the mean, not treated as zero. 0.0 when the role is
// unbound or nothing is numeric.
func safeMean(ds *Dataset, rows []int, role Role) float64 {
	if _, ok := ds.Binding(role); !ok {
		return 0
	}
	var sum float64
	var n int
	for _, i := range rows {
		v, ok := parseNumeric(ds.cell(i, role))
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// parseNumeric coerces cell text to a float, tolerating the thousands
// separators spreadsheet exports insert.
func parseNumeric(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// countCoaches counts distinct non-empty values of the first available
// coach-identifying column. Exact header names are tried in fixed
// priority order; the resolver-bound coach role is the last resort.
func countCoaches(ds *Dataset, rows []int) int {
	col := -1
	for _, name := range coachColumnPriority {
		if idx := headerIndex(ds.headers, name); idx >= 0 {
			col = idx
			break
		}
	}
	if col < 0 {
		idx, ok := ds.Binding(RoleCoach)
		if !ok {
			return 0
		}
		col = idx
	}

	seen := make(map[string]struct{})
	for _, i := range rows {
		if v := ds.cellAt(i, col); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// rangeOf returns the (min, max) date range among the given rows.
func rangeOf(ds *Dataset, rows []int) DateRange {
	var span DateRange
	for _, i := range rows {
		d := ds.dateAt(i)
		if d.IsZero() {
			continue
		}
		if span.IsZero() {
			span = DateRange{From: d, To: d}
			continue
		}
		if d.Before(span.From) {
			span.From = d
		}
		if d.After(span.To) {
			span.To = d
		}
	}
	return span
}

// TimeSeries aggregates the rating roles per session date for trend
// charts: mean relevance/support/urgency and response count for every
// date with at least one dated row, sorted ascending. Rows without a
// valid date are skipped.
func TimeSeries(ds *Dataset, partnerFilter string) []TimePoint {
	if ds == nil {
		return nil
	}
	if _, ok := ds.Binding(RoleDate); !ok {
		return nil
	}

	type acc struct {
		relSum, supSum, urgSum float64
		relN, supN, urgN       int
		responses              int
	}
	byDate := make(map[time.Time]*acc)

	for _, i := range filterRows(ds, partnerFilter) {
		d := ds.dateAt(i)
		if d.IsZero() {
			continue
		}
		a := byDate[d]
		if a == nil {
			a = &acc{}
			byDate[d] = a
		}
		a.responses++
		if v, ok := parseNumeric(ds.cell(i, RoleRelevance)); ok {
			a.relSum += v
			a.relN++
		}
		if v, ok := parseNumeric(ds.cell(i, RoleSupport)); ok {
			a.supSum += v
			a.supN++
		}
		if v, ok := parseNumeric(ds.cell(i, RoleUrgency)); ok {
			a.urgSum += v
			a.urgN++
		}
	}

	points := make([]TimePoint, 0, len(byDate))
	for d, a := range byDate {
		p := TimePoint{Date: d, Responses: a.responses}
		if a.relN > 0 {
			p.AvgRelevance = a.relSum / float64(a.relN)
		}
		if a.supN > 0 {
			p.AvgSupport = a.supSum / float64(a.supN)
		}
		if a.urgN > 0 {
			p.AvgUrgency = a.urgSum / float64(a.urgN)
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
