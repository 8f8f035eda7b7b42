package exporter

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"debriefpulse/internal/debrief"
)

func sampleReport() debrief.PartnerReport {
	from := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return debrief.PartnerReport{
		PartnerName:  "Acme Corp",
		SessionCount: 3,
		DateRange:    debrief.DateRange{From: from, To: to},
		Pressures: []debrief.ThemeCount{
			{Theme: "Budget cuts", Count: 2},
			{Theme: "Reorg fatigue", Count: 1},
		},
		Challenges: []debrief.ThemeCount{
			{Theme: "Delegation", Count: 2},
		},
		Obstacles: []debrief.ThemeCount{
			{Theme: "No time to practice", Count: 1},
		},
		Takeaways: []debrief.ThemeCount{
			{Theme: "Reframing techniques", Count: 2},
		},
		TimeSeries: []debrief.TimePoint{
			{Date: from, AvgRelevance: 4.5, AvgSupport: 4, AvgUrgency: 3, Responses: 2},
			{Date: to, AvgRelevance: 4.5, AvgSupport: 4, AvgUrgency: 4.5, Responses: 1},
		},
		TakeawayQuotes: []string{
			"Reframing techniques",
			"Reframing techniques",
			"Listening before advising",
		},
		FeedbackQuotes: []string{
			"More time for peer discussion",
		},
		Metrics: debrief.Metrics{
			TotalResponses: 3,
			UniqueSessions: 2,
			AvgRelevance:   4.5,
			AvgSupport:     4.0,
			AvgUrgency:     3.5,
			CoachCount:     2,
			DateRange:      debrief.DateRange{From: from, To: to},
			DateRangeDays:  22,
		},
	}
}

func TestWritePartnerReport(t *testing.T) {
	ww := NewWorkbookWriter(slog.Default())

	var buf bytes.Buffer
	headers := []string{"Date", "Partner", "Overall rating"}
	rows := [][]string{
		{"2025-01-10", "Acme Corp", "5"},
		{"2025-02-01", "Acme Corp", "4"},
	}
	require.NoError(t, ww.WritePartnerReport(&buf, sampleReport(), headers, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{sheetSummary, sheetMetrics, sheetThemes, sheetInsights, sheetDetails},
		f.GetSheetList())

	title, err := f.GetCellValue(sheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Partner Debrief Report", title)

	partner, err := f.GetCellValue(sheetSummary, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", partner)

	dateRange, err := f.GetCellValue(sheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10 to 2025-02-01", dateRange)

	// Detailed metrics carry the per-session-date rating table
	metricsHeader, err := f.GetCellValue(sheetMetrics, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Session Date", metricsHeader)
	firstDate, err := f.GetCellValue(sheetMetrics, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", firstDate)
	firstRelevance, err := f.GetCellValue(sheetMetrics, "B2")
	require.NoError(t, err)
	assert.Equal(t, "4.50", firstRelevance)
	firstCount, err := f.GetCellValue(sheetMetrics, "E2")
	require.NoError(t, err)
	assert.Equal(t, "2", firstCount)

	// Themes sheet lists pressures, challenges, obstacles, then takeaways
	theme, err := f.GetCellValue(sheetThemes, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Budget cuts", theme)
	category, err := f.GetCellValue(sheetThemes, "A4")
	require.NoError(t, err)
	assert.Equal(t, "Leadership Challenge", category)
	takeaway, err := f.GetCellValue(sheetThemes, "A6")
	require.NoError(t, err)
	assert.Equal(t, "Valuable Takeaway", takeaway)

	// Insights sheet numbers the raw quotes per section
	insightSection, err := f.GetCellValue(sheetInsights, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Valuable Takeaways", insightSection)
	firstQuote, err := f.GetCellValue(sheetInsights, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Reframing techniques", firstQuote)
	feedbackSection, err := f.GetCellValue(sheetInsights, "A6")
	require.NoError(t, err)
	assert.Equal(t, "Open Feedback", feedbackSection)
	feedbackQuote, err := f.GetCellValue(sheetInsights, "B7")
	require.NoError(t, err)
	assert.Equal(t, "More time for peer discussion", feedbackQuote)

	// Session details carry the raw rows under the original headers
	detailHeader, err := f.GetCellValue(sheetDetails, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Overall rating", detailHeader)
	detail, err := f.GetCellValue(sheetDetails, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", detail)
}

func TestWritePartnerReport_EmptyReport(t *testing.T) {
	ww := NewWorkbookWriter(slog.Default())

	var buf bytes.Buffer
	report := debrief.PartnerReport{PartnerName: "Unknown Partner"}
	require.NoError(t, ww.WritePartnerReport(&buf, report, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	dateRange, err := f.GetCellValue(sheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "", dateRange)
}

func TestWriteComparisonCSV(t *testing.T) {
	comparison := map[string]debrief.Metrics{
		"Globex": {
			TotalResponses: 2,
			UniqueSessions: 1,
			AvgRelevance:   4,
			CoachCount:     1,
		},
		"Acme Corp": {
			TotalResponses: 3,
			UniqueSessions: 2,
			AvgRelevance:   4.5,
			AvgSupport:     4,
			AvgUrgency:     3.5,
			CoachCount:     2,
			DateRangeDays:  22,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparisonCSV(&buf, comparison))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"), "expected UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(comparisonHeaders, ","), lines[0])
	// Partners come out sorted
	assert.Equal(t, "Acme Corp,3,2,4.50,4.00,3.50,2,22", lines[1])
	assert.Equal(t, "Globex,2,1,4.00,0.00,0.00,1,0", lines[2])
}

func TestWriteCSV_NoBOM(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", buf.String())
}
