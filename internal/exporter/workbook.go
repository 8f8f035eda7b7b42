package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"debriefpulse/internal/debrief"
)

// Sheet names of the partner report workbook.
const (
	sheetSummary  = "Executive Summary"
	sheetMetrics  = "Detailed Metrics"
	sheetThemes   = "Themes"
	sheetInsights = "Qualitative Insights"
	sheetDetails  = "Session Details"
)

// WorkbookWriter builds partner report workbooks.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	return &WorkbookWriter{logger: logger}
}

// WritePartnerReport renders the report as an xlsx workbook to w.
// detailHeaders and detailRows are the partner's raw response rows for
// the session details sheet.
func (ww *WorkbookWriter) WritePartnerReport(w io.Writer, report debrief.PartnerReport, detailHeaders []string, detailRows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := ww.writeSummarySheet(f, report); err != nil {
		return err
	}
	if err := ww.writeMetricsSheet(f, report); err != nil {
		return err
	}
	if err := ww.writeThemesSheet(f, report); err != nil {
		return err
	}
	if err := ww.writeInsightsSheet(f, report); err != nil {
		return err
	}
	if err := ww.writeDetailsSheet(f, detailHeaders, detailRows); err != nil {
		return err
	}

	// The default sheet is replaced by Executive Summary
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	ww.logger.Info("partner report workbook written",
		slog.String("partner", report.PartnerName),
		slog.Int("sessions", report.SessionCount))
	return nil
}

func (ww *WorkbookWriter) writeSummarySheet(f *excelize.File, report debrief.PartnerReport) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	title, err := titleStyle(f)
	if err != nil {
		return err
	}
	f.SetCellValue(sheetSummary, "A1", "Partner Debrief Report")
	f.SetCellStyle(sheetSummary, "A1", "A1", title)

	rows := [][]interface{}{
		{"Partner", report.PartnerName},
		{"Sessions", report.SessionCount},
		{"Date Range", formatRange(report.DateRange)},
		{"Avg Relevance", formatFloat(report.Metrics.AvgRelevance)},
		{"Avg Support", formatFloat(report.Metrics.AvgSupport)},
		{"Avg Urgency", formatFloat(report.Metrics.AvgUrgency)},
		{"Coaches", report.Metrics.CoachCount},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	f.SetColWidth(sheetSummary, "A", "A", 18)
	f.SetColWidth(sheetSummary, "B", "B", 32)
	return nil
}

// writeMetricsSheet renders the per-session-date rating table.
func (ww *WorkbookWriter) writeMetricsSheet(f *excelize.File, report debrief.PartnerReport) error {
	if _, err := f.NewSheet(sheetMetrics); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	headers := []interface{}{"Session Date", "Avg Relevance", "Avg Support", "Avg Urgency", "Responses"}
	if err := f.SetSheetRow(sheetMetrics, "A1", &headers); err != nil {
		return err
	}
	f.SetCellStyle(sheetMetrics, "A1", "E1", header)

	for i, point := range report.TimeSeries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			point.Date.Format("2006-01-02"),
			formatFloat(point.AvgRelevance),
			formatFloat(point.AvgSupport),
			formatFloat(point.AvgUrgency),
			point.Responses,
		}
		if err := f.SetSheetRow(sheetMetrics, cell, &row); err != nil {
			return fmt.Errorf("failed to write metrics row: %w", err)
		}
	}

	f.SetColWidth(sheetMetrics, "A", "A", 15)
	f.SetColWidth(sheetMetrics, "B", "E", 14)
	return nil
}

func (ww *WorkbookWriter) writeThemesSheet(f *excelize.File, report debrief.PartnerReport) error {
	if _, err := f.NewSheet(sheetThemes); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	headers := []interface{}{"Category", "Theme", "Count"}
	if err := f.SetSheetRow(sheetThemes, "A1", &headers); err != nil {
		return err
	}
	f.SetCellStyle(sheetThemes, "A1", "C1", header)

	row := 2
	sections := []struct {
		name   string
		themes []debrief.ThemeCount
	}{
		{"Organizational Pressure", report.Pressures},
		{"Leadership Challenge", report.Challenges},
		{"Implementation Obstacle", report.Obstacles},
		{"Valuable Takeaway", report.Takeaways},
	}
	for _, section := range sections {
		for _, tc := range section.themes {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{section.name, tc.Theme, tc.Count}
			if err := f.SetSheetRow(sheetThemes, cell, &values); err != nil {
				return fmt.Errorf("failed to write theme row: %w", err)
			}
			row++
		}
	}

	f.SetColWidth(sheetThemes, "A", "A", 26)
	f.SetColWidth(sheetThemes, "B", "B", 60)
	return nil
}

// writeInsightsSheet lists the raw takeaway and feedback responses in
// numbered sections. Empty sections are skipped.
func (ww *WorkbookWriter) writeInsightsSheet(f *excelize.File, report debrief.PartnerReport) error {
	if _, err := f.NewSheet(sheetInsights); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	row := 1
	sections := []struct {
		name   string
		quotes []string
	}{
		{"Valuable Takeaways", report.TakeawayQuotes},
		{"Open Feedback", report.FeedbackQuotes},
	}
	for _, section := range sections {
		if len(section.quotes) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetInsights, cell, section.name)
		end, err := excelize.CoordinatesToCellName(2, row)
		if err != nil {
			return err
		}
		f.SetCellStyle(sheetInsights, cell, end, header)
		row++

		for i, quote := range section.quotes {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{fmt.Sprintf("%d.", i+1), quote}
			if err := f.SetSheetRow(sheetInsights, cell, &values); err != nil {
				return fmt.Errorf("failed to write insight row: %w", err)
			}
			row++
		}
		row++
	}

	f.SetColWidth(sheetInsights, "A", "A", 5)
	f.SetColWidth(sheetInsights, "B", "B", 80)
	return nil
}

func (ww *WorkbookWriter) writeDetailsSheet(f *excelize.File, headers []string, rows [][]string) error {
	if _, err := f.NewSheet(sheetDetails); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetDetails, "A1", &headerRow); err != nil {
		return err
	}
	if len(headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return err
		}
		f.SetCellStyle(sheetDetails, "A1", last, style)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetDetails, cell, &values); err != nil {
			return fmt.Errorf("failed to write detail row %d: %w", i, err)
		}
	}
	return nil
}

func titleStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
}

// formatRange renders a date range for display cells.
func formatRange(r debrief.DateRange) string {
	if r.IsZero() {
		return ""
	}
	return strings.Join([]string{
		r.From.Format("2006-01-02"),
		r.To.Format("2006-01-02"),
	}, " to ")
}
