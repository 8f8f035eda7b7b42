package acquire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"debriefpulse/internal/debrief"
)

// ExcelSource reads survey responses from a local Excel workbook.
type ExcelSource struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewExcelSource creates a source for the workbook at path. If sheet is
// empty, the usual Forms export sheet names are tried, then the first
// sheet in the workbook.
func NewExcelSource(path, sheet string, logger *slog.Logger) *ExcelSource {
	return &ExcelSource{path: path, sheet: sheet, logger: logger}
}

// Describe returns a human-readable identifier for logging.
func (s *ExcelSource) Describe() string {
	return fmt.Sprintf("excel:%s", s.path)
}

// Fetch reads the response table from the workbook.
func (s *ExcelSource) Fetch(ctx context.Context) (debrief.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return debrief.RawTable{}, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return debrief.RawTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, rows, err := s.findResponseSheet(f)
	if err != nil {
		return debrief.RawTable{}, err
	}

	s.logger.InfoContext(ctx, "workbook loaded",
		slog.String("path", s.path),
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)))

	if len(rows) == 0 {
		return debrief.RawTable{}, nil
	}

	headers := rows[0]
	return debrief.RawTable{
		Headers: headers,
		Rows:    padRows(headers, rows[1:]),
	}, nil
}

// findResponseSheet locates the sheet holding the response table.
func (s *ExcelSource) findResponseSheet(f *excelize.File) (string, [][]string, error) {
	if s.sheet != "" {
		rows, err := f.GetRows(s.sheet)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read sheet %q: %w", s.sheet, err)
		}
		return s.sheet, rows, nil
	}

	for _, name := range worksheetCandidates {
		if rows, err := f.GetRows(name); err == nil {
			return name, rows, nil
		}
	}

	// Fall back to the first sheet in the workbook
	list := f.GetSheetList()
	if len(list) == 0 {
		return "", nil, fmt.Errorf("workbook %s has no sheets", s.path)
	}
	rows, err := f.GetRows(list[0])
	if err != nil {
		return "", nil, fmt.Errorf("failed to read sheet %q: %w", list[0], err)
	}
	return list[0], rows, nil
}
