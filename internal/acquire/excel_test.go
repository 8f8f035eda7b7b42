package acquire

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook creates a small xlsx fixture with the given sheet name.
func writeWorkbook(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "responses.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelSource_Fetch(t *testing.T) {
	path := writeWorkbook(t, "Form_Responses", [][]string{
		{"Date", "Partner", "Overall rating"},
		{"2025-01-10", "Acme Corp", "5"},
		{"2025-01-12", "Globex", "4"},
	})

	src := NewExcelSource(path, "", slog.Default())
	table, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Partner", "Overall rating"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2025-01-10", "Acme Corp", "5"}, table.Rows[0])
}

func TestExcelSource_FallsBackToFirstSheet(t *testing.T) {
	path := writeWorkbook(t, "Responses 2025", [][]string{
		{"Date", "Partner"},
		{"2025-02-01", "Initech"},
	})

	src := NewExcelSource(path, "", slog.Default())
	table, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Partner"}, table.Headers)
	require.Len(t, table.Rows, 1)
}

func TestExcelSource_ExplicitSheet(t *testing.T) {
	path := writeWorkbook(t, "Survey", [][]string{
		{"Partner"},
		{"Acme Corp"},
	})

	src := NewExcelSource(path, "Survey", slog.Default())
	table, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Partner"}, table.Headers)

	missing := NewExcelSource(path, "Nope", slog.Default())
	_, err = missing.Fetch(context.Background())
	assert.Error(t, err)
}

func TestExcelSource_PadsRaggedRows(t *testing.T) {
	// Trailing empty cells are dropped by the xlsx reader, so short rows
	// must come back padded to the header width.
	path := writeWorkbook(t, "Form_Responses", [][]string{
		{"Date", "Partner", "Overall rating"},
		{"2025-01-10", "Acme Corp"},
	})

	src := NewExcelSource(path, "", slog.Default())
	table, err := src.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Rows[0], 3)
	assert.Equal(t, "", table.Rows[0][2])
}

func TestExcelSource_MissingFile(t *testing.T) {
	src := NewExcelSource(filepath.Join(t.TempDir(), "absent.xlsx"), "", slog.Default())
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestExcelSource_Describe(t *testing.T) {
	src := NewExcelSource("data/debriefs.xlsx", "", slog.Default())
	assert.Equal(t, "excel:data/debriefs.xlsx", src.Describe())
}
