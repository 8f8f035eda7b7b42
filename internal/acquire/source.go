// Package acquire loads raw survey response tables from their storage
// backends. A Source hands back an untyped table; interpretation of
// headers and cells is left to the debrief package.
package acquire

import (
	"context"

	"debriefpulse/internal/debrief"
)

// Source fetches the current survey response table.
type Source interface {
	// Fetch retrieves the full response table including the header row.
	Fetch(ctx context.Context) (debrief.RawTable, error)

	// Describe returns a human-readable identifier for logging.
	Describe() string
}

// worksheetCandidates are tried in order when opening a workbook whose
// response sheet name is not configured. Google Forms exports use
// variations of "Form Responses".
var worksheetCandidates = []string{
	"Form_Responses",
	"Form Responses 1",
	"Form Responses",
	"Sheet1",
}

// padRows widens every row to the header width so that downstream code
// can index columns without bounds checks against ragged rows.
func padRows(headers []string, rows [][]string) [][]string {
	width := len(headers)
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}
