package debrief

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order against trimmed cell text. Survey
// exports mix ISO dates, US slash dates, and spreadsheet display formats
// depending on how the sheet was downloaded.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01-02-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// Excel serial date epoch (the 1900 date system, day 0 = 1899-12-30).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a cell as a session date using a flexible,
// locale-agnostic cascade. Unparseable cells yield the zero time, never
// an error; truncated to midnight UTC so that equal calendar dates
// compare equal regardless of the export's time component.
func ParseDate(cell string) time.Time {
	s := trimCell(cell)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t)
		}
	}

	// Excel stores dates as day serials; a bare number in the plausible
	// range (1930..2100) is treated as one.
	if serial, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		if serial > 10957 && serial < 73415 {
			return truncateDay(excelEpoch.AddDate(0, 0, int(serial)))
		}
	}

	return time.Time{}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// trimCell normalizes cell text. TrimSpace also covers the non-breaking
// spaces some sheet exports emit.
func trimCell(s string) string {
	return strings.TrimSpace(s)
}
