package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"debriefpulse/internal/debrief"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes a table to w with the given options.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// comparisonHeaders is the fixed column layout of the comparison CSV.
var comparisonHeaders = []string{
	"Partner",
	"Total Responses",
	"Unique Sessions",
	"Avg Relevance",
	"Avg Support",
	"Avg Urgency",
	"Coach Count",
	"Date Range Days",
}

// WriteComparisonCSV renders the cross-partner metrics table as CSV.
// Partners are emitted in sorted order for a stable file layout.
func WriteComparisonCSV(w io.Writer, comparison map[string]debrief.Metrics) error {
	partners := make([]string, 0, len(comparison))
	for partner := range comparison {
		partners = append(partners, partner)
	}
	sort.Strings(partners)

	records := make([][]string, 0, len(partners))
	for _, partner := range partners {
		m := comparison[partner]
		records = append(records, []string{
			partner,
			formatInt(int64(m.TotalResponses)),
			formatInt(int64(m.UniqueSessions)),
			formatFloat(m.AvgRelevance),
			formatFloat(m.AvgSupport),
			formatFloat(m.AvgUrgency),
			formatInt(int64(m.CoachCount)),
			formatInt(int64(m.DateRangeDays)),
		})
	}

	return WriteCSV(w, WriteOptions{
		Headers:   comparisonHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}
