package exporter

import (
	"fmt"
)

// formatFloat formats a float64 value for export with exactly 2 decimal
// places so that values like 4.5 appear as 4.50.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for export
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}
