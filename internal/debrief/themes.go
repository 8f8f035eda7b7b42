package debrief

import (
	"sort"
	"strings"
)

// ExtractThemes returns the cleaned free-text responses for the role, in
// row order and without deduplication: repeated identical text from
// different rows stays repeated. An unbound role yields an empty slice.
//
// Cleaning drops empty cells and the literal "nan" marker that numeric
// coercion in spreadsheet pipelines leaves behind in text columns.
func ExtractThemes(ds *Dataset, role Role, partnerFilter string) []string {
	if ds == nil {
		return nil
	}
	if _, ok := ds.Binding(role); !ok {
		return nil
	}

	themes := make([]string, 0, ds.Len())
	for _, i := range filterRows(ds, partnerFilter) {
		v := ds.cell(i, role)
		if v == "" || strings.EqualFold(v, "nan") {
			continue
		}
		themes = append(themes, v)
	}
	return themes
}

// ExtractFrequencies counts the cleaned responses for the role and
// returns the full frequency table ordered by descending count, ties
// broken by first appearance. Counting is case-sensitive exact-string
// equality; the output is deterministic for a given dataset. Top-N
// truncation is a caller concern.
func ExtractFrequencies(ds *Dataset, role Role, partnerFilter string) []ThemeCount {
	themes := ExtractThemes(ds, role, partnerFilter)
	if len(themes) == 0 {
		return nil
	}

	counts := make(map[string]int, len(themes))
	firstSeen := make(map[string]int, len(themes))
	order := make([]string, 0, len(themes))
	for i, t := range themes {
		if _, ok := counts[t]; !ok {
			firstSeen[t] = i
			order = append(order, t)
		}
		counts[t]++
	}

	table := make([]ThemeCount, 0, len(order))
	for _, t := range order {
		table = append(table, ThemeCount{Theme: t, Count: counts[t]})
	}
	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return firstSeen[table[i].Theme] < firstSeen[table[j].Theme]
	})
	return table
}

// TopThemes truncates a frequency table to its first n entries.
// n <= 0 returns the table unchanged.
func TopThemes(table []ThemeCount, n int) []ThemeCount {
	if n <= 0 || len(table) <= n {
		return table
	}
	return table[:n]
}
