package debrief

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Normalize converts a raw survey table into an immutable Dataset.
//
// Steps, in order:
//  1. trim every header name
//  2. disambiguate duplicate headers by suffixing the 2nd, 3rd, ...
//     occurrence with _1, _2, ... (first occurrence keeps its name)
//  3. resolve every semantic role against the deduplicated header set
//  4. parse every cell of the date-bound column; unparseable cells
//     become absent, never an error
//  5. derive the sorted partner roster
//  6. derive the global (min, max) date range
//
// Malformed individual cells never fail normalization. Unbound roles are
// logged at warning level and every dependent computation degrades to a
// zero or empty result.
func Normalize(raw RawTable, logger *slog.Logger) *Dataset {
	if logger == nil {
		logger = slog.Default()
	}

	headers := dedupeHeaders(trimHeaders(raw.Headers))

	ds := &Dataset{
		headers:  headers,
		rows:     raw.Rows,
		bindings: make(map[Role]int, len(roleCandidates)),
		dates:    make([]time.Time, len(raw.Rows)),
	}

	for role := range roleCandidates {
		name, ok := ResolveRole(role, headers)
		if !ok {
			logger.Warn("semantic role unbound, dependent metrics degrade to defaults",
				slog.String("role", string(role)))
			continue
		}
		ds.bindings[role] = headerIndex(headers, name)
	}

	if _, ok := ds.bindings[RoleDate]; ok {
		for i := range ds.rows {
			ds.dates[i] = ParseDate(ds.cell(i, RoleDate))
		}
	}

	ds.partners = derivePartners(ds)
	ds.span = deriveSpan(ds)

	logger.Info("dataset normalized",
		slog.Int("rows", len(ds.rows)),
		slog.Int("columns", len(headers)),
		slog.Int("bound_roles", len(ds.bindings)),
		slog.Int("partners", len(ds.partners)))

	return ds
}

func trimHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = trimCell(h)
	}
	return out
}

// dedupeHeaders renames repeated headers with positional suffixes while
// preserving column order. A suffixed name that itself collides with a
// later header keeps incrementing until unique.
func dedupeHeaders(headers []string) []string {
	counts := make(map[string]int, len(headers))
	taken := make(map[string]bool, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		name := h
		if taken[name] {
			n := counts[h]
			if n == 0 {
				// First occurrence collides with an earlier renamed
				// header; suffix numbering still starts at 1.
				n = 1
			}
			for {
				name = fmt.Sprintf("%s_%d", h, n)
				if !taken[name] {
					break
				}
				n++
			}
			counts[h] = n + 1
		} else {
			counts[h] = 1
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

func headerIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// derivePartners returns the sorted distinct non-empty values of the
// partner-bound column. Case-sensitive: "Acme" and "acme" are distinct
// roster entries, matching the source form's free-entry behavior.
func derivePartners(ds *Dataset) []string {
	if _, ok := ds.bindings[RolePartner]; !ok {
		return nil
	}
	set := make(map[string]struct{})
	for i := range ds.rows {
		if v := ds.cell(i, RolePartner); v != "" {
			set[v] = struct{}{}
		}
	}
	partners := make([]string, 0, len(set))
	for p := range set {
		partners = append(partners, p)
	}
	sort.Strings(partners)
	return partners
}

func deriveSpan(ds *Dataset) DateRange {
	var span DateRange
	for i := range ds.rows {
		d := ds.dates[i]
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
