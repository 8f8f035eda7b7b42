package debrief

import (
	"strings"
)

// ResolveColumn finds the best-matching column for a semantic role.
// Survey exports rename columns between form revisions (full question
// text vs. short labels), so resolution degrades through three tiers,
// first hit wins:
//
//  1. exact match: a candidate equals an available column, byte for byte
//     after trimming both sides
//  2. substring match: a lower-cased candidate appears inside a
//     lower-cased available column; candidates are tried in given order,
//     available columns in table order
//  3. keyword fallback: the first whitespace-delimited token of the first
//     candidate, lower-cased, contained in an available column
//
// Returns ("", false) when nothing matches, including for empty inputs.
func ResolveColumn(candidates []string, available []string) (string, bool) {
	if len(candidates) == 0 || len(available) == 0 {
		return "", false
	}

	// Tier 1: exact match across all candidates.
	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		for _, col := range available {
			if cand == strings.TrimSpace(col) {
				return col, true
			}
		}
	}

	// Tier 2: case-insensitive substring, candidate order then table order.
	for _, cand := range candidates {
		lc := strings.ToLower(strings.TrimSpace(cand))
		if lc == "" {
			continue
		}
		for _, col := range available {
			if strings.Contains(strings.ToLower(col), lc) {
				return col, true
			}
		}
	}

	// Tier 3: keyword from the first candidate.
	if kw := firstToken(candidates[0]); kw != "" {
		for _, col := range available {
			if strings.Contains(strings.ToLower(col), kw) {
				return col, true
			}
		}
	}

	return "", false
}

// ResolveRole resolves a semantic role against the available columns
// using the role's built-in candidate list.
func ResolveRole(role Role, available []string) (string, bool) {
	return ResolveColumn(roleCandidates[role], available)
}

// firstToken returns the lower-cased first whitespace-delimited token.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
