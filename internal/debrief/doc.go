// Package debrief implements the data-processing core of the partner
// debrief analytics service: column resolution over inconsistent survey
// exports, table normalization, null-safe metric aggregation, free-text
// theme frequency extraction, and partner report assembly.
//
// The package operates on an in-memory table loaded once per refresh
// cycle. Normalize produces an immutable *Dataset; every downstream
// computation (ComputeMetrics, ExtractThemes, BuildPartnerReport, ...)
// takes the dataset as an explicit argument and reads it without
// mutation, so concurrent computations over the same dataset are safe
// without synchronization.
//
// Missing columns, unparseable cells, and unknown partner names are never
// errors here: every such case degrades to a zero or empty result, with a
// warning logged for missing semantic columns. Only the acquisition layer
// (internal/acquire) can fail a load cycle.
package debrief
