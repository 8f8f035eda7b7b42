// Package exporter renders analytics results as downloadable files.
//
// Two formats are produced: a styled Excel workbook for single-partner
// reports and a UTF-8 CSV (with BOM, for Excel compatibility) for the
// cross-partner comparison table.
package exporter
