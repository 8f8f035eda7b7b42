package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apierrors "debriefpulse/internal/errors"
	"debriefpulse/internal/exporter"
)

// ExportPartnerReport handles GET /api/export/partners/{partner} and
// streams the report workbook as an attachment.
func (h *DebriefHandler) ExportPartnerReport(w http.ResponseWriter, r *http.Request) {
	partner := r.Context().Value(partnerKey).(string)
	ctx := r.Context()

	report, err := h.service.Report(ctx, partner)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	headers, rows, err := h.service.ReportDetails(ctx, partner)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Render into memory first so a mid-write failure can still produce
	// a problem document instead of a truncated download.
	var buf bytes.Buffer
	if err := h.workbook.WritePartnerReport(&buf, report, headers, rows); err != nil {
		h.logger.ErrorContext(ctx, "workbook export failed",
			slog.String("partner", partner),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrExportFailed)
		return
	}

	filename := fmt.Sprintf("debrief-report-%s-%s.xlsx",
		sanitizeFilename(partner), time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.Write(buf.Bytes())
	h.service.RecordExport(ctx, "xlsx")
}

// ExportComparison handles GET /api/export/comparison and streams the
// cross-partner metrics table as CSV.
func (h *DebriefHandler) ExportComparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partners := splitPartners(r.URL.Query().Get("partners"))

	comparison, err := h.service.Comparison(ctx, partners)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteComparisonCSV(&buf, comparison); err != nil {
		h.logger.ErrorContext(ctx, "comparison export failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrExportFailed)
		return
	}

	filename := fmt.Sprintf("debrief-comparison-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.Write(buf.Bytes())
	h.service.RecordExport(ctx, "csv")
}

// sanitizeFilename keeps partner names safe to embed in a filename.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "partner"
	}
	return b.String()
}
