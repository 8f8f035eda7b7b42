package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"debriefpulse/internal/debrief"
	apierrors "debriefpulse/internal/errors"
	"debriefpulse/internal/exporter"
)

// contextKey scopes the values the handler middleware puts on requests.
type contextKey string

const (
	partnerKey contextKey = "partner"
	roleKey    contextKey = "role"
)

// DebriefHandler serves the analytics API.
type DebriefHandler struct {
	service      DebriefServiceInterface
	workbook     *exporter.WorkbookWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDebriefHandler creates the handler.
func NewDebriefHandler(service DebriefServiceInterface, workbook *exporter.WorkbookWriter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DebriefHandler {
	return &DebriefHandler{
		service:      service,
		workbook:     workbook,
		logger:       logger.With(slog.String("component", "debrief_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the API routes.
func (h *DebriefHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/roster", h.GetRoster)
	r.Get("/metrics", h.GetMetrics)
	r.Get("/timeseries", h.GetTimeSeries)
	r.Get("/comparison", h.GetComparison)
	r.Post("/refresh", h.Refresh)

	r.Route("/themes/{role}", func(r chi.Router) {
		r.Use(h.RoleCtx)
		r.Get("/", h.GetThemes)
	})
	r.Route("/quotes/{role}", func(r chi.Router) {
		r.Use(h.RoleCtx)
		r.Get("/", h.GetQuotes)
	})

	r.Route("/partners/{partner}", func(r chi.Router) {
		r.Use(h.PartnerCtx)
		r.Get("/report", h.GetPartnerReport)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/comparison", h.ExportComparison)
		r.Route("/partners/{partner}", func(r chi.Router) {
			r.Use(h.PartnerCtx)
			r.Get("/", h.ExportPartnerReport)
		})
	})

	return r
}

// RoleCtx validates the role path parameter against the free-text roles.
func (h *DebriefHandler) RoleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := debrief.Role(chi.URLParam(r, "role"))

		valid := false
		for _, tr := range debrief.ThemeRoles {
			if role == tr {
				valid = true
				break
			}
		}
		if !valid {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("role",
				fmt.Sprintf("Unknown theme role %q", string(role))))
			return
		}

		ctx := context.WithValue(r.Context(), roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PartnerCtx decodes and stores the partner path parameter. Any partner
// name is accepted; an unknown one yields an empty result downstream.
func (h *DebriefHandler) PartnerCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partner := chi.URLParam(r, "partner")
		if decoded, err := url.PathUnescape(partner); err == nil {
			partner = decoded
		}
		if strings.TrimSpace(partner) == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("partner", "Partner name is required"))
			return
		}

		ctx := context.WithValue(r.Context(), partnerKey, partner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRoster handles GET /api/roster
func (h *DebriefHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.service.Roster(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if roster == nil {
		roster = []string{}
	}
	render.JSON(w, r, map[string]interface{}{
		"partners": roster,
		"count":    len(roster),
	})
}

// GetMetrics handles GET /api/metrics with an optional partner filter
func (h *DebriefHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	partner := r.URL.Query().Get("partner")

	metrics, err := h.service.Metrics(r.Context(), partner)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, metrics)
}

// GetThemes handles GET /api/themes/{role}
func (h *DebriefHandler) GetThemes(w http.ResponseWriter, r *http.Request) {
	role := r.Context().Value(roleKey).(debrief.Role)
	partner := r.URL.Query().Get("partner")

	top := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("top", "top must be a non-negative integer"))
			return
		}
		top = n
	}

	themes, err := h.service.ThemeFrequencies(r.Context(), role, partner, top)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if themes == nil {
		themes = []debrief.ThemeCount{}
	}
	render.JSON(w, r, map[string]interface{}{
		"role":   string(role),
		"themes": themes,
	})
}

// GetQuotes handles GET /api/quotes/{role}
func (h *DebriefHandler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	role := r.Context().Value(roleKey).(debrief.Role)
	partner := r.URL.Query().Get("partner")

	quotes, err := h.service.Quotes(r.Context(), role, partner)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if quotes == nil {
		quotes = []string{}
	}
	render.JSON(w, r, map[string]interface{}{
		"role":   string(role),
		"quotes": quotes,
	})
}

// GetTimeSeries handles GET /api/timeseries
func (h *DebriefHandler) GetTimeSeries(w http.ResponseWriter, r *http.Request) {
	partner := r.URL.Query().Get("partner")

	points, err := h.service.TimeSeries(r.Context(), partner)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if points == nil {
		points = []debrief.TimePoint{}
	}
	render.JSON(w, r, map[string]interface{}{
		"points": points,
	})
}

// GetPartnerReport handles GET /api/partners/{partner}/report
func (h *DebriefHandler) GetPartnerReport(w http.ResponseWriter, r *http.Request) {
	partner := r.Context().Value(partnerKey).(string)

	report, err := h.service.Report(r.Context(), partner)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// GetComparison handles GET /api/comparison. The optional partners query
// parameter is a comma-separated subset; absent means the full roster.
func (h *DebriefHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	partners := splitPartners(r.URL.Query().Get("partners"))

	comparison, err := h.service.Comparison(r.Context(), partners)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"partners": comparison,
	})
}

// Refresh handles POST /api/refresh
func (h *DebriefHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "dataset refresh requested",
		slog.String("source", h.service.SourceDescription()))

	if err := h.service.Refresh(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"status":    "refreshed",
		"loaded_at": h.service.LoadedAt(),
	})
}

// splitPartners parses the comma-separated partners parameter.
func splitPartners(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
