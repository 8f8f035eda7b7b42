package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debriefpulse/internal/acquire"
	"debriefpulse/internal/debrief"
	apierrors "debriefpulse/internal/errors"
	"debriefpulse/internal/exporter"
	"debriefpulse/internal/services"
)

// tableSource serves a fixed in-memory table.
type tableSource struct {
	table debrief.RawTable
	err   error
}

func (s *tableSource) Fetch(ctx context.Context) (debrief.RawTable, error) {
	return s.table, s.err
}

func (s *tableSource) Describe() string { return "fake:test" }

var _ acquire.Source = (*tableSource)(nil)

func surveyTable() debrief.RawTable {
	return debrief.RawTable{
		Headers: []string{"Session Date", "Partner Program", "Relevance", "Support", "Urgency", "Organizational Pressure", "Coach ID"},
		Rows: [][]string{
			{"2025-01-10", "Acme Corp", "5", "4", "3", "Budget cuts", "C1"},
			{"2025-01-10", "Acme Corp", "4", "4", "4", "Budget cuts", "C2"},
			{"2025-02-01", "Acme Corp", "3", "5", "2", "Reorg fatigue", "C1"},
			{"2025-01-12", "Globex", "4", "3", "5", "Hiring freeze", "C3"},
		},
	}
}

// newTestServer builds a handler over a loaded service.
func newTestServer(t *testing.T, loaded bool) (*httptest.Server, *services.DebriefService) {
	t.Helper()

	svc := services.NewDebriefService(&tableSource{table: surveyTable()}, slog.Default())
	if loaded {
		require.NoError(t, svc.Refresh(context.Background()))
	}

	errorHandler := apierrors.NewErrorHandler(slog.Default(), false)
	handler := NewDebriefHandler(svc, exporter.NewWorkbookWriter(slog.Default()), slog.Default(), errorHandler)

	r := chi.NewRouter()
	r.Mount("/api", handler.Routes())
	r.Get("/healthz", NewHealthHandler(svc, "test").ServeHTTP)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestGetRoster(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var out struct {
		Partners []string `json:"partners"`
		Count    int      `json:"count"`
	}
	code := getJSON(t, srv, "/api/roster", &out)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Acme Corp", "Globex"}, out.Partners)
	assert.Equal(t, 2, out.Count)
}

func TestGetRoster_NoDataset(t *testing.T) {
	srv, _ := newTestServer(t, false)

	var problem map[string]interface{}
	code := getJSON(t, srv, "/api/roster", &problem)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "/errors/dataset/not-loaded", problem["type"])
}

func TestGetMetrics(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var global debrief.Metrics
	code := getJSON(t, srv, "/api/metrics", &global)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4, global.TotalResponses)
	assert.Equal(t, 3, global.UniqueSessions)

	var scoped debrief.Metrics
	getJSON(t, srv, "/api/metrics?partner=Acme+Corp", &scoped)
	assert.Equal(t, 3, scoped.TotalResponses)
	assert.Equal(t, 2, scoped.UniqueSessions)

	// Unknown partner degrades to zero metrics, never an error
	var unknown debrief.Metrics
	code = getJSON(t, srv, "/api/metrics?partner=Nobody", &unknown)
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, unknown.TotalResponses)
}

func TestGetThemes(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var out struct {
		Role   string               `json:"role"`
		Themes []debrief.ThemeCount `json:"themes"`
	}
	code := getJSON(t, srv, "/api/themes/pressure", &out)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pressure", out.Role)
	require.NotEmpty(t, out.Themes)
	assert.Equal(t, debrief.ThemeCount{Theme: "Budget cuts", Count: 2}, out.Themes[0])

	code = getJSON(t, srv, "/api/themes/pressure?top=1", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, out.Themes, 1)
}

func TestGetThemes_UnknownRole(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var problem map[string]interface{}
	code := getJSON(t, srv, "/api/themes/sentiment", &problem)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "/errors/validation", problem["type"])
}

func TestGetThemes_BadTopParameter(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var problem map[string]interface{}
	code := getJSON(t, srv, "/api/themes/pressure?top=-1", &problem)
	assert.Equal(t, http.StatusBadRequest, code)

	code = getJSON(t, srv, "/api/themes/pressure?top=abc", &problem)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetQuotes(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var out struct {
		Quotes []string `json:"quotes"`
	}
	code := getJSON(t, srv, "/api/quotes/pressure?partner=Globex", &out)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Hiring freeze"}, out.Quotes)
}

func TestGetTimeSeries(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var out struct {
		Points []debrief.TimePoint `json:"points"`
	}
	code := getJSON(t, srv, "/api/timeseries", &out)

	assert.Equal(t, http.StatusOK, code)
	require.Len(t, out.Points, 3)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), out.Points[0].Date)
	assert.Equal(t, 2, out.Points[0].Responses)
}

func TestGetPartnerReport(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var report debrief.PartnerReport
	code := getJSON(t, srv, "/api/partners/Acme%20Corp/report", &report)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Acme Corp", report.PartnerName)
	assert.Equal(t, 3, report.SessionCount)
	require.NotEmpty(t, report.Pressures)

	// Unknown partner comes back as an empty report, not an error
	code = getJSON(t, srv, "/api/partners/Nobody/report", &report)
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, report.SessionCount)
}

func TestGetComparison(t *testing.T) {
	srv, _ := newTestServer(t, true)

	var out struct {
		Partners map[string]debrief.Metrics `json:"partners"`
	}
	code := getJSON(t, srv, "/api/comparison", &out)

	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, out.Partners, 2)

	// Decode into a fresh struct: unmarshaling into the populated map
	// would merge partners from the first response.
	var subset struct {
		Partners map[string]debrief.Metrics `json:"partners"`
	}
	code = getJSON(t, srv, "/api/comparison?partners=Globex", &subset)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, subset.Partners, 1)
	assert.Equal(t, 1, subset.Partners["Globex"].TotalResponses)
}

func TestRefresh(t *testing.T) {
	srv, svc := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.True(t, svc.Loaded())
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, false)

	var out struct {
		Status  string `json:"status"`
		Dataset struct {
			Loaded bool   `json:"loaded"`
			Source string `json:"source"`
		} `json:"dataset"`
	}
	code := getJSON(t, srv, "/healthz", &out)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", out.Status)
	assert.False(t, out.Dataset.Loaded)
	assert.Equal(t, "fake:test", out.Dataset.Source)
}
