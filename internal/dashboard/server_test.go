package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/gridwatch/internal/query"
	"github.com/tigerroll/gridwatch/internal/testutil"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// sixDays has daily demand totals 10, 20, ..., 60 from 2020-03-01.
func sixDays() []testutil.Row {
	rows := make([]testutil.Row, 0, 6)
	for i := 0; i < 6; i++ {
		rows = append(rows, testutil.Row{
			ID:        int64(i + 1),
			Timestamp: fmt.Sprintf("2020-03-%02d 12:00", i+1),
			Measures:  map[string]float64{"demand": float64(10 * (i + 1)), "nemo": 2, "coal": 1},
		})
	}
	return rows
}

func newTestEngine(t *testing.T, rows ...testutil.Row) *gin.Engine {
	t.Helper()
	cfg := testutil.NewConfig(t)
	session := testutil.LoadWarehouse(t, cfg, testutil.BuildTables(t, testutil.CSV(rows...)))

	s, err := NewServer(query.NewReports(session, metrics.NewNoOpMetricRecorder()), &cfg.Gridwatch.Dashboard)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2020, 12, 31, 15, 0, 0, 0, time.UTC) }
	return NewEngine(s, prometheus.NewRegistry())
}

func get(t *testing.T, engine *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) reportResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder, status int) errorPayload {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestDailyDemand_WindowIsTheUserFacingWidth(t *testing.T) {
	engine := newTestEngine(t, sixDays()...)

	resp := decodeReport(t, get(t, engine, "/api/demand/daily?start=2020-03-01&end=2020-03-31&window=5"))
	assert.Equal(t, []string{"date", "demand"}, resp.Columns)
	require.Len(t, resp.Rows, 6)
	assert.Empty(t, resp.Warning)

	// A width of 5 averages the current date and the four before it.
	assert.Equal(t, "2020-03-06", resp.Rows[5][0])
	assert.InDelta(t, 40.0, resp.Rows[5][1], 1e-9)
	assert.InDelta(t, 10.0, resp.Rows[0][1], 1e-9)
}

func TestDefaultsCoverTheConfiguredStartUntilToday(t *testing.T) {
	engine := newTestEngine(t, sixDays()...)

	resp := decodeReport(t, get(t, engine, "/api/demand/yearly"))
	assert.Equal(t, [][]any{{"2020", 210.0}}, resp.Rows)

	// The default window of 28 covers all six dates.
	daily := decodeReport(t, get(t, engine, "/api/demand/daily"))
	require.Len(t, daily.Rows, 6)
	assert.InDelta(t, 35.0, daily.Rows[5][1], 1e-9)
}

// fiveWeeks has one demand reading per week, with weekly totals 10, 20, ..., 50.
func fiveWeeks() []testutil.Row {
	start := time.Date(2020, 6, 3, 12, 0, 0, 0, time.UTC)
	rows := make([]testutil.Row, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, testutil.Row{
			ID:        int64(i + 1),
			Timestamp: start.AddDate(0, 0, 7*i).Format("2006-01-02 15:04"),
			Measures:  map[string]float64{"demand": float64(10 * (i + 1))},
		})
	}
	return rows
}

func TestWeeklyDemand_DefaultWindowIsFourWeeks(t *testing.T) {
	engine := newTestEngine(t, fiveWeeks()...)

	resp := decodeReport(t, get(t, engine, "/api/demand/weekly"))
	assert.Equal(t, []string{"year_week", "demand"}, resp.Columns)
	require.Len(t, resp.Rows, 5)
	// The last week averages itself and the three weeks before it.
	assert.InDelta(t, 35.0, resp.Rows[4][1], 1e-9)
	assert.InDelta(t, 25.0, resp.Rows[3][1], 1e-9)

	explicit := decodeReport(t, get(t, engine, "/api/demand/weekly?window=4"))
	assert.Equal(t, resp.Rows, explicit.Rows)

	narrow := decodeReport(t, get(t, engine, "/api/demand/weekly?window=2"))
	assert.InDelta(t, 45.0, narrow.Rows[4][1], 1e-9)
}

func TestInvertedRange_EmptyWithWarning(t *testing.T) {
	engine := newTestEngine(t, sixDays()...)

	for _, path := range []string{
		"/api/demand/daily", "/api/demand/weekly", "/api/demand/yearly",
		"/api/summary/yearly-demand", "/api/summary/yearly-sources",
		"/api/sources/trend", "/api/interconnectors/nemo",
		"/api/peaks/daily", "/api/peaks/weekly", "/api/peaks/yearly",
	} {
		t.Run(path, func(t *testing.T) {
			resp := decodeReport(t, get(t, engine, path+"?start=2021-06-01&end=2021-01-01"))
			assert.NotEmpty(t, resp.Columns)
			assert.NotNil(t, resp.Rows)
			assert.Empty(t, resp.Rows)
			assert.Equal(t, invertedRangeWarning, resp.Warning)
		})
	}
}

func TestBadParameters_Return400(t *testing.T) {
	engine := newTestEngine(t, sixDays()...)

	cases := map[string]string{
		"/api/demand/daily?window=4":            "window",
		"/api/demand/daily?window=51":           "window",
		"/api/demand/weekly?window=ten":         "window",
		"/api/demand/weekly?window=1":           "window",
		"/api/demand/daily?start=2020-13-01":    "start",
		"/api/peaks/daily?end=yesterday":        "end",
		"/api/interconnectors/coal":             "series",
		"/api/sources/monthly/nemo":             "series",
		"/api/sources/monthly/coal?year=twenty": "year",
		"/api/demand/by-year/2020?window=100":   "window",
		"/api/demand/by-year/next":              "year",
	}
	for target, field := range cases {
		t.Run(target, func(t *testing.T) {
			payload := decodeError(t, get(t, engine, target), http.StatusBadRequest)
			assert.Equal(t, "validation_error", payload.Type)
			assert.Equal(t, field, payload.Field)
		})
	}
}

func TestInterconnectors(t *testing.T) {
	engine := newTestEngine(t, sixDays()...)

	w := get(t, engine, "/api/interconnectors")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Series []query.Series `json:"series"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, query.Interconnectors(), list.Series)

	resp := decodeReport(t, get(t, engine, "/api/interconnectors/nemo?start=2020-03-01&end=2020-03-02&window=5"))
	assert.Equal(t, []string{"date", "nemo"}, resp.Columns)
	assert.Equal(t, [][]any{{"2020-03-01", 2.0}, {"2020-03-02", 2.0}}, resp.Rows)
}

func TestMonthlyAndByYear(t *testing.T) {
	engine := newTestEngine(t, sixDays()...)

	monthly := decodeReport(t, get(t, engine, "/api/sources/monthly/coal?year=2020"))
	assert.Equal(t, []string{"month", "total_coal"}, monthly.Columns)
	assert.Equal(t, [][]any{{3.0, 6.0}}, monthly.Rows)

	byYear := decodeReport(t, get(t, engine, "/api/demand/by-year/2020?window=5"))
	assert.Equal(t, []string{"date", "demand", "rolling_demand"}, byYear.Columns)
	require.Len(t, byYear.Rows, 6)
	assert.InDelta(t, 40.0, byYear.Rows[5][2], 1e-9)
}

func TestTables(t *testing.T) {
	engine := newTestEngine(t, sixDays()...)

	list := decodeReport(t, get(t, engine, "/api/tables"))
	assert.Equal(t, []string{"table_name"}, list.Columns)
	assert.Len(t, list.Rows, 3)

	desc := decodeReport(t, get(t, engine, "/api/tables/fct_gridwatch"))
	assert.Equal(t, []string{"column_name", "column_type"}, desc.Columns)
	assert.Len(t, desc.Rows, 3)

	payload := decodeError(t, get(t, engine, "/api/tables/users"), http.StatusNotFound)
	assert.Equal(t, "not_found", payload.Type)
}

func TestHealthAndMetrics(t *testing.T) {
	engine := newTestEngine(t, sixDays()...)

	w := get(t, engine, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(t, engine, "/metrics").Code)
}

func TestNewServer_RejectsBadDefaultStart(t *testing.T) {
	cfg := testutil.NewConfig(t)
	cfg.Gridwatch.Dashboard.DefaultStartDate = "2011/01/01"
	_, err := NewServer(nil, &cfg.Gridwatch.Dashboard)
	assert.Error(t, err)
}
