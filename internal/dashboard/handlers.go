package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tigerroll/gridwatch/internal/query"
)

const invertedRangeWarning = "start date is after end date; no rows match"

// reportResponse is the JSON body of every report endpoint.
type reportResponse struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Warning string   `json:"warning,omitempty"`
}

type rangeReport func(ctx context.Context, dates query.DateRange) (*query.Table, error)

type windowedReport func(ctx context.Context, dates query.DateRange, window int) (*query.Table, error)

func (s *Server) respond(c *gin.Context, t *query.Table, err error, dates *query.DateRange) {
	if err != nil {
		AbortWithError(c, err)
		return
	}
	resp := reportResponse{Columns: t.Columns, Rows: t.Rows}
	if dates != nil && dates.Inverted() {
		resp.Warning = invertedRangeWarning
	}
	c.JSON(http.StatusOK, resp)
}

// byRange serves a report parameterized by start and end only.
func (s *Server) byRange(report rangeReport) gin.HandlerFunc {
	return func(c *gin.Context) {
		dates, err := s.parseDates(c.Query("start"), c.Query("end"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		t, err := report(c.Request.Context(), dates)
		s.respond(c, t, err, &dates)
	}
}

// byWindow serves a report parameterized by start, end and a window within bounds.
func (s *Server) byWindow(report windowedReport, bounds windowBounds) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := s.parseReportRequest(c, bounds)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		t, err := report(c.Request.Context(), req.dates, req.window)
		s.respond(c, t, err, &req.dates)
	}
}

func (s *Server) parseReportRequest(c *gin.Context, bounds windowBounds) (reportRequest, error) {
	dates, err := s.parseDates(c.Query("start"), c.Query("end"))
	if err != nil {
		return reportRequest{}, err
	}
	window, err := parseWindow(c.Query("window"), bounds)
	if err != nil {
		return reportRequest{}, err
	}
	return reportRequest{dates: dates, window: window}, nil
}

// InterconnectorTrend serves the moving average of one interconnector.
func (s *Server) InterconnectorTrend(c *gin.Context) {
	series := c.Param("series")
	if _, err := query.LookupSeries(series, query.GroupInterconnector); err != nil {
		AbortWithError(c, paramError("series", "unknown interconnector '%s'", series))
		return
	}
	req, err := s.parseReportRequest(c, s.dailyWindow())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	t, err := s.reports.InterconnectorTrend(c.Request.Context(), req.dates, req.window, series)
	s.respond(c, t, err, &req.dates)
}

// ListInterconnectors lists the interconnector series that InterconnectorTrend accepts.
func (s *Server) ListInterconnectors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"series": query.Interconnectors()})
}

// MonthlySourceTotal serves the monthly totals of one generation source for ?year=.
func (s *Server) MonthlySourceTotal(c *gin.Context) {
	series := c.Param("series")
	if _, err := query.LookupSeries(series, query.GroupSource); err != nil {
		AbortWithError(c, paramError("series", "unknown generation source '%s'", series))
		return
	}
	year, err := parseYear("year", c.Query("year"), defaultMonthlyYear)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	t, err := s.reports.MonthlySourceTotal(c.Request.Context(), year, series)
	s.respond(c, t, err, nil)
}

// DemandByYear serves daily demand and its moving average for one calendar year.
func (s *Server) DemandByYear(c *gin.Context) {
	year, err := parseYear("year", c.Param("year"), 0)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	window, err := parseWindow(c.Query("window"), s.dailyWindow())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	t, err := s.reports.RollingDemandByYear(c.Request.Context(), year, window)
	s.respond(c, t, err, nil)
}

// ListTables lists the warehouse tables.
func (s *Server) ListTables(c *gin.Context) {
	t, err := s.reports.ListTables(c.Request.Context())
	s.respond(c, t, err, nil)
}

// DescribeTable lists the columns of one warehouse table.
func (s *Server) DescribeTable(c *gin.Context) {
	t, err := s.reports.DescribeTable(c.Request.Context(), c.Param("name"))
	s.respond(c, t, err, nil)
}

// Health reports liveness.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
