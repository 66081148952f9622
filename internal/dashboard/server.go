// Package dashboard serves the warehouse reports as a JSON HTTP API.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/tigerroll/gridwatch/internal/query"
	"github.com/tigerroll/gridwatch/internal/warehouse"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	"github.com/tigerroll/gridwatch/pkg/batch/core/config"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// Server holds the report handlers.
type Server struct {
	reports      *query.Reports
	cfg          *config.DashboardConfig
	defaultStart time.Time
	now          func() time.Time
}

// NewServer creates a Server over reports.
func NewServer(reports *query.Reports, cfg *config.DashboardConfig) (*Server, error) {
	start, err := time.Parse(time.DateOnly, cfg.DefaultStartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid dashboard default_start_date '%s': %w", cfg.DefaultStartDate, err)
	}
	return &Server{reports: reports, cfg: cfg, defaultStart: start, now: time.Now}, nil
}

// Routes registers every report endpoint on r.
func (s *Server) Routes(r gin.IRouter) {
	r.GET("/health", s.Health)

	api := r.Group("/api")
	api.GET("/tables", s.ListTables)
	api.GET("/tables/:name", s.DescribeTable)

	api.GET("/summary/yearly-demand", s.byRange(s.reports.YearlyAverageDemand))
	api.GET("/summary/yearly-sources", s.byRange(s.reports.YearlyAverageSourceOutput))

	api.GET("/demand/daily", s.byWindow(s.reports.DailyDemand, s.dailyWindow()))
	api.GET("/demand/weekly", s.byWindow(s.reports.WeeklyDemand, s.weeklyWindow()))
	api.GET("/demand/yearly", s.byRange(s.reports.YearlyDemand))
	api.GET("/demand/by-year/:year", s.DemandByYear)

	api.GET("/sources/trend", s.byWindow(s.reports.SourceOutputTrend, s.dailyWindow()))
	api.GET("/sources/monthly/:series", s.MonthlySourceTotal)

	api.GET("/interconnectors", s.ListInterconnectors)
	api.GET("/interconnectors/:series", s.InterconnectorTrend)

	api.GET("/peaks/daily", s.byRange(s.reports.DailyMinMaxDemand))
	api.GET("/peaks/weekly", s.byRange(s.reports.WeeklyMinMaxDemand))
	api.GET("/peaks/yearly", s.byRange(s.reports.YearlyMinMaxDemand))
}

// NewEngine builds the gin engine with recovery, tracing, access logging and error rendering.
// A nil registry leaves /metrics unregistered.
func NewEngine(s *Server, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TracingMiddleware())
	r.Use(AccessLogMiddleware())
	r.Use(ErrorHandlingMiddleware())

	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	}
	s.Routes(r)
	return r
}

func openSession(provider database.DBProvider, cfg *config.WarehouseConfig) (*warehouse.Session, error) {
	return warehouse.OpenSession(provider, cfg)
}

func newReports(session *warehouse.Session, recorder metrics.MetricRecorder) *query.Reports {
	return query.NewReports(session, recorder)
}

// run binds the listen address on start, so a busy port fails startup, and serves until stop.
func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.DashboardConfig, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
			logger.Infof("Dashboard listening on %s.", ln.Addr())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorf("Dashboard server stopped: %v", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			timeout := time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			logger.Infof("Shutting down dashboard server.")
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// Module serves the report API. It needs a read-only database.DBProvider, the metric
// recorder and its registry.
var Module = fx.Options(
	fx.Provide(openSession),
	fx.Provide(newReports),
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(run),
)
