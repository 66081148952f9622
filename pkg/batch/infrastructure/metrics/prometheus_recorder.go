package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
	logger "github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
// All collectors live on a private registry exposed through Registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Job Metrics
	jobDurationSeconds *prometheus.HistogramVec
	jobStatusCounter   *prometheus.CounterVec

	// Step Metrics
	stepDurationSeconds *prometheus.HistogramVec
	stepStatusCounter   *prometheus.CounterVec

	// Warehouse Metrics
	rowsWritten  *prometheus.CounterVec
	droppedFacts prometheus.Counter

	// Query Metrics
	queryDurationSeconds *prometheus.HistogramVec
	queryErrors          *prometheus.CounterVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gridwatch_etl_job_duration_seconds",
			Help:    "Duration of warehouse build job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "status"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_etl_job_status_total",
			Help: "Total number of warehouse build job executions by status.",
		}, []string{"job_name", "status"}),
		stepDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gridwatch_etl_step_duration_seconds",
			Help:    "Duration of warehouse build step executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "step_name", "status"}),
		stepStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_etl_step_status_total",
			Help: "Total number of warehouse build step executions by status.",
		}, []string{"job_name", "step_name", "status"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_etl_rows_written_total",
			Help: "Rows written to each warehouse table.",
		}, []string{"table"}),
		droppedFacts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridwatch_etl_dropped_facts_total",
			Help: "Readings dropped because no energy flow row matched their id.",
		}),
		queryDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gridwatch_query_duration_seconds",
			Help:    "Duration of report queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		queryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_query_errors_total",
			Help: "Report queries that returned an error.",
		}, []string{"report"}),
	}

	registry.MustRegister(
		r.jobDurationSeconds,
		r.jobStatusCounter,
		r.stepDurationSeconds,
		r.stepStatusCounter,
		r.rowsWritten,
		r.droppedFacts,
		r.queryDurationSeconds,
		r.queryErrors,
	)

	logger.Debugf("Metrics: Prometheus recorder initialized.")
	return r
}

// Registry returns the registry holding every gridwatch collector.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordJobStart records the start of a job.
func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {
	r.jobStatusCounter.WithLabelValues(execution.JobName, model.BatchStatusStarted.String()).Inc()
}

// RecordJobEnd records the duration and final status of a job.
func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	status := execution.Status.String()
	r.jobStatusCounter.WithLabelValues(execution.JobName, status).Inc()
	r.jobDurationSeconds.WithLabelValues(execution.JobName, status).Observe(execution.Duration().Seconds())
	logger.Debugf("Metrics: Job '%s' ended. Duration: %.3fs", execution.JobName, execution.Duration().Seconds())
}

// RecordStepStart records the start of a step.
func (r *PrometheusRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {
	r.stepStatusCounter.WithLabelValues(jobNameOf(execution), execution.StepName, model.BatchStatusStarted.String()).Inc()
}

// RecordStepEnd records the duration and final status of a step.
func (r *PrometheusRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution) {
	jobName := jobNameOf(execution)
	status := execution.Status.String()
	r.stepStatusCounter.WithLabelValues(jobName, execution.StepName, status).Inc()
	r.stepDurationSeconds.WithLabelValues(jobName, execution.StepName, status).Observe(execution.Duration().Seconds())
}

// RecordRowsWritten adds count to the table's written-rows counter.
func (r *PrometheusRecorder) RecordRowsWritten(ctx context.Context, table string, count int) {
	r.rowsWritten.WithLabelValues(table).Add(float64(count))
}

// RecordDroppedFacts adds count to the dropped-facts counter.
func (r *PrometheusRecorder) RecordDroppedFacts(ctx context.Context, count int) {
	if count > 0 {
		r.droppedFacts.Add(float64(count))
	}
}

// RecordQuery observes a report query's duration and counts failures.
func (r *PrometheusRecorder) RecordQuery(ctx context.Context, report string, duration time.Duration, err error) {
	r.queryDurationSeconds.WithLabelValues(report).Observe(duration.Seconds())
	if err != nil {
		r.queryErrors.WithLabelValues(report).Inc()
	}
}

func jobNameOf(execution *model.StepExecution) string {
	if execution.JobExecution == nil {
		return ""
	}
	return execution.JobExecution.JobName
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
