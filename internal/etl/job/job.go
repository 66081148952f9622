package job

import (
	"github.com/tigerroll/gridwatch/internal/warehouse"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	"github.com/tigerroll/gridwatch/pkg/batch/core/config"
	runner "github.com/tigerroll/gridwatch/pkg/batch/core/job/runner"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
	"github.com/tigerroll/gridwatch/pkg/batch/engine/step/tasklet"
	"github.com/tigerroll/gridwatch/pkg/batch/listener/logging"
	metricslistener "github.com/tigerroll/gridwatch/pkg/batch/listener/metrics"
)

// Dependencies are the collaborators of the warehouse build job.
type Dependencies struct {
	Config   *config.ETLConfig
	Resolver storage.StorageConnectionResolver
	Session  *warehouse.Session
	Recorder metrics.MetricRecorder
	Tracer   metrics.Tracer
}

// NewJob assembles extract, build, export and load into one SimpleJob.
// Every call gets its own State, so a returned job is good for one run.
func NewJob(deps Dependencies) *runner.SimpleJob {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}

	state := NewState()
	exporter := warehouse.NewExporter(deps.Resolver, deps.Config)
	loader := warehouse.NewLoader(deps.Session, deps.Resolver, exporter, deps.Config, recorder)

	observer := metricslistener.NewListener(recorder)
	stepListeners := []port.StepExecutionListener{
		logging.NewLoggingStepListener(),
		observer,
	}
	step := func(name string, t port.Tasklet) port.Step {
		return tasklet.NewTaskletStep(name, t, stepListeners, tracer)
	}

	steps := []port.Step{
		step(StepExtract, NewExtractTasklet(deps.Resolver, deps.Config, state)),
		step(StepBuild, NewBuildTasklet(state, recorder, tracer)),
		step(StepExport, NewExportTasklet(exporter, state)),
		step(StepLoad, NewLoadTasklet(loader)),
	}
	jobListeners := []port.JobExecutionListener{
		logging.NewLoggingJobListener(),
		observer,
	}
	return runner.NewSimpleJob(deps.Config.JobName, steps, jobListeners, tracer)
}
