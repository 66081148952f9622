// Package app wires the gridwatch binaries together with uber-fx.
package app

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/gridwatch/internal/etl/job"
	gormadapter "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage/gcs"
	"github.com/tigerroll/gridwatch/pkg/batch/adapter/storage/local"
	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	usecase "github.com/tigerroll/gridwatch/pkg/batch/core/application/usecase"
	config "github.com/tigerroll/gridwatch/pkg/batch/core/config"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	"github.com/tigerroll/gridwatch/pkg/batch/core/support/incrementer"
	"github.com/tigerroll/gridwatch/pkg/batch/infrastructure/metrics"
	"github.com/tigerroll/gridwatch/pkg/batch/infrastructure/tracing"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// Process exit codes of gridwatch-etl.
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitStartup = 2
)

// CommonModules are shared by both binaries.
var CommonModules = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	tracing.Module,
	storage.Module,
	local.Module,
	gcs.Module,
)

// RunETL builds the warehouse once and returns the process exit code.
func RunETL(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig) int {
	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
		),
		CommonModules,
		gormadapter.Module,
		usecase.Module,
		incrementer.Module,
		job.Module,
		fx.Invoke(fx.Annotate(startJobExecution, fx.ParamTags("", "", "", "", "", "", `name:"appCtx"`))),
	)
	code := runToCompletion(app)
	if code == ExitOK && appCtx.Err() != nil {
		logger.Warnf("Job interrupted before completion.")
		return ExitFailed
	}
	return code
}

// runToCompletion starts app, waits for a shutdown request and returns its exit code.
func runToCompletion(app *fx.App) int {
	if err := app.Err(); err != nil {
		logger.Errorf("Failed to build application: %v", err)
		return ExitStartup
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		logger.Errorf("Failed to start application: %v", err)
		return ExitStartup
	}

	sig := <-app.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		logger.Errorf("Failed to stop application cleanly: %v", err)
	}
	return sig.ExitCode
}

// startJobExecution is invoked by Fx to begin the batch job execution.
func startJobExecution(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	launcher usecase.JobLauncher,
	etlJob port.Job,
	incr port.JobParametersIncrementer,
	etlCfg *config.ETLConfig,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params := model.NewJobParameters()
			params.Put("source", etlCfg.SourceStorageRef+":"+etlCfg.SourceObject)
			go runJob(appCtx, launcher, etlJob, incr.GetNext(params), shutdowner)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}

func runJob(ctx context.Context, launcher usecase.JobLauncher, etlJob port.Job, params model.JobParameters, shutdowner fx.Shutdowner) {
	code := ExitFailed
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Panic recovered in job execution: %v", r)
		}
		logger.Infof("Requesting application shutdown after job completion.")
		if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
			logger.Errorf("Failed to shutdown application: %v", err)
		}
	}()

	jobExecution, err := launcher.Launch(ctx, etlJob, params)
	if err != nil {
		logger.Errorf("Job '%s' failed: %v", etlJob.JobName(), err)
		return
	}
	logger.Infof("Job '%s' (Execution ID: %s) finished with status %s in %s.",
		etlJob.JobName(), jobExecution.ID, jobExecution.ExitStatus, jobExecution.Duration())
	code = ExitOK
}
