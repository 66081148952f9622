package app

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/tigerroll/gridwatch/internal/dashboard"
	gormadapter "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm"
	config "github.com/tigerroll/gridwatch/pkg/batch/core/config"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// RunDashboard serves the report API until appCtx is cancelled and returns the process exit code.
func RunDashboard(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig) int {
	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
		),
		CommonModules,
		gormadapter.ReadOnlyModule,
		fx.Invoke(setGinMode),
		dashboard.Module,
		fx.Invoke(fx.Annotate(stopOnCancel, fx.ParamTags("", "", `name:"appCtx"`))),
	)
	return runToCompletion(app)
}

// setGinMode keeps gin's debug route dump for DEBUG logging only.
func setGinMode(cfg *config.LoggingConfig) {
	if strings.EqualFold(cfg.Level, string(config.LogLevelDebug)) {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

// stopOnCancel shuts the application down once appCtx is cancelled.
func stopOnCancel(lc fx.Lifecycle, shutdowner fx.Shutdowner, appCtx context.Context) {
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				select {
				case <-appCtx.Done():
					logger.Infof("Shutdown requested.")
					if err := shutdowner.Shutdown(); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				case <-done:
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(done)
			return nil
		},
	})
}
