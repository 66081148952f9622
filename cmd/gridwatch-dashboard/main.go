package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/tigerroll/gridwatch/internal/app"
	_ "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm/mysql"
	_ "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm/postgres"
	_ "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// embeddedConfig is the default configuration, overridable by .env and the environment.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// main serves the report API over the warehouse until interrupted.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	code := app.RunDashboard(ctx, envFilePath, embeddedConfig)
	if code != app.ExitOK {
		logger.Errorf("Dashboard exited with code %d.", code)
	}
	cancel()
	os.Exit(code)
}
