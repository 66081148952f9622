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

// main builds the warehouse once from the raw extract and exits.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Attempting to stop the job...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	code := app.RunETL(ctx, envFilePath, embeddedConfig)
	cancel()
	os.Exit(code)
}
