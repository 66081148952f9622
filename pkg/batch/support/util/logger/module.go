package logger

import "go.uber.org/fx"

// Module installs FxLoggerAdapter as the fx event logger for both binaries.
var Module = fx.Options(
	fx.WithLogger(NewFxLoggerAdapter),
)
