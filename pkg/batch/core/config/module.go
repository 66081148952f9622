package config

import "go.uber.org/fx"

// NewLoggingConfigProvider exposes only the logging section to components that need it.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Gridwatch.System.Logging
}

// Module provides *Config and its commonly injected sections.
// Callers must supply EmbeddedConfig (and optionally a named "envFilePath" string).
var Module = fx.Options(
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(func(cfg *Config) *ETLConfig { return &cfg.Gridwatch.ETL }),
	fx.Provide(func(cfg *Config) *WarehouseConfig { return &cfg.Gridwatch.Warehouse }),
	fx.Provide(func(cfg *Config) *DashboardConfig { return &cfg.Gridwatch.Dashboard }),
	fx.Provide(func(cfg *Config) *TracingConfig { return &cfg.Gridwatch.Tracing }),
)
