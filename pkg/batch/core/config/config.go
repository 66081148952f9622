package config

// Package config holds the configuration model shared by gridwatch-etl and gridwatch-dashboard.

// EmbeddedConfig holds the content of the application.yaml compiled into each binary.
type EmbeddedConfig []byte

// LogLevel is the textual logging level found in configuration.
type LogLevel string

const (
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelSilent LogLevel = "SILENT"
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the application log level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
	// SQLLevel is the level at which gorm SQL logging is emitted. "SILENT" disables it.
	SQLLevel string `yaml:"sql_level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ETLConfig configures the warehouse build job.
type ETLConfig struct {
	// JobName labels logs, spans and metrics for the build.
	JobName string `yaml:"job_name"`
	// SourceStorageRef names the storage connection holding the raw CSV extract.
	SourceStorageRef string `yaml:"source_storage_ref"`
	// SourceObject is the object name of the raw CSV extract.
	SourceObject string `yaml:"source_object"`
	// ExportStorageRef names the storage connection receiving the Parquet exports.
	ExportStorageRef string `yaml:"export_storage_ref"`
	// OutputBaseDir is the prefix under which one Parquet object per table is written.
	OutputBaseDir string `yaml:"output_base_dir"`
	// CompressionType is the Parquet codec: "GZIP", "SNAPPY" or "NONE".
	CompressionType string `yaml:"compression_type"`
	// InsertBatchSize is the number of rows per INSERT while loading a table.
	InsertBatchSize int `yaml:"insert_batch_size"`
}

// WarehouseConfig selects the relational store holding the star schema.
type WarehouseConfig struct {
	// DBRef names an entry under adapter.database.
	DBRef string `yaml:"db_ref"`
	// Schema is the namespace holding the three tables.
	Schema string `yaml:"schema"`
}

// DashboardConfig configures the HTTP report API.
type DashboardConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// DefaultStartDate is used when a request omits "start" (YYYY-MM-DD).
	DefaultStartDate string `yaml:"default_start_date"`
	// DefaultWindow, MinWindow and MaxWindow bound the user-facing window width.
	DefaultWindow int `yaml:"default_window"`
	MinWindow     int `yaml:"min_window"`
	MaxWindow     int `yaml:"max_window"`
	// WeeklyDefaultWindow and WeeklyMinWindow replace the daily defaults for weekly demand,
	// where one row is a whole week. MaxWindow applies to both.
	WeeklyDefaultWindow    int `yaml:"weekly_default_window"`
	WeeklyMinWindow        int `yaml:"weekly_min_window"`
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

// TracingConfig configures the OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is "http" or "grpc".
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// GridwatchConfig holds everything under the "gridwatch" top-level key.
type GridwatchConfig struct {
	System    SystemConfig    `yaml:"system"`
	ETL       ETLConfig       `yaml:"etl"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Tracing   TracingConfig   `yaml:"tracing"`
	// AdapterConfigs holds the raw "database" and "storage" sections, keyed by connection name.
	// Adapter providers decode their own entries with mapstructure.
	AdapterConfigs map[string]interface{} `yaml:"adapter"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Gridwatch      GridwatchConfig `yaml:"gridwatch"`
	EmbeddedConfig EmbeddedConfig  `yaml:"-"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Gridwatch: GridwatchConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO", SQLLevel: string(LogLevelSilent)},
			},
			ETL: ETLConfig{
				JobName:          "gridwatchWarehouseJob",
				SourceStorageRef: "raw",
				SourceObject:     "gridwatch.csv",
				ExportStorageRef: "warehouse_files",
				OutputBaseDir:    "warehouse",
				CompressionType:  "GZIP",
				InsertBatchSize:  500,
			},
			Warehouse: WarehouseConfig{
				DBRef:  "warehouse",
				Schema: "warehouse",
			},
			Dashboard: DashboardConfig{
				ListenAddr:             ":8080",
				DefaultStartDate:       "2011-01-01",
				DefaultWindow:          28,
				MinWindow:              5,
				MaxWindow:              50,
				WeeklyDefaultWindow:    4,
				WeeklyMinWindow:        2,
				ShutdownTimeoutSeconds: 10,
			},
			Tracing: TracingConfig{
				Exporter:    "http",
				ServiceName: "gridwatch",
				SampleRatio: 1.0,
			},
			AdapterConfigs: map[string]interface{}{},
		},
	}
}

// Section returns the named sub-map of AdapterConfigs ("database" or "storage").
func (c *Config) Section(kind string) (map[string]interface{}, bool) {
	raw, ok := c.Gridwatch.AdapterConfigs[kind]
	if !ok {
		return nil, false
	}
	m, ok := raw.(map[string]interface{})
	return m, ok
}
