package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"

	"go.uber.org/fx"
)

// Package config provides utilities for loading configuration from the embedded
// application.yaml, an optional .env file and environment variables.

const moduleName = "config"

// adapterEnvPrefix is the environment prefix for overriding adapter entries,
// e.g. GRIDWATCH_ADAPTER_DATABASE_WAREHOUSE_PASSWORD.
const adapterEnvPrefix = "GRIDWATCH_ADAPTER_"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string              `name:"envFilePath" optional:"true"`
	Expander       EnvironmentExpander `optional:"true"`
}

// loadConfig layers configuration in order: defaults, embedded YAML (with ${VAR}
// expansion), then environment variable overrides.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else if err := godotenv.Load(); err != nil {
		logger.Debugf(".env file not found or could not be loaded: %v", err)
	}

	if expander == nil {
		expander = NewOsEnvironmentExpander()
	}
	expanded, err := expander.Expand(embeddedConfig)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to expand environment variables in embedded config", err)
	}

	cfg := NewConfig()
	// yaml.v3 leaves fields absent from the document untouched, so defaults survive.
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to unmarshal embedded config", err)
	}
	if cfg.Gridwatch.AdapterConfigs == nil {
		cfg.Gridwatch.AdapterConfigs = map[string]interface{}{}
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load config from environment variables", err)
	}
	applyAdapterEnv(cfg.Gridwatch.AdapterConfigs, os.Environ())

	cfg.EmbeddedConfig = embeddedConfig
	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads, validates and provides *Config.
// It also applies the configured log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig, params.Expander)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Gridwatch.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Gridwatch.System.Logging.Level)

	if err := Validate(cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "invalid configuration", err)
	}
	return cfg, nil
}

// LoadConfig loads configuration outside of Fx.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig, nil)
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func Validate(cfg *Config) error {
	g := cfg.Gridwatch
	if _, err := time.LoadLocation(g.System.Timezone); err != nil {
		return fmt.Errorf("unknown timezone '%s': %w", g.System.Timezone, err)
	}
	if g.Warehouse.Schema == "" {
		return fmt.Errorf("warehouse.schema must not be empty")
	}
	if g.ETL.InsertBatchSize <= 0 {
		return fmt.Errorf("etl.insert_batch_size must be positive, got %d", g.ETL.InsertBatchSize)
	}
	d := g.Dashboard
	if d.MinWindow < 1 || d.MaxWindow < d.MinWindow {
		return fmt.Errorf("dashboard window bounds are invalid: min=%d max=%d", d.MinWindow, d.MaxWindow)
	}
	if d.DefaultWindow < d.MinWindow || d.DefaultWindow > d.MaxWindow {
		return fmt.Errorf("dashboard.default_window %d is outside [%d, %d]", d.DefaultWindow, d.MinWindow, d.MaxWindow)
	}
	if d.WeeklyMinWindow < 1 || d.MaxWindow < d.WeeklyMinWindow {
		return fmt.Errorf("dashboard weekly window bounds are invalid: min=%d max=%d", d.WeeklyMinWindow, d.MaxWindow)
	}
	if d.WeeklyDefaultWindow < d.WeeklyMinWindow || d.WeeklyDefaultWindow > d.MaxWindow {
		return fmt.Errorf("dashboard.weekly_default_window %d is outside [%d, %d]", d.WeeklyDefaultWindow, d.WeeklyMinWindow, d.MaxWindow)
	}
	if _, err := time.Parse(time.DateOnly, d.DefaultStartDate); err != nil {
		return fmt.Errorf("dashboard.default_start_date '%s' is not YYYY-MM-DD: %w", d.DefaultStartDate, err)
	}
	return nil
}

// loadStructFromEnv recursively loads configuration values into a struct from environment variables.
// The variable name is the upper-cased chain of yaml tags joined by "_", e.g. GRIDWATCH_ETL_SOURCE_OBJECT.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		switch field.Kind() {
		case reflect.Struct:
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		case reflect.Map, reflect.Slice, reflect.Interface:
			// Adapter sections are handled by applyAdapterEnv.
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// applyAdapterEnv overrides raw adapter entries from variables shaped like
// GRIDWATCH_ADAPTER_<KIND>_<NAME>_<FIELD>. NAME must not contain "_"; FIELD may.
// Values are stored as strings; providers decode them with weak typing.
func applyAdapterEnv(adapters map[string]interface{}, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, adapterEnvPrefix) {
			continue
		}
		kv := strings.SplitN(strings.TrimPrefix(env, adapterEnvPrefix), "=", 2)
		if len(kv) != 2 {
			continue
		}
		parts := strings.SplitN(kv[0], "_", 3)
		if len(parts) != 3 {
			continue
		}
		kind, name, field := strings.ToLower(parts[0]), strings.ToLower(parts[1]), strings.ToLower(parts[2])

		section, _ := adapters[kind].(map[string]interface{})
		if section == nil {
			section = map[string]interface{}{}
			adapters[kind] = section
		}
		entry, _ := section[name].(map[string]interface{})
		if entry == nil {
			entry = map[string]interface{}{}
			section[name] = entry
		}
		entry[field] = kv[1]
		logger.Debugf("Adapter setting %s.%s.%s overridden from environment.", kind, name, field)
	}
}

// setField sets a scalar field from its string representation.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
