package gorm

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/config"
	config "github.com/tigerroll/gridwatch/pkg/batch/core/config"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// DialectorFactory generates a gorm.Dialector from a dbconfig.DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory corresponding to the specified DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s (is the driver package imported?)", dbType)
	}
	return factory, nil
}

// Connection is a gorm-backed database.DBConnection.
type Connection struct {
	db      *gorm.DB
	cfg     dbconfig.DatabaseConfig
	name    string
	dialect database.Dialect
}

var _ database.DBConnection = (*Connection)(nil)

func (c *Connection) Name() string                    { return c.name }
func (c *Connection) Type() string                    { return c.cfg.Type }
func (c *Connection) DB() *gorm.DB                    { return c.db }
func (c *Connection) Dialect() database.Dialect       { return c.dialect }
func (c *Connection) Schema() string                  { return c.cfg.Schema }
func (c *Connection) Config() dbconfig.DatabaseConfig { return c.cfg }

// Close closes the underlying *sql.DB.
func (c *Connection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open establishes a gorm connection for dbCfg. sqlLevel controls gorm's SQL logging.
func Open(name string, dbCfg dbconfig.DatabaseConfig, sqlLevel string) (*Connection, error) {
	if !database.ValidIdentifier(dbCfg.Schema) {
		return nil, fmt.Errorf("invalid schema name '%s' for connection '%s'", dbCfg.Schema, name)
	}
	dialect, err := database.GetDialect(dbCfg.Type)
	if err != nil {
		return nil, err
	}
	dialectorFactory, err := GetDialectorFactory(dbCfg.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := dialectorFactory(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", dbCfg.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(sqlLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}
	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName(dbCfg.Database))); err != nil {
		return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if dbCfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.Pool.MaxOpenConns)
	}
	if dbCfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.Pool.MaxIdleConns)
	}
	if dbCfg.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbCfg.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}

	return &Connection{db: db, cfg: dbCfg, name: name, dialect: dialect}, nil
}

// Provider resolves adapter.database entries into cached connections.
type Provider struct {
	cfg      *config.Config
	readOnly bool
	// Map to hold connections managed by this provider (name -> Connection)
	connections map[string]*Connection
	mu          sync.RWMutex
}

var _ database.DBProvider = (*Provider)(nil)

// NewProvider creates a Provider that opens connections read-write.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{cfg: cfg, connections: make(map[string]*Connection)}
}

// NewReadOnlyProvider creates a Provider whose connections are always read-only.
func NewReadOnlyProvider(cfg *config.Config) *Provider {
	p := NewProvider(cfg)
	p.readOnly = true
	return p
}

// GetConnection retrieves an existing connection or establishes a new one.
func (p *Provider) GetConnection(name string) (database.DBConnection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double check (DCL)
	if conn, ok = p.connections[name]; ok {
		return conn, nil
	}

	dbCfg, err := p.DecodeConfig(name)
	if err != nil {
		return nil, err
	}
	conn, err = Open(name, dbCfg, p.cfg.Gridwatch.System.Logging.SQLLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", name, err)
	}
	p.connections[name] = conn
	logger.Infof("Established new DB connection: %s (%s, schema=%s, read_only=%t)", name, dbCfg.Type, dbCfg.Schema, dbCfg.ReadOnly)
	return conn, nil
}

// DecodeConfig decodes the named adapter.database entry and applies provider defaults.
func (p *Provider) DecodeConfig(name string) (dbconfig.DatabaseConfig, error) {
	var dbCfg dbconfig.DatabaseConfig
	section, ok := p.cfg.Section("database")
	if !ok {
		return dbCfg, fmt.Errorf("adapter.database section is missing")
	}
	raw, ok := section[name]
	if !ok {
		return dbCfg, fmt.Errorf("database configuration '%s' not found in adapter.database configs", name)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Result:           &dbCfg,
	})
	if err != nil {
		return dbCfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return dbCfg, fmt.Errorf("failed to decode database config for '%s': %w", name, err)
	}
	if dbCfg.Schema == "" {
		dbCfg.Schema = p.cfg.Gridwatch.Warehouse.Schema
	}
	if p.readOnly {
		dbCfg.ReadOnly = true
	}
	return dbCfg, nil
}

// CloseAll closes all connections managed by this provider.
func (p *Provider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close connection '%s': %v", name, err)
			lastErr = err
		}
		delete(p.connections, name)
	}
	return lastErr
}
