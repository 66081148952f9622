package database

import (
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/config"
)

// DBConnection represents an open connection to the warehouse store.
type DBConnection interface {
	// Name returns the adapter.database entry this connection was opened from.
	Name() string
	// Type returns the database type (e.g., "sqlite", "postgres", "mysql").
	Type() string
	// DB returns the gorm handle. Callers attach their own context with WithContext.
	DB() *gorm.DB
	// Dialect returns the SQL dialect matching Type.
	Dialect() Dialect
	// Schema returns the namespace that holds the warehouse tables.
	Schema() string
	// Config returns the database configuration associated with this connection.
	Config() dbconfig.DatabaseConfig
	// Close releases the underlying connection pool.
	Close() error
}

// DBProvider opens and caches connections by name.
type DBProvider interface {
	// GetConnection returns the named connection, opening it on first use.
	GetConnection(name string) (DBConnection, error)
	// CloseAll closes every connection opened by this provider.
	CloseAll() error
}
