// Package warehouse persists the star schema: it exports each table to Parquet, loads
// the exports into the relational store and hands out sessions onto the result.
package warehouse

import (
	"gorm.io/gorm"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	"github.com/tigerroll/gridwatch/pkg/batch/core/config"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
)

const moduleName = "warehouse"

// Session is a handle onto the warehouse store: the gorm connection, its SQL dialect and
// the schema holding the tables. It is safe for concurrent use.
// Sessions opened through a read-only provider reject writes at the driver level.
type Session struct {
	db      *gorm.DB
	dialect database.Dialect
	schema  string
}

// NewSession wraps an explicit connection. Mostly useful in tests.
func NewSession(db *gorm.DB, dialect database.Dialect, schema string) *Session {
	return &Session{db: db, dialect: dialect, schema: schema}
}

// NewSessionFromConnection wraps a provider connection.
func NewSessionFromConnection(conn database.DBConnection) *Session {
	return NewSession(conn.DB(), conn.Dialect(), conn.Schema())
}

// OpenSession resolves the configured warehouse connection from provider.
func OpenSession(provider database.DBProvider, cfg *config.WarehouseConfig) (*Session, error) {
	conn, err := provider.GetConnection(cfg.DBRef)
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to open warehouse connection '%s'", cfg.DBRef, err)
	}
	return NewSessionFromConnection(conn), nil
}

func (s *Session) DB() *gorm.DB              { return s.db }
func (s *Session) Dialect() database.Dialect { return s.dialect }
func (s *Session) Schema() string            { return s.schema }

// Qualify returns schema.table.
func (s *Session) Qualify(table string) string {
	return s.dialect.Qualify(s.schema, table)
}
