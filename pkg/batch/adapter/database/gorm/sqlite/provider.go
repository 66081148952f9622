// Package sqlite registers the SQLite dialector and dialect.
//
// The warehouse file is ATTACHed under the configured schema name on every new
// connection, so tables are addressed as schema.table exactly as on PostgreSQL.
package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm"
)

const dbType = "sqlite"

func init() {
	gormadapter.RegisterDialector(dbType, NewDialector)
	database.RegisterDialect(dbType, Dialect{})
}

// NewDialector builds a gorm dialector whose connections ATTACH cfg.Database as cfg.Schema.
// A read-only connection fails if the file does not exist, rather than creating an empty one.
func NewDialector(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
	if cfg.Database == "" {
		return nil, errors.New("SQLite database path cannot be empty")
	}
	if cfg.ReadOnly {
		if _, err := os.Stat(cfg.Database); err != nil {
			return nil, fmt.Errorf("warehouse database %s is not readable (has the ETL been run?): %w", cfg.Database, err)
		}
	} else if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for warehouse database %s: %w", cfg.Database, err)
	}
	if cfg.Schema == "" || cfg.Schema == "main" {
		dsn := cfg.Database
		if cfg.ReadOnly {
			dsn = fmt.Sprintf("file:%s?mode=ro", cfg.Database)
		}
		return sqlite.Open(dsn), nil
	}

	driverName, err := registerAttachDriver(cfg.Database, cfg.Schema, cfg.ReadOnly)
	if err != nil {
		return nil, err
	}
	return &sqlite.Dialector{DriverName: driverName, DSN: ":memory:"}, nil
}

var (
	attachDrivers   = make(map[string]string)
	attachDriversMu sync.Mutex
)

// registerAttachDriver registers, once per (path, schema, readOnly), a go-sqlite3 driver
// whose ConnectHook attaches the warehouse file.
func registerAttachDriver(path, schema string, readOnly bool) (string, error) {
	if !database.ValidIdentifier(schema) {
		return "", fmt.Errorf("invalid SQLite schema alias '%s'", schema)
	}
	key := fmt.Sprintf("%s|%s|%t", path, schema, readOnly)

	attachDriversMu.Lock()
	defer attachDriversMu.Unlock()
	if name, ok := attachDrivers[key]; ok {
		return name, nil
	}

	name := fmt.Sprintf("sqlite3_gridwatch_%d", len(attachDrivers))
	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if _, err := conn.Exec(fmt.Sprintf("ATTACH DATABASE ? AS %s", schema), []driver.Value{path}); err != nil {
				return fmt.Errorf("attach %s as %s: %w", path, schema, err)
			}
			if readOnly {
				if _, err := conn.Exec("PRAGMA query_only = ON", nil); err != nil {
					return err
				}
			}
			return nil
		},
	})
	attachDrivers[key] = name
	return name, nil
}
