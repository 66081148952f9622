// Package postgres registers the PostgreSQL dialector and dialect.
package postgres

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm"
)

const dbType = "postgres"

func init() {
	gormadapter.RegisterDialector(dbType, func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(ConnectionString(cfg)), nil
	})
	database.RegisterDialect(dbType, Dialect{})
}

// ConnectionString generates the keyword/value DSN for PostgreSQL connections.
// Read-only connections start every transaction read-only.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslmode := c.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts := []string{
		fmt.Sprintf("host=%s", c.Host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("user=%s", c.User),
		fmt.Sprintf("password=%s", c.Password),
		fmt.Sprintf("dbname=%s", c.Database),
		fmt.Sprintf("sslmode=%s", sslmode),
	}
	if c.ReadOnly {
		parts = append(parts, "default_transaction_read_only=on")
	}
	return strings.Join(parts, " ")
}

// Dialect renders PostgreSQL SQL.
type Dialect struct{}

var _ database.Dialect = Dialect{}

func (Dialect) Name() string { return dbType }

func (Dialect) ColumnType(kind database.ColumnKind) string {
	switch kind {
	case database.KindFloat:
		return "DOUBLE PRECISION"
	case database.KindTimestamp:
		return "TIMESTAMP"
	default:
		return "BIGINT"
	}
}

func (Dialect) DateOf(expr string) string { return fmt.Sprintf("CAST(%s AS DATE)", expr) }

func (Dialect) Text(expr string) string { return fmt.Sprintf("CAST(%s AS TEXT)", expr) }

func (Dialect) Concat(exprs ...string) string { return strings.Join(exprs, " || ") }

func (Dialect) Qualify(schema, table string) string { return schema + "." + table }

func (Dialect) CreateSchema(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + schema
}

func (d Dialect) DropTable(schema, table string) string {
	return "DROP TABLE IF EXISTS " + d.Qualify(schema, table)
}

func (d Dialect) SwapTable(schema, staging, target string) []string {
	return []string{
		d.DropTable(schema, target),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.Qualify(schema, staging), target),
	}
}

func (Dialect) DescribeTable(schema, table string) (string, []any) {
	return `SELECT column_name, data_type AS column_type
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY ordinal_position`, []any{schema, table}
}

func (Dialect) ListTables(schema string) (string, []any) {
	return `SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name`, []any{schema}
}
