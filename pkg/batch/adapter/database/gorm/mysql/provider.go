// Package mysql registers the MySQL dialector and dialect.
//
// MySQL has no schemas inside a database, so the warehouse schema names a database of its own.
package mysql

import (
	"fmt"
	"strconv"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm"
)

const dbType = "mysql"

func init() {
	gormadapter.RegisterDialector(dbType, func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.New(mysql.Config{DSN: ConnectionString(cfg)}), nil
	})
	database.RegisterDialect(dbType, Dialect{})
}

// ConnectionString generates the go-sql-driver DSN for MySQL connections.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	port := c.Port
	if port == 0 {
		port = 3306
	}
	mc := mysqldriver.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.Host + ":" + strconv.Itoa(port)
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	if c.ReadOnly {
		mc.Params["transaction_read_only"] = "1"
	}
	return mc.FormatDSN()
}

// Dialect renders MySQL SQL.
type Dialect struct{}

var _ database.Dialect = Dialect{}

func (Dialect) Name() string { return dbType }

func (Dialect) ColumnType(kind database.ColumnKind) string {
	switch kind {
	case database.KindFloat:
		return "DOUBLE"
	case database.KindTimestamp:
		return "DATETIME"
	default:
		return "BIGINT"
	}
}

func (Dialect) DateOf(expr string) string { return fmt.Sprintf("DATE(%s)", expr) }

func (Dialect) Text(expr string) string { return fmt.Sprintf("CAST(%s AS CHAR)", expr) }

func (Dialect) Concat(exprs ...string) string {
	return "CONCAT(" + strings.Join(exprs, ", ") + ")"
}

func (Dialect) Qualify(schema, table string) string { return schema + "." + table }

func (Dialect) CreateSchema(schema string) string {
	return "CREATE DATABASE IF NOT EXISTS " + schema
}

func (d Dialect) DropTable(schema, table string) string {
	return "DROP TABLE IF EXISTS " + d.Qualify(schema, table)
}

// SwapTable uses a single RENAME TABLE so readers never observe a missing target.
// DDL commits implicitly on MySQL, so the surrounding transaction does not cover it.
func (d Dialect) SwapTable(schema, staging, target string) []string {
	old := target + "__old"
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s LIKE %s", d.Qualify(schema, target), d.Qualify(schema, staging)),
		d.DropTable(schema, old),
		fmt.Sprintf("RENAME TABLE %s TO %s, %s TO %s",
			d.Qualify(schema, target), d.Qualify(schema, old),
			d.Qualify(schema, staging), d.Qualify(schema, target)),
		d.DropTable(schema, old),
	}
}

func (Dialect) DescribeTable(schema, table string) (string, []any) {
	return `SELECT column_name AS column_name, column_type AS column_type
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY ordinal_position`, []any{schema, table}
}

func (Dialect) ListTables(schema string) (string, []any) {
	return `SELECT table_name AS table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name`, []any{schema}
}
