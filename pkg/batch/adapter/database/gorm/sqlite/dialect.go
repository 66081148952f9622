package sqlite

import (
	"fmt"
	"strings"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
)

// Dialect renders SQLite SQL.
type Dialect struct{}

var _ database.Dialect = Dialect{}

func (Dialect) Name() string { return dbType }

func (Dialect) ColumnType(kind database.ColumnKind) string {
	switch kind {
	case database.KindFloat:
		return "REAL"
	case database.KindTimestamp:
		return "DATETIME"
	default:
		return "INTEGER"
	}
}

func (Dialect) DateOf(expr string) string { return fmt.Sprintf("date(%s)", expr) }

func (Dialect) Text(expr string) string { return fmt.Sprintf("CAST(%s AS TEXT)", expr) }

func (Dialect) Concat(exprs ...string) string { return strings.Join(exprs, " || ") }

func (Dialect) Qualify(schema, table string) string { return schema + "." + table }

// CreateSchema returns "": the schema is the ATTACH alias.
func (Dialect) CreateSchema(string) string { return "" }

func (d Dialect) DropTable(schema, table string) string {
	return "DROP TABLE IF EXISTS " + d.Qualify(schema, table)
}

// SwapTable drops target and renames staging in place. ALTER TABLE RENAME keeps the schema.
func (d Dialect) SwapTable(schema, staging, target string) []string {
	return []string{
		d.DropTable(schema, target),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.Qualify(schema, staging), target),
	}
}

func (Dialect) DescribeTable(schema, table string) (string, []any) {
	return "SELECT name AS column_name, type AS column_type FROM pragma_table_info(?, ?) ORDER BY cid", []any{table, schema}
}

func (Dialect) ListTables(schema string) (string, []any) {
	return fmt.Sprintf("SELECT name AS table_name FROM %s.sqlite_master WHERE type = 'table' ORDER BY name", schema), nil
}
