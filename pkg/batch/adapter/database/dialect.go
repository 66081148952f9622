package database

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ColumnKind is the logical type of a warehouse column.
type ColumnKind int

const (
	KindInteger ColumnKind = iota
	KindFloat
	KindTimestamp
)

// Column describes one column of a warehouse table.
type Column struct {
	Name string
	Kind ColumnKind
}

// Dialect renders the engine-specific SQL fragments used by the loader and the report queries.
// Identifiers passed in are assumed to have been checked with ValidIdentifier.
type Dialect interface {
	// Name returns the database type this dialect serves.
	Name() string
	// ColumnType returns the DDL type for kind.
	ColumnType(kind ColumnKind) string
	// DateOf truncates a timestamp expression to a date.
	DateOf(expr string) string
	// Text casts an expression to a string.
	Text(expr string) string
	// Concat joins string expressions.
	Concat(exprs ...string) string
	// Qualify prefixes table with schema.
	Qualify(schema, table string) string
	// CreateSchema returns the statement creating schema, or "" when the engine needs none.
	CreateSchema(schema string) string
	// DropTable returns a DROP TABLE IF EXISTS statement.
	DropTable(schema, table string) string
	// SwapTable returns the statements that replace target with staging.
	SwapTable(schema, staging, target string) []string
	// DescribeTable returns a query yielding (column_name, column_type) rows in declaration order.
	DescribeTable(schema, table string) (string, []any)
	// ListTables returns a query yielding one table_name row per table in schema.
	ListTables(schema string) (string, []any)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s can be interpolated into SQL as a bare identifier.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// CreateTableSQL renders a CREATE TABLE statement for columns.
func CreateTableSQL(d Dialect, schema, table string, columns []Column) string {
	defs := make([]string, 0, len(columns))
	for _, c := range columns {
		defs = append(defs, fmt.Sprintf("%s %s", c.Name, d.ColumnType(c.Kind)))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.Qualify(schema, table), strings.Join(defs, ", "))
}

var (
	dialectRegistry = make(map[string]Dialect)
	dialectMutex    sync.RWMutex
)

// RegisterDialect registers the Dialect for a database type.
func RegisterDialect(dbType string, d Dialect) {
	dialectMutex.Lock()
	defer dialectMutex.Unlock()
	dialectRegistry[dbType] = d
}

// GetDialect retrieves the Dialect registered for dbType.
func GetDialect(dbType string) (Dialect, error) {
	dialectMutex.RLock()
	defer dialectMutex.RUnlock()
	d, ok := dialectRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialect registered for database type: %s", dbType)
	}
	return d, nil
}
