package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
)

type fakeDialect struct{}

func (fakeDialect) Name() string { return "fake" }
func (fakeDialect) ColumnType(k database.ColumnKind) string {
	return map[database.ColumnKind]string{database.KindInteger: "INT", database.KindFloat: "FLOAT", database.KindTimestamp: "TS"}[k]
}
func (fakeDialect) DateOf(expr string) string                          { return expr }
func (fakeDialect) Text(expr string) string                            { return expr }
func (fakeDialect) Concat(exprs ...string) string                      { return "" }
func (fakeDialect) Qualify(schema, table string) string                { return schema + "." + table }
func (fakeDialect) CreateSchema(string) string                         { return "" }
func (fakeDialect) DropTable(schema, table string) string              { return "" }
func (fakeDialect) SwapTable(schema, staging, target string) []string  { return nil }
func (fakeDialect) DescribeTable(schema, table string) (string, []any) { return "", nil }
func (fakeDialect) ListTables(schema string) (string, []any)           { return "", nil }

func TestValidIdentifier(t *testing.T) {
	for _, ok := range []string{"warehouse", "dim_datetime", "_x1"} {
		assert.True(t, database.ValidIdentifier(ok), ok)
	}
	for _, bad := range []string{"", "1abc", "warehouse; DROP", "a.b", "a-b", "\"q\""} {
		assert.False(t, database.ValidIdentifier(bad), bad)
	}
}

func TestCreateTableSQL(t *testing.T) {
	sql := database.CreateTableSQL(fakeDialect{}, "warehouse", "t", []database.Column{
		{Name: "id", Kind: database.KindInteger},
		{Name: "v", Kind: database.KindFloat},
		{Name: "ts", Kind: database.KindTimestamp},
	})
	assert.Equal(t, "CREATE TABLE warehouse.t (id INT, v FLOAT, ts TS)", sql)
}

func TestDialectRegistry(t *testing.T) {
	database.RegisterDialect("fake", fakeDialect{})

	d, err := database.GetDialect("fake")
	require.NoError(t, err)
	assert.Equal(t, "fake", d.Name())

	_, err = database.GetDialect("oracle")
	assert.Error(t, err)
}
