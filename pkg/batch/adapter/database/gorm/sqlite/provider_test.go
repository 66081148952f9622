package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/config"
)

func TestNewDialector_Errors(t *testing.T) {
	_, err := NewDialector(dbconfig.DatabaseConfig{})
	assert.Error(t, err)

	_, err = NewDialector(dbconfig.DatabaseConfig{
		Database: filepath.Join(t.TempDir(), "absent.db"),
		Schema:   "warehouse",
		ReadOnly: true,
	})
	assert.ErrorContains(t, err, "has the ETL been run")

	_, err = NewDialector(dbconfig.DatabaseConfig{
		Database: filepath.Join(t.TempDir(), "w.db"),
		Schema:   "warehouse; DROP",
	})
	assert.Error(t, err)
}

func TestNewDialector_AttachesWarehouseSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.db")
	d, err := NewDialector(dbconfig.DatabaseConfig{Database: path, Schema: "warehouse"})
	require.NoError(t, err)

	db, err := gorm.Open(d, &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Exec("CREATE TABLE warehouse.readings (id INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO warehouse.readings (id) VALUES (7)").Error)

	var id int64
	require.NoError(t, db.Raw("SELECT id FROM warehouse.readings").Scan(&id).Error)
	assert.Equal(t, int64(7), id)
}

func TestRegisterAttachDriver_OncePerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.db")

	rw, err := registerAttachDriver(path, "warehouse", false)
	require.NoError(t, err)
	again, err := registerAttachDriver(path, "warehouse", false)
	require.NoError(t, err)
	ro, err := registerAttachDriver(path, "warehouse", true)
	require.NoError(t, err)

	assert.Equal(t, rw, again)
	assert.NotEqual(t, rw, ro)
}

func TestDialect(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "", d.CreateSchema("warehouse"))
	assert.Equal(t, []string{
		"DROP TABLE IF EXISTS warehouse.fct_gridwatch",
		"ALTER TABLE warehouse.fct_gridwatch__staging RENAME TO fct_gridwatch",
	}, d.SwapTable("warehouse", "fct_gridwatch__staging", "fct_gridwatch"))

	q, args := d.ListTables("warehouse")
	assert.Equal(t, "SELECT name AS table_name FROM warehouse.sqlite_master WHERE type = 'table' ORDER BY name", q)
	assert.Nil(t, args)
}
