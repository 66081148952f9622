package query_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tigerroll/gridwatch/internal/query"
	"github.com/tigerroll/gridwatch/internal/warehouse"
	mysqldialect "github.com/tigerroll/gridwatch/pkg/batch/adapter/database/gorm/mysql"
	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
)

func newMockReports(t *testing.T) (*query.Reports, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	session := warehouse.NewSession(gdb, mysqldialect.Dialect{}, "warehouse")
	return query.NewReports(session, metrics.NewNoOpMetricRecorder()), mock
}

func TestReports_PropagatesEngineErrorsUnchanged(t *testing.T) {
	r, mock := newMockReports(t)
	boom := errors.New("Error 1146: Table 'warehouse.fct_gridwatch' doesn't exist")
	mock.ExpectQuery("SELECT").WillReturnError(boom)

	_, err := r.YearlyDemand(context.Background(), query.NewDateRange(mustDay(t, "2020-01-01"), mustDay(t, "2020-12-31")))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, exception.IsBatchError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReports_MySQLTrailingAverageShape(t *testing.T) {
	r, mock := newMockReports(t)
	mock.ExpectQuery(regexp.QuoteMeta("AVG(demand) OVER (ORDER BY bucket ROWS BETWEEN 27 PRECEDING AND CURRENT ROW) AS demand")).
		WithArgs("2020-01-01", "2020-12-31").
		WillReturnRows(sqlmock.NewRows([]string{"date", "demand"}).
			AddRow([]byte("2020-01-01"), 300.0).
			AddRow([]byte("2020-01-02"), nil))

	got, err := r.DailyDemand(context.Background(), query.NewDateRange(mustDay(t, "2020-01-01"), mustDay(t, "2020-12-31")), 27)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"2020-01-01", 300.0}, {"2020-01-02", nil}}, got.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReports_MySQLWeekKeyUsesConcat(t *testing.T) {
	r, mock := newMockReports(t)
	mock.ExpectQuery(regexp.QuoteMeta("CONCAT(CAST(yr AS CHAR), '-', CAST(wk AS CHAR)) AS year_week")).
		WillReturnRows(sqlmock.NewRows([]string{"year_week", "max_demand", "min_demand"}))

	got, err := r.WeeklyMinMaxDemand(context.Background(), query.NewDateRange(mustDay(t, "2020-01-01"), mustDay(t, "2020-12-31")))
	require.NoError(t, err)
	assert.Equal(t, []string{"year_week", "max_demand", "min_demand"}, got.Columns)
	assert.Empty(t, got.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReports_ParameterErrorsRunNoSQL(t *testing.T) {
	r, mock := newMockReports(t)

	_, err := r.SourceOutputTrend(context.Background(), query.DateRange{}, -1)
	assert.ErrorIs(t, err, query.ErrInvalidWindow)
	_, err = r.DescribeTable(context.Background(), "users")
	assert.ErrorIs(t, err, query.ErrUnknownTable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
