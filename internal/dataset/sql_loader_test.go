package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-gota/gota/series"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
	"github.com/jengzang/bikeshare-insights/internal/database"
)

func seedSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "rentals.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE hour_df_cleaned (season INTEGER, weathersit INTEGER, hr INTEGER, temp REAL, cnt INTEGER, weathersit_condition TEXT)`,
		`INSERT INTO hour_df_cleaned VALUES (1, 1, 8, 0.2, 100, 'Clear'), (1, 1, 8, 0.3, 200, NULL), (2, 3, 17, 0.5, 80, 'Light Rain/Snow')`,
		`CREATE TABLE day_df_cleaned (day_type TEXT, user_type TEXT, cnt INTEGER, windspeed REAL)`,
		`INSERT INTO day_df_cleaned VALUES ('weekday', 'casual', 300, 0.1), ('weekend', 'registered', 900, 0.25)`,
		`CREATE TABLE rfm_combined (user_segment TEXT, user_type TEXT)`,
		`INSERT INTO rfm_combined VALUES ('Champions', 'registered')`,
	}
	for _, stmt := range stmts {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func TestSQLLoaderSQLite(t *testing.T) {
	db := seedSQLite(t)

	loader, err := NewSQLLoader(db, DefaultTableNames)
	require.NoError(t, err)

	tables, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, tables.Hourly.Nrow())
	assert.Equal(t, series.Int, tables.Hourly.Col(ColSeason).Type())
	assert.Equal(t, series.Float, tables.Hourly.Col(ColTemp).Type())
	assert.True(t, tables.Hourly.Col(ColWeatherCondition).Elem(1).IsNA())

	counts, err := tables.Hourly.Col(ColCount).Int()
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200, 80}, counts)

	assert.Equal(t, []string{"cnt", "windspeed"}, NumericColumns(tables.Daily))
	assert.Equal(t, 1, tables.Segments.Nrow())
	assert.Equal(t, "sql:sqlite:hour_df_cleaned,day_df_cleaned,rfm_combined", tables.Source)
}

func TestSQLLoaderRejectsBadTableName(t *testing.T) {
	_, err := NewSQLLoader(nil, TableNames{Hourly: "hour; DROP TABLE x", Daily: "d", Segments: "s"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestSQLLoaderQueryFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT \\* FROM hour_df_cleaned").WillReturnError(errors.New("no such table"))

	loader, err := NewSQLLoader(sqlx.NewDb(mockDB, "sqlmock"), DefaultTableNames)
	require.NoError(t, err)

	_, err = loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.Contains(t, err.Error(), "no such table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLLoaderMissingColumn(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT \\* FROM hour_df_cleaned").WillReturnRows(
		sqlmock.NewRows([]string{"season", "weathersit", "hr", "temp", "cnt"}).
			AddRow(int64(1), int64(1), int64(0), 0.24, int64(16)))
	mock.ExpectQuery("SELECT \\* FROM day_df_cleaned").WillReturnRows(
		sqlmock.NewRows([]string{"day_type", "cnt"}).
			AddRow([]byte("weekday"), int64(10)))
	mock.ExpectQuery("SELECT \\* FROM rfm_combined").WillReturnRows(
		sqlmock.NewRows([]string{"user_segment", "user_type"}).
			AddRow("Loyal", "casual"))

	loader, err := NewSQLLoader(sqlx.NewDb(mockDB, "sqlmock"), DefaultTableNames)
	require.NoError(t, err)

	_, err = loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrMissingColumn))
	assert.Contains(t, err.Error(), `"user_type"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, NAValue, formatValue(nil))
	assert.Equal(t, "abc", formatValue([]byte("abc")))
	assert.Equal(t, "42", formatValue(int64(42)))
	assert.Equal(t, "0.25", formatValue(0.25))
	assert.Equal(t, "true", formatValue(true))
}
