package dataset

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/jmoiron/sqlx"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
)

// TableNames names the SQL tables holding the three datasets
type TableNames struct {
	Hourly   string `yaml:"hourly"`
	Daily    string `yaml:"daily"`
	Segments string `yaml:"segments"`
}

// DefaultTableNames mirror the cleaned file names
var DefaultTableNames = TableNames{
	Hourly:   "hour_df_cleaned",
	Daily:    "day_df_cleaned",
	Segments: "rfm_combined",
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLLoader reads the datasets from database tables
type SQLLoader struct {
	db     *sqlx.DB
	tables TableNames
}

// NewSQLLoader creates a loader over an open connection
func NewSQLLoader(db *sqlx.DB, tables TableNames) (*SQLLoader, error) {
	for _, name := range []string{tables.Hourly, tables.Daily, tables.Segments} {
		if !identifierPattern.MatchString(name) {
			return nil, apperror.New(apperror.ErrInvalidInput, moduleName, "invalid table name %q", name)
		}
	}
	return &SQLLoader{db: db, tables: tables}, nil
}

// Describe names the source for logs and snapshot metadata
func (l *SQLLoader) Describe() string {
	return fmt.Sprintf("sql:%s:%s,%s,%s", l.db.DriverName(), l.tables.Hourly, l.tables.Daily, l.tables.Segments)
}

// Load reads the three tables in full
func (l *SQLLoader) Load(ctx context.Context) (*Tables, error) {
	hourly, err := l.readTable(ctx, HourlySchema, l.tables.Hourly)
	if err != nil {
		return nil, err
	}
	daily, err := l.readTable(ctx, DailySchema, l.tables.Daily)
	if err != nil {
		return nil, err
	}
	segments, err := l.readTable(ctx, SegmentSchema, l.tables.Segments)
	if err != nil {
		return nil, err
	}
	return newTables(l.Describe(), hourly, daily, segments)
}

func (l *SQLLoader) readTable(ctx context.Context, schema Schema, table string) (dataframe.DataFrame, error) {
	rows, err := l.db.QueryxContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return dataframe.DataFrame{}, apperror.Wrap(apperror.ErrNotFound, moduleName, err,
			"query %s table %s", schema.Name, table)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return dataframe.DataFrame{}, apperror.Wrap(apperror.ErrMalformed, moduleName, err,
			"columns of %s", table)
	}

	records := [][]string{columns}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return dataframe.DataFrame{}, apperror.Wrap(apperror.ErrMalformed, moduleName, err,
				"scan row of %s", table)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, apperror.Wrap(apperror.ErrMalformed, moduleName, err,
			"iterate %s", table)
	}

	return FromRecords(schema, records)
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return NAValue
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
