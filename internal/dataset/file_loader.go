package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/hashicorp/go-multierror"
	"github.com/xuri/excelize/v2"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
)

// FilePaths locates the three cleaned datasets on disk
type FilePaths struct {
	Hourly   string `yaml:"hourly"`
	Daily    string `yaml:"daily"`
	Segments string `yaml:"segments"`
}

// DefaultFilePaths are the locations the cleaning step writes to
var DefaultFilePaths = FilePaths{
	Hourly:   "data/cleaned/hour_df_cleaned.csv",
	Daily:    "data/cleaned/day_df_cleaned.csv",
	Segments: "data/cleaned/rfm_combined.csv",
}

// FileLoader reads the datasets from .csv or .xlsx files
type FileLoader struct {
	paths FilePaths
	sheet string
}

// NewFileLoader creates a file loader. sheet selects the worksheet of .xlsx
// inputs; empty means the first sheet.
func NewFileLoader(paths FilePaths, sheet string) *FileLoader {
	return &FileLoader{paths: paths, sheet: sheet}
}

// Paths returns the files this loader reads
func (l *FileLoader) Paths() []string {
	return []string{l.paths.Hourly, l.paths.Daily, l.paths.Segments}
}

// Describe names the source for logs and snapshot metadata
func (l *FileLoader) Describe() string {
	return "files:" + strings.Join(l.Paths(), ",")
}

// Load reads all three files. Every file is attempted so that one load
// reports all problems.
func (l *FileLoader) Load(ctx context.Context) (*Tables, error) {
	var result *multierror.Error
	frames := make([]dataframe.DataFrame, 3)

	for i, item := range []struct {
		schema Schema
		path   string
	}{
		{HourlySchema, l.paths.Hourly},
		{DailySchema, l.paths.Daily},
		{SegmentSchema, l.paths.Segments},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		df, err := l.readFile(item.schema, item.path)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		frames[i] = df
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return newTables(l.Describe(), frames[0], frames[1], frames[2])
}

func (l *FileLoader) readFile(schema Schema, path string) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(schema, path)
	case ".xlsx":
		return readXLSX(schema, path, l.sheet)
	default:
		return dataframe.DataFrame{}, apperror.New(apperror.ErrInvalidInput, moduleName,
			"unsupported file type for %s table: %s", schema.Name, path)
	}
}

func readCSV(schema Schema, path string) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, openError(schema, path, err)
	}
	defer file.Close()

	df := dataframe.ReadCSV(file, loadOptions(schema)...)
	if df.Err != nil {
		return dataframe.DataFrame{}, apperror.Wrap(apperror.ErrMalformed, moduleName, df.Err,
			"read %s table from %s", schema.Name, path)
	}
	return df, nil
}

func readXLSX(schema Schema, path, sheet string) (dataframe.DataFrame, error) {
	if _, err := os.Stat(path); err != nil {
		return dataframe.DataFrame{}, openError(schema, path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, apperror.Wrap(apperror.ErrMalformed, moduleName, err,
			"open workbook %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, apperror.New(apperror.ErrMalformed, moduleName,
				"workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, apperror.Wrap(apperror.ErrMalformed, moduleName, err,
			"read sheet %q of %s", sheet, path)
	}

	df, err := FromRecords(schema, padRows(rows))
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", path, err)
	}
	return df, nil
}

// padRows squares off the ragged rows excelize returns when trailing cells
// are empty.
func padRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) >= width {
			out = append(out, row[:width])
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out = append(out, padded)
	}
	return out
}

func openError(schema Schema, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperror.Wrap(apperror.ErrNotFound, moduleName, err, "%s table file %s", schema.Name, path)
	}
	return apperror.Wrap(apperror.ErrMalformed, moduleName, err, "open %s table file %s", schema.Name, path)
}
