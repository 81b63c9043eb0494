// Package datasource reads the data table that parameterizes a run: the
// first row holds column headers and every following row becomes a record.
package datasource

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mj1618/visual-runner/internal/model"
)

// ErrNoHeader is returned when the table has no header row.
var ErrNoHeader = errors.New("data source has no header row")

// Load reads records from an Excel workbook (.xlsx, .xlsm, .xltx, .xltm) or
// a CSV file, chosen by extension.
func Load(path string) ([]model.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return LoadExcel(path, "")
	default:
		return nil, fmt.Errorf("unsupported data source %s (expected .xlsx or .csv)", path)
	}
}

// FromRows converts a header row plus data rows into records. Blank header
// cells are named column_N (1-based); short rows fill missing cells with "";
// rows whose cells are all blank are dropped.
func FromRows(rows [][]string) ([]model.Record, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(model.Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
