package datasource

import (
	"fmt"

	"github.com/mj1618/visual-runner/internal/model"
	"github.com/xuri/excelize/v2"
)

// LoadExcel reads records from sheet, or from the active sheet when sheet is
// empty. Cells are read as their displayed (formatted) values.
func LoadExcel(path, sheet string) ([]model.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}
	records, err := FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
