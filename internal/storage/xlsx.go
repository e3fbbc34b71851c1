package storage

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/leengari/colcalc/internal/domain/data"
)

// loadXLSX reads the first sheet; its first row is the header
func loadXLSX(path, name string) (*data.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return data.NewDataset(name, []string{}), nil
	}
	return recordsToDataset(name, rows[0], rows[1:]), nil
}
