package storage

import (
	"fmt"
	"io"
	"strconv"

	"github.com/yamitzky/xlrd-go/xlrd"

	"github.com/leengari/colcalc/internal/domain/data"
)

// loadXLS reads the first sheet of a legacy BIFF workbook; its first row is
// the header. Date cells keep their serial number.
func loadXLS(path, name string) (*data.Dataset, error) {
	book, err := xlrd.OpenWorkbook(path, &xlrd.OpenWorkbookOptions{Logfile: io.Discard})
	if err != nil {
		return nil, err
	}
	defer book.ReleaseResources()

	if book.NSheets == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet, err := book.SheetByIndex(0)
	if err != nil {
		return nil, fmt.Errorf("sheet 0: %w", err)
	}

	records := xlsRecords(sheet.NRows, sheet.NCols, func(rowx, colx int) (int, interface{}) {
		return sheet.RawCellType(rowx, colx), sheet.RawCellValue(rowx, colx)
	})
	if len(records) == 0 {
		return data.NewDataset(name, []string{}), nil
	}
	return recordsToDataset(name, records[0], records[1:]), nil
}

// xlsRecords renders every cell of an nrows x ncols grid as text
func xlsRecords(nrows, ncols int, cell func(rowx, colx int) (int, interface{})) [][]string {
	records := make([][]string, 0, nrows)
	for rowx := 0; rowx < nrows; rowx++ {
		rec := make([]string, ncols)
		for colx := 0; colx < ncols; colx++ {
			rec[colx] = xlsCellText(cell(rowx, colx))
		}
		records = append(records, rec)
	}
	return records
}

func xlsCellText(ctype int, value interface{}) string {
	switch ctype {
	case xlrd.XL_CELL_EMPTY, xlrd.XL_CELL_BLANK:
		return ""
	case xlrd.XL_CELL_NUMBER, xlrd.XL_CELL_DATE:
		switch n := value.(type) {
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64)
		case int:
			return strconv.Itoa(n)
		}
	case xlrd.XL_CELL_BOOLEAN:
		switch b := value.(type) {
		case bool:
			if b {
				return "TRUE"
			}
			return "FALSE"
		case int:
			if b != 0 {
				return "TRUE"
			}
			return "FALSE"
		}
	case xlrd.XL_CELL_ERROR:
		switch code := value.(type) {
		case byte:
			if text, ok := xlrd.ErrorTextFromCode[code]; ok {
				return text
			}
		case int:
			if text, ok := xlrd.ErrorTextFromCode[byte(code)]; ok {
				return text
			}
		}
		return "#ERROR"
	}
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
