package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leengari/colcalc/internal/domain/data"
)

// ErrUnsupportedFormat is returned for file extensions the loader cannot read
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Options controls how files are decoded
type Options struct {
	// Charset of csv/txt input: "utf-8" (default), "latin1", "windows-1252"
	Charset string
}

// Load reads a dataset from path, picking the reader by file extension.
// The dataset is named after the file without its extension.
func Load(path string, opts Options, logger *slog.Logger) (*data.Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var (
		ds  *data.Dataset
		err error
	)

	switch ext {
	case "csv":
		ds, err = loadDelimited(path, name, ',', opts.Charset)
	case "txt":
		ds, err = loadText(path, name, opts.Charset)
	case "json":
		ds, err = loadJSON(path, name)
	case "xml":
		ds, err = loadXML(path, name)
	case "xlsx":
		ds, err = loadXLSX(path, name)
	case "xls":
		ds, err = loadXLS(path, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	logger.Info("Dataset loaded",
		slog.String("dataset", ds.Name),
		slog.String("format", ext),
		slog.Int("columns", len(ds.Columns)),
		slog.Int("row_count", len(ds.Rows)),
	)

	return ds, nil
}

// headerNames fills in blank header cells so every column can be referenced
func headerNames(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		out[i] = h
	}
	return out
}

// recordsToDataset maps records onto header columns.
// Missing trailing cells are left out of the row; extra cells are dropped.
func recordsToDataset(name string, header []string, records [][]string) *data.Dataset {
	ds := data.NewDataset(name, headerNames(header))
	for _, rec := range records {
		if isBlankRecord(rec) {
			continue
		}
		row := make(map[string]interface{}, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		ds.Append(row)
	}
	return ds
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
