package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/leengari/colcalc/internal/domain/data"
)

// Save writes ds to path as .csv or .json, using a temp file and an atomic rename
func Save(path string, ds *data.Dataset) error {
	if ds == nil {
		return fmt.Errorf("cannot save dataset: nil")
	}

	var (
		content []byte
		err     error
	)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "csv":
		content, err = encodeCSV(ds)
	case "json":
		content, err = encodeJSON(ds)
	default:
		return fmt.Errorf("%w: cannot write %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode dataset %s: %w", ds.Name, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write temp file for dataset %s: %w", ds.Name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp → %s for dataset %s: %w", path, ds.Name, err)
	}

	slog.Info("Dataset saved successfully",
		slog.String("dataset", ds.Name),
		slog.String("path", path),
		slog.Int("row_count", len(ds.Rows)),
	)

	return nil
}

func encodeCSV(ds *data.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ds.Columns); err != nil {
		return nil, err
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			v, ok := row.Get(col)
			if !ok {
				record[i] = ""
				continue
			}
			record[i] = FormatValue(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("error writing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeJSON writes rows as an array of objects whose keys follow the dataset
// header; keys outside the header come after it, sorted.
func encodeJSON(ds *data.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range ds.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, key := range rowKeys(ds.Columns, row) {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(jsonValue(row.Data[key]))
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", i, key, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func rowKeys(columns []string, row data.Row) []string {
	keys := make([]string, 0, len(row.Data))
	inHeader := make(map[string]bool, len(columns))
	for _, col := range columns {
		inHeader[col] = true
		if _, ok := row.Data[col]; ok {
			keys = append(keys, col)
		}
	}
	var extra []string
	for k := range row.Data {
		if !inHeader[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// jsonValue replaces values JSON cannot carry with their text form
func jsonValue(v interface{}) interface{} {
	switch n := v.(type) {
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return FormatValue(n)
		}
	case float32:
		if math.IsInf(float64(n), 0) || math.IsNaN(float64(n)) {
			return FormatValue(n)
		}
	}
	return v
}

// FormatValue renders a cell for text output. Floats use the shortest
// representation, non-finite floats render as +Inf, -Inf or NaN; nil renders
// empty.
func FormatValue(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case string:
		return n
	default:
		return fmt.Sprint(n)
	}
}
