package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/leengari/colcalc/internal/domain/data"
)

// loadJSON accepts either an array of objects or an array of arrays whose
// first element is the header. Numbers are kept as json.Number.
func loadJSON(path, name string) (*data.Dataset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}
	if len(items) == 0 {
		return data.NewDataset(name, []string{}), nil
	}

	first := bytes.TrimSpace(items[0])
	if len(first) > 0 && first[0] == '[' {
		return jsonTable(name, items)
	}
	return jsonObjects(name, items)
}

func jsonObjects(name string, items []json.RawMessage) (*data.Dataset, error) {
	ds := data.NewDataset(name, []string{})
	for i, item := range items {
		keys, err := objectKeys(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for _, k := range keys {
			ds.AddColumn(k)
		}

		var row map[string]interface{}
		if err := decodeNumbers(item, &row); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ds.Append(row)
	}
	return ds, nil
}

func jsonTable(name string, items []json.RawMessage) (*data.Dataset, error) {
	var header []string
	if err := json.Unmarshal(items[0], &header); err != nil {
		return nil, fmt.Errorf("header row: %w", err)
	}

	ds := data.NewDataset(name, headerNames(header))
	for i, item := range items[1:] {
		var cells []interface{}
		if err := decodeNumbers(item, &cells); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		row := make(map[string]interface{}, len(ds.Columns))
		for j, col := range ds.Columns {
			if j < len(cells) {
				row[col] = cells[j]
			}
		}
		ds.Append(row)
	}
	return ds, nil
}

func decodeNumbers(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// objectKeys returns the top-level keys of a JSON object in document order
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}
		keys = append(keys, key)

		// skip the value
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
