package data

import (
	"encoding/json"
	"fmt"
)

// Row represents a single dataset row
// Key = column name, Value = raw cell value (string or number)
type Row struct {
	Data map[string]interface{}
}

// NewRow creates a new Row with the given data
func NewRow(data map[string]interface{}) Row {
	if data == nil {
		data = make(map[string]interface{})
	}
	return Row{Data: data}
}

// Get retrieves a value by column name
func (r Row) Get(column string) (interface{}, bool) {
	val, exists := r.Data[column]
	return val, exists
}

// Set adds or updates a value
func (r Row) Set(column string, value interface{}) {
	r.Data[column] = value
}

// Copy creates a copy of the row so callers can append values
// without touching the source row
func (r Row) Copy() Row {
	copy := make(map[string]interface{}, len(r.Data)+1)
	for k, v := range r.Data {
		copy[k] = v
	}
	return Row{Data: copy}
}

// String returns a string representation for debugging
func (r Row) String() string {
	return fmt.Sprintf("Row%v", r.Data)
}

// UnmarshalJSON implements json.Unmarshaler interface
// This allows Row to be unmarshaled from JSON as a map
func (r *Row) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.Data = m
	return nil
}

// MarshalJSON implements json.Marshaler interface
// This allows Row to be marshaled to JSON as a map
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Data)
}
