package data

// Dataset is an imported table: ordered column names plus rows
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewDataset creates a dataset with the given header
func NewDataset(name string, columns []string) *Dataset {
	return &Dataset{
		Name:    name,
		Columns: columns,
		Rows:    make([]Row, 0),
	}
}

// HasColumn checks if the header contains column
func (d *Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// AddColumn appends a column name to the header once
func (d *Dataset) AddColumn(column string) {
	if !d.HasColumn(column) {
		d.Columns = append(d.Columns, column)
	}
}

// Append adds a row built from data
func (d *Dataset) Append(data map[string]interface{}) {
	d.Rows = append(d.Rows, NewRow(data))
}
