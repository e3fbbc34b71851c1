package testutil

import "github.com/leengari/colcalc/internal/domain/data"

// CreateSalesDataset creates a small dataset with numeric and text columns.
// Row 2 has qty 0 and row 3 has a non-numeric price.
func CreateSalesDataset() *data.Dataset {
	ds := data.NewDataset("sales", []string{"item", "qty", "price", "discount"})
	ds.Append(map[string]interface{}{"item": "pen", "qty": 10.0, "price": 1.5, "discount": 1.0})
	ds.Append(map[string]interface{}{"item": "book", "qty": 2.0, "price": "12", "discount": 0.0})
	ds.Append(map[string]interface{}{"item": "bag", "qty": 0.0, "price": 30.0, "discount": 5.0})
	ds.Append(map[string]interface{}{"item": "ink", "qty": 4.0, "price": "n/a", "discount": 0.0})
	return ds
}

// CreateNumericRows creates n rows where a=i, b=i+1, c=2
func CreateNumericRows(n int) []data.Row {
	rows := make([]data.Row, n)
	for i := range rows {
		rows[i] = data.NewRow(map[string]interface{}{
			"a": float64(i),
			"b": float64(i + 1),
			"c": 2.0,
		})
	}
	return rows
}
