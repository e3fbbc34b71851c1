package storage

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/leengari/colcalc/internal/domain/data"
)

// xmlDocument is <root><record><column>value</column>...</record>...</root>
// with any element names
type xmlDocument struct {
	Records []xmlRecord `xml:",any"`
}

type xmlRecord struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func loadXML(path, name string) (*data.Dataset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc xmlDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("invalid XML data: %w", err)
	}

	ds := data.NewDataset(name, []string{})
	for _, rec := range doc.Records {
		row := make(map[string]interface{}, len(rec.Fields))
		for _, f := range rec.Fields {
			col := f.XMLName.Local
			ds.AddColumn(col)
			row[col] = strings.TrimSpace(f.Value)
		}
		ds.Append(row)
	}
	return ds, nil
}
