package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/leengari/colcalc/internal/domain/data"
)

// decoderFor returns the decoder for a charset name. UTF-8 input has its BOM stripped.
func decoderFor(charset string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unknown charset %q", charset)
	}
}

func openDecoded(path, charset string) (io.Reader, func() error, error) {
	dec, err := decoderFor(charset)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return transform.NewReader(bufio.NewReader(f), dec), f.Close, nil
}

func loadDelimited(path, name string, comma rune, charset string) (*data.Dataset, error) {
	r, closeFn, err := openDecoded(path, charset)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return readDelimited(r, name, comma)
}

func readDelimited(r io.Reader, name string, comma rune) (*data.Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	if len(records) == 0 {
		return data.NewDataset(name, []string{}), nil
	}
	return recordsToDataset(name, records[0], records[1:]), nil
}

// loadText reads comma separated text, or tab separated when the first
// line has tabs and no commas
func loadText(path, name, charset string) (*data.Dataset, error) {
	r, closeFn, err := openDecoded(path, charset)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	firstLine, _, _ := strings.Cut(string(content), "\n")
	comma := ','
	if strings.Contains(firstLine, "\t") && !strings.Contains(firstLine, ",") {
		comma = '\t'
	}
	return readDelimited(strings.NewReader(string(content)), name, comma)
}
