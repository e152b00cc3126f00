package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const bom = "\ufeff"

// Row is one spreadsheet row keyed by column header.
type Row map[string]string

// Get returns the first non-empty value among the given columns.
func (r Row) Get(columns ...string) string {
	for _, c := range columns {
		if v := r[c]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Table is a parsed sheet export.
type Table struct {
	Header []string
	Rows   []Row
}

// ReadTable parses a CSV export with a header line. A UTF-8 byte order mark
// is dropped and rows with only blank cells are skipped.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}

	t := &Table{Header: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CSV row")
		}
		t.add(record)
	}
	return t, nil
}

// add appends record keyed by the header, skipping rows with only blank
// cells. Missing trailing cells read as empty.
func (t *Table) add(record []string) {
	if blank(record) {
		return
	}
	row := make(Row, len(t.Header))
	for i, name := range t.Header {
		if name == "" {
			continue
		}
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	t.Rows = append(t.Rows, row)
}

// ReadTableFile reads a CSV file. A missing file yields nil and no error.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	return t, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
