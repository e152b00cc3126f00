package ingest

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// indexColumn must appear in a workbook header; without it no code can be read.
const indexColumn = "index"

// ReadWorkbookFile reads the first sheet of an XLSX workbook into a Table.
// A missing file yields nil and no error, and so does a sheet with no rows.
// Header cells are trimmed.
func ReadWorkbookFile(path string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q of %s", sheets[0], path)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, bom))
	}
	if !contains(header, indexColumn) {
		return nil, errors.Errorf("no %s column in the header of %s", indexColumn, path)
	}

	t := &Table{Header: header}
	for _, record := range records[1:] {
		t.add(record)
	}
	return t, nil
}
