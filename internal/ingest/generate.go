// Package ingest converts the spreadsheet exports that hold the portfolio
// and CV into the JSON data files the site loads.
package ingest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/content"
)

// Default source file names.
const (
	WorksXLSX     = "portfolio_list.xlsx"
	WorksCSV      = "all_work_list.csv"
	ExperienceCSV = "experience.csv"
)

// Options locate the sources and the output directory.
type Options struct {
	WorksXLSX     string
	WorksCSV      string
	ExperienceCSV string
	OutDir        string
}

// Report summarises one generation run.
type Report struct {
	Source      string
	Codes       int
	Details     int
	Experiences int
	Types       int
	Unmatched   []string
}

// Generate writes the code map and the work details from the works sheet,
// and the experience data from the CV sheet when it exists. The works sheet
// is read from the workbook when it holds any codes, otherwise from the CSV
// export. A works sheet without any codes is an error.
func Generate(opts Options, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	works, source, err := readWorks(opts, logger)
	if err != nil {
		return nil, err
	}

	codes := BuildCodeMap(works.Rows)
	if codes.Len() == 0 {
		return nil, errors.Errorf("no work codes found in %s, check the index column", source)
	}
	if err := os.MkdirAll(opts.OutDir, 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	if err := writeCodeMap(filepath.Join(opts.OutDir, content.CodeMapFile), codes); err != nil {
		return nil, err
	}
	report := &Report{Source: source, Codes: codes.Len()}
	logger.Info("generated code map", zap.String("file", content.CodeMapFile), zap.Int("entries", codes.Len()))

	details, unmatched := BuildDetails(works.Rows, codes)
	if err := writeJSON(filepath.Join(opts.OutDir, content.DetailsFile), details); err != nil {
		return nil, err
	}
	report.Details = len(details)
	report.Unmatched = unmatched
	logger.Info("generated work details", zap.String("file", content.DetailsFile), zap.Int("entries", len(details)))
	if len(unmatched) > 0 {
		logger.Warn("unmatched work rows", zap.Strings("rows", unmatched))
	}

	if opts.ExperienceCSV == "" {
		return report, nil
	}
	cv, err := ReadTableFile(opts.ExperienceCSV)
	if err != nil {
		return nil, err
	}
	if cv == nil {
		logger.Info("no experience sheet, skipping", zap.String("path", opts.ExperienceCSV))
		return report, nil
	}
	exp := BuildExperience(cv)
	if err := writeJSON(filepath.Join(opts.OutDir, content.ExperienceFile), exp); err != nil {
		return nil, err
	}
	report.Experiences = len(exp.Entries)
	report.Types = len(exp.TypeOrder)
	logger.Info("generated experience data",
		zap.String("file", content.ExperienceFile),
		zap.Int("entries", report.Experiences),
		zap.Int("types", report.Types))

	return report, nil
}

// readWorks returns the works sheet and the path it came from.
func readWorks(opts Options, logger *zap.Logger) (*Table, string, error) {
	if opts.WorksXLSX != "" {
		book, err := ReadWorkbookFile(opts.WorksXLSX)
		if err != nil {
			return nil, "", err
		}
		switch {
		case book == nil:
			logger.Info("no workbook, using CSV export", zap.String("path", opts.WorksXLSX))
		case BuildCodeMap(book.Rows).Len() == 0:
			logger.Warn("workbook has no codes, using CSV export", zap.String("path", opts.WorksXLSX))
		default:
			return book, opts.WorksXLSX, nil
		}
	}

	works, err := ReadTableFile(opts.WorksCSV)
	if err != nil {
		return nil, "", err
	}
	if works == nil {
		return nil, "", errors.Errorf("works sheet %s not found", opts.WorksCSV)
	}
	return works, opts.WorksCSV, nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(path string, v any) error {
	raw, err := encode(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", filepath.Base(path))
	}
	return errors.Wrapf(os.WriteFile(path, raw, 0o644), "failed to write %s", path)
}

// writeCodeMap writes the map as a JSON object whose keys keep the sheet
// order, which a Go map cannot.
func writeCodeMap(path string, m content.CodeMap) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, code := range m.Codes {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(code)
		if err != nil {
			return errors.Wrap(err, "failed to encode code")
		}
		val, err := json.Marshal(m.Names[code])
		if err != nil {
			return errors.Wrapf(err, "failed to encode name of %s", code)
		}
		buf.Write(key)
		buf.WriteString(":")
		buf.Write(val)
	}
	buf.WriteString("}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return errors.Wrap(err, "failed to indent code map")
	}
	out.WriteString("\n")
	return errors.Wrapf(os.WriteFile(path, out.Bytes(), 0o644), "failed to write %s", path)
}
