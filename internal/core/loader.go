package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is wrapped in a LoadError when the file extension is
// neither a workbook nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoHeader is wrapped in a LoadError when the first sheet has no rows.
var ErrNoHeader = errors.New("no header row")

// LoadError reports a data file that could not be opened or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load data file %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the data file at path into a Table. Workbooks are read from
// their first worksheet; .csv files are parsed as RFC 4180.
//
// Header cells are kept verbatim. Rows shorter than the header are padded
// with empty cells and longer rows are truncated.
func Load(path string) (*Table, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx":
		records, err = readWorkbook(path)
	case ".csv":
		records, err = readCSV(path)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	if len(records) == 0 {
		return nil, &LoadError{Path: path, Err: ErrNoHeader}
	}

	return tableFromRecords(records), nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(NewCSVInput(file))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

// ReadTable parses CSV from r into a Table with the same rules as Load.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(NewCSVInput(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	return tableFromRecords(records), nil
}

func tableFromRecords(records [][]string) *Table {
	header := records[0]
	t := &Table{
		Columns: append([]string(nil), header...),
		Rows:    make([]Row, 0, len(records)-1),
	}

	for _, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, col := range header {
			if _, seen := row[col]; seen {
				continue
			}
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// isBlankRecord reports whether every cell of a record is empty.
// excelize returns trailing empty rows for formatted but unused ranges.
func isBlankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
