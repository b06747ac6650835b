package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ExportHeader is the header row of a trend CSV export.
var ExportHeader = []string{ColArea, ColIndicator, "Year", "Value"}

// ExportCSV serializes records as UTF-8 CSV with a header row and \n line
// endings. Missing values are written as empty fields. The same records
// always produce the same bytes.
func ExportCSV(records []TrendRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTrendCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTrendCSV is ExportCSV writing to w.
func WriteTrendCSV(w io.Writer, records []TrendRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		rec := []string{r.Area, r.Indicator, strconv.Itoa(r.Year), FormatMeasure(r.Value)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseTrendCSV reads records written by ExportCSV.
func ParseTrendCSV(r io.Reader) ([]TrendRecord, error) {
	cr := csv.NewReader(NewCSVInput(r))
	cr.FieldsPerRecord = len(ExportHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range ExportHeader {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i+1, header[i], want)
		}
	}

	var records []TrendRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		year, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, rec[2])
		}

		value := Missing
		if rec[3] != "" {
			v, err := strconv.ParseFloat(rec[3], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value %q", line, rec[3])
			}
			value = Some(v)
		}

		records = append(records, TrendRecord{Area: rec[0], Indicator: rec[1], Year: year, Value: value})
	}
	return records, nil
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}._ -]+`)

// ExportFileName names the download for a selection: <indicator>_trend.csv
// in multi mode and <area>_<indicator>_trend.csv in single mode.
func ExportFileName(sel Selection, mode Mode) string {
	name := sel.Indicator
	if mode == ModeSingle && len(sel.Areas) == 1 {
		name = sel.Areas[0] + "_" + sel.Indicator
	}
	name = strings.TrimSpace(unsafeFileChars.ReplaceAllString(name, "_"))
	if name == "" {
		name = "indicator"
	}
	return name + "_trend.csv"
}
