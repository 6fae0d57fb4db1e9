package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyDataset indicates the input held a header but no data rows, or
// nothing at all. Callers treat this as fatal: no partial report is produced.
var ErrEmptyDataset = errors.New("dataset is empty")

// Column kinds, decided by the predominant parsed type of the non-missing
// values.
const (
	KindNumeric  = "numeric"
	KindDatetime = "datetime"
	KindText     = "text"
)

// Dataset is an immutable snapshot of tabular lab data: a fixed header and
// ordered rows. Every row is normalized to the header width; an empty cell
// (after trimming) is a missing value.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Options controls how tabular files are read.
type Options struct {
	// Delimiter for CSV. If 0, sniffed from the extension (',' or '\t').
	Delimiter rune
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
}

// Load reads a tabular file into a Dataset, choosing the reader by extension
// (.csv/.tsv or .xlsx).
func Load(path string, opt Options) (*Dataset, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") {
		return FromXLSX(path, opt)
	}
	return FromCSV(path, opt)
}

// FromCSV reads a delimited file with a header row.
func FromCSV(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		sample := make([]byte, 4096)
		n, _ := f.Read(sample)
		delim = sniffDelimiter(sample[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind %s: %w", filepath.Base(path), err)
		}
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyDataset)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	d := &Dataset{Name: filepath.Base(path), Columns: header}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = int(^uint(0) >> 1)
	}
	for len(d.Rows) < maxRows {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(d.Rows)+1, err)
		}
		d.Rows = append(d.Rows, normalizeRow(rec, len(header)))
	}
	if len(d.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", d.Name, ErrEmptyDataset)
	}
	return d, nil
}

func normalizeRow(rec []string, ncol int) []string {
	row := make([]string, ncol)
	for i := 0; i < ncol && i < len(rec); i++ {
		row[i] = strings.TrimSpace(rec[i])
	}
	return row
}

// sniffDelimiter picks the most frequent candidate delimiter over the first
// few lines of the sample. Comma wins ties.
func sniffDelimiter(sample []byte) rune {
	counts := map[byte]int{}
	lines := 0
	for _, b := range sample {
		if b == '\n' {
			if lines++; lines == 5 {
				break
			}
		}
		counts[b]++
	}
	best := byte(',')
	for _, cand := range []byte{';', '\t'} {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return rune(best)
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int { return len(d.Rows) }

// Cell returns the raw cell at (row, col); empty string means missing.
func (d *Dataset) Cell(row, col int) string { return d.Rows[row][col] }

// Column returns a read-only view over one column, or false when the name is
// unknown (case-insensitive match).
func (d *Dataset) Column(name string) (ColumnView, bool) {
	for i, c := range d.Columns {
		if strings.EqualFold(c, name) {
			return ColumnView{Name: c, Index: i, d: d}, true
		}
	}
	return ColumnView{}, false
}

// ColumnAt returns the view over column i.
func (d *Dataset) ColumnAt(i int) ColumnView {
	return ColumnView{Name: d.Columns[i], Index: i, d: d}
}

// ColumnView is a cheap accessor over one column of the dataset.
type ColumnView struct {
	Name  string
	Index int
	d     *Dataset
}

// Cells returns the raw cells in row order.
func (v ColumnView) Cells() []string {
	out := make([]string, len(v.d.Rows))
	for i, row := range v.d.Rows {
		out[i] = row[v.Index]
	}
	return out
}

// Numeric returns the parsed numeric observations with their original row
// indices. Missing cells and non-numeric cells are skipped.
func (v ColumnView) Numeric() (vals []float64, rows []int) {
	for i, row := range v.d.Rows {
		cell := row[v.Index]
		if cell == "" {
			continue
		}
		if x, err := strconv.ParseFloat(cell, 64); err == nil {
			vals = append(vals, x)
			rows = append(rows, i)
		}
	}
	return vals, rows
}

// Kind classifies the column by the predominant parsed type of its
// non-missing values: numeric wins ties over datetime, datetime over text.
func (v ColumnView) Kind() string {
	var numCnt, dtCnt, txtCnt int
	for _, row := range v.d.Rows {
		cell := row[v.Index]
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			numCnt++
			continue
		}
		if _, ok := parseTimeMaybe(cell); ok {
			dtCnt++
			continue
		}
		txtCnt++
	}
	switch {
	case numCnt >= dtCnt && numCnt >= txtCnt && numCnt > 0:
		return KindNumeric
	case dtCnt >= txtCnt && dtCnt > 0:
		return KindDatetime
	default:
		return KindText
	}
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
