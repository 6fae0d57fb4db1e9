package dataset

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// FromXLSX reads the first worksheet of a .xlsx workbook into a Dataset. Lab
// instruments commonly export a single-sheet workbook with a header row, so
// sheet selection is not exposed here.
func FromXLSX(path string, opt Options) (*Dataset, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	shared := parseSharedStrings(readZipEntry(&zr.Reader, "xl/sharedStrings.xml"))
	sheetXML := readZipEntry(&zr.Reader, firstSheetPath(&zr.Reader))
	rows, err := parseSheet(sheetXML, shared)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyDataset)
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	d := &Dataset{Name: filepath.Base(path), Columns: header}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = int(^uint(0) >> 1)
	}
	for _, row := range rows[1:] {
		if len(d.Rows) == maxRows {
			break
		}
		d.Rows = append(d.Rows, normalizeRow(row, len(header)))
	}
	if len(d.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", d.Name, ErrEmptyDataset)
	}
	return d, nil
}

// firstSheetPath resolves the workbook's first sheet to its ZIP entry name,
// falling back to the conventional path when the workbook metadata is absent
// or unresolvable.
func firstSheetPath(zr *zip.Reader) string {
	var wb struct {
		Sheets []struct {
			RID string `xml:"id,attr"`
		} `xml:"sheets>sheet"`
	}
	if err := xml.Unmarshal(readZipEntry(zr, "xl/workbook.xml"), &wb); err == nil && len(wb.Sheets) > 0 {
		if target := relTarget(zr, wb.Sheets[0].RID); target != "" {
			target = strings.TrimPrefix(target, "/")
			if !strings.HasPrefix(target, "xl/") {
				target = "xl/" + target
			}
			return target
		}
	}
	return "xl/worksheets/sheet1.xml"
}

func relTarget(zr *zip.Reader, rid string) string {
	var rels struct {
		Rels []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(readZipEntry(zr, "xl/_rels/workbook.xml.rels"), &rels); err != nil {
		return ""
	}
	for _, r := range rels.Rels {
		if r.ID == rid {
			return r.Target
		}
	}
	return ""
}

func readZipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// parseSharedStrings decodes xl/sharedStrings.xml. A shared string is either
// a plain <t> or a sequence of rich-text runs whose <t> fragments concatenate.
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var sst struct {
		Items []struct {
			Plain string   `xml:"t"`
			Runs  []string `xml:"r>t"`
		} `xml:"si"`
	}
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil
	}
	out := make([]string, len(sst.Items))
	for i, si := range sst.Items {
		if si.Plain != "" {
			out[i] = si.Plain
		} else {
			out[i] = strings.Join(si.Runs, "")
		}
	}
	return out
}

// parseSheet decodes a worksheet into string rows. The cell reference
// attribute is optional in OOXML, so cells without one take the position
// after the previous cell in the row.
func parseSheet(data []byte, shared []string) ([][]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var ws struct {
		Rows []struct {
			Cells []struct {
				Ref    string `xml:"r,attr"`
				Type   string `xml:"t,attr"`
				Value  string `xml:"v"`
				Inline string `xml:"is>t"`
			} `xml:"c"`
		} `xml:"sheetData>row"`
	}
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse worksheet: %w", err)
	}

	rows := make([][]string, 0, len(ws.Rows))
	for _, r := range ws.Rows {
		var row []string
		next := 0
		for _, c := range r.Cells {
			col := next
			if i, ok := columnIndex(c.Ref); ok {
				col = i
			}
			next = col + 1

			val := c.Value
			switch c.Type {
			case "s":
				val = sharedAt(shared, val)
			case "inlineStr":
				val = c.Inline
			}
			for len(row) <= col {
				row = append(row, "")
			}
			row[col] = val
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// columnIndex converts a cell reference like "C12" to its 0-based column.
// ok is false when the reference carries no column letters.
func columnIndex(ref string) (int, bool) {
	n := 0
	ok := false
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			n = n*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			n = n*26 + int(c-'a'+1)
		default:
			return n - 1, ok
		}
		ok = true
	}
	return n - 1, ok
}

func sharedAt(shared []string, raw string) string {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || idx < 0 || idx >= len(shared) {
		return ""
	}
	return shared[idx]
}
