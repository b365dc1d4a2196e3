package importfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is parsed tabular content: one header row plus data rows. Rows may be
// ragged; missing trailing cells read as empty strings.
type Table struct {
	Headers []string
	Rows    [][]string

	index map[string]int
}

// Read parses the file content based on its extension. CSV is the default.
func Read(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	default:
		return ReadCSV(r)
	}
}

// ReadCSV parses comma-separated content with the first row as headers.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return newTable(records[0], records[1:]), nil
}

// ReadXLSX parses the first sheet of a spreadsheet with the first row as headers.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close() //nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return newTable(rows[0], rows[1:]), nil
}

func newTable(headers []string, rows [][]string) *Table {
	index := make(map[string]int, len(headers))
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.TrimSpace(h)
		index[normalizeHeader(h)] = i
	}
	return &Table{Headers: cleaned, Rows: rows, index: index}
}

// Column returns the position of the named header, matching case-insensitively
// and ignoring spaces and underscores.
func (t *Table) Column(name string) (int, bool) {
	if t.index == nil {
		return 0, false
	}
	i, ok := t.index[normalizeHeader(name)]
	return i, ok
}

// Cell returns the trimmed value of the named column on the given row.
func (t *Table) Cell(row []string, name string) string {
	i, ok := t.Column(name)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// RowMap projects a row into a header-keyed map, for audit snapshots.
func (t *Table) RowMap(row []string) map[string]string {
	m := make(map[string]string, len(t.Headers))
	for i, h := range t.Headers {
		if h == "" {
			continue
		}
		if i < len(row) {
			m[h] = strings.TrimSpace(row[i])
		} else {
			m[h] = ""
		}
	}
	return m
}

// MissingColumns reports which of the required headers are absent.
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := t.Column(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}
