package core

// dataset.go loads a CSV file into an in-memory Dataset.
//
// The loader reads the whole file, detects its encoding, and parses it with
// encoding/csv in ragged mode (no field-count enforcement, lazy quotes).
// Blank lines are kept as empty records so row indexes follow the file. A
// synthetic index column is prepended to the header and to every row so that
// failing rows can be reported by position. Header names are standardized to
// lowercase_underscore form.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// indexColumnName is the preferred name for the synthetic row index column.
const indexColumnName = "index"

// maxIndexPrefixes bounds how many "_" prefixes are tried before giving up.
const maxIndexPrefixes = 10

// Dataset is a loaded CSV file. Rows are never modified after Load returns.
type Dataset struct {
	Path        string
	Encoding    string
	IndexColumn string
	Header      []string   // Standardized names, index column first
	Rows        [][]string // Each row starts with its zero-based index
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of a column in the header.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, h := range d.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns the values of the named column. Rows too short to hold the
// column are skipped.
func (d *Dataset) Column(name string) ([]string, error) {
	idx, ok := d.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found in header", name)
	}
	values := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values, nil
}

// Load reads the CSV file at path.
//
// When header is nil the first record is the header and a file without any
// record fails with ErrEmptyFile. When header is supplied every record is data.
func Load(path string, header []string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Op: "open", Path: path, Err: ErrFileNotFound}
		}
		return nil, &LoadError{Op: "read", Path: path, Err: err}
	}

	encName, text, err := DecodeText(data)
	if err != nil {
		return nil, &LoadError{Op: "decode", Path: path, Err: err}
	}

	records, err := readRecords(text)
	if err != nil {
		return nil, &LoadError{Op: "parse", Path: path, Err: err}
	}

	if header == nil {
		if len(records) == 0 {
			return nil, &LoadError{
				Op:   "parse",
				Path: path,
				Err:  fmt.Errorf("%w: no data found in file and no header provided", ErrEmptyFile),
			}
		}
		header = records[0]
		records = records[1:]
	} else {
		header = append([]string(nil), header...)
	}

	indexCol, err := pickIndexName(header)
	if err != nil {
		return nil, &LoadError{Op: "header", Path: path, Err: err}
	}

	std, err := StandardizeHeader(append([]string{indexCol}, header...))
	if err != nil {
		return nil, &LoadError{Op: "header", Path: path, Err: err}
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, 0, len(rec)+1)
		row = append(row, strconv.Itoa(i))
		row = append(row, rec...)
		rows[i] = row
	}

	return &Dataset{
		Path:        path,
		Encoding:    encName,
		IndexColumn: indexCol,
		Header:      std,
		Rows:        rows,
	}, nil
}

// readRecords parses text as ragged CSV. A blank line is an empty record, so
// record positions match line positions outside quoted fields.
func readRecords(text string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	lines, consumed := 0, 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		// encoding/csv drops blank lines; put them back.
		start, _ := reader.FieldPos(0)
		for line := lines + 1; line < start; line++ {
			records = append(records, []string{})
		}
		records = append(records, rec)

		end := int(reader.InputOffset())
		lines += strings.Count(text[consumed:end], "\n")
		consumed = end
	}

	for range strings.Count(text[consumed:], "\n") {
		records = append(records, []string{})
	}
	return records, nil
}

// StandardizeColumnName lowercases, trims, and joins whitespace runs with "_".
func StandardizeColumnName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// StandardizeHeader standardizes every name and rejects collisions.
func StandardizeHeader(header []string) ([]string, error) {
	out := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		std := StandardizeColumnName(name)
		if seen[std] {
			return nil, &HeaderError{
				Column: name,
				Reason: "standardizing the column name creates a column name collision; remove the extraneous columns and try again",
			}
		}
		seen[std] = true
		out = append(out, std)
	}
	return out, nil
}

func pickIndexName(header []string) (string, error) {
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}

	name := indexColumnName
	for i := 0; taken[name]; i++ {
		if i >= maxIndexPrefixes {
			return "", &HeaderError{
				Column: indexColumnName,
				Reason: fmt.Sprintf("every candidate index column name up to %q is already used", name),
			}
		}
		name = "_" + name
	}
	return name, nil
}
