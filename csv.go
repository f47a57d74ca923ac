package medallion

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// LoadCSV reads a whole CSV file into a Table. The first record is taken
// as the header. Column types are inferred: a column whose non-empty
// fields all parse as integers becomes an integer column, failing that a
// float column, failing that a string column. Empty fields load as null.
// A missing file yields a NotFoundError.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Path: path}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("no header in %s", path)
	}
	header := records[0]
	if err := validateHeader(header); err != nil {
		return nil, errors.Wrapf(err, "validating header of %s", path)
	}

	raw := records[1:]
	rows := make([][]Value, len(raw))
	parsers := inferParsers(header, raw)
	for i, record := range raw {
		rows[i] = make([]Value, len(header))
		for j := range header {
			field := record[j]
			if field == "" {
				continue // null
			}
			v, err := parsers[j].ParseField(field)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s row %d field %q", path, i+1, header[j])
			}
			rows[i][j] = v
		}
	}
	return New(header, rows)
}

// inferParsers picks a FieldParser per column by scanning every non-empty
// field: int if they all parse as ints, else float if they all parse as
// floats, else string.
func inferParsers(header []string, records [][]string) []FieldParser {
	parsers := make([]FieldParser, len(header))
	for j := range header {
		allInt, allFloat, any := true, true, false
		for _, record := range records {
			field := record[j]
			if field == "" {
				continue
			}
			any = true
			if _, err := (IntParser{}).ParseField(field); err != nil {
				allInt = false
			}
			if _, err := (FloatParser{}).ParseField(field); err != nil {
				allFloat = false
				break
			}
		}
		switch {
		case any && allInt:
			parsers[j] = IntParser{}
		case any && allFloat:
			parsers[j] = FloatParser{}
		default:
			parsers[j] = StringParser{}
		}
	}
	return parsers
}

// SaveCSV writes a Table to path as UTF-8 comma-separated values with a
// header row, creating parent directories as needed. The destination is
// overwritten wholesale.
func SaveCSV(t *Table, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.cols); err != nil {
		return errors.Wrapf(err, "writing header to %s", path)
	}
	record := make([]string, len(t.cols))
	for _, row := range t.rows {
		for j, v := range row {
			record[j] = v.String()
		}
		if err := w.Write(record); err != nil {
			return errors.Wrapf(err, "writing row to %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flushing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// ListTables returns the table names persisted in a layer directory: the
// basenames of its *.csv files, sorted.
func ListTables(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(names)
	return names, nil
}
