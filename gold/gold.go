// Package gold is the aggregation layer. It shapes silver tables into
// business outputs: grouped aggregations, star-schema dimension and fact
// tables, joins and derived metric columns.
package gold

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	medallion "github.com/rigo1999/medellion-datawarehousing"
)

// Store persists business-shaped tables under a single directory, one CSV
// file per table. Dimension and fact tables carry dim_/fact_ file name
// prefixes.
type Store struct {
	path string
}

// NewStore creates an aggregate store rooted at path, creating the
// directory if absent.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating gold directory %s", path)
	}
	return &Store{path: path}, nil
}

// Metric is one derived column: a name and the function computing its
// cells. Metrics run in order, each seeing the columns added by earlier
// metrics in the same call.
type Metric struct {
	Name string
	Fn   medallion.MetricFunc
}

// Aggregate strips silver metadata, groups the table by the given columns
// and applies the requested aggregations, then stamps and persists the
// result under tableName.
func (s *Store) Aggregate(t *medallion.Table, tableName string, groupBy []string, specs []medallion.AggSpec) (*medallion.Table, error) {
	result := t.DropColumns(medallion.ColSilverTimestamp)
	result, err := result.GroupBy(groupBy, specs)
	if err != nil {
		return nil, errors.Wrapf(err, "aggregating %s", tableName)
	}
	return s.save(result, tableName+".csv")
}

// CreateDimension builds a star-schema dimension table: the key column
// plus its attributes, fully deduplicated. Attributes duplicating the key
// or absent from the table are skipped. The result persists as
// dim_<tableName>.csv.
func (s *Store) CreateDimension(t *medallion.Table, tableName, keyColumn string, attributes []string) (*medallion.Table, error) {
	seen := map[string]struct{}{keyColumn: {}}
	columns := []string{keyColumn}
	for _, a := range attributes {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		columns = append(columns, a)
	}
	present := make([]string, 0, len(columns))
	for _, c := range columns {
		if t.HasColumn(c) {
			present = append(present, c)
		}
	}
	result, err := t.Select(present)
	if err != nil {
		return nil, errors.Wrapf(err, "projecting dimension %s", tableName)
	}
	return s.save(result.DropDuplicates(), "dim_"+tableName+".csv")
}

// CreateFact builds a star-schema fact table: dimension key columns plus
// measure columns, one row per source row, silver metadata stripped.
// Columns absent from the table are skipped. The result persists as
// fact_<tableName>.csv.
func (s *Store) CreateFact(t *medallion.Table, tableName string, dimensionKeys, measures []string) (*medallion.Table, error) {
	result := t.DropColumns(medallion.ColSilverTimestamp)
	seen := make(map[string]struct{})
	columns := make([]string, 0, len(dimensionKeys)+len(measures))
	for _, c := range append(append([]string{}, dimensionKeys...), measures...) {
		if _, ok := seen[c]; ok || !result.HasColumn(c) {
			continue
		}
		seen[c] = struct{}{}
		columns = append(columns, c)
	}
	result, err := result.Select(columns)
	if err != nil {
		return nil, errors.Wrapf(err, "projecting fact %s", tableName)
	}
	return s.save(result, "fact_"+tableName+".csv")
}

// JoinTables joins two tables on the given key columns, stamps the result
// and persists it under tableName.
func (s *Store) JoinTables(left, right *medallion.Table, tableName string, on []string, how medallion.JoinKind) (*medallion.Table, error) {
	result, err := medallion.Join(left, right, on, how)
	if err != nil {
		return nil, errors.Wrapf(err, "joining into %s", tableName)
	}
	return s.save(result, tableName+".csv")
}

// CalculateMetrics appends one derived column per metric, in order, then
// stamps and persists the result under tableName.
func (s *Store) CalculateMetrics(t *medallion.Table, tableName string, metrics []Metric) (*medallion.Table, error) {
	result := t.Clone()
	for _, m := range metrics {
		vals, err := m.Fn(result)
		if err != nil {
			return nil, errors.Wrapf(err, "computing metric %s", m.Name)
		}
		result, err = result.AppendColumn(m.Name, vals)
		if err != nil {
			return nil, errors.Wrapf(err, "adding metric %s", m.Name)
		}
	}
	return s.save(result, tableName+".csv")
}

// ReadTable loads a previously persisted table. A missing table yields a
// NotFoundError.
func (s *Store) ReadTable(tableName string) (*medallion.Table, error) {
	return medallion.LoadCSV(filepath.Join(s.path, tableName+".csv"))
}

// ListTables returns the names of all persisted gold tables.
func (s *Store) ListTables() ([]string, error) {
	return medallion.ListTables(s.path)
}

// save stamps the gold timestamp onto a finished table and writes it out.
func (s *Store) save(t *medallion.Table, filename string) (*medallion.Table, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	out, err := t.SetConstant(medallion.ColGoldTimestamp, medallion.StringValue(now))
	if err != nil {
		return nil, errors.Wrap(err, "adding gold timestamp")
	}
	if err := medallion.SaveCSV(out, filepath.Join(s.path, filename)); err != nil {
		return nil, errors.Wrapf(err, "saving %s", filename)
	}
	return out, nil
}
