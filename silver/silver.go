// Package silver is the cleaning layer. It consumes bronze tables, strips
// their metadata, runs a caller-defined transformation pipeline,
// deduplicates and persists the result with its own processing timestamp.
package silver

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	medallion "github.com/rigo1999/medellion-datawarehousing"
)

// Store persists cleaned tables under a single directory, one CSV file
// per table.
type Store struct {
	path string
}

// NewStore creates a clean store rooted at path, creating the directory
// if absent.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating silver directory %s", path)
	}
	return &Store{path: path}, nil
}

type transformConfig struct {
	transforms  []medallion.Transform
	deduplicate bool
	dropNulls   bool
	nullColumns []string
	validate    bool
	required    []string
	types       map[string]string
}

// TransformOption is a functional option to pass to Transform.
type TransformOption func(*transformConfig)

// WithTransforms returns an option adding transformation steps to the
// pipeline. Steps run strictly in order, each seeing the previous one's
// output.
func WithTransforms(transforms ...medallion.Transform) TransformOption {
	return func(c *transformConfig) {
		c.transforms = append(c.transforms, transforms...)
	}
}

// WithoutDeduplication returns an option disabling the duplicate row
// removal that Transform performs by default.
func WithoutDeduplication() TransformOption {
	return func(c *transformConfig) {
		c.deduplicate = false
	}
}

// WithDropNulls returns an option dropping rows holding a null in any of
// the given columns, or in any column at all when none are given.
func WithDropNulls(columns ...string) TransformOption {
	return func(c *transformConfig) {
		c.dropNulls = true
		c.nullColumns = columns
	}
}

// WithSchema returns an option validating the incoming table (after the
// bronze metadata strip, before any transformation) against required
// columns and expected column types. A failure aborts the call with a
// ValidationError and nothing is persisted.
func WithSchema(required []string, types map[string]string) TransformOption {
	return func(c *transformConfig) {
		c.validate = true
		c.required = required
		c.types = types
	}
}

// Transform runs the cleaning pipeline over a bronze table and persists
// the result under tableName. The sequence is fixed: strip bronze
// metadata, validate the schema if requested, apply each transformation
// in order, deduplicate (unless disabled), drop null rows (if requested),
// stamp the silver timestamp, persist.
func (s *Store) Transform(t *medallion.Table, tableName string, options ...TransformOption) (*medallion.Table, error) {
	cfg := transformConfig{deduplicate: true}
	for _, opt := range options {
		opt(&cfg)
	}

	result := t.DropColumns(medallion.ColIngestionTimestamp, medallion.ColSourceSystem)
	if cfg.validate {
		if err := medallion.ValidateSchema(result, cfg.required, cfg.types); err != nil {
			return nil, err
		}
	}
	var err error
	for i, transform := range cfg.transforms {
		result, err = transform.Transform(result)
		if err != nil {
			return nil, errors.Wrapf(err, "applying transformation %d", i)
		}
	}
	if cfg.deduplicate {
		result = result.DropDuplicates()
	}
	if cfg.dropNulls {
		result, err = result.DropNulls(cfg.nullColumns...)
		if err != nil {
			return nil, errors.Wrap(err, "dropping null rows")
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	result, err = result.SetConstant(medallion.ColSilverTimestamp, medallion.StringValue(now))
	if err != nil {
		return nil, errors.Wrap(err, "adding silver timestamp")
	}
	if err := medallion.SaveCSV(result, filepath.Join(s.path, tableName+".csv")); err != nil {
		return nil, errors.Wrapf(err, "saving table %s", tableName)
	}
	return result, nil
}

// ReadTable loads a previously persisted table. A missing table yields a
// NotFoundError.
func (s *Store) ReadTable(tableName string) (*medallion.Table, error) {
	return medallion.LoadCSV(filepath.Join(s.path, tableName+".csv"))
}

// ListTables returns the names of all persisted clean tables.
func (s *Store) ListTables() ([]string, error) {
	return medallion.ListTables(s.path)
}
