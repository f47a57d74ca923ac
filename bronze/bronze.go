// Package bronze is the raw landing layer. It ingests tabular data from
// source files or in-memory tables, stamps each table with provenance
// metadata and persists it unmodified otherwise.
package bronze

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	medallion "github.com/rigo1999/medellion-datawarehousing"
)

// Store lands raw tables under a single directory, one CSV file per
// table.
type Store struct {
	path    string
	catalog *Catalog
}

// Option is a functional option to pass to NewStore.
type Option func(*Store)

// WithCatalog returns an Option which attaches an ingestion catalog to the
// store. Every ingest is then recorded in the catalog as well.
func WithCatalog(c *Catalog) Option {
	return func(s *Store) {
		s.catalog = c
	}
}

// NewStore creates a raw store rooted at path, creating the directory if
// absent.
func NewStore(path string, options ...Option) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating bronze directory %s", path)
	}
	s := &Store{path: path}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Ingest loads tabular data from a source CSV file, stamps it and persists
// it under tableName. A missing source path yields a NotFoundError. An
// empty sourceSystem defaults to "unknown".
func (s *Store) Ingest(sourcePath, tableName, sourceSystem string) (*medallion.Table, error) {
	t, err := medallion.LoadCSV(sourcePath)
	if err != nil {
		return nil, err
	}
	return s.IngestTable(t, tableName, sourceSystem)
}

// IngestTable stamps an already-in-memory table with ingestion metadata,
// persists it under tableName and returns the stamped table. The input
// table is not modified.
func (s *Store) IngestTable(t *medallion.Table, tableName, sourceSystem string) (*medallion.Table, error) {
	if sourceSystem == "" {
		sourceSystem = "unknown"
	}
	now := time.Now().UTC().Format(time.RFC3339)
	out, err := t.SetConstant(medallion.ColIngestionTimestamp, medallion.StringValue(now))
	if err != nil {
		return nil, errors.Wrap(err, "adding ingestion timestamp")
	}
	out, err = out.SetConstant(medallion.ColSourceSystem, medallion.StringValue(sourceSystem))
	if err != nil {
		return nil, errors.Wrap(err, "adding source system")
	}
	if err := medallion.SaveCSV(out, filepath.Join(s.path, tableName+".csv")); err != nil {
		return nil, errors.Wrapf(err, "saving table %s", tableName)
	}
	if s.catalog != nil {
		err := s.catalog.Record(Entry{
			Table:        tableName,
			SourceSystem: sourceSystem,
			IngestedAt:   now,
			Rows:         out.NumRows(),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "recording ingest of %s", tableName)
		}
	}
	return out, nil
}

// ReadTable loads a previously persisted table. A missing table yields a
// NotFoundError.
func (s *Store) ReadTable(tableName string) (*medallion.Table, error) {
	return medallion.LoadCSV(filepath.Join(s.path, tableName+".csv"))
}

// ListTables returns the names of all persisted raw tables.
func (s *Store) ListTables() ([]string, error) {
	return medallion.ListTables(s.path)
}
