package bronze

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Main contains the configuration for a one-shot ingest of a source CSV
// file into the raw layer.
type Main struct {
	Source       string `help:"Path of the source CSV file to ingest."`
	Table        string `help:"Table name to land the data under. Defaults to the source file name."`
	SourceSystem string `help:"Identifier of the system the data came from."`
	Data         string `help:"Directory of the raw layer."`
	Catalog      string `help:"Path to the bolt ingestion catalog. Blank disables the catalog."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		SourceSystem: "unknown",
		Data:         "data/raw",
	}
}

// Run ingests the source file.
func (m *Main) Run() error {
	if m.Source == "" {
		return errors.New("a source file is required")
	}
	table := m.Table
	if table == "" {
		table = strings.TrimSuffix(filepath.Base(m.Source), filepath.Ext(m.Source))
	}
	var opts []Option
	if m.Catalog != "" {
		catalog, err := OpenCatalog(m.Catalog)
		if err != nil {
			return errors.Wrap(err, "opening catalog")
		}
		defer catalog.Close()
		opts = append(opts, WithCatalog(catalog))
	}
	store, err := NewStore(m.Data, opts...)
	if err != nil {
		return errors.Wrap(err, "getting bronze store")
	}
	t, err := store.Ingest(m.Source, table, m.SourceSystem)
	if err != nil {
		return errors.Wrapf(err, "ingesting %s", m.Source)
	}
	log.Printf("ingested %d rows into %s", t.NumRows(), table)
	return nil
}
