package bronze

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

var ingestBucket = []byte("ingestions")

// Entry is one recorded ingest: which table landed, where it came from,
// when, and how many rows it carried.
type Entry struct {
	Table        string `json:"table"`
	SourceSystem string `json:"source_system"`
	IngestedAt   string `json:"ingested_at"`
	Rows         int    `json:"rows"`
}

// Catalog is a bolt-backed provenance ledger for the raw layer. Each
// ingest appends one entry; entries are never rewritten.
type Catalog struct {
	db *bolt.DB
}

// OpenCatalog opens (or creates) a catalog database file.
func OpenCatalog(filename string) (*Catalog, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog file '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ingestBucket)
		return errors.Wrap(err, "creating ingestions bucket")
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

// Record appends one ingest entry to the ledger.
func (c *Catalog) Record(e Entry) error {
	buf, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encoding entry")
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(ingestBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return errors.Wrap(err, "getting sequence")
		}
		key := []byte(fmt.Sprintf("%s/%016d", e.Table, seq))
		return errors.Wrap(b.Put(key, buf), "putting entry")
	})
}

// Entries returns every recorded ingest of one table, oldest first.
func (c *Catalog) Entries(table string) ([]Entry, error) {
	prefix := []byte(table + "/")
	var entries []Entry
	err := c.db.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(ingestBucket).Cursor()
		for k, v := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cur.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return errors.Wrapf(err, "decoding entry %s", k)
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Tables returns the distinct table names with at least one recorded
// ingest, in key order.
func (c *Catalog) Tables() ([]string, error) {
	var names []string
	err := c.db.View(func(tx *bolt.Tx) error {
		last := ""
		return tx.Bucket(ingestBucket).ForEach(func(k, v []byte) error {
			name := string(k[:bytes.IndexByte(k, '/')])
			if name != last {
				names = append(names, name)
				last = name
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Close closes the underlying database file.
func (c *Catalog) Close() error {
	return c.db.Close()
}
