// Package medallion implements a small three-tier (bronze/silver/gold)
// data warehouse over flat CSV files.
//
// Every dataset is a Table: an in-memory relation persisted as one CSV
// file under a layer's directory. The three layers compose only by
// explicit data hand-off - a caller feeds one layer's returned table into
// the next, and no layer ever calls another.
//
// 1. Raw store (bronze)
//
//	The landing zone. Data is ingested as-is from source files or
//	in-memory tables, stamped with an ingestion timestamp and a source
//	system identifier, and persisted unmodified otherwise. An optional
//	bolt-backed catalog keeps a provenance ledger of every ingest.
//
// 2. Clean store (silver)
//
//	Consumes a bronze table, strips the bronze metadata columns, applies
//	caller-supplied transformations in order, deduplicates, optionally
//	drops rows with nulls, stamps its own timestamp and persists.
//	Helpers cover the common cleaning steps: column name normalization,
//	date standardization and type casting.
//
// 3. Aggregate store (gold)
//
//	Shapes silver tables into business outputs: grouped aggregations,
//	star-schema dimension and fact tables, joins, and derived metric
//	columns.
//
// This package holds the shared table engine - the Table and Value types,
// the CSV codec, group-by, join, deduplication and schema validation. The
// bronze, silver and gold subpackages hold the layer stores, and the
// pipeline subpackage a worked end-to-end example.
package medallion
