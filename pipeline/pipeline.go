// Package pipeline holds a worked end-to-end example driving sample sales
// data through the bronze, silver and gold layers.
package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	medallion "github.com/rigo1999/medellion-datawarehousing"
	"github.com/rigo1999/medellion-datawarehousing/bronze"
	"github.com/rigo1999/medellion-datawarehousing/gold"
	"github.com/rigo1999/medellion-datawarehousing/silver"
)

// Main contains the configuration for the demo pipeline.
type Main struct {
	RawPath        string `help:"Directory for the raw (bronze) layer."`
	ProcessedPath  string `help:"Directory for the clean (silver) layer."`
	AggregatedPath string `help:"Directory for the aggregate (gold) layer."`
	CatalogPath    string `help:"Path to the bolt ingestion catalog. Blank disables the catalog."`

	Stdout io.Writer `flag:"-"`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		RawPath:        "data/raw",
		ProcessedPath:  "data/processed",
		AggregatedPath: "data/aggregated",
		Stdout:         os.Stdout,
	}
}

// Run drives the whole pipeline: ingest sample sales and product data,
// clean it, and build the gold dimension, fact and summary tables.
func (m *Main) Run() error {
	var opts []bronze.Option
	if m.CatalogPath != "" {
		catalog, err := bronze.OpenCatalog(m.CatalogPath)
		if err != nil {
			return errors.Wrap(err, "opening catalog")
		}
		defer catalog.Close()
		opts = append(opts, bronze.WithCatalog(catalog))
	}
	raw, err := bronze.NewStore(m.RawPath, opts...)
	if err != nil {
		return errors.Wrap(err, "getting bronze store")
	}
	clean, err := silver.NewStore(m.ProcessedPath)
	if err != nil {
		return errors.Wrap(err, "getting silver store")
	}
	agg, err := gold.NewStore(m.AggregatedPath)
	if err != nil {
		return errors.Wrap(err, "getting gold store")
	}

	sales, products, err := sampleData()
	if err != nil {
		return errors.Wrap(err, "building sample data")
	}

	fmt.Fprintln(m.Stdout, "--- bronze: ingesting raw data ---")
	bronzeSales, err := raw.IngestTable(sales, "sales_transactions", "pos_system")
	if err != nil {
		return errors.Wrap(err, "ingesting sales")
	}
	fmt.Fprintf(m.Stdout, "ingested %d sales transactions\n", bronzeSales.NumRows())
	bronzeProducts, err := raw.IngestTable(products, "products", "master_data")
	if err != nil {
		return errors.Wrap(err, "ingesting products")
	}
	fmt.Fprintf(m.Stdout, "ingested %d products\n", bronzeProducts.NumRows())
	if names, err := raw.ListTables(); err == nil {
		fmt.Fprintf(m.Stdout, "bronze tables: %v\n", names)
	}

	fmt.Fprintln(m.Stdout, "--- silver: cleaning and transforming ---")
	silverSales, err := clean.Transform(bronzeSales, "sales_clean",
		silver.WithTransforms(
			medallion.TransformFunc(silver.CleanColumnNames),
			totalAmount(),
		),
	)
	if err != nil {
		return errors.Wrap(err, "transforming sales")
	}
	fmt.Fprintf(m.Stdout, "transformed sales data: %d records\n", silverSales.NumRows())
	silverProducts, err := clean.Transform(bronzeProducts, "products_clean",
		silver.WithTransforms(medallion.TransformFunc(silver.CleanColumnNames)),
	)
	if err != nil {
		return errors.Wrap(err, "transforming products")
	}
	fmt.Fprintf(m.Stdout, "transformed products data: %d records\n", silverProducts.NumRows())

	fmt.Fprintln(m.Stdout, "--- gold: building business aggregates ---")
	dimProducts, err := agg.CreateDimension(silverProducts, "product", "product_id",
		[]string{"product_name", "category", "supplier"})
	if err != nil {
		return errors.Wrap(err, "creating product dimension")
	}
	factSales, err := agg.CreateFact(silverSales, "sales",
		[]string{"product_id", "customer_id", "date"},
		[]string{"quantity", "unit_price", "total_amount"})
	if err != nil {
		return errors.Wrap(err, "creating sales fact")
	}
	fmt.Fprintf(m.Stdout, "fact_sales: %d records\n", factSales.NumRows())

	summarySpecs := []medallion.AggSpec{
		{Column: "quantity", Funcs: []string{medallion.AggSum}},
		{Column: "total_amount", Funcs: []string{medallion.AggSum}},
		{Column: "transaction_id", Funcs: []string{medallion.AggCount}},
	}
	salesByProduct, err := agg.Aggregate(silverSales, "sales_by_product",
		[]string{"product_id"}, summarySpecs)
	if err != nil {
		return errors.Wrap(err, "aggregating sales by product")
	}
	dailySales, err := agg.Aggregate(silverSales, "daily_sales",
		[]string{"date"}, summarySpecs)
	if err != nil {
		return errors.Wrap(err, "aggregating daily sales")
	}

	fmt.Fprintln(m.Stdout, "\nsales by product:")
	if err := medallion.Fprint(m.Stdout, salesByProduct); err != nil {
		return err
	}
	fmt.Fprintln(m.Stdout, "\ndaily sales:")
	if err := medallion.Fprint(m.Stdout, dailySales); err != nil {
		return err
	}
	fmt.Fprintln(m.Stdout, "\nproduct dimension:")
	if err := medallion.Fprint(m.Stdout, dimProducts); err != nil {
		return err
	}
	fmt.Fprintf(m.Stdout, "\ndata stored in %s, %s, %s\n", m.RawPath, m.ProcessedPath, m.AggregatedPath)
	return nil
}

// totalAmount derives total_amount = quantity * unit_price.
func totalAmount() medallion.Transform {
	return medallion.TransformFunc(func(t *medallion.Table) (*medallion.Table, error) {
		quantity, err := t.Column("quantity")
		if err != nil {
			return nil, err
		}
		price, err := t.Column("unit_price")
		if err != nil {
			return nil, err
		}
		total := make([]medallion.Value, len(quantity))
		for i := range quantity {
			q, qok := quantity[i].Float64()
			p, pok := price[i].Float64()
			if !qok || !pok {
				continue // null
			}
			total[i] = medallion.FloatValue(q * p)
		}
		return t.AppendColumn("total_amount", total)
	})
}

func sampleData() (sales, products *medallion.Table, err error) {
	i := medallion.IntValue
	f := medallion.FloatValue
	s := medallion.StringValue
	sales, err = medallion.New(
		[]string{"transaction_id", "product_id", "quantity", "unit_price", "date", "customer_id"},
		[][]medallion.Value{
			{i(1), i(101), i(2), f(29.99), s("2024-01-15"), i(1001)},
			{i(2), i(102), i(1), f(49.99), s("2024-01-15"), i(1002)},
			{i(3), i(101), i(3), f(29.99), s("2024-01-16"), i(1001)},
			{i(4), i(103), i(1), f(99.99), s("2024-01-16"), i(1003)},
			{i(5), i(102), i(2), f(49.99), s("2024-01-17"), i(1002)},
			{i(6), i(101), i(1), f(29.99), s("2024-01-17"), i(1004)},
			{i(7), i(103), i(4), f(99.99), s("2024-01-18"), i(1001)},
			{i(8), i(102), i(2), f(49.99), s("2024-01-18"), i(1003)},
		})
	if err != nil {
		return nil, nil, err
	}
	products, err = medallion.New(
		[]string{"product_id", "product_name", "category", "supplier"},
		[][]medallion.Value{
			{i(101), s("Widget A"), s("Basic"), s("Supplier X")},
			{i(102), s("Widget B"), s("Standard"), s("Supplier Y")},
			{i(103), s("Premium Widget"), s("Premium"), s("Supplier Z")},
		})
	if err != nil {
		return nil, nil, err
	}
	return sales, products, nil
}
