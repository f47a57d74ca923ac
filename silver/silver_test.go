package silver_test

import (
	"path/filepath"
	"reflect"
	"testing"

	medallion "github.com/rigo1999/medellion-datawarehousing"
	"github.com/rigo1999/medellion-datawarehousing/silver"
)

func mustTable(t testing.TB, cols []string, rows [][]medallion.Value) *medallion.Table {
	t.Helper()
	tbl, err := medallion.New(cols, rows)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return tbl
}

func bronzeTable(t testing.TB) *medallion.Table {
	t.Helper()
	return mustTable(t,
		[]string{"id", "name", medallion.ColIngestionTimestamp, medallion.ColSourceSystem},
		[][]medallion.Value{
			{medallion.IntValue(1), medallion.StringValue("widget"), medallion.StringValue("2024-01-15T00:00:00Z"), medallion.StringValue("erp")},
			{medallion.IntValue(1), medallion.StringValue("widget"), medallion.StringValue("2024-01-15T00:00:00Z"), medallion.StringValue("erp")},
			{medallion.IntValue(2), medallion.StringValue("gadget"), medallion.StringValue("2024-01-15T00:00:00Z"), medallion.StringValue("erp")},
		})
}

func TestTransformStripsMetadataAndDeduplicates(t *testing.T) {
	store, err := silver.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	got, err := store.Transform(bronzeTable(t), "items_clean")
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	want := []string{"id", "name", medallion.ColSilverTimestamp}
	if !reflect.DeepEqual(got.Columns(), want) {
		t.Fatalf("expected columns %v, got %v", want, got.Columns())
	}
	// the two identical widget rows collapse to one
	if got.NumRows() != 2 {
		t.Fatalf("expected 2 rows after dedup, got %d", got.NumRows())
	}

	// transforming the output again is idempotent on row count
	again, err := store.Transform(got, "items_clean")
	if err != nil {
		t.Fatalf("re-transforming: %v", err)
	}
	if again.NumRows() != got.NumRows() {
		t.Fatalf("transform not idempotent: %d vs %d", again.NumRows(), got.NumRows())
	}
	// the existing timestamp is overwritten, not duplicated
	if !reflect.DeepEqual(again.Columns(), want) {
		t.Fatalf("expected columns %v after re-transform, got %v", want, again.Columns())
	}
}

func TestTransformAppliesStepsInOrder(t *testing.T) {
	store, err := silver.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	var order []string
	step := func(name string) medallion.Transform {
		return medallion.TransformFunc(func(tbl *medallion.Table) (*medallion.Table, error) {
			order = append(order, name)
			return tbl.AppendConstant(name, medallion.IntValue(1))
		})
	}
	got, err := store.Transform(bronzeTable(t), "items_clean",
		silver.WithTransforms(step("first"), step("second")))
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Fatalf("steps ran out of order: %v", order)
	}
	if !got.HasColumn("first") || !got.HasColumn("second") {
		t.Fatalf("step output missing: %v", got.Columns())
	}
}

func TestTransformWithoutDeduplication(t *testing.T) {
	store, err := silver.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	got, err := store.Transform(bronzeTable(t), "items_clean", silver.WithoutDeduplication())
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if got.NumRows() != 3 {
		t.Fatalf("expected 3 rows with dedup disabled, got %d", got.NumRows())
	}
}

func TestTransformDropNulls(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"}, [][]medallion.Value{
		{medallion.IntValue(1), medallion.StringValue("x")},
		{medallion.NullValue(), medallion.StringValue("y")},
		{medallion.IntValue(3), medallion.NullValue()},
	})
	store, err := silver.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}

	got, err := store.Transform(tbl, "t", silver.WithDropNulls())
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	if got.NumRows() != 1 {
		t.Fatalf("expected 1 row, got %d", got.NumRows())
	}

	got, err = store.Transform(tbl, "t", silver.WithDropNulls("a"))
	if err != nil {
		t.Fatalf("transforming with subset: %v", err)
	}
	if got.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", got.NumRows())
	}
}

func TestTransformSchemaFailurePersistsNothing(t *testing.T) {
	d := t.TempDir()
	store, err := silver.NewStore(d)
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	_, err = store.Transform(bronzeTable(t), "items_clean",
		silver.WithSchema([]string{"id", "missing_col"}, nil))
	if !medallion.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := medallion.LoadCSV(filepath.Join(d, "items_clean.csv")); !medallion.IsNotFound(err) {
		t.Fatalf("failed transform should persist nothing, got %v", err)
	}
}

func TestTransformPersists(t *testing.T) {
	store, err := silver.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	got, err := store.Transform(bronzeTable(t), "items_clean")
	if err != nil {
		t.Fatalf("transforming: %v", err)
	}
	read, err := store.ReadTable("items_clean")
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if !read.Equal(got) {
		t.Fatal("persisted table differs from returned table")
	}
	names, err := store.ListTables()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"items_clean"}) {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestCleanColumnNames(t *testing.T) {
	tbl := mustTable(t, []string{"Column Name", "Another-Column", " padded "}, nil)
	got, err := silver.CleanColumnNames(tbl)
	if err != nil {
		t.Fatalf("cleaning: %v", err)
	}
	want := []string{"column_name", "another_column", "padded"}
	if !reflect.DeepEqual(got.Columns(), want) {
		t.Fatalf("expected %v, got %v", want, got.Columns())
	}
}

func TestStandardizeDates(t *testing.T) {
	tbl := mustTable(t, []string{"d", "other"}, [][]medallion.Value{
		{medallion.StringValue("2024/01/15"), medallion.IntValue(1)},
		{medallion.StringValue("2024-02-01T10:30:00Z"), medallion.IntValue(2)},
		{medallion.StringValue("not a date"), medallion.IntValue(3)},
	})
	got, err := silver.StandardizeDates([]string{"d", "absent"}, "").Transform(tbl)
	if err != nil {
		t.Fatalf("standardizing: %v", err)
	}
	wantDates := []string{"2024-01-15", "2024-02-01", ""}
	for i, want := range wantDates {
		v, _ := got.Cell(i, "d")
		if v.String() != want {
			t.Fatalf("row %d: expected %q, got %q", i, want, v)
		}
	}
	v, _ := got.Cell(2, "d")
	if !v.IsNull() {
		t.Fatal("unparseable date should become null")
	}
	// untouched column survives
	v, _ = got.Cell(0, "other")
	if i, _ := v.Int64(); i != 1 {
		t.Fatalf("other column changed: %q", v)
	}
}

func TestCastTypes(t *testing.T) {
	tbl := mustTable(t, []string{"i", "f", "s", "d"}, [][]medallion.Value{
		{medallion.StringValue("42"), medallion.StringValue("2.5"), medallion.IntValue(7), medallion.StringValue("2024-01-15")},
		{medallion.StringValue("oops"), medallion.StringValue("oops"), medallion.NullValue(), medallion.StringValue("oops")},
	})
	got, err := silver.CastTypes(map[string]string{
		"i":      medallion.TypeInt,
		"f":      medallion.TypeFloat,
		"s":      medallion.TypeString,
		"d":      medallion.TypeDatetime,
		"absent": medallion.TypeInt,
	}).Transform(tbl)
	if err != nil {
		t.Fatalf("casting: %v", err)
	}

	v, _ := got.Cell(0, "i")
	if i, ok := v.Int64(); !ok || i != 42 {
		t.Fatalf("expected int 42, got %q", v)
	}
	v, _ = got.Cell(0, "f")
	if f, ok := v.Float64(); !ok || f != 2.5 {
		t.Fatalf("expected float 2.5, got %q", v)
	}
	v, _ = got.Cell(0, "s")
	if v.String() != "7" {
		t.Fatalf("expected string 7, got %q", v)
	}
	v, _ = got.Cell(0, "d")
	if _, ok := v.Time(); !ok {
		t.Fatalf("expected timestamp, got %q", v)
	}

	// unparseable cells become null, existing nulls stay null
	for _, col := range []string{"i", "f", "d"} {
		v, _ := got.Cell(1, col)
		if !v.IsNull() {
			t.Fatalf("column %s: expected null, got %q", col, v)
		}
	}
	v, _ = got.Cell(1, "s")
	if !v.IsNull() {
		t.Fatalf("null cast to string should stay null, got %q", v)
	}
}
